package handlers

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/importdata/internal/core"
	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
	"github.com/JonMunkholm/importdata/internal/validate"
)

// requisiteTail are the fields companies and business units share after
// their identifiers.
var requisiteTail = []core.FieldSpec{
	{Name: "NCEA"},
	{Name: "City", Type: core.FieldReference},
	{Name: "Region", Type: core.FieldReference},
	{Name: "LegalAddress"},
	{Name: "PostalAddress"},
	{Name: "Phones"},
	{Name: "Email"},
	{Name: "Homepage"},
	{Name: "Note"},
	{Name: "Account"},
	{Name: "Bank", Type: core.FieldReference},
}

func fieldList(parts ...[]core.FieldSpec) []core.FieldSpec {
	var out []core.FieldSpec
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var companyFields = fieldList([]core.FieldSpec{
	{Name: "Name", Required: true},
	{Name: "LegalName"},
	{Name: "HeadCompany", Type: core.FieldReference},
	{Name: "Nonresident", Type: core.FieldBool},
	{Name: "Code"},
	{Name: "TIN"},
	{Name: "TRRC"},
	{Name: "PSRN"},
	{Name: "NCEO"},
}, requisiteTail)

var businessUnitFields = fieldList([]core.FieldSpec{
	{Name: "Name", Required: true},
	{Name: "LegalName"},
	{Name: "HeadCompany", Type: core.FieldReference},
	{Name: "CEO", Type: core.FieldReference},
	{Name: "Nonresident", Type: core.FieldBool},
	{Name: "TIN"},
	{Name: "TRRC"},
	{Name: "PSRN"},
	{Name: "NCEO"},
}, requisiteTail)

// requisites reads the shared legal fields and resolves their references.
func (r *rowScope) requisites(f core.Fields) domain.Requisites {
	req := domain.Requisites{
		Name:          f.Get("Name"),
		LegalName:     f.Get("LegalName"),
		Nonresident:   validate.Bool(f.Get("Nonresident")),
		TIN:           f.Get("TIN"),
		TRRC:          f.Get("TRRC"),
		PSRN:          f.Get("PSRN"),
		NCEO:          f.Get("NCEO"),
		NCEA:          f.Get("NCEA"),
		LegalAddress:  f.Get("LegalAddress"),
		PostalAddress: f.Get("PostalAddress"),
		Phones:        f.Get("Phones"),
		Email:         f.Get("Email"),
		Homepage:      f.Get("Homepage"),
		Note:          f.Get("Note"),
		Account:       f.Get("Account"),
	}
	r.describe("Name: \"%s\", TIN: %s", req.Name, req.TIN)
	req.CityID = r.directory(domain.KindCity, f.Get("City"), warnIfMissing)
	req.RegionID = r.directory(domain.KindRegion, f.Get("Region"), warnIfMissing)
	req.BankID = r.directory(domain.KindBank, f.Get("Bank"), warnIfMissing)
	return req
}

// validRequisites checks identifiers in a fixed order. The TRRC is only
// checked for residents.
func (r *rowScope) validRequisites(req domain.Requisites) bool {
	if !r.ok() {
		return false
	}
	checks := []error{
		validate.MaxLength("TIN", req.TIN, 12),
		validate.TIN(req.TIN),
	}
	if !req.Nonresident {
		checks = append(checks,
			validate.MaxLength("TRRC", req.TRRC, 9),
			validate.TRRC(req.TRRC),
		)
	}
	checks = append(checks,
		validate.MaxLength("PSRN", req.PSRN, 15),
		validate.PSRN(req.PSRN),
		validate.MaxLength("NCEO", req.NCEO, 10),
	)
	return r.validate(checks...)
}

func requisitesKey(req domain.Requisites) store.RequisitesFilter {
	return store.RequisitesFilter{Name: req.Name, TIN: req.TIN, TRRC: req.TRRC, PSRN: req.PSRN}
}

const requisitesKeyName = "name, TIN and TRRC, or PSRN"

// Company imports counterparty organizations.
type Company struct{ *Deps }

func (h Company) Name() string { return "Company" }

func (h Company) Fields() []core.FieldSpec { return companyFields }

func (h Company) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, companyFields, func(r *rowScope, f core.Fields) core.Outcome {
		req := r.requisites(f)
		head := h.headCompany(r, req.Name, f.Get("HeadCompany"))
		if !r.validRequisites(req) {
			return core.OutcomeRejected
		}

		var existing *domain.Company
		if opts.DetectDuplicates() {
			found, err := r.sess.FindCompanies(ctx, requisitesKey(req))
			if !r.stored(err) {
				return core.OutcomeRejected
			}
			var ok bool
			if existing, ok = target(r, opts, found, requisitesKeyName); !ok {
				return core.OutcomeRejected
			}
		}

		c := existing
		if c == nil {
			c = &domain.Company{}
		}
		c.HeadCompanyID = head
		c.Code = f.Get("Code")
		c.Requisites = req
		if !r.stored(r.sess.SaveCompany(ctx, c)) || !r.commit() {
			return core.OutcomeRejected
		}
		return outcome(existing)
	})
}

// headCompany finds the head company, creating a bare one when missing.
// A company cannot head itself.
func (h Company) headCompany(r *rowScope, self, name string) *uuid.UUID {
	if name == "" || !r.ok() {
		return nil
	}
	if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(self)) {
		r.rejectf("Head company \"%s\" is the company itself", name)
		return nil
	}
	c, err := h.Resolver.Company(r.ctx, r.sess, name)
	if !r.stored(err) {
		return nil
	}
	if c == nil {
		if c, err = h.Resolver.CreateMinimalCompany(r.ctx, r.sess, name); !r.stored(err) {
			return nil
		}
	}
	return &c.ID
}

// BusinessUnit imports our own legal entities.
type BusinessUnit struct{ *Deps }

func (h BusinessUnit) Name() string { return "BusinessUnit" }

func (h BusinessUnit) Fields() []core.FieldSpec { return businessUnitFields }

func (h BusinessUnit) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, businessUnitFields, func(r *rowScope, f core.Fields) core.Outcome {
		req := r.requisites(f)
		head := r.businessUnit("Head company", f.Get("HeadCompany"), warnIfMissing)
		ceo := r.employee("CEO", f.Get("CEO"), warnIfMissing)
		if !r.validRequisites(req) {
			return core.OutcomeRejected
		}

		var existing *domain.BusinessUnit
		if opts.DetectDuplicates() {
			found, err := r.sess.FindBusinessUnits(ctx, requisitesKey(req))
			if !r.stored(err) {
				return core.OutcomeRejected
			}
			var ok bool
			if existing, ok = target(r, opts, found, requisitesKeyName); !ok {
				return core.OutcomeRejected
			}
		}

		bu := existing
		if bu == nil {
			bu = &domain.BusinessUnit{}
		}
		bu.HeadCompanyID = head
		bu.CEOID = ceo
		bu.Requisites = req
		if !r.stored(r.sess.SaveBusinessUnit(ctx, bu)) || !r.commit() {
			return core.OutcomeRejected
		}
		return outcome(existing)
	})
}

var personFields = []core.FieldSpec{
	{Name: "LastName", Required: true},
	{Name: "FirstName", Required: true},
	{Name: "MiddleName"},
	{Name: "Sex"},
	{Name: "DateOfBirth", Type: core.FieldDate},
	{Name: "TIN"},
	{Name: "SNILS"},
	{Name: "City", Type: core.FieldReference},
	{Name: "Region", Type: core.FieldReference},
	{Name: "LegalAddress"},
	{Name: "PostalAddress"},
	{Name: "Phones"},
	{Name: "Email"},
	{Name: "Homepage"},
	{Name: "Note"},
	{Name: "Account"},
	{Name: "Bank", Type: core.FieldReference},
}

// Person imports individual counterparties.
type Person struct{ *Deps }

func (h Person) Name() string { return "Person" }

func (h Person) Fields() []core.FieldSpec { return personFields }

func (h Person) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, personFields, func(r *rowScope, f core.Fields) core.Outcome {
		p := domain.Person{
			LastName:      f.Get("LastName"),
			FirstName:     f.Get("FirstName"),
			MiddleName:    f.Get("MiddleName"),
			TIN:           f.Get("TIN"),
			SNILS:         f.Get("SNILS"),
			LegalAddress:  f.Get("LegalAddress"),
			PostalAddress: f.Get("PostalAddress"),
			Phones:        f.Get("Phones"),
			Email:         f.Get("Email"),
			Homepage:      f.Get("Homepage"),
			Note:          f.Get("Note"),
			Account:       f.Get("Account"),
		}
		r.describe("Name: \"%s\"", p.Name())
		p.CityID = r.directory(domain.KindCity, f.Get("City"), warnIfMissing)
		p.RegionID = r.directory(domain.KindRegion, f.Get("Region"), warnIfMissing)
		p.BankID = r.directory(domain.KindBank, f.Get("Bank"), warnIfMissing)
		p.DateOfBirth = r.date("Date of birth", f.Get("DateOfBirth"))
		p.Sex = r.sex(f.Get("Sex"))
		if !r.ok() || !r.validate(validate.TIN(p.TIN), validate.SNILS(p.SNILS)) {
			return core.OutcomeRejected
		}

		var existing *domain.Person
		if opts.DetectDuplicates() {
			found, err := findPersons(r, p, true)
			if !r.stored(err) {
				return core.OutcomeRejected
			}
			var ok bool
			if existing, ok = target(r, opts, found, "full name and date of birth, or TIN"); !ok {
				return core.OutcomeRejected
			}
		}
		if existing != nil {
			p.ID = existing.ID
		}
		if !r.stored(r.sess.SavePerson(ctx, &p)) || !r.commit() {
			return core.OutcomeRejected
		}
		return outcome(existing)
	})
}

func (r *rowScope) sex(value string) domain.Sex {
	if !r.ok() {
		return domain.SexUnknown
	}
	s, err := validate.Sex(value)
	if err != nil {
		r.rejectf("%s", err)
	}
	return s
}

// findPersons returns the persons with p's full name whose date of birth
// is equal or unset on either side. With byTIN, a person with the same TIN
// matches regardless of name.
func findPersons(r *rowScope, p domain.Person, byTIN bool) ([]*domain.Person, error) {
	filter := store.PersonFilter{LastName: p.LastName, FirstName: p.FirstName, MiddleName: p.MiddleName}
	if byTIN {
		filter.TIN = p.TIN
	}
	found, err := r.sess.FindPersons(r.ctx, filter)
	if err != nil {
		return nil, err
	}
	var out []*domain.Person
	for _, c := range found {
		if byTIN && p.TIN != "" && c.TIN == p.TIN {
			out = append(out, c)
			continue
		}
		if !store.SameName(c.Name(), p.Name()) {
			continue
		}
		if c.DateOfBirth.IsZero() || p.DateOfBirth.IsZero() || store.SameDay(c.DateOfBirth, p.DateOfBirth) {
			out = append(out, c)
		}
	}
	return out, nil
}
