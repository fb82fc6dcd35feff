package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/importdata/internal/core"
	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
	"github.com/JonMunkholm/importdata/internal/validate"
)

// registration reads the row's own registration number and date.
func (r *rowScope) registration(f core.Fields) (string, time.Time) {
	number := f.Get("RegNumber")
	date := r.date("Registration date", f.Get("RegDate"))
	r.describe("Registration number: \"%s\", date: %s", number, formatDate(date))
	return number, date
}

// placement resolves the department and business unit of a document. The
// business unit defaults to the department's.
func (r *rowScope) placement(departmentName, businessUnitName string) (departmentID, businessUnitID *uuid.UUID) {
	businessUnitID = r.businessUnit("Business unit", businessUnitName, warnIfMissing)
	d := r.department("Department", departmentName, businessUnitID, rejectIfMissing)
	if d == nil {
		return nil, businessUnitID
	}
	if businessUnitID == nil {
		businessUnitID = d.BusinessUnitID
	}
	return &d.ID, businessUnitID
}

func (r *rowScope) amount(value string) decimal.NullDecimal {
	if !r.ok() {
		return decimal.NullDecimal{}
	}
	a, err := validate.Amount(value)
	if err != nil {
		r.rejectf("%s", err)
	}
	return a
}

// leading finds the single document registered under number on date.
func (r *rowScope) leading(number string, date time.Time, what string, types ...domain.DocumentType) *uuid.UUID {
	if !r.ok() {
		return nil
	}
	docs, err := r.deps.Resolver.DocumentsByRegistration(r.ctx, r.sess, number, date, types...)
	if !r.stored(err) {
		return nil
	}
	switch len(docs) {
	case 0:
		r.rejectf("No %s found with registration number \"%s\" and date %s", what, number, formatDate(date))
		return nil
	case 1:
		return &docs[0].ID
	default:
		r.rejectf("Multiple %ss found with registration number \"%s\" and date %s", what, number, formatDate(date))
		return nil
	}
}

// documentTarget runs duplicate detection for a document row. The filter's
// registration date is replaced by date, and a zero date only matches
// documents without one.
func (r *rowScope) documentTarget(opts core.ImportOptions, filter store.DocumentFilter, date time.Time, key string) (*domain.Document, bool) {
	if !opts.DetectDuplicates() {
		return nil, true
	}
	filter.RegistrationDate = datePtr(date)
	found, err := r.sess.FindDocuments(r.ctx, filter)
	if !r.stored(err) {
		return nil, false
	}
	return target(r, opts, byDate(found, date), key)
}

// saveDocument saves and commits doc, then attaches its body and registers
// it.
func (r *rowScope) saveDocument(doc *domain.Document, path string, opts core.ImportOptions, existing *domain.Document) core.Outcome {
	if !r.stored(r.sess.SaveDocument(r.ctx, doc)) || !r.commit() {
		return core.OutcomeRejected
	}
	r.attachBody(doc.ID, path, core.SeverityWarning)
	r.register(doc, opts)
	return outcome(existing)
}

func newDocument(existing *domain.Document, t domain.DocumentType) *domain.Document {
	if existing != nil {
		return existing
	}
	return &domain.Document{Type: t}
}

var contractFields = []core.FieldSpec{
	{Name: "RegNumber"},
	{Name: "RegDate", Type: core.FieldDate},
	{Name: "Counterparty", Type: core.FieldReference, Required: true},
	{Name: "DocumentKind", Type: core.FieldReference, Required: true},
	{Name: "ContractCategory", Type: core.FieldReference},
	{Name: "Subject"},
	{Name: "BusinessUnit", Type: core.FieldReference},
	{Name: "Department", Type: core.FieldReference, Required: true},
	{Name: "FilePath", Type: core.FieldFile},
	{Name: "ValidFrom", Type: core.FieldDate},
	{Name: "ValidTill", Type: core.FieldDate},
	{Name: "TotalAmount", Type: core.FieldNumeric},
	{Name: "Currency", Type: core.FieldReference},
	{Name: "LifeCycleState"},
	{Name: "ResponsibleEmployee", Type: core.FieldReference},
	{Name: "OurSignatory", Type: core.FieldReference},
	{Name: "Note"},
}

// Contract imports contracts.
type Contract struct{ *Deps }

func (h Contract) Name() string { return "Contract" }

func (h Contract) Fields() []core.FieldSpec { return contractFields }

func (h Contract) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, contractFields, func(r *rowScope, f core.Fields) core.Outcome {
		number, date := r.registration(f)
		counterparty := r.counterparty("Counterparty", f.Get("Counterparty"), rejectIfMissing)
		kind := r.directory(domain.KindDocumentKind, f.Get("DocumentKind"), rejectIfMissing)
		dept, bu := r.placement(f.Get("Department"), f.Get("BusinessUnit"))
		category := r.directory(domain.KindContractCategory, f.Get("ContractCategory"), warnIfMissing)
		validFrom := r.date("Valid from", f.Get("ValidFrom"))
		validTill := r.date("Valid till", f.Get("ValidTill"))
		amount := r.amount(f.Get("TotalAmount"))
		currency := r.directory(domain.KindCurrency, f.Get("Currency"), warnIfMissing)
		state := r.lifeCycle(f.Get("LifeCycleState"))
		responsible := r.employee("Responsible employee", f.Get("ResponsibleEmployee"), warnIfMissing)
		signatory := r.employee("Signatory", f.Get("OurSignatory"), warnIfMissing)
		if !r.ok() {
			return core.OutcomeRejected
		}

		existing, ok := r.documentTarget(opts, store.DocumentFilter{
			Types:              []domain.DocumentType{domain.DocContract},
			RegistrationNumber: &number,
			CounterpartyID:     counterparty,
			DocumentKindID:     kind,
		}, date, "registration number, date, counterparty and document kind")
		if !ok {
			return core.OutcomeRejected
		}

		doc := newDocument(existing, domain.DocContract)
		doc.RegistrationNumber = number
		doc.RegistrationDate = date
		doc.CounterpartyID = counterparty
		doc.DocumentKindID = kind
		doc.ContractCategoryID = category
		doc.Subject = f.Get("Subject")
		doc.BusinessUnitID = bu
		doc.DepartmentID = dept
		doc.ValidFrom = validFrom
		doc.ValidTill = validTill
		doc.TotalAmount = amount
		doc.CurrencyID = currency
		doc.LifeCycleState = state
		doc.ResponsibleID = responsible
		doc.OurSignatoryID = signatory
		doc.Note = f.Get("Note")
		return r.saveDocument(doc, f.Get("FilePath"), opts, existing)
	})
}

var supAgreementFields = []core.FieldSpec{
	{Name: "LeadingRegNumber", Required: true},
	{Name: "LeadingRegDate", Type: core.FieldDate, Required: true},
	{Name: "Counterparty", Type: core.FieldReference, Required: true},
	{Name: "RegNumber"},
	{Name: "RegDate", Type: core.FieldDate},
	{Name: "DocumentKind", Type: core.FieldReference, Required: true},
	{Name: "Subject"},
	{Name: "BusinessUnit", Type: core.FieldReference},
	{Name: "Department", Type: core.FieldReference, Required: true},
	{Name: "FilePath", Type: core.FieldFile},
	{Name: "ValidFrom", Type: core.FieldDate},
	{Name: "ValidTill", Type: core.FieldDate},
	{Name: "TotalAmount", Type: core.FieldNumeric},
	{Name: "Currency", Type: core.FieldReference},
	{Name: "LifeCycleState"},
	{Name: "ResponsibleEmployee", Type: core.FieldReference},
	{Name: "OurSignatory", Type: core.FieldReference},
	{Name: "Note"},
}

// SupAgreement imports supplementary agreements to contracts.
type SupAgreement struct{ *Deps }

func (h SupAgreement) Name() string { return "SupAgreement" }

func (h SupAgreement) Fields() []core.FieldSpec { return supAgreementFields }

func (h SupAgreement) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, supAgreementFields, func(r *rowScope, f core.Fields) core.Outcome {
		number, date := r.registration(f)
		leadingDate := r.date("Leading document date", f.Get("LeadingRegDate"))
		leading := r.leading(f.Get("LeadingRegNumber"), leadingDate, "leading contract", domain.DocContract)
		counterparty := r.counterparty("Counterparty", f.Get("Counterparty"), rejectIfMissing)
		kind := r.directory(domain.KindDocumentKind, f.Get("DocumentKind"), rejectIfMissing)
		dept, bu := r.placement(f.Get("Department"), f.Get("BusinessUnit"))
		validFrom := r.date("Valid from", f.Get("ValidFrom"))
		validTill := r.date("Valid till", f.Get("ValidTill"))
		amount := r.amount(f.Get("TotalAmount"))
		currency := r.directory(domain.KindCurrency, f.Get("Currency"), warnIfMissing)
		state := r.lifeCycle(f.Get("LifeCycleState"))
		responsible := r.employee("Responsible employee", f.Get("ResponsibleEmployee"), warnIfMissing)
		signatory := r.employee("Signatory", f.Get("OurSignatory"), warnIfMissing)
		if !r.ok() {
			return core.OutcomeRejected
		}

		existing, ok := r.documentTarget(opts, store.DocumentFilter{
			Types:              []domain.DocumentType{domain.DocSupAgreement},
			RegistrationNumber: &number,
			LeadingDocumentID:  leading,
			DocumentKindID:     kind,
		}, date, "leading document, registration number, date and document kind")
		if !ok {
			return core.OutcomeRejected
		}

		doc := newDocument(existing, domain.DocSupAgreement)
		doc.LeadingDocumentID = leading
		doc.RegistrationNumber = number
		doc.RegistrationDate = date
		doc.CounterpartyID = counterparty
		doc.DocumentKindID = kind
		doc.Subject = f.Get("Subject")
		doc.BusinessUnitID = bu
		doc.DepartmentID = dept
		doc.ValidFrom = validFrom
		doc.ValidTill = validTill
		doc.TotalAmount = amount
		doc.CurrencyID = currency
		doc.LifeCycleState = state
		doc.ResponsibleID = responsible
		doc.OurSignatoryID = signatory
		doc.Note = f.Get("Note")
		return r.saveDocument(doc, f.Get("FilePath"), opts, existing)
	})
}

var incomingLetterFields = []core.FieldSpec{
	{Name: "RegNumber"},
	{Name: "RegDate", Type: core.FieldDate},
	{Name: "Correspondent", Type: core.FieldReference, Required: true},
	{Name: "DocumentKind", Type: core.FieldReference, Required: true},
	{Name: "Subject"},
	{Name: "Department", Type: core.FieldReference, Required: true},
	{Name: "Addressee", Type: core.FieldReference},
	{Name: "Dated", Type: core.FieldDate},
	{Name: "InNumber"},
	{Name: "FilePath", Type: core.FieldFile},
	{Name: "Note"},
}

// IncomingLetter imports incoming correspondence.
type IncomingLetter struct{ *Deps }

func (h IncomingLetter) Name() string { return "IncomingLetter" }

func (h IncomingLetter) Fields() []core.FieldSpec { return incomingLetterFields }

func (h IncomingLetter) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, incomingLetterFields, func(r *rowScope, f core.Fields) core.Outcome {
		number, date := r.registration(f)
		correspondent := r.counterparty("Correspondent", f.Get("Correspondent"), rejectIfMissing)
		kind := r.directory(domain.KindDocumentKind, f.Get("DocumentKind"), rejectIfMissing)
		dept, bu := r.placement(f.Get("Department"), "")
		addressee := r.employee("Addressee", f.Get("Addressee"), warnIfMissing)
		dated := r.date("Dated", f.Get("Dated"))
		if !r.ok() {
			return core.OutcomeRejected
		}

		// Letters without a registration date are never duplicates.
		var existing *domain.Document
		if !date.IsZero() {
			var ok bool
			existing, ok = r.documentTarget(opts, store.DocumentFilter{
				Types:              []domain.DocumentType{domain.DocIncomingLetter},
				RegistrationNumber: &number,
				CounterpartyID:     correspondent,
			}, date, "registration number, date and correspondent")
			if !ok {
				return core.OutcomeRejected
			}
		}

		doc := newDocument(existing, domain.DocIncomingLetter)
		doc.RegistrationNumber = number
		doc.RegistrationDate = date
		doc.CounterpartyID = correspondent
		doc.DocumentKindID = kind
		doc.Subject = f.Get("Subject")
		doc.DepartmentID = dept
		doc.BusinessUnitID = bu
		doc.AddresseeID = addressee
		doc.Dated = dated
		doc.InNumber = f.Get("InNumber")
		doc.Note = f.Get("Note")
		return r.saveDocument(doc, f.Get("FilePath"), opts, existing)
	})
}

var outgoingLetterFields = []core.FieldSpec{
	{Name: "RegNumber"},
	{Name: "RegDate", Type: core.FieldDate},
	{Name: "Correspondent", Type: core.FieldReference, Required: true},
	{Name: "DocumentKind", Type: core.FieldReference, Required: true},
	{Name: "Subject"},
	{Name: "Department", Type: core.FieldReference, Required: true},
	{Name: "PreparedBy", Type: core.FieldReference},
	{Name: "FilePath", Type: core.FieldFile},
	{Name: "Note"},
}

// OutgoingLetter imports outgoing correspondence. A row matching a
// registered letter re-registers it: the letter is unregistered and
// stamped with today's date in its own commit, then updated in place.
type OutgoingLetter struct{ *Deps }

func (h OutgoingLetter) Name() string { return "OutgoingLetter" }

func (h OutgoingLetter) Fields() []core.FieldSpec { return outgoingLetterFields }

func (h OutgoingLetter) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, outgoingLetterFields, func(r *rowScope, f core.Fields) core.Outcome {
		number, date := r.registration(f)
		correspondent := r.counterparty("Correspondent", f.Get("Correspondent"), rejectIfMissing)
		kind := r.directory(domain.KindDocumentKind, f.Get("DocumentKind"), rejectIfMissing)
		dept, bu := r.placement(f.Get("Department"), "")
		preparedBy := r.employee("Prepared by", f.Get("PreparedBy"), warnIfMissing)
		if !r.ok() {
			return core.OutcomeRejected
		}

		var existing *domain.Document
		if opts.DetectDuplicates() && !date.IsZero() {
			found, err := h.Resolver.DocumentsByRegistration(ctx, r.sess, number, date, domain.DocOutgoingLetter)
			if !r.stored(err) {
				return core.OutcomeRejected
			}
			if len(found) > 0 {
				existing = found[0]
			}
		}

		switch {
		case existing == nil:
		case existing.IsRegistered():
			if !h.unregister(r, existing) {
				return core.OutcomeRejected
			}
		case !opts.SupplementExisting:
			r.rejectf("A duplicate with the same registration number and date already exists")
			return core.OutcomeRejected
		}

		doc := newDocument(existing, domain.DocOutgoingLetter)
		doc.RegistrationNumber = number
		if !date.IsZero() {
			doc.RegistrationDate = date
		}
		doc.CounterpartyID = correspondent
		doc.DocumentKindID = kind
		doc.Subject = f.Get("Subject")
		doc.DepartmentID = dept
		doc.BusinessUnitID = bu
		doc.PreparedByID = preparedBy
		doc.Note = f.Get("Note")
		return r.saveDocument(doc, f.Get("FilePath"), opts, existing)
	})
}

// unregister drops the letter's registration and dates it today, in a
// commit of its own.
func (h OutgoingLetter) unregister(r *rowScope, doc *domain.Document) bool {
	doc.RegistrationNumberRequired = false
	doc.RegistrationState = domain.NotRegistered
	doc.DocumentRegisterID = nil
	doc.RegistrationDate = h.today()
	return r.stored(r.sess.SaveDocument(r.ctx, doc)) && r.commit()
}

var orderFields = []core.FieldSpec{
	{Name: "RegNumber"},
	{Name: "RegDate", Type: core.FieldDate},
	{Name: "DocumentKind", Type: core.FieldReference, Required: true},
	{Name: "Subject", Required: true},
	{Name: "BusinessUnit", Type: core.FieldReference},
	{Name: "Department", Type: core.FieldReference, Required: true},
	{Name: "Assignee", Type: core.FieldReference},
	{Name: "PreparedBy", Type: core.FieldReference},
	{Name: "LifeCycleState"},
	{Name: "FilePath", Type: core.FieldFile},
	{Name: "Note"},
}

// Order imports orders.
type Order struct{ *Deps }

func (h Order) Name() string { return "Order" }

func (h Order) Fields() []core.FieldSpec { return orderFields }

func (h Order) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, orderFields, func(r *rowScope, f core.Fields) core.Outcome {
		number, date := r.registration(f)
		kind := r.directory(domain.KindDocumentKind, f.Get("DocumentKind"), rejectIfMissing)
		dept, bu := r.placement(f.Get("Department"), f.Get("BusinessUnit"))
		assignee := r.employee("Assignee", f.Get("Assignee"), warnIfMissing)
		preparedBy := r.employee("Prepared by", f.Get("PreparedBy"), warnIfMissing)
		state := r.lifeCycle(f.Get("LifeCycleState"))
		if !r.ok() {
			return core.OutcomeRejected
		}

		existing, ok := r.documentTarget(opts, store.DocumentFilter{
			Types:              []domain.DocumentType{domain.DocOrder},
			RegistrationNumber: &number,
			DocumentKindID:     kind,
		}, date, "registration number, date and document kind")
		if !ok {
			return core.OutcomeRejected
		}

		doc := newDocument(existing, domain.DocOrder)
		doc.RegistrationNumber = number
		doc.RegistrationDate = date
		doc.DocumentKindID = kind
		doc.Subject = f.Get("Subject")
		doc.BusinessUnitID = bu
		doc.DepartmentID = dept
		doc.AssigneeID = assignee
		doc.PreparedByID = preparedBy
		doc.LifeCycleState = state
		doc.Note = f.Get("Note")
		return r.saveDocument(doc, f.Get("FilePath"), opts, existing)
	})
}
