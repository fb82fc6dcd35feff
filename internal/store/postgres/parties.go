package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
)

const directoryColumns = "id, kind, name, code"

func scanDirectory(row pgx.Row) (*domain.DirectoryRecord, error) {
	var (
		rec  domain.DirectoryRecord
		kind string
		code pgtype.Text
	)
	if err := row.Scan(&rec.ID, &kind, &rec.Name, &code); err != nil {
		return nil, err
	}
	rec.Kind = domain.DirectoryKind(kind)
	rec.Code = FromPgText(code)
	return &rec, nil
}

func (s *session) FindDirectory(ctx context.Context, kind domain.DirectoryKind, name string) ([]*domain.DirectoryRecord, error) {
	if name == "" {
		return nil, nil
	}
	key := store.NormalizeName(name)
	sql := "SELECT " + directoryColumns + " FROM directories WHERE kind = $1 AND (" +
		normalized("name") + " = $2 OR " + normalized("coalesce(code, '')") + " = $2) ORDER BY seq"
	return query(ctx, s, sql, []any{string(kind), key}, scanDirectory)
}

func (s *session) ListDirectory(ctx context.Context, kind domain.DirectoryKind) ([]*domain.DirectoryRecord, error) {
	sql := "SELECT " + directoryColumns + " FROM directories WHERE kind = $1 ORDER BY seq"
	return query(ctx, s, sql, []any{string(kind)}, scanDirectory)
}

func (s *session) SaveDirectory(ctx context.Context, rec *domain.DirectoryRecord) error {
	if err := store.CheckDirectory(rec); err != nil {
		return err
	}
	store.AssignID(&rec.ID)
	return s.write(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsertSQL("directories", []string{"id", "kind", "name", "code"}),
			rec.ID, string(rec.Kind), rec.Name, ToPgText(rec.Code))
		return err
	})
}

// requisitesColumns are shared by companies and business_units.
var requisitesColumns = []string{
	"name", "legal_name", "nonresident", "tin", "trrc", "psrn", "nceo", "ncea",
	"city_id", "region_id", "legal_address", "postal_address", "phones",
	"email", "homepage", "note", "account", "bank_id",
}

func requisitesArgs(r domain.Requisites) []any {
	return []any{
		r.Name, ToPgText(r.LegalName), r.Nonresident, ToPgText(r.TIN), ToPgText(r.TRRC),
		ToPgText(r.PSRN), ToPgText(r.NCEO), ToPgText(r.NCEA),
		ToPgUUID(r.CityID), ToPgUUID(r.RegionID), ToPgText(r.LegalAddress), ToPgText(r.PostalAddress),
		ToPgText(r.Phones), ToPgText(r.Email), ToPgText(r.Homepage), ToPgText(r.Note),
		ToPgText(r.Account), ToPgUUID(r.BankID),
	}
}

// requisitesScan receives the nullable requisites columns.
type requisitesScan struct {
	legalName, tin, trrc, psrn, nceo, ncea     pgtype.Text
	legalAddress, postalAddress, phones, email pgtype.Text
	homepage, note, account                    pgtype.Text
	cityID, regionID, bankID                   pgtype.UUID
}

func (rs *requisitesScan) dest(r *domain.Requisites) []any {
	return []any{
		&r.Name, &rs.legalName, &r.Nonresident, &rs.tin, &rs.trrc, &rs.psrn, &rs.nceo, &rs.ncea,
		&rs.cityID, &rs.regionID, &rs.legalAddress, &rs.postalAddress, &rs.phones,
		&rs.email, &rs.homepage, &rs.note, &rs.account, &rs.bankID,
	}
}

func (rs *requisitesScan) apply(r *domain.Requisites) {
	r.LegalName = FromPgText(rs.legalName)
	r.TIN = FromPgText(rs.tin)
	r.TRRC = FromPgText(rs.trrc)
	r.PSRN = FromPgText(rs.psrn)
	r.NCEO = FromPgText(rs.nceo)
	r.NCEA = FromPgText(rs.ncea)
	r.CityID = FromPgUUID(rs.cityID)
	r.RegionID = FromPgUUID(rs.regionID)
	r.LegalAddress = FromPgText(rs.legalAddress)
	r.PostalAddress = FromPgText(rs.postalAddress)
	r.Phones = FromPgText(rs.phones)
	r.Email = FromPgText(rs.email)
	r.Homepage = FromPgText(rs.homepage)
	r.Note = FromPgText(rs.note)
	r.Account = FromPgText(rs.account)
	r.BankID = FromPgUUID(rs.bankID)
}

// requisitesWhere builds the OR conditions of a RequisitesFilter.
func requisitesWhere(f store.RequisitesFilter) *where {
	w := &where{}
	if f.Name != "" {
		w.add(normalized("name")+" = ?", store.NormalizeName(f.Name))
	}
	if f.TIN != "" && f.TRRC != "" {
		w.add("tin = ? AND trrc = ?", f.TIN, f.TRRC)
	}
	if f.PSRN != "" {
		w.add("psrn = ?", f.PSRN)
	}
	return w
}

func companyColumns() []string {
	return append([]string{"id", "head_company_id", "code"}, requisitesColumns...)
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var (
		c    domain.Company
		head pgtype.UUID
		code pgtype.Text
		rs   requisitesScan
	)
	dest := append([]any{&c.ID, &head, &code}, rs.dest(&c.Requisites)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.HeadCompanyID = FromPgUUID(head)
	c.Code = FromPgText(code)
	rs.apply(&c.Requisites)
	return &c, nil
}

func (s *session) FindCompanies(ctx context.Context, f store.RequisitesFilter) ([]*domain.Company, error) {
	w := requisitesWhere(f)
	if w.empty() {
		return nil, nil
	}
	sql := "SELECT " + joinColumns(companyColumns()) + " FROM companies" + w.sql("OR") + " ORDER BY seq"
	return query(ctx, s, sql, w.args, scanCompany)
}

func (s *session) GetCompany(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	sql := "SELECT " + joinColumns(companyColumns()) + " FROM companies WHERE id = $1"
	return get(ctx, s, sql, []any{id}, scanCompany)
}

func (s *session) SaveCompany(ctx context.Context, c *domain.Company) error {
	if err := store.CheckCompany(c); err != nil {
		return err
	}
	store.AssignID(&c.ID)
	args := append([]any{c.ID, ToPgUUID(c.HeadCompanyID), ToPgText(c.Code)}, requisitesArgs(c.Requisites)...)
	return s.write(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsertSQL("companies", companyColumns()), args...)
		return err
	})
}

var personColumns = []string{
	"id", "last_name", "first_name", "middle_name", "sex", "date_of_birth", "tin", "snils",
	"city_id", "region_id", "legal_address", "postal_address", "phones", "email",
	"homepage", "note", "account", "bank_id",
}

func scanPerson(row pgx.Row) (*domain.Person, error) {
	var (
		p                                          domain.Person
		middle, sex, tin, snils                    pgtype.Text
		legalAddress, postalAddress, phones, email pgtype.Text
		homepage, note, account                    pgtype.Text
		dob                                        pgtype.Date
		cityID, regionID, bankID                   pgtype.UUID
	)
	err := row.Scan(&p.ID, &p.LastName, &p.FirstName, &middle, &sex, &dob, &tin, &snils,
		&cityID, &regionID, &legalAddress, &postalAddress, &phones, &email,
		&homepage, &note, &account, &bankID)
	if err != nil {
		return nil, err
	}
	p.MiddleName = FromPgText(middle)
	p.Sex = domain.Sex(FromPgText(sex))
	p.DateOfBirth = FromPgDate(dob)
	p.TIN = FromPgText(tin)
	p.SNILS = FromPgText(snils)
	p.CityID = FromPgUUID(cityID)
	p.RegionID = FromPgUUID(regionID)
	p.LegalAddress = FromPgText(legalAddress)
	p.PostalAddress = FromPgText(postalAddress)
	p.Phones = FromPgText(phones)
	p.Email = FromPgText(email)
	p.Homepage = FromPgText(homepage)
	p.Note = FromPgText(note)
	p.Account = FromPgText(account)
	p.BankID = FromPgUUID(bankID)
	return &p, nil
}

func (s *session) FindPersons(ctx context.Context, f store.PersonFilter) ([]*domain.Person, error) {
	var (
		names    []string
		nameArgs []any
	)
	addName := func(expr, value string) {
		names = append(names, normalized(expr)+" = ?")
		nameArgs = append(nameArgs, store.NormalizeName(value))
	}
	if f.Name != "" {
		addName("concat_ws(' ', nullif(last_name, ''), nullif(first_name, ''), nullif(middle_name, ''))", f.Name)
	}
	if f.LastName != "" {
		addName("last_name", f.LastName)
	}
	if f.FirstName != "" {
		addName("first_name", f.FirstName)
	}
	if f.MiddleName != "" {
		addName("coalesce(middle_name, '')", f.MiddleName)
	}

	w := &where{}
	if f.TIN != "" {
		w.add("tin = ?", f.TIN)
	}
	if len(names) > 0 {
		w.add(strings.Join(names, " AND "), nameArgs...)
	}
	if w.empty() {
		return nil, nil
	}
	sql := "SELECT " + joinColumns(personColumns) + " FROM persons" + w.sql("OR") + " ORDER BY seq"
	return query(ctx, s, sql, w.args, scanPerson)
}

func (s *session) SavePerson(ctx context.Context, p *domain.Person) error {
	if err := store.CheckPerson(p); err != nil {
		return err
	}
	store.AssignID(&p.ID)
	args := []any{
		p.ID, p.LastName, p.FirstName, ToPgText(p.MiddleName), ToPgText(string(p.Sex)), ToPgDate(p.DateOfBirth),
		ToPgText(p.TIN), ToPgText(p.SNILS), ToPgUUID(p.CityID), ToPgUUID(p.RegionID),
		ToPgText(p.LegalAddress), ToPgText(p.PostalAddress), ToPgText(p.Phones), ToPgText(p.Email),
		ToPgText(p.Homepage), ToPgText(p.Note), ToPgText(p.Account), ToPgUUID(p.BankID),
	}
	return s.write(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsertSQL("persons", personColumns), args...)
		return err
	})
}
