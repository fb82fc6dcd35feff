package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
)

var documentColumns = []string{
	"id", "type", "document_kind_id", "subject", "note", "life_cycle_state",
	"registration_number", "registration_date", "registration_state",
	"registration_number_required", "document_register_id",
	"leading_document_id", "counterparty_id", "business_unit_id", "department_id",
	"prepared_by_id", "responsible_id", "our_signatory_id", "assignee_id", "addressee_id",
	"contract_category_id", "currency_id", "total_amount", "valid_from", "valid_till",
	"dated", "in_number",
}

func documentArgs(d *domain.Document) []any {
	return []any{
		d.ID, string(d.Type), ToPgUUID(d.DocumentKindID), ToPgText(d.Subject), ToPgText(d.Note),
		ToPgText(string(d.LifeCycleState)),
		ToPgText(d.RegistrationNumber), ToPgDate(d.RegistrationDate), string(d.RegistrationState),
		d.RegistrationNumberRequired, ToPgInt8(d.DocumentRegisterID),
		ToPgUUID(d.LeadingDocumentID), ToPgUUID(d.CounterpartyID), ToPgUUID(d.BusinessUnitID), ToPgUUID(d.DepartmentID),
		ToPgUUID(d.PreparedByID), ToPgUUID(d.ResponsibleID), ToPgUUID(d.OurSignatoryID), ToPgUUID(d.AssigneeID), ToPgUUID(d.AddresseeID),
		ToPgUUID(d.ContractCategoryID), ToPgUUID(d.CurrencyID), ToPgNumeric(d.TotalAmount), ToPgDate(d.ValidFrom), ToPgDate(d.ValidTill),
		ToPgDate(d.Dated), ToPgText(d.InNumber),
	}
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var (
		d                                  domain.Document
		typ, state                         string
		subject, note, lifeCycle           pgtype.Text
		regNumber, inNumber                pgtype.Text
		regDate, validFrom, validTill      pgtype.Date
		dated                              pgtype.Date
		register                           pgtype.Int8
		kind, leading, counterparty        pgtype.UUID
		businessUnit, department           pgtype.UUID
		preparedBy, responsible, signatory pgtype.UUID
		assignee, addressee                pgtype.UUID
		category, currency                 pgtype.UUID
		amount                             pgtype.Numeric
	)
	err := row.Scan(
		&d.ID, &typ, &kind, &subject, &note, &lifeCycle,
		&regNumber, &regDate, &state,
		&d.RegistrationNumberRequired, &register,
		&leading, &counterparty, &businessUnit, &department,
		&preparedBy, &responsible, &signatory, &assignee, &addressee,
		&category, &currency, &amount, &validFrom, &validTill,
		&dated, &inNumber,
	)
	if err != nil {
		return nil, err
	}
	d.Type = domain.DocumentType(typ)
	d.DocumentKindID = FromPgUUID(kind)
	d.Subject = FromPgText(subject)
	d.Note = FromPgText(note)
	d.LifeCycleState = domain.LifeCycleState(FromPgText(lifeCycle))
	d.RegistrationNumber = FromPgText(regNumber)
	d.RegistrationDate = FromPgDate(regDate)
	d.RegistrationState = domain.RegistrationState(state)
	d.DocumentRegisterID = FromPgInt8(register)
	d.LeadingDocumentID = FromPgUUID(leading)
	d.CounterpartyID = FromPgUUID(counterparty)
	d.BusinessUnitID = FromPgUUID(businessUnit)
	d.DepartmentID = FromPgUUID(department)
	d.PreparedByID = FromPgUUID(preparedBy)
	d.ResponsibleID = FromPgUUID(responsible)
	d.OurSignatoryID = FromPgUUID(signatory)
	d.AssigneeID = FromPgUUID(assignee)
	d.AddresseeID = FromPgUUID(addressee)
	d.ContractCategoryID = FromPgUUID(category)
	d.CurrencyID = FromPgUUID(currency)
	d.TotalAmount = FromPgNumeric(amount)
	d.ValidFrom = FromPgDate(validFrom)
	d.ValidTill = FromPgDate(validTill)
	d.Dated = FromPgDate(dated)
	d.InNumber = FromPgText(inNumber)
	return &d, nil
}

func (s *session) FindDocuments(ctx context.Context, f store.DocumentFilter) ([]*domain.Document, error) {
	w := &where{}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		w.add("type = ANY(?)", types)
	}
	if f.RegistrationNumber != nil {
		w.add("coalesce(registration_number, '') = ?", *f.RegistrationNumber)
	}
	if f.RegistrationDate != nil {
		if f.RegistrationDate.IsZero() {
			return nil, nil
		}
		w.add("registration_date = ?", ToPgDate(*f.RegistrationDate))
	}
	if f.LeadingDocumentID != nil {
		w.add("leading_document_id = ?", *f.LeadingDocumentID)
	}
	if f.DocumentKindID != nil {
		w.add("document_kind_id = ?", *f.DocumentKindID)
	}
	if f.CounterpartyID != nil {
		w.add("counterparty_id = ?", *f.CounterpartyID)
	}
	if f.Subject != nil {
		w.add("coalesce(subject, '') = ?", *f.Subject)
	}
	sql := "SELECT " + joinColumns(documentColumns) + " FROM documents" + w.sql("AND") + " ORDER BY seq"
	return query(ctx, s, sql, w.args, scanDocument)
}

func (s *session) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	sql := "SELECT " + joinColumns(documentColumns) + " FROM documents WHERE id = $1"
	return get(ctx, s, sql, []any{id}, scanDocument)
}

func (s *session) SaveDocument(ctx context.Context, d *domain.Document) error {
	if err := store.PrepareDocument(d); err != nil {
		return err
	}
	store.AssignID(&d.ID)
	args := documentArgs(d)
	return s.write(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, upsertSQL("documents", documentColumns), args...)
		return err
	})
}

const insertBodySQL = `
INSERT INTO document_bodies (document_id, version, extension, mime_type, content)
SELECT $1::uuid, coalesce(max(version), 0) + 1, $2::text, $3::text, $4::bytea
FROM document_bodies WHERE document_id = $1::uuid
RETURNING version`

func (s *session) SaveBody(ctx context.Context, b *domain.Body) error {
	return s.write(ctx, func(tx pgx.Tx) error {
		var version int32
		err := tx.QueryRow(ctx, insertBodySQL, b.DocumentID, ToPgText(b.Extension), ToPgText(b.MimeType), b.Content).Scan(&version)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return errors.Wrapf(store.ErrNotFound, "document %s", b.DocumentID)
		}
		if err != nil {
			return err
		}
		b.Version = int(version)
		return nil
	})
}

func (s *session) GetDocumentRegister(ctx context.Context, id int64) (*domain.DocumentRegister, error) {
	return get(ctx, s, "SELECT id, name, register_index FROM document_registers WHERE id = $1", []any{id},
		func(row pgx.Row) (*domain.DocumentRegister, error) {
			var (
				r     domain.DocumentRegister
				index pgtype.Text
			)
			if err := row.Scan(&r.ID, &r.Name, &index); err != nil {
				return nil, err
			}
			r.Index = FromPgText(index)
			return &r, nil
		})
}
