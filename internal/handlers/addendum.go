package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/JonMunkholm/importdata/internal/core"
	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
)

var addendumFields = []core.FieldSpec{
	{Name: "LeadingRegNumber", Required: true},
	{Name: "LeadingRegDate", Type: core.FieldDate, Required: true},
	{Name: "DocumentKind", Type: core.FieldReference, Required: true},
	{Name: "Subject"},
	{Name: "FilePath", Type: core.FieldFile},
	{Name: "LifeCycleState"},
	{Name: "Note"},
}

// Addendum imports addenda to any registered document.
//
// The store links an addendum to its leading document only when the bare
// record is committed before anything else is set on it. Import therefore
// works in two phases: the first session creates and commits a shell
// holding the type, leading document and kind; a second session loads the
// shell and fills in the rest. A failure in the second phase leaves the
// shell in place and is reported as a Warning, except for the body, whose
// failure is an Error.
type Addendum struct{ *Deps }

func (h Addendum) Name() string { return "Addendum" }

func (h Addendum) Fields() []core.FieldSpec { return addendumFields }

func (h Addendum) Import(ctx context.Context, row core.Row, shift int, opts core.ImportOptions) core.Result {
	return h.run(ctx, h.Name(), row, shift, addendumFields, func(r *rowScope, f core.Fields) core.Outcome {
		number := f.Get("LeadingRegNumber")
		subject := f.Get("Subject")
		date := r.date("Leading document date", f.Get("LeadingRegDate"))
		r.describe("Leading document: \"%s\" of %s, subject: \"%s\"", number, formatDate(date), subject)

		kind := r.directory(domain.KindDocumentKind, f.Get("DocumentKind"), rejectIfMissing)
		state := r.lifeCycle(f.Get("LifeCycleState"))
		leading := r.leading(number, date, "leading document")
		if !r.ok() {
			return core.OutcomeRejected
		}

		var existing *domain.Document
		if opts.DetectDuplicates() {
			found, err := r.sess.FindDocuments(ctx, store.DocumentFilter{
				Types:             []domain.DocumentType{domain.DocAddendum},
				LeadingDocumentID: leading,
				DocumentKindID:    kind,
				Subject:           &subject,
			})
			if !r.stored(err) {
				return core.OutcomeRejected
			}
			var ok bool
			if existing, ok = target(r, opts, found, "document kind, leading document and subject"); !ok {
				return core.OutcomeRejected
			}
		}

		shell := existing
		if shell == nil {
			shell = &domain.Document{Type: domain.DocAddendum, LeadingDocumentID: leading, DocumentKindID: kind}
			if !r.stored(r.sess.SaveDocument(ctx, shell)) || !r.commit() {
				return core.OutcomeRejected
			}
		}

		h.populate(r, shell.ID, f, state, opts)
		return outcome(existing)
	})
}

// populate is the second phase: it fills the committed shell in a new
// session.
func (h Addendum) populate(r *rowScope, id uuid.UUID, f core.Fields, state domain.LifeCycleState, opts core.ImportOptions) {
	err := r.reopen()
	var doc *domain.Document
	if err == nil {
		doc, err = r.sess.GetDocument(r.ctx, id)
	}
	if err == nil {
		doc.Subject = f.Get("Subject")
		doc.LifeCycleState = state
		doc.Note = f.Get("Note")
		err = r.sess.SaveDocument(r.ctx, doc)
	}
	if err == nil {
		err = r.sess.Commit(r.ctx)
	}
	if err != nil {
		r.warnf("Addendum was created but its fields were not saved: %s", core.FormatError(err))
		return
	}

	r.attachBody(doc.ID, f.Get("FilePath"), core.SeverityError)
	r.register(doc, opts)
}
