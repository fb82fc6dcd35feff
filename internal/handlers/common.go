// Package handlers implements one core.Handler per importable entity and
// the command table that exposes them as actions.
//
// Every handler follows the same row flow: extract the declared fields,
// reject a row with an empty mandatory field before touching the store,
// resolve references, validate, detect duplicates, then save and commit in
// a single session. Documents additionally get a body and a registration
// after the commit; failures there never undo the saved record.
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/JonMunkholm/importdata/internal/body"
	"github.com/JonMunkholm/importdata/internal/core"
	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/logging"
	"github.com/JonMunkholm/importdata/internal/resolver"
	"github.com/JonMunkholm/importdata/internal/store"
	"github.com/JonMunkholm/importdata/internal/validate"
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	Store    store.Store
	Resolver *resolver.Resolver
	Bodies   *body.Loader

	// Now is the clock used for registration dates. Defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) today() time.Time {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	y, m, day := now().Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// dateLayout formats dates in row messages.
const dateLayout = "02.01.2006"

// policy says what a missing reference does to the row.
type policy int

const (
	warnIfMissing policy = iota
	rejectIfMissing
	createIfMissing
)

// rowScope carries one row's session and entries.
//
// The first store failure is kept in err. Once the row has a store failure
// or an Error entry, every further lookup is a no-op returning nil, so a
// handler checks ok() once after a group of steps.
type rowScope struct {
	ctx     context.Context
	deps    *Deps
	sess    store.Session
	entity  string
	about   string
	entries core.ErrorList
	err     error
}

// run extracts specs from row and calls fn with a fresh session. The
// session is closed on every path, discarding anything fn did not commit.
func (d *Deps) run(ctx context.Context, entity string, row core.Row, shift int, specs []core.FieldSpec, fn func(r *rowScope, f core.Fields) core.Outcome) core.Result {
	var res core.Result
	res.Outcome = core.OutcomeRejected

	f, err := row.Extract(shift, specs)
	if err != nil {
		res.Entries.Errorf("%s cannot be imported. %s.", entity, core.FormatError(err))
		return res
	}
	if missing := f.MissingRequired(); missing != nil {
		res.Entries.Errorf("%s cannot be imported. Field \"%s\" is required.", entity, missing.Field)
		return res
	}

	sess, err := d.Store.Begin(ctx)
	if err != nil {
		res.Entries.Errorf("%s cannot be imported. %s.", entity, core.FormatError(err))
		return res
	}
	r := &rowScope{ctx: ctx, deps: d, sess: sess, entity: entity}
	defer r.close()

	outcome := fn(r, f)
	if r.err != nil {
		r.entries.Errorf("%s cannot be imported. %s.%s", entity, core.FormatError(r.err), r.suffix())
		outcome = core.OutcomeRejected
	}
	if outcome != core.OutcomeRejected {
		logging.WithFields(ctx, logrus.Fields{"outcome": outcome, "record": r.about}).Debug("row saved")
	}
	return core.Result{Outcome: outcome, Entries: r.entries}
}

func (r *rowScope) close() {
	if r.sess == nil {
		return
	}
	// Rollback must run even when the run was cancelled.
	if err := r.sess.Close(context.WithoutCancel(r.ctx)); err != nil {
		logging.FromContext(r.ctx).WithError(err).Warn("closing store session")
	}
	r.sess = nil
}

// reopen replaces the session with a new one.
func (r *rowScope) reopen() error {
	r.close()
	sess, err := r.deps.Store.Begin(r.ctx)
	if err != nil {
		return err
	}
	r.sess = sess
	return nil
}

// describe sets the record description appended to every message.
func (r *rowScope) describe(format string, args ...any) {
	r.about = fmt.Sprintf(format, args...)
}

func (r *rowScope) suffix() string {
	if r.about == "" {
		return ""
	}
	return " " + r.about + "."
}

func (r *rowScope) ok() bool {
	return r.err == nil && !r.entries.HasErrors()
}

// rejectf adds the row's Error.
func (r *rowScope) rejectf(format string, args ...any) {
	r.entries.Errorf("%s cannot be imported. %s.%s", r.entity, fmt.Sprintf(format, args...), r.suffix())
}

func (r *rowScope) warnf(format string, args ...any) {
	r.entries.Warnf("%s.%s", fmt.Sprintf(format, args...), r.suffix())
}

// stored records err as the row's store failure and reports whether it
// was nil.
func (r *rowScope) stored(err error) bool {
	if err != nil && r.err == nil {
		r.err = err
	}
	return err == nil
}

func (r *rowScope) commit() bool {
	return r.stored(r.sess.Commit(r.ctx))
}

// validate reports the first failed check.
func (r *rowScope) validate(checks ...error) bool {
	for _, err := range checks {
		if err != nil {
			r.rejectf("%s", err)
			return false
		}
	}
	return true
}

func (r *rowScope) missing(label, value string, p policy) {
	if p == rejectIfMissing {
		r.rejectf("%s \"%s\" not found", label, value)
		return
	}
	r.warnf("%s \"%s\" not found", label, value)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// directory resolves a directory reference.
func (r *rowScope) directory(kind domain.DirectoryKind, value string, p policy) *uuid.UUID {
	if value == "" || !r.ok() {
		return nil
	}
	var (
		rec *domain.DirectoryRecord
		err error
	)
	if p == createIfMissing {
		rec, _, err = r.deps.Resolver.EnsureDirectory(r.ctx, r.sess, kind, value)
	} else {
		rec, err = r.deps.Resolver.Directory(r.ctx, r.sess, kind, value)
	}
	if !r.stored(err) {
		return nil
	}
	if rec == nil {
		r.missing(upperFirst(kind.Label()), value, p)
		return nil
	}
	return &rec.ID
}

func (r *rowScope) counterparty(label, value string, p policy) *uuid.UUID {
	if value == "" || !r.ok() {
		return nil
	}
	c, err := r.deps.Resolver.Counterparty(r.ctx, r.sess, value)
	if !r.stored(err) {
		return nil
	}
	if c == nil {
		r.missing(label, value, p)
		return nil
	}
	return &c.ID
}

func (r *rowScope) businessUnit(label, value string, p policy) *uuid.UUID {
	if value == "" || !r.ok() {
		return nil
	}
	bu, err := r.deps.Resolver.BusinessUnit(r.ctx, r.sess, value)
	if !r.stored(err) {
		return nil
	}
	if bu == nil {
		r.missing(label, value, p)
		return nil
	}
	return &bu.ID
}

func (r *rowScope) department(label, value string, businessUnitID *uuid.UUID, p policy) *domain.Department {
	if value == "" || !r.ok() {
		return nil
	}
	var (
		d   *domain.Department
		err error
	)
	if p == createIfMissing {
		d, _, err = r.deps.Resolver.EnsureDepartment(r.ctx, r.sess, value, businessUnitID)
	} else {
		d, err = r.deps.Resolver.Department(r.ctx, r.sess, value, businessUnitID)
	}
	if !r.stored(err) {
		return nil
	}
	if d == nil {
		r.missing(label, value, p)
	}
	return d
}

func (r *rowScope) employee(label, value string, p policy) *uuid.UUID {
	if value == "" || !r.ok() {
		return nil
	}
	e, err := r.deps.Resolver.Employee(r.ctx, r.sess, value)
	if !r.stored(err) {
		return nil
	}
	if e == nil {
		r.missing(label, value, p)
		return nil
	}
	return &e.ID
}

// date parses an optional serial date field.
func (r *rowScope) date(label, value string) time.Time {
	if !r.ok() {
		return time.Time{}
	}
	t, err := validate.OptionalSerialDate(value)
	if err != nil {
		r.rejectf("%s: %s", label, err)
	}
	return t
}

func (r *rowScope) lifeCycle(value string) domain.LifeCycleState {
	if !r.ok() {
		return domain.LifeCycleNone
	}
	st, err := validate.LifeCycleState(value)
	if err != nil {
		r.rejectf("%s", err)
	}
	return st
}

// target decides what to do with the records matching a row's natural
// key. It returns the record to update, nil to create a new one, or false
// when the row is a rejected duplicate.
func target[T any](r *rowScope, opts core.ImportOptions, found []*T, key string) (*T, bool) {
	if len(found) == 0 {
		return nil, true
	}
	if !opts.SupplementExisting {
		r.rejectf("A duplicate with the same %s already exists", key)
		return nil, false
	}
	return found[0], true
}

func outcome[T any](existing *T) core.Outcome {
	if existing != nil {
		return core.OutcomeUpdated
	}
	return core.OutcomeCreated
}

// attachBody stores the file at path as a new body version of the
// document and commits it. A failure is reported with sev and leaves the
// saved document in place.
func (r *rowScope) attachBody(documentID uuid.UUID, path string, sev core.Severity) {
	if path == "" {
		return
	}
	b, err := r.deps.Bodies.Load(documentID, path)
	if err == nil {
		err = r.sess.SaveBody(r.ctx, b)
	}
	if err == nil {
		err = r.sess.Commit(r.ctx)
	}
	if err == nil {
		return
	}
	r.entries.Add(core.ErrorEntry{
		Severity: sev,
		Message:  fmt.Sprintf("Body \"%s\" was not imported: %s.%s", path, core.FormatError(err), r.suffix()),
	})
}

// register enters doc into the journal named by the run's doc_register_id.
// A malformed id is an Error; a missing journal or a failed save is a
// Warning. Either way the document itself stays committed.
func (r *rowScope) register(doc *domain.Document, opts core.ImportOptions) {
	id, ok, err := opts.RegisterID()
	if !ok {
		return
	}
	if err != nil {
		r.entries.Errorf("%s was saved but not registered. %s.%s", r.entity, core.FormatError(err), r.suffix())
		return
	}

	journal, err := r.sess.GetDocumentRegister(r.ctx, id)
	if err == nil {
		doc.DocumentRegisterID = &journal.ID
		doc.RegistrationState = domain.Registered
		if doc.RegistrationDate.IsZero() {
			doc.RegistrationDate = r.deps.today()
		}
		err = r.sess.SaveDocument(r.ctx, doc)
	}
	if err == nil {
		err = r.sess.Commit(r.ctx)
	}
	if err != nil {
		r.warnf("Document was not registered in journal %d: %s", id, core.FormatError(err))
	}
}

// sameDate compares registration dates; two zero dates are equal.
func sameDate(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() && b.IsZero()
	}
	return store.SameDay(a, b)
}

// byDate keeps the documents registered on date.
func byDate(docs []*domain.Document, date time.Time) []*domain.Document {
	var out []*domain.Document
	for _, d := range docs {
		if sameDate(d.RegistrationDate, date) {
			out = append(out, d)
		}
	}
	return out
}

// datePtr returns nil for the zero date.
func datePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
