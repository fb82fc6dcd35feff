package handlers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/importdata/internal/body"
	"github.com/JonMunkholm/importdata/internal/core"
	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/resolver"
	"github.com/JonMunkholm/importdata/internal/store"
	"github.com/JonMunkholm/importdata/internal/store/memory"
)

var (
	now      = time.Date(2024, 5, 20, 15, 4, 5, 0, time.UTC)
	today    = time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	serial45 = time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC) // serial 45000
)

type fixture struct {
	t    *testing.T
	ctx  context.Context
	st   *memory.Store
	fs   afero.Fs
	deps *Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	fs := afero.NewMemMapFs()
	return &fixture{
		t:   t,
		ctx: context.Background(),
		st:  st,
		fs:  fs,
		deps: &Deps{
			Store:    st,
			Resolver: resolver.New(),
			Bodies:   body.NewLoader(fs, "/bodies", 0),
			Now:      func() time.Time { return now },
		},
	}
}

// session opens a session closed at the end of the test.
func (fx *fixture) session() store.Session {
	fx.t.Helper()
	s, err := fx.st.Begin(fx.ctx)
	require.NoError(fx.t, err)
	fx.t.Cleanup(func() { _ = s.Close(fx.ctx) })
	return s
}

// seed runs fn in a session and commits it.
func (fx *fixture) seed(fn func(s store.Session) error) {
	fx.t.Helper()
	s := fx.session()
	require.NoError(fx.t, fn(s))
	require.NoError(fx.t, s.Commit(fx.ctx))
}

func (fx *fixture) directory(kind domain.DirectoryKind, name string) uuid.UUID {
	rec := &domain.DirectoryRecord{Kind: kind, Name: name}
	fx.seed(func(s store.Session) error { return s.SaveDirectory(fx.ctx, rec) })
	return rec.ID
}

func (fx *fixture) company(name string) uuid.UUID {
	c := &domain.Company{Requisites: domain.Requisites{Name: name}}
	fx.seed(func(s store.Session) error { return s.SaveCompany(fx.ctx, c) })
	return c.ID
}

func (fx *fixture) businessUnit(name string) uuid.UUID {
	bu := &domain.BusinessUnit{Requisites: domain.Requisites{Name: name}}
	fx.seed(func(s store.Session) error { return s.SaveBusinessUnit(fx.ctx, bu) })
	return bu.ID
}

func (fx *fixture) department(name string, businessUnitID *uuid.UUID) uuid.UUID {
	d := &domain.Department{Name: name, BusinessUnitID: businessUnitID}
	fx.seed(func(s store.Session) error { return s.SaveDepartment(fx.ctx, d) })
	return d.ID
}

func (fx *fixture) document(d *domain.Document) uuid.UUID {
	fx.seed(func(s store.Session) error { return s.SaveDocument(fx.ctx, d) })
	return d.ID
}

// org seeds what document rows refer to.
type org struct {
	businessUnit uuid.UUID
	department   uuid.UUID
	counterparty uuid.UUID
	contractKind uuid.UUID
	letterKind   uuid.UUID
}

func (fx *fixture) org() org {
	var o org
	o.businessUnit = fx.businessUnit("Ромашка")
	o.department = fx.department("Бухгалтерия", &o.businessUnit)
	o.counterparty = fx.company("Acme")
	o.contractKind = fx.directory(domain.KindDocumentKind, "Договор")
	o.letterKind = fx.directory(domain.KindDocumentKind, "Письмо")
	return o
}

func (fx *fixture) documents(t domain.DocumentType) []*domain.Document {
	fx.t.Helper()
	docs, err := fx.session().FindDocuments(fx.ctx, store.DocumentFilter{Types: []domain.DocumentType{t}})
	require.NoError(fx.t, err)
	return docs
}

func (fx *fixture) companies(name string) []*domain.Company {
	fx.t.Helper()
	found, err := fx.session().FindCompanies(fx.ctx, store.RequisitesFilter{Name: name})
	require.NoError(fx.t, err)
	return found
}

// rowOf lays values out in the handler's column order.
func rowOf(specs []core.FieldSpec, values map[string]string) core.Row {
	row := make(core.Row, len(specs))
	known := make(map[string]bool, len(specs))
	for i, s := range specs {
		row[i] = values[s.Name]
		known[s.Name] = true
	}
	for k := range values {
		if !known[k] {
			panic(fmt.Sprintf("no field %q", k))
		}
	}
	return row
}

func (fx *fixture) importRow(h core.Handler, values map[string]string, opts core.ImportOptions) core.Result {
	return h.Import(fx.ctx, rowOf(h.Fields(), values), 0, opts)
}

var (
	rejectOpts     = core.ImportOptions{Duplicates: core.DuplicatesReject}
	supplementOpts = core.ImportOptions{Duplicates: core.DuplicatesReject, SupplementExisting: true}
	ignoreOpts     = core.ImportOptions{Duplicates: core.DuplicatesIgnore}
)

func withRegister(opts core.ImportOptions, id string) core.ImportOptions {
	opts.Extra = map[string]string{core.ExtraDocRegisterID: id}
	return opts
}

// recordingStore remembers every document saved through its sessions.
type recordingStore struct {
	*memory.Store
	saved []domain.Document
}

type recordingSession struct {
	store.Session
	parent *recordingStore
}

func (r *recordingStore) Begin(ctx context.Context) (store.Session, error) {
	s, err := r.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &recordingSession{Session: s, parent: r}, nil
}

func (s *recordingSession) SaveDocument(ctx context.Context, d *domain.Document) error {
	if err := s.Session.SaveDocument(ctx, d); err != nil {
		return err
	}
	s.parent.saved = append(s.parent.saved, *d)
	return nil
}

// failingStore fails GetDocument in every session after the first.
type failingStore struct {
	*memory.Store
	begun int
	err   error
}

type failingSession struct {
	store.Session
	err error
}

func (f *failingStore) Begin(ctx context.Context) (store.Session, error) {
	s, err := f.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	f.begun++
	if f.begun == 1 {
		return s, nil
	}
	return &failingSession{Session: s, err: f.err}, nil
}

func (s *failingSession) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	return nil, s.err
}
