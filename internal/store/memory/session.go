package memory

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/store"
)

type session struct {
	store  *Store
	staged memoryState
	closed bool
}

var _ store.Session = (*session)(nil)

func (s *session) check(ctx context.Context) error {
	if s.closed {
		return store.ErrSessionClosed
	}
	return ctx.Err()
}

func (s *session) FindDirectory(ctx context.Context, kind domain.DirectoryKind, name string) ([]*domain.DirectoryRecord, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return pointers(scan(s.store.committed.directories, s.staged.directories, func(r domain.DirectoryRecord) bool {
		if r.Kind != kind || name == "" {
			return false
		}
		return store.SameName(r.Name, name) || (r.Code != "" && store.SameName(r.Code, name))
	})), nil
}

func (s *session) ListDirectory(ctx context.Context, kind domain.DirectoryKind) ([]*domain.DirectoryRecord, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return pointers(scan(s.store.committed.directories, s.staged.directories, func(r domain.DirectoryRecord) bool {
		return r.Kind == kind
	})), nil
}

func (s *session) SaveDirectory(ctx context.Context, rec *domain.DirectoryRecord) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := store.CheckDirectory(rec); err != nil {
		return err
	}
	store.AssignID(&rec.ID)
	s.staged.directories.put(rec.ID, *rec)
	return nil
}

func (s *session) FindCompanies(ctx context.Context, f store.RequisitesFilter) ([]*domain.Company, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return pointers(scan(s.store.committed.companies, s.staged.companies, func(c domain.Company) bool {
		return f.Match(c.Requisites)
	})), nil
}

func (s *session) GetCompany(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	c, ok := lookup(s.store.committed.companies, s.staged.companies, id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *session) SaveCompany(ctx context.Context, c *domain.Company) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := store.CheckCompany(c); err != nil {
		return err
	}
	store.AssignID(&c.ID)
	s.staged.companies.put(c.ID, *c)
	return nil
}

func (s *session) FindPersons(ctx context.Context, f store.PersonFilter) ([]*domain.Person, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return pointers(scan(s.store.committed.persons, s.staged.persons, f.Match)), nil
}

func (s *session) SavePerson(ctx context.Context, p *domain.Person) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := store.CheckPerson(p); err != nil {
		return err
	}
	store.AssignID(&p.ID)
	s.staged.persons.put(p.ID, *p)
	return nil
}

func (s *session) FindBusinessUnits(ctx context.Context, f store.RequisitesFilter) ([]*domain.BusinessUnit, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return pointers(scan(s.store.committed.businessUnits, s.staged.businessUnits, func(bu domain.BusinessUnit) bool {
		return f.Match(bu.Requisites)
	})), nil
}

func (s *session) SaveBusinessUnit(ctx context.Context, bu *domain.BusinessUnit) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := store.CheckBusinessUnit(bu); err != nil {
		return err
	}
	store.AssignID(&bu.ID)
	s.staged.businessUnits.put(bu.ID, *bu)
	return nil
}

func (s *session) FindDepartments(ctx context.Context, f store.DepartmentFilter) ([]*domain.Department, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return pointers(scan(s.store.committed.departments, s.staged.departments, f.Match)), nil
}

func (s *session) GetDepartment(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	d, ok := lookup(s.store.committed.departments, s.staged.departments, id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *session) SaveDepartment(ctx context.Context, d *domain.Department) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := store.CheckDepartment(d); err != nil {
		return err
	}
	store.AssignID(&d.ID)
	s.staged.departments.put(d.ID, *d)
	return nil
}

func (s *session) FindEmployees(ctx context.Context, f store.EmployeeFilter) ([]*domain.Employee, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return pointers(scan(s.store.committed.employees, s.staged.employees, f.Match)), nil
}

func (s *session) SaveEmployee(ctx context.Context, e *domain.Employee) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := store.CheckEmployee(e); err != nil {
		return err
	}
	store.AssignID(&e.ID)
	s.staged.employees.put(e.ID, *e)
	return nil
}

func (s *session) FindDocuments(ctx context.Context, f store.DocumentFilter) ([]*domain.Document, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	return pointers(scan(s.store.committed.documents, s.staged.documents, f.Match)), nil
}

func (s *session) GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	d, ok := lookup(s.store.committed.documents, s.staged.documents, id)
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (s *session) SaveDocument(ctx context.Context, d *domain.Document) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := store.PrepareDocument(d); err != nil {
		return err
	}
	store.AssignID(&d.ID)
	s.staged.documents.put(d.ID, *d)
	return nil
}

func (s *session) SaveBody(ctx context.Context, b *domain.Body) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.store.mu.RLock()
	_, ok := lookup(s.store.committed.documents, s.staged.documents, b.DocumentID)
	versions, _ := lookup(s.store.committed.bodies, s.staged.bodies, b.DocumentID)
	s.store.mu.RUnlock()
	if !ok {
		return errors.Wrapf(store.ErrNotFound, "document %s", b.DocumentID)
	}

	b.Version = len(versions) + 1
	next := make([]domain.Body, 0, len(versions)+1)
	next = append(next, versions...)
	next = append(next, *b)
	s.staged.bodies.put(b.DocumentID, next)
	return nil
}

func (s *session) GetDocumentRegister(ctx context.Context, id int64) (*domain.DocumentRegister, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	r, ok := s.store.registers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *session) Commit(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.staged.mergeInto(s.store.committed)
	s.staged.reset()
	s.store.commits++
	return nil
}

func (s *session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.staged.reset()
	s.closed = true
	return nil
}
