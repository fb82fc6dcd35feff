// Package resolver finds the records a row refers to by name.
//
// A lookup that finds nothing returns a nil record and a nil error; the
// caller decides whether that is a Warning, an Error or a reason to create
// the record. Errors are store failures only.
//
// Every lookup goes through the caller's store session so that records
// created earlier in the same session are visible. Directory lookups are
// additionally cached across sessions; only records that already existed
// when they were found are cached, never records this process created.
package resolver

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/JonMunkholm/importdata/internal/domain"
	"github.com/JonMunkholm/importdata/internal/logging"
	"github.com/JonMunkholm/importdata/internal/store"
)

// Resolver looks up referenced records.
type Resolver struct {
	cache         Cache
	fuzzy         bool
	maxDistance   int
	createdMu     sync.Mutex
	createdByThis map[uuid.UUID]struct{}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache enables the directory cache.
func WithCache(c Cache) Option {
	return func(r *Resolver) { r.cache = c }
}

// WithFuzzy enables fuzzy directory matching when no exact name matches.
// A candidate is accepted only if it is the unique best match and its
// edit distance is at most maxDistance.
func WithFuzzy(maxDistance int) Option {
	return func(r *Resolver) {
		r.fuzzy = true
		r.maxDistance = maxDistance
	}
}

// New returns a resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{createdByThis: make(map[uuid.UUID]struct{})}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Resolver) markCreated(id uuid.UUID) {
	r.createdMu.Lock()
	defer r.createdMu.Unlock()
	r.createdByThis[id] = struct{}{}
}

func (r *Resolver) wasCreated(id uuid.UUID) bool {
	r.createdMu.Lock()
	defer r.createdMu.Unlock()
	_, ok := r.createdByThis[id]
	return ok
}

// Directory finds a directory record by name or code.
func (r *Resolver) Directory(ctx context.Context, s store.Session, kind domain.DirectoryKind, name string) (*domain.DirectoryRecord, error) {
	if name == "" {
		return nil, nil
	}
	if r.cache != nil {
		if id, ok := r.cache.Get(ctx, kind, name); ok {
			return &domain.DirectoryRecord{ID: id, Kind: kind, Name: name}, nil
		}
	}

	found, err := s.FindDirectory(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	var rec *domain.DirectoryRecord
	switch {
	case len(found) > 0:
		rec = found[0]
		if len(found) > 1 {
			logging.WithFields(ctx, logrus.Fields{"kind": kind, "name": name, "matches": len(found)}).
				Debug("several directory records match, using the first")
		}
	case r.fuzzy:
		rec, err = r.fuzzyDirectory(ctx, s, kind, name)
		if err != nil {
			return nil, err
		}
	}
	if rec == nil {
		return nil, nil
	}

	if r.cache != nil && !r.wasCreated(rec.ID) {
		r.cache.Put(ctx, kind, name, rec.ID)
	}
	return rec, nil
}

func (r *Resolver) fuzzyDirectory(ctx context.Context, s store.Session, kind domain.DirectoryKind, name string) (*domain.DirectoryRecord, error) {
	all, err := s.ListDirectory(ctx, kind)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(all))
	for i, rec := range all {
		names[i] = rec.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) == 0 {
		return nil, nil
	}
	sort.Sort(ranks)

	best := ranks[0]
	if best.Distance > r.maxDistance {
		return nil, nil
	}
	if len(ranks) > 1 && ranks[1].Distance == best.Distance {
		logging.WithFields(ctx, logrus.Fields{
			"kind":   kind,
			"input":  name,
			"first":  best.Target,
			"second": ranks[1].Target,
		}).Debug("ambiguous fuzzy directory match")
		return nil, nil
	}

	logging.WithFields(ctx, logrus.Fields{
		"kind":    kind,
		"input":   name,
		"matched": best.Target,
	}).Debug("fuzzy directory match")
	return all[best.OriginalIndex], nil
}

// EnsureDirectory finds a directory record, creating it when missing.
func (r *Resolver) EnsureDirectory(ctx context.Context, s store.Session, kind domain.DirectoryKind, name string) (*domain.DirectoryRecord, bool, error) {
	rec, err := r.Directory(ctx, s, kind, name)
	if err != nil || rec != nil {
		return rec, false, err
	}
	rec = &domain.DirectoryRecord{Kind: kind, Name: name}
	if err := s.SaveDirectory(ctx, rec); err != nil {
		return nil, false, err
	}
	r.markCreated(rec.ID)
	return rec, true, nil
}

// Counterparty finds a company by name, then a person by full name.
func (r *Resolver) Counterparty(ctx context.Context, s store.Session, name string) (*domain.Counterparty, error) {
	if name == "" {
		return nil, nil
	}
	companies, err := s.FindCompanies(ctx, store.RequisitesFilter{Name: name})
	if err != nil {
		return nil, err
	}
	if len(companies) > 0 {
		return &domain.Counterparty{ID: companies[0].ID, Name: companies[0].Name, Kind: domain.CounterpartyCompany}, nil
	}
	persons, err := s.FindPersons(ctx, store.PersonFilter{Name: name})
	if err != nil {
		return nil, err
	}
	if len(persons) > 0 {
		return &domain.Counterparty{ID: persons[0].ID, Name: persons[0].Name(), Kind: domain.CounterpartyPerson}, nil
	}
	return nil, nil
}

// Company finds a company by name.
func (r *Resolver) Company(ctx context.Context, s store.Session, name string) (*domain.Company, error) {
	if name == "" {
		return nil, nil
	}
	found, err := s.FindCompanies(ctx, store.RequisitesFilter{Name: name})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// CreateMinimalCompany creates a company holding only its name and legal name.
func (r *Resolver) CreateMinimalCompany(ctx context.Context, s store.Session, name string) (*domain.Company, error) {
	c := &domain.Company{Requisites: domain.Requisites{Name: name, LegalName: name}}
	if err := s.SaveCompany(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// BusinessUnit finds a business unit by name.
func (r *Resolver) BusinessUnit(ctx context.Context, s store.Session, name string) (*domain.BusinessUnit, error) {
	if name == "" {
		return nil, nil
	}
	found, err := s.FindBusinessUnits(ctx, store.RequisitesFilter{Name: name})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// Department finds a department by name, preferring one in businessUnitID
// when given.
func (r *Resolver) Department(ctx context.Context, s store.Session, name string, businessUnitID *uuid.UUID) (*domain.Department, error) {
	if name == "" {
		return nil, nil
	}
	found, err := s.FindDepartments(ctx, store.DepartmentFilter{Name: name, BusinessUnitID: businessUnitID})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	if businessUnitID != nil {
		for _, d := range found {
			if d.BusinessUnitID != nil && *d.BusinessUnitID == *businessUnitID {
				return d, nil
			}
		}
	}
	return found[0], nil
}

// EnsureDepartment finds a department, creating a shell with only its name
// and business unit when missing.
func (r *Resolver) EnsureDepartment(ctx context.Context, s store.Session, name string, businessUnitID *uuid.UUID) (*domain.Department, bool, error) {
	d, err := r.Department(ctx, s, name, businessUnitID)
	if err != nil || d != nil {
		return d, false, err
	}
	d = &domain.Department{Name: name, BusinessUnitID: businessUnitID}
	if err := s.SaveDepartment(ctx, d); err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// Employee finds an employee by full name.
func (r *Resolver) Employee(ctx context.Context, s store.Session, name string) (*domain.Employee, error) {
	if name == "" {
		return nil, nil
	}
	found, err := s.FindEmployees(ctx, store.EmployeeFilter{Name: name})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// DocumentsByRegistration returns every document of the given types
// registered under number on date. A zero date matches nothing.
func (r *Resolver) DocumentsByRegistration(ctx context.Context, s store.Session, number string, date time.Time, types ...domain.DocumentType) ([]*domain.Document, error) {
	if date.IsZero() {
		return nil, nil
	}
	return s.FindDocuments(ctx, store.DocumentFilter{
		Types:              types,
		RegistrationNumber: &number,
		RegistrationDate:   &date,
	})
}
