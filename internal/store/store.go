// Package store defines the transactional record store the importer writes to.
//
// A Session is one transactional unit. Writes made through a session are
// visible to that session immediately and to other sessions only after
// Commit. Commit keeps the session usable; work done after a commit belongs
// to the next transaction. Close discards anything not yet committed and
// must be called on every path, typically via defer.
package store

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/JonMunkholm/importdata/internal/domain"
)

var (
	// ErrNotFound is returned by Get* methods when no record has the ID.
	ErrNotFound = errors.New("record not found")

	// ErrSessionClosed is returned by any call on a closed session.
	ErrSessionClosed = errors.New("session closed")
)

// Store opens sessions.
type Store interface {
	Begin(ctx context.Context) (Session, error)
	Close() error
}

// Session is a transactional unit of work against the store.
type Session interface {
	FindDirectory(ctx context.Context, kind domain.DirectoryKind, name string) ([]*domain.DirectoryRecord, error)
	ListDirectory(ctx context.Context, kind domain.DirectoryKind) ([]*domain.DirectoryRecord, error)
	SaveDirectory(ctx context.Context, rec *domain.DirectoryRecord) error

	FindCompanies(ctx context.Context, f RequisitesFilter) ([]*domain.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*domain.Company, error)
	SaveCompany(ctx context.Context, c *domain.Company) error

	FindPersons(ctx context.Context, f PersonFilter) ([]*domain.Person, error)
	SavePerson(ctx context.Context, p *domain.Person) error

	FindBusinessUnits(ctx context.Context, f RequisitesFilter) ([]*domain.BusinessUnit, error)
	SaveBusinessUnit(ctx context.Context, bu *domain.BusinessUnit) error

	FindDepartments(ctx context.Context, f DepartmentFilter) ([]*domain.Department, error)
	GetDepartment(ctx context.Context, id uuid.UUID) (*domain.Department, error)
	SaveDepartment(ctx context.Context, d *domain.Department) error

	FindEmployees(ctx context.Context, f EmployeeFilter) ([]*domain.Employee, error)
	SaveEmployee(ctx context.Context, e *domain.Employee) error

	FindDocuments(ctx context.Context, f DocumentFilter) ([]*domain.Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	SaveDocument(ctx context.Context, d *domain.Document) error
	SaveBody(ctx context.Context, b *domain.Body) error

	GetDocumentRegister(ctx context.Context, id int64) (*domain.DocumentRegister, error)

	Commit(ctx context.Context) error
	Close(ctx context.Context) error
}

// RequisitesFilter matches companies and business units.
// Criteria combine with OR: name, or TIN together with TRRC (both must be
// set), or PSRN. Empty criteria never match.
type RequisitesFilter struct {
	Name string
	TIN  string
	TRRC string
	PSRN string
}

// PersonFilter matches persons. Name matches the full name; the part
// fields match when set. TIN matches on its own (OR) when set.
type PersonFilter struct {
	Name       string
	LastName   string
	FirstName  string
	MiddleName string
	TIN        string
}

// DepartmentFilter matches departments by name. When BusinessUnitID is set,
// departments without a business unit also match.
type DepartmentFilter struct {
	Name           string
	BusinessUnitID *uuid.UUID
}

// EmployeeFilter matches employees by full name and, optionally, person
// or department.
type EmployeeFilter struct {
	Name         string
	PersonID     *uuid.UUID
	DepartmentID *uuid.UUID
}

// DocumentFilter matches documents. Every non-nil criterion must hold (AND).
// Dates compare by calendar day.
type DocumentFilter struct {
	Types              []domain.DocumentType
	RegistrationNumber *string
	RegistrationDate   *time.Time
	LeadingDocumentID  *uuid.UUID
	DocumentKindID     *uuid.UUID
	CounterpartyID     *uuid.UUID
	Subject            *string
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MatchesType reports whether t is allowed by the filter.
func (f DocumentFilter) MatchesType(t domain.DocumentType) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, want := range f.Types {
		if want == t {
			return true
		}
	}
	return false
}
