package store

import (
	"strings"

	"github.com/google/uuid"

	"github.com/JonMunkholm/importdata/internal/domain"
)

// NormalizeName folds case and collapses runs of whitespace.
func NormalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// SameName compares two names the way every lookup in the store does.
func SameName(a, b string) bool {
	return NormalizeName(a) == NormalizeName(b)
}

// Match reports whether r satisfies the filter.
func (f RequisitesFilter) Match(r domain.Requisites) bool {
	if f.Name != "" && SameName(r.Name, f.Name) {
		return true
	}
	if f.TIN != "" && f.TRRC != "" && r.TIN == f.TIN && r.TRRC == f.TRRC {
		return true
	}
	if f.PSRN != "" && r.PSRN == f.PSRN {
		return true
	}
	return false
}

func (f PersonFilter) hasName() bool {
	return f.Name != "" || f.LastName != "" || f.FirstName != "" || f.MiddleName != ""
}

// Match reports whether p satisfies the filter.
func (f PersonFilter) Match(p domain.Person) bool {
	if f.TIN != "" && p.TIN == f.TIN {
		return true
	}
	if !f.hasName() {
		return false
	}
	if f.Name != "" && !SameName(p.Name(), f.Name) {
		return false
	}
	if f.LastName != "" && !SameName(p.LastName, f.LastName) {
		return false
	}
	if f.FirstName != "" && !SameName(p.FirstName, f.FirstName) {
		return false
	}
	if f.MiddleName != "" && !SameName(p.MiddleName, f.MiddleName) {
		return false
	}
	return true
}

// Match reports whether d satisfies the filter.
func (f DepartmentFilter) Match(d domain.Department) bool {
	if f.Name == "" || !SameName(d.Name, f.Name) {
		return false
	}
	if f.BusinessUnitID != nil && d.BusinessUnitID != nil && *d.BusinessUnitID != *f.BusinessUnitID {
		return false
	}
	return true
}

// Match reports whether e satisfies the filter. An empty filter matches nothing.
func (f EmployeeFilter) Match(e domain.Employee) bool {
	if f.Name == "" && f.PersonID == nil && f.DepartmentID == nil {
		return false
	}
	if f.Name != "" && !SameName(e.Name, f.Name) {
		return false
	}
	if f.PersonID != nil && e.PersonID != *f.PersonID {
		return false
	}
	if f.DepartmentID != nil && e.DepartmentID != *f.DepartmentID {
		return false
	}
	return true
}

// Match reports whether d satisfies the filter.
func (f DocumentFilter) Match(d domain.Document) bool {
	if !f.MatchesType(d.Type) {
		return false
	}
	if f.RegistrationNumber != nil && d.RegistrationNumber != *f.RegistrationNumber {
		return false
	}
	if f.RegistrationDate != nil && (d.RegistrationDate.IsZero() || !SameDay(d.RegistrationDate, *f.RegistrationDate)) {
		return false
	}
	if !sameRef(f.LeadingDocumentID, d.LeadingDocumentID) {
		return false
	}
	if !sameRef(f.DocumentKindID, d.DocumentKindID) {
		return false
	}
	if !sameRef(f.CounterpartyID, d.CounterpartyID) {
		return false
	}
	if f.Subject != nil && d.Subject != *f.Subject {
		return false
	}
	return true
}

// sameRef treats a nil criterion as "any".
func sameRef(want, got *uuid.UUID) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}
