package store

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/JonMunkholm/importdata/internal/domain"
)

// Every Session implementation runs these checks before writing, so a
// record the store would refuse fails the same way in memory and in
// Postgres.

func CheckDirectory(rec *domain.DirectoryRecord) error {
	if rec.Name == "" {
		return errors.New("directory record name is required")
	}
	if rec.Kind == "" {
		return errors.New("directory record kind is required")
	}
	return nil
}

func CheckCompany(c *domain.Company) error {
	if c.Name == "" {
		return errors.New("company name is required")
	}
	return nil
}

func CheckPerson(p *domain.Person) error {
	if p.LastName == "" || p.FirstName == "" {
		return errors.New("person last and first name are required")
	}
	return nil
}

func CheckBusinessUnit(bu *domain.BusinessUnit) error {
	if bu.Name == "" {
		return errors.New("business unit name is required")
	}
	return nil
}

func CheckDepartment(d *domain.Department) error {
	if d.Name == "" {
		return errors.New("department name is required")
	}
	return nil
}

func CheckEmployee(e *domain.Employee) error {
	if e.PersonID == uuid.Nil || e.DepartmentID == uuid.Nil {
		return errors.New("employee person and department are required")
	}
	return nil
}

// PrepareDocument checks d and defaults its registration state.
func PrepareDocument(d *domain.Document) error {
	if d.Type == "" {
		return errors.New("document type is required")
	}
	if d.IsRegistered() && d.RegistrationNumberRequired && d.RegistrationNumber == "" {
		return errors.New("registration number is required for a registered document")
	}
	if d.RegistrationState == "" {
		d.RegistrationState = domain.NotRegistered
	}
	return nil
}

// AssignID gives a new record a fresh identifier.
func AssignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
