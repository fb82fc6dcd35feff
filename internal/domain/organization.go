package domain

import "github.com/google/uuid"

// BusinessUnit is one of our own legal entities.
// HeadCompanyID refers to another business unit.
type BusinessUnit struct {
	ID            uuid.UUID
	HeadCompanyID *uuid.UUID
	CEOID         *uuid.UUID
	Requisites
}

// Department belongs to a business unit and may nest under a head office.
type Department struct {
	ID             uuid.UUID
	Name           string
	ShortName      string
	HeadOfficeID   *uuid.UUID
	BusinessUnitID *uuid.UUID
	ManagerID      *uuid.UUID
	Phone          string
	Note           string
}

// Employee places a person into a department.
type Employee struct {
	ID              uuid.UUID
	PersonID        uuid.UUID
	Name            string
	DepartmentID    uuid.UUID
	JobTitleID      *uuid.UUID
	PersonnelNumber string
	Email           string
	Phone           string
	Note            string
}
