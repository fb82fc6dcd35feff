package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Requisites are the legal attributes shared by companies and business units.
type Requisites struct {
	Name          string
	LegalName     string
	Nonresident   bool
	TIN           string
	TRRC          string
	PSRN          string
	NCEO          string
	NCEA          string
	CityID        *uuid.UUID
	RegionID      *uuid.UUID
	LegalAddress  string
	PostalAddress string
	Phones        string
	Email         string
	Homepage      string
	Note          string
	Account       string
	BankID        *uuid.UUID
}

// Company is an external organization (counterparty).
type Company struct {
	ID            uuid.UUID
	HeadCompanyID *uuid.UUID
	Code          string
	Requisites
}

// Sex of a person.
type Sex string

const (
	SexUnknown Sex = ""
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
)

// Person is an individual counterparty. Employees reference a person.
type Person struct {
	ID            uuid.UUID
	LastName      string
	FirstName     string
	MiddleName    string
	Sex           Sex
	DateOfBirth   time.Time
	TIN           string
	SNILS         string
	CityID        *uuid.UUID
	RegionID      *uuid.UUID
	LegalAddress  string
	PostalAddress string
	Phones        string
	Email         string
	Homepage      string
	Note          string
	Account       string
	BankID        *uuid.UUID
}

// Name returns the full name in "Last First Middle" order.
func (p Person) Name() string {
	return FullName(p.LastName, p.FirstName, p.MiddleName)
}

// FullName joins the non-empty name parts with single spaces.
func FullName(last, first, middle string) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{last, first, middle} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// CounterpartyKind distinguishes the two counterparty tables.
type CounterpartyKind string

const (
	CounterpartyCompany CounterpartyKind = "company"
	CounterpartyPerson  CounterpartyKind = "person"
)

// Counterparty is the reference documents hold to a company or a person.
type Counterparty struct {
	ID   uuid.UUID
	Name string
	Kind CounterpartyKind
}
