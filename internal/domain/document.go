package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentType is the concrete kind of an official document.
type DocumentType string

const (
	DocContract       DocumentType = "contract"
	DocSupAgreement   DocumentType = "sup_agreement"
	DocIncomingLetter DocumentType = "incoming_letter"
	DocOutgoingLetter DocumentType = "outgoing_letter"
	DocOrder          DocumentType = "order"
	DocAddendum       DocumentType = "addendum"
)

// LifeCycleState of a document.
type LifeCycleState string

const (
	LifeCycleNone       LifeCycleState = ""
	LifeCycleDraft      LifeCycleState = "draft"
	LifeCycleActive     LifeCycleState = "active"
	LifeCycleObsolete   LifeCycleState = "obsolete"
	LifeCycleTerminated LifeCycleState = "terminated"
	LifeCycleClosed     LifeCycleState = "closed"
)

// RegistrationState of a document.
type RegistrationState string

const (
	NotRegistered RegistrationState = "not_registered"
	Registered    RegistrationState = "registered"
	Reserved      RegistrationState = "reserved"
)

// Document is an official document of any type. Fields that do not apply
// to a type stay at their zero value.
type Document struct {
	ID   uuid.UUID
	Type DocumentType

	DocumentKindID *uuid.UUID
	Subject        string
	Note           string
	LifeCycleState LifeCycleState

	RegistrationNumber         string
	RegistrationDate           time.Time
	RegistrationState          RegistrationState
	RegistrationNumberRequired bool
	DocumentRegisterID         *int64

	LeadingDocumentID *uuid.UUID
	CounterpartyID    *uuid.UUID
	BusinessUnitID    *uuid.UUID
	DepartmentID      *uuid.UUID

	PreparedByID   *uuid.UUID
	ResponsibleID  *uuid.UUID
	OurSignatoryID *uuid.UUID
	AssigneeID     *uuid.UUID
	AddresseeID    *uuid.UUID

	ContractCategoryID *uuid.UUID
	CurrencyID         *uuid.UUID
	TotalAmount        decimal.NullDecimal
	ValidFrom          time.Time
	ValidTill          time.Time

	// Incoming letters: the sender's own date and number.
	Dated    time.Time
	InNumber string
}

// IsRegistered reports whether the document holds a registration.
func (d *Document) IsRegistered() bool {
	return d.RegistrationState == Registered
}

// DocumentRegister is a registration journal documents are numbered in.
type DocumentRegister struct {
	ID    int64
	Name  string
	Index string
}

// Body is one stored version of a document's content.
type Body struct {
	DocumentID uuid.UUID
	Version    int
	Extension  string
	MimeType   string
	Content    []byte
}
