// Package domain holds the record types the importer reads and writes.
//
// The types mirror the record store's data model. They carry no behavior
// beyond small helpers; all import rules live in the handlers package.
package domain

import "github.com/google/uuid"

// DirectoryKind identifies a flat reference directory.
type DirectoryKind string

const (
	KindCity             DirectoryKind = "city"
	KindRegion           DirectoryKind = "region"
	KindBank             DirectoryKind = "bank"
	KindDocumentKind     DirectoryKind = "document_kind"
	KindJobTitle         DirectoryKind = "job_title"
	KindCurrency         DirectoryKind = "currency"
	KindContractCategory DirectoryKind = "contract_category"
)

// DirectoryKinds lists every directory kind in a stable order.
var DirectoryKinds = []DirectoryKind{
	KindCity,
	KindRegion,
	KindBank,
	KindDocumentKind,
	KindJobTitle,
	KindCurrency,
	KindContractCategory,
}

// Label returns a human-readable name used in row messages.
func (k DirectoryKind) Label() string {
	switch k {
	case KindCity:
		return "city"
	case KindRegion:
		return "region"
	case KindBank:
		return "bank"
	case KindDocumentKind:
		return "document kind"
	case KindJobTitle:
		return "job title"
	case KindCurrency:
		return "currency"
	case KindContractCategory:
		return "contract category"
	default:
		return string(k)
	}
}

// DirectoryRecord is an entry of a flat reference directory.
// Code holds the secondary natural key: BIC for banks, ISO code for currencies.
type DirectoryRecord struct {
	ID   uuid.UUID     `json:"id"`
	Kind DirectoryKind `json:"kind"`
	Name string        `json:"name"`
	Code string        `json:"code,omitempty"`
}
