package audit

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies how a posting attempt ended
type Outcome string

const (
	OutcomePosted   Outcome = "POSTED"
	OutcomeRejected Outcome = "REJECTED" // engine refused: unresolved role, unbalanced, duplicate
	OutcomeFailed   Outcome = "FAILED"   // storage failure
)

// ErrorKind names the rejection/failure cause for rejected or failed attempts
type ErrorKind string

const (
	ErrorKindNone            ErrorKind = ""
	ErrorKindRoleNotResolved ErrorKind = "ROLE_NOT_RESOLVED"
	ErrorKindUnbalanced      ErrorKind = "UNBALANCED_ENTRY"
	ErrorKindDuplicate       ErrorKind = "DUPLICATE_POSTING"
	ErrorKindInvalidAmount   ErrorKind = "INVALID_AMOUNT"
	ErrorKindStorage         ErrorKind = "STORAGE_FAILURE"
)

// Record is one posting attempt in the audit trail, successful or not.
// Amounts are stored as strings to keep the document store agnostic of the
// decimal representation.
type Record struct {
	ID             uuid.UUID `json:"id" bson:"_id"`
	OrganizationID uuid.UUID `json:"organization_id" bson:"organization_id"`
	Workflow       string    `json:"workflow" bson:"workflow"`
	ReferenceType  string    `json:"reference_type" bson:"reference_type"`
	ReferenceID    string    `json:"reference_id" bson:"reference_id"`
	Amount         string    `json:"amount" bson:"amount"`
	Outcome        Outcome   `json:"outcome" bson:"outcome"`
	ErrorKind      ErrorKind `json:"error_kind,omitempty" bson:"error_kind,omitempty"`
	ErrorDetail    string    `json:"error_detail,omitempty" bson:"error_detail,omitempty"`
	CorrelationID  string    `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}
