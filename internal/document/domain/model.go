// Package domain contains the resource-library documents and their
// e-signature tracking records.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Document categories.
const (
	CategoryPolicy    = "policy"
	CategoryTraining  = "training"
	CategoryForm      = "form"
	CategoryAgreement = "agreement"
	CategoryOther     = "other"
)

// Signature request lifecycle. Draft envelopes can still be edited; a sent
// envelope only moves forward: viewed, then signed or declined.
const (
	SignatureDraft    = "draft"
	SignatureSent     = "sent"
	SignatureViewed   = "viewed"
	SignatureSigned   = "signed"
	SignatureDeclined = "declined"
)

// Document is one stored resource, scoped to a store and optionally to a
// department.
type Document struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	StoreID      snowflake.ID  `gorm:"column:store_id;not null;index" json:"store_id"`
	DepartmentID *snowflake.ID `gorm:"column:department_id;index" json:"department_id,omitempty"`
	Title        string        `gorm:"type:text;not null" json:"title"`
	Category     string        `gorm:"type:text;not null;default:other" json:"category"`
	StorageURL   string        `gorm:"column:storage_url;type:text;not null" json:"storage_url"`
	UploadedBy   snowflake.ID  `gorm:"column:uploaded_by" json:"uploaded_by"`
	CreatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Document) TableName() string { return "documents" }

// SignatureRequest tracks one signer's envelope for a document. EnvelopeID
// is a ULID so envelopes sort by creation time in external systems.
type SignatureRequest struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	EnvelopeID   string       `gorm:"column:envelope_id;type:text;not null;uniqueIndex:ux_signature_envelopes" json:"envelope_id"`
	DocumentID   snowflake.ID `gorm:"column:document_id;not null;index" json:"document_id"`
	SignerUserID snowflake.ID `gorm:"column:signer_user_id;not null;index" json:"signer_user_id"`
	Status       string       `gorm:"type:text;not null;default:draft" json:"status"`
	SentAt       *time.Time   `gorm:"column:sent_at" json:"sent_at,omitempty"`
	ViewedAt     *time.Time   `gorm:"column:viewed_at" json:"viewed_at,omitempty"`
	CompletedAt  *time.Time   `gorm:"column:completed_at" json:"completed_at,omitempty"`
	DeclineNote  string       `gorm:"column:decline_note;type:text" json:"decline_note"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (SignatureRequest) TableName() string { return "signature_requests" }

func ValidCategory(category string) bool {
	switch category {
	case CategoryPolicy, CategoryTraining, CategoryForm, CategoryAgreement, CategoryOther:
		return true
	}
	return false
}

// nextStatuses maps each signature status to the transitions allowed from
// it.
var nextStatuses = map[string][]string{
	SignatureDraft:  {SignatureSent},
	SignatureSent:   {SignatureViewed, SignatureSigned, SignatureDeclined},
	SignatureViewed: {SignatureSigned, SignatureDeclined},
}

// CanTransition reports whether a signature request may move from one
// status to another. Signed and declined are terminal.
func CanTransition(from, to string) bool {
	for _, allowed := range nextStatuses[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
