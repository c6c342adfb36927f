package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateDocument(ctx context.Context, document *Document) error
	FindDocumentByID(ctx context.Context, id snowflake.ID) (*Document, error)
	ListDocuments(ctx context.Context, req ListDocumentsRequest) ([]*Document, *pagination.PageInfo, error)
	UpdateDocument(ctx context.Context, document *Document) error
	DeleteDocument(ctx context.Context, id snowflake.ID) error

	CreateSignatureRequest(ctx context.Context, request *SignatureRequest) error
	FindSignatureByEnvelope(ctx context.Context, envelopeID string) (*SignatureRequest, error)
	ListSignaturesByDocument(ctx context.Context, documentID snowflake.ID) ([]SignatureRequest, error)
	UpdateSignatureRequest(ctx context.Context, request *SignatureRequest) error
}

type Service interface {
	CreateDocument(ctx context.Context, req CreateDocumentRequest) (*Document, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
	ListDocuments(ctx context.Context, req ListDocumentsRequest) ([]*Document, *pagination.PageInfo, error)
	DeleteDocument(ctx context.Context, id string) error

	// CreateSignatureRequest opens a draft envelope for one signer.
	CreateSignatureRequest(ctx context.Context, documentID string, signerUserID snowflake.ID) (*SignatureRequest, error)
	// Send, MarkViewed, Sign, and Decline walk the envelope lifecycle;
	// out-of-order transitions are rejected, terminal states never move.
	Send(ctx context.Context, envelopeID string) (*SignatureRequest, error)
	MarkViewed(ctx context.Context, envelopeID string) (*SignatureRequest, error)
	Sign(ctx context.Context, envelopeID string) (*SignatureRequest, error)
	Decline(ctx context.Context, envelopeID string, note string) (*SignatureRequest, error)
	ListSignatures(ctx context.Context, documentID string) ([]SignatureRequest, error)
}

type ListDocumentsRequest struct {
	StoreID      snowflake.ID
	DepartmentID snowflake.ID
	Category     string
	Page         pagination.Pagination
}

type CreateDocumentRequest struct {
	StoreID      snowflake.ID
	DepartmentID *snowflake.ID
	Title        string
	Category     string
	StorageURL   string
	UploadedBy   snowflake.ID
}

var (
	ErrInvalidTitle      = errors.New("invalid_title")
	ErrInvalidCategory   = errors.New("invalid_category")
	ErrInvalidStorageURL = errors.New("invalid_storage_url")
	ErrInvalidDocument   = errors.New("invalid_document")
	ErrDocumentNotFound  = errors.New("document_not_found")
	ErrEnvelopeNotFound  = errors.New("envelope_not_found")
	ErrInvalidTransition = errors.New("invalid_signature_transition")
)
