package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pitlane-hq/pitlane/internal/document/domain"
	"github.com/pitlane-hq/pitlane/pkg/db/option"
	"github.com/pitlane-hq/pitlane/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) WithTx(tx *gorm.DB) domain.Repository {
	return &repo{db: tx}
}

func (r *repo) CreateDocument(ctx context.Context, document *domain.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

func (r *repo) FindDocumentByID(ctx context.Context, id snowflake.ID) (*domain.Document, error) {
	var document domain.Document
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&document).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &document, nil
}

func (r *repo) ListDocuments(ctx context.Context, req domain.ListDocumentsRequest) ([]*domain.Document, *pagination.PageInfo, error) {
	query := r.db.WithContext(ctx).Model(&domain.Document{}).Where("store_id = ?", req.StoreID)
	if req.DepartmentID != 0 {
		query = query.Where("department_id = ? OR department_id IS NULL", req.DepartmentID)
	}
	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	query = option.ApplyPagination(req.Page).Apply(query)
	query = option.WithSortBy(option.QuerySortBy{Field: "created_at", Desc: true}).Apply(query)

	var documents []*domain.Document
	if err := query.Find(&documents).Error; err != nil {
		return nil, nil, err
	}

	size := req.Page.PageSize
	if size <= 0 {
		size = 10
	}
	info, documents := pagination.BuildCursorPageInfo(documents, size, func(document *domain.Document) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        document.ID.String(),
			CreatedAt: document.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	return documents, info, nil
}

func (r *repo) UpdateDocument(ctx context.Context, document *domain.Document) error {
	return r.db.WithContext(ctx).Save(document).Error
}

func (r *repo) DeleteDocument(ctx context.Context, id snowflake.ID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&domain.SignatureRequest{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&domain.Document{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrDocumentNotFound
		}
		return nil
	})
}

func (r *repo) CreateSignatureRequest(ctx context.Context, request *domain.SignatureRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repo) FindSignatureByEnvelope(ctx context.Context, envelopeID string) (*domain.SignatureRequest, error) {
	var request domain.SignatureRequest
	err := r.db.WithContext(ctx).Where("envelope_id = ?", envelopeID).First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrEnvelopeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repo) ListSignaturesByDocument(ctx context.Context, documentID snowflake.ID) ([]domain.SignatureRequest, error) {
	var requests []domain.SignatureRequest
	err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("envelope_id asc").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repo) UpdateSignatureRequest(ctx context.Context, request *domain.SignatureRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}
