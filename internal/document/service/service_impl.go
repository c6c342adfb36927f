package service

import (
	"context"
	"crypto/rand"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/pitlane-hq/pitlane/internal/changefeed"
	"github.com/pitlane-hq/pitlane/internal/clock"
	"github.com/pitlane-hq/pitlane/internal/document/domain"
	"github.com/pitlane-hq/pitlane/pkg/db/pagination"
	"go.uber.org/zap"
)

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	hub   *changefeed.Hub
	genID *snowflake.Node
	clock clock.Clock
}

func New(log *zap.Logger, repo domain.Repository, hub *changefeed.Hub, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:   log.Named("document.service"),
		repo:  repo,
		hub:   hub,
		genID: genID,
		clock: clk,
	}
}

func (s *Service) CreateDocument(ctx context.Context, req domain.CreateDocumentRequest) (*domain.Document, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	category := req.Category
	if category == "" {
		category = domain.CategoryOther
	}
	if !domain.ValidCategory(category) {
		return nil, domain.ErrInvalidCategory
	}
	storageURL := strings.TrimSpace(req.StorageURL)
	if storageURL == "" {
		return nil, domain.ErrInvalidStorageURL
	}

	now := s.clock.Now()
	document := &domain.Document{
		ID:           s.genID.Generate(),
		StoreID:      req.StoreID,
		DepartmentID: req.DepartmentID,
		Title:        title,
		Category:     category,
		StorageURL:   storageURL,
		UploadedBy:   req.UploadedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateDocument(ctx, document); err != nil {
		return nil, err
	}
	s.publishDocument(document, "created")
	return document, nil
}

func (s *Service) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	documentID, err := snowflake.ParseString(id)
	if err != nil {
		return nil, domain.ErrInvalidDocument
	}
	return s.repo.FindDocumentByID(ctx, documentID)
}

func (s *Service) ListDocuments(ctx context.Context, req domain.ListDocumentsRequest) ([]*domain.Document, *pagination.PageInfo, error) {
	if req.Category != "" && !domain.ValidCategory(req.Category) {
		return nil, nil, domain.ErrInvalidCategory
	}
	return s.repo.ListDocuments(ctx, req)
}

func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	documentID, err := snowflake.ParseString(id)
	if err != nil {
		return domain.ErrInvalidDocument
	}
	document, err := s.repo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	s.publishDocument(document, "deleted")
	return nil
}

func (s *Service) CreateSignatureRequest(ctx context.Context, documentID string, signerUserID snowflake.ID) (*domain.SignatureRequest, error) {
	docID, err := snowflake.ParseString(documentID)
	if err != nil {
		return nil, domain.ErrInvalidDocument
	}
	document, err := s.repo.FindDocumentByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	envelope := ulid.MustNew(ulid.Timestamp(now), rand.Reader)
	request := &domain.SignatureRequest{
		ID:           s.genID.Generate(),
		EnvelopeID:   envelope.String(),
		DocumentID:   document.ID,
		SignerUserID: signerUserID,
		Status:       domain.SignatureDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateSignatureRequest(ctx, request); err != nil {
		return nil, err
	}
	s.publishSignature(document, request, "created")
	return request, nil
}

func (s *Service) Send(ctx context.Context, envelopeID string) (*domain.SignatureRequest, error) {
	return s.transition(ctx, envelopeID, domain.SignatureSent, "")
}

func (s *Service) MarkViewed(ctx context.Context, envelopeID string) (*domain.SignatureRequest, error) {
	return s.transition(ctx, envelopeID, domain.SignatureViewed, "")
}

func (s *Service) Sign(ctx context.Context, envelopeID string) (*domain.SignatureRequest, error) {
	return s.transition(ctx, envelopeID, domain.SignatureSigned, "")
}

func (s *Service) Decline(ctx context.Context, envelopeID string, note string) (*domain.SignatureRequest, error) {
	return s.transition(ctx, envelopeID, domain.SignatureDeclined, strings.TrimSpace(note))
}

func (s *Service) ListSignatures(ctx context.Context, documentID string) ([]domain.SignatureRequest, error) {
	docID, err := snowflake.ParseString(documentID)
	if err != nil {
		return nil, domain.ErrInvalidDocument
	}
	return s.repo.ListSignaturesByDocument(ctx, docID)
}

func (s *Service) transition(ctx context.Context, envelopeID, to, note string) (*domain.SignatureRequest, error) {
	request, err := s.repo.FindSignatureByEnvelope(ctx, envelopeID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(request.Status, to) {
		return nil, domain.ErrInvalidTransition
	}

	now := s.clock.Now()
	request.Status = to
	request.UpdatedAt = now
	switch to {
	case domain.SignatureSent:
		request.SentAt = &now
	case domain.SignatureViewed:
		request.ViewedAt = &now
	case domain.SignatureSigned:
		request.CompletedAt = &now
	case domain.SignatureDeclined:
		request.CompletedAt = &now
		request.DeclineNote = note
	}
	if err := s.repo.UpdateSignatureRequest(ctx, request); err != nil {
		return nil, err
	}

	document, err := s.repo.FindDocumentByID(ctx, request.DocumentID)
	if err == nil {
		s.publishSignature(document, request, to)
	}
	return request, nil
}

func (s *Service) publishDocument(document *domain.Document, action string) {
	departmentID := ""
	if document.DepartmentID != nil {
		departmentID = document.DepartmentID.String()
	}
	s.hub.Publish(changefeed.RecordDocument, changefeed.Event{
		RecordID:     document.ID.String(),
		StoreID:      document.StoreID.String(),
		DepartmentID: departmentID,
		Action:       action,
		OccurredAt:   s.clock.Now(),
	})
}

func (s *Service) publishSignature(document *domain.Document, request *domain.SignatureRequest, action string) {
	departmentID := ""
	if document.DepartmentID != nil {
		departmentID = document.DepartmentID.String()
	}
	s.hub.Publish(changefeed.RecordSignatureRequest, changefeed.Event{
		RecordID:     request.EnvelopeID,
		StoreID:      document.StoreID.String(),
		DepartmentID: departmentID,
		Action:       action,
		OccurredAt:   s.clock.Now(),
	})
}
