package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pitlane-hq/pitlane/internal/authorization"
	documentdomain "github.com/pitlane-hq/pitlane/internal/document/domain"
	"github.com/pitlane-hq/pitlane/pkg/db/pagination"
)

type CreateDocumentRequest struct {
	Title      string `json:"title"`
	Category   string `json:"category"`
	StorageURL string `json:"storage_url"`
	StoreWide  bool   `json:"store_wide"`
}

type CreateSignatureRequestBody struct {
	SignerUserID string `json:"signer_user_id"`
}

type DeclineSignatureBody struct {
	Note string `json:"note"`
}

func (s *Server) ListDocuments(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	docs, pageInfo, err := s.documentSvc.ListDocuments(c.Request.Context(), documentdomain.ListDocumentsRequest{
		StoreID:      snapshot.State.ActiveStoreID,
		DepartmentID: snapshot.State.ActiveDepartmentID,
		Category:     c.Query("category"),
		Page:         page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": docs, "page_info": pageInfo})
}

func (s *Server) CreateDocument(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectDocument, authorization.ActionDocumentManage); err != nil {
		AbortWithError(c, err)
		return
	}

	userID, ok := s.userID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	create := documentdomain.CreateDocumentRequest{
		StoreID:    snapshot.State.ActiveStoreID,
		Title:      strings.TrimSpace(req.Title),
		Category:   strings.TrimSpace(req.Category),
		StorageURL: strings.TrimSpace(req.StorageURL),
		UploadedBy: userID,
	}
	if !req.StoreWide {
		departmentID := snapshot.State.ActiveDepartmentID
		create.DepartmentID = &departmentID
	}

	doc, err := s.documentSvc.CreateDocument(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (s *Server) GetDocument(c *gin.Context) {
	if _, err := s.activeScope(c); err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.documentSvc.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (s *Server) DeleteDocument(c *gin.Context) {
	snapshot, err := s.activeScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectDocument, authorization.ActionDocumentManage); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.documentSvc.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListSignatures(c *gin.Context) {
	if _, err := s.activeScope(c); err != nil {
		AbortWithError(c, err)
		return
	}

	sigs, err := s.documentSvc.ListSignatures(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"signatures": sigs})
}

func (s *Server) CreateSignatureRequest(c *gin.Context) {
	snapshot, err := s.activeScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req CreateSignatureRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectSignature, authorization.ActionSignatureSend); err != nil {
		AbortWithError(c, err)
		return
	}

	signerID, err := parseRequiredID(req.SignerUserID)
	if err != nil {
		AbortWithError(c, newValidationError("signer_user_id", "invalid_id", "invalid signer id"))
		return
	}

	sig, err := s.documentSvc.CreateSignatureRequest(c.Request.Context(), c.Param("id"), signerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sig)
}

func (s *Server) SendSignatureRequest(c *gin.Context) {
	snapshot, err := s.activeScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectSignature, authorization.ActionSignatureSend); err != nil {
		AbortWithError(c, err)
		return
	}

	sig, err := s.documentSvc.Send(c.Request.Context(), c.Param("envelopeID"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sig)
}

func (s *Server) MarkSignatureViewed(c *gin.Context) {
	if _, err := s.activeScope(c); err != nil {
		AbortWithError(c, err)
		return
	}

	sig, err := s.documentSvc.MarkViewed(c.Request.Context(), c.Param("envelopeID"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sig)
}

func (s *Server) SignSignatureRequest(c *gin.Context) {
	snapshot, err := s.activeScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectSignature, authorization.ActionSignatureSign); err != nil {
		AbortWithError(c, err)
		return
	}

	sig, err := s.documentSvc.Sign(c.Request.Context(), c.Param("envelopeID"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sig)
}

func (s *Server) DeclineSignatureRequest(c *gin.Context) {
	if _, err := s.activeScope(c); err != nil {
		AbortWithError(c, err)
		return
	}

	var req DeclineSignatureBody
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sig, err := s.documentSvc.Decline(c.Request.Context(), c.Param("envelopeID"), strings.TrimSpace(req.Note))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sig)
}
