package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pitlane-hq/pitlane/internal/authorization"
	todosdomain "github.com/pitlane-hq/pitlane/internal/todos/domain"
)

type CreateTodoRequest struct {
	AssigneeUserID string     `json:"assignee_user_id"`
	Kind           string     `json:"kind"`
	Title          string     `json:"title"`
	Detail         string     `json:"detail"`
	DueAt          *time.Time `json:"due_at"`
}

type UpdateTodoRequest struct {
	Title          *string    `json:"title"`
	Detail         *string    `json:"detail"`
	AssigneeUserID *string    `json:"assignee_user_id"`
	DueAt          *time.Time `json:"due_at"`
}

func (s *Server) ListTodos(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	kind := strings.TrimSpace(c.Query("kind"))
	openOnly := c.Query("open") == "true"

	todos, err := s.todosSvc.List(c.Request.Context(), snapshot.State.ActiveDepartmentID, kind, openOnly)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	counts, err := s.todosSvc.Counts(c.Request.Context(), snapshot.State.ActiveDepartmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"todos":  todos,
		"counts": counts,
	})
}

func (s *Server) CreateTodo(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	object, action := todoPolicy(req.Kind)
	if err := s.authorize(c, snapshot.State.ActiveStoreID, object, action); err != nil {
		AbortWithError(c, err)
		return
	}

	assigneeID, err := parseOptionalID(&req.AssigneeUserID)
	if err != nil {
		AbortWithError(c, newValidationError("assignee_user_id", "invalid_user", "invalid user id"))
		return
	}
	if assigneeID == nil {
		if userID, ok := s.userID(c); ok {
			assigneeID = &userID
		}
	}

	todo, err := s.todosSvc.Create(c.Request.Context(), todosdomain.CreateTodoRequest{
		StoreID:        snapshot.State.ActiveStoreID,
		DepartmentID:   snapshot.State.ActiveDepartmentID,
		AssigneeUserID: *assigneeID,
		Kind:           strings.TrimSpace(req.Kind),
		Title:          strings.TrimSpace(req.Title),
		Detail:         strings.TrimSpace(req.Detail),
		DueAt:          req.DueAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, todo)
}

func (s *Server) UpdateTodo(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectTodo, authorization.ActionTodoManage); err != nil {
		AbortWithError(c, err)
		return
	}

	assigneeID, err := parseOptionalID(req.AssigneeUserID)
	if err != nil {
		AbortWithError(c, newValidationError("assignee_user_id", "invalid_user", "invalid user id"))
		return
	}

	todo, err := s.todosSvc.Update(c.Request.Context(), c.Param("id"), todosdomain.UpdateTodoRequest{
		Title:          req.Title,
		Detail:         req.Detail,
		AssigneeUserID: assigneeID,
		DueAt:          req.DueAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, todo)
}

func (s *Server) CompleteTodo(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectTodo, authorization.ActionTodoManage); err != nil {
		AbortWithError(c, err)
		return
	}

	todo, err := s.todosSvc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, todo)
}

func (s *Server) ReopenTodo(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectTodo, authorization.ActionTodoManage); err != nil {
		AbortWithError(c, err)
		return
	}

	todo, err := s.todosSvc.Reopen(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, todo)
}

func (s *Server) DeleteTodo(c *gin.Context) {
	snapshot, err := s.activeDepartmentScope(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.authorize(c, snapshot.State.ActiveStoreID, authorization.ObjectTodo, authorization.ActionTodoManage); err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.todosSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func todoPolicy(kind string) (string, string) {
	if strings.TrimSpace(kind) == todosdomain.KindIssue {
		return authorization.ObjectIssue, authorization.ActionIssueManage
	}
	return authorization.ObjectTodo, authorization.ActionTodoManage
}
