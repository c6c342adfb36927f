package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/pitlane-hq/pitlane/internal/auth/domain"
	"github.com/pitlane-hq/pitlane/internal/authorization"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	directorydomain "github.com/pitlane-hq/pitlane/internal/directory/domain"
	documentdomain "github.com/pitlane-hq/pitlane/internal/document/domain"
	meetingdomain "github.com/pitlane-hq/pitlane/internal/meeting/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	rocksdomain "github.com/pitlane-hq/pitlane/internal/rocks/domain"
	scorecarddomain "github.com/pitlane-hq/pitlane/internal/scorecard/domain"
	selectiondomain "github.com/pitlane-hq/pitlane/internal/selection/domain"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
	todosdomain "github.com/pitlane-hq/pitlane/internal/todos/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")

	errInvalidID = errors.New("invalid_id")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, selectiondomain.ErrStoreNotInScope),
		errors.Is(err, selectiondomain.ErrDepartmentNotInScope),
		errors.Is(err, selectiondomain.ErrSwitchNotAllowed):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, storedomain.ErrGrantExists),
		errors.Is(err, storedomain.ErrGroupExists),
		errors.Is(err, departmentdomain.ErrGrantExists),
		errors.Is(err, documentdomain.ErrInvalidTransition),
		errors.Is(err, meetingdomain.ErrMeetingConcluded),
		errors.Is(err, meetingdomain.ErrMeetingInProgress),
		errors.Is(err, meetingdomain.ErrMeetingNotStarted),
		errors.Is(err, meetingdomain.ErrEndOfAgenda):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, ErrTooManyRequests),
		errors.Is(err, authdomain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, selectiondomain.ErrNotReady):
		return http.StatusConflict, errorPayload{
			Type:    "selection_not_ready",
			Message: "selection not ready",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, selectiondomain.ErrProfileUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "profile_unavailable",
			Message: "profile could not be loaded, retry or sign out",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, errInvalidID):
		return true
	case errors.Is(err, storedomain.ErrInvalidName),
		errors.Is(err, storedomain.ErrInvalidStore),
		errors.Is(err, departmentdomain.ErrInvalidName),
		errors.Is(err, departmentdomain.ErrInvalidType),
		errors.Is(err, departmentdomain.ErrInvalidDepartment),
		errors.Is(err, departmentdomain.ErrStoreNotSelected),
		errors.Is(err, profiledomain.ErrInvalidRole),
		errors.Is(err, directorydomain.ErrInvalidRole),
		errors.Is(err, scorecarddomain.ErrInvalidName),
		errors.Is(err, scorecarddomain.ErrInvalidMetricType),
		errors.Is(err, scorecarddomain.ErrInvalidDirection),
		errors.Is(err, scorecarddomain.ErrInvalidGranularity),
		errors.Is(err, scorecarddomain.ErrInvalidPeriod),
		errors.Is(err, scorecarddomain.ErrInvalidDefinition),
		errors.Is(err, rocksdomain.ErrInvalidTitle),
		errors.Is(err, rocksdomain.ErrInvalidStatus),
		errors.Is(err, rocksdomain.ErrInvalidPeriod),
		errors.Is(err, rocksdomain.ErrInvalidRock),
		errors.Is(err, todosdomain.ErrInvalidTitle),
		errors.Is(err, todosdomain.ErrInvalidKind),
		errors.Is(err, todosdomain.ErrInvalidTodo),
		errors.Is(err, meetingdomain.ErrInvalidTitle),
		errors.Is(err, meetingdomain.ErrInvalidMeeting),
		errors.Is(err, meetingdomain.ErrInvalidRating),
		errors.Is(err, documentdomain.ErrInvalidTitle),
		errors.Is(err, documentdomain.ErrInvalidCategory),
		errors.Is(err, documentdomain.ErrInvalidStorageURL),
		errors.Is(err, documentdomain.ErrInvalidDocument):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, profiledomain.ErrProfileNotFound),
		errors.Is(err, storedomain.ErrStoreNotFound),
		errors.Is(err, storedomain.ErrGroupNotFound),
		errors.Is(err, storedomain.ErrGrantNotFound),
		errors.Is(err, departmentdomain.ErrDepartmentNotFound),
		errors.Is(err, departmentdomain.ErrGrantNotFound),
		errors.Is(err, scorecarddomain.ErrDefinitionNotFound),
		errors.Is(err, rocksdomain.ErrRockNotFound),
		errors.Is(err, todosdomain.ErrTodoNotFound),
		errors.Is(err, meetingdomain.ErrMeetingNotFound),
		errors.Is(err, documentdomain.ErrDocumentNotFound),
		errors.Is(err, documentdomain.ErrEnvelopeNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog buckets handler errors for request logging.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "server_error", payload.Type
	case status >= 400:
		return "client_error", payload.Type
	default:
		return "ok", payload.Type
	}
}
