package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assessment-randomizer/internal/grading"
	"github.com/SAP-F-2025/assessment-randomizer/internal/services"
	"github.com/SAP-F-2025/assessment-randomizer/internal/shuffle"
	"github.com/SAP-F-2025/assessment-randomizer/internal/utils"
	"github.com/SAP-F-2025/assessment-randomizer/internal/validator"
)

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the logger and error mapping shared by all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) log(c *gin.Context) utils.Logger {
	return utils.FromContext(c, h.logger)
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	h.log(c).Debug(msg, append([]any{"path", c.FullPath()}, args...)...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	h.log(c).Error(msg, "path", c.FullPath(), "error", err)
}

func (h *BaseHandler) candidateID(c *gin.Context) string {
	return c.GetString(candidateKey)
}

// parseIDParam writes a 400 and returns false when the path parameter is not an ID.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
		})
		return 0, false
	}
	return uint(id), true
}

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var reconciliationErr *grading.ReconciliationError
	if errors.As(err, &reconciliationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Answer does not match the question",
			Details: map[string]interface{}{
				"question_id": reconciliationErr.QuestionID,
				"reason":      reconciliationErr.Reason,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.ResourceType,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, shuffle.ErrMissingSeedMaterial):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Candidate and test are required",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrDuplicateCandidate):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Candidate IDs must be unique",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrTestNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Test not found"})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Question not found"})
	case errors.Is(err, services.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Attempt not found"})
	case errors.Is(err, services.ErrAttemptNotActive):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Attempt is not active"})
	case errors.Is(err, shuffle.ErrConfigMismatch):
		h.LogError(c, err, "Stored paper no longer matches the question bank")
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Paper is out of sync with the question bank"})
	case errors.Is(err, grading.ErrGradingData):
		h.LogError(c, err, "Question has malformed answer data")
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Question cannot be graded",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrStorageUnavailable):
		h.LogError(c, err, "Storage unavailable")
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "Temporarily unavailable, retry"})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
