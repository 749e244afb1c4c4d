package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/services"
	"github.com/SAP-F-2025/assessment-randomizer/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt starts or resumes the candidate's attempt for a test
// @Router /attempts/start [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	h.LogRequest(c, "Starting attempt")

	var req models.AttemptStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	paper, err := h.attemptService.Start(c.Request.Context(), &req, h.candidateID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if paper.Resumed {
		status = http.StatusOK
	}
	c.JSON(status, paper)
}

// @Router /attempts/{id}/resume [post]
func (h *AttemptHandler) ResumeAttempt(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	paper, err := h.attemptService.Resume(c.Request.Context(), attemptID, h.candidateID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, paper)
}

// SubmitAnswer grades one answer. The value is the option content, never its label.
// @Router /attempts/{id}/answers [post]
func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.attemptService.SubmitAnswer(c.Request.Context(), attemptID, &req, h.candidateID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Router /attempts/{id}/complete [post]
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	attemptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := h.attemptService.Complete(c.Request.Context(), attemptID, h.candidateID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
