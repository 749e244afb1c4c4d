package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assessment-randomizer/internal/models"
	"github.com/SAP-F-2025/assessment-randomizer/internal/services"
	"github.com/SAP-F-2025/assessment-randomizer/internal/utils"
	"github.com/SAP-F-2025/assessment-randomizer/internal/validator"
)

type DiagnosticsHandler struct {
	BaseHandler
	diagnosticsService services.DiagnosticsService
	validator          *validator.Validator
}

func NewDiagnosticsHandler(diagnosticsService services.DiagnosticsService, validator *validator.Validator, logger utils.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		BaseHandler:        NewBaseHandler(logger),
		diagnosticsService: diagnosticsService,
		validator:          validator,
	}
}

// ShuffleReport compares the papers a set of candidates would receive for a test
// @Router /tests/{id}/shuffle-report [post]
func (h *DiagnosticsHandler) ShuffleReport(c *gin.Context) {
	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.ShuffleReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	report, err := h.diagnosticsService.CollisionReport(c.Request.Context(), testID, req.CandidateIDs)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report": report,
		"clean":  report.Clean(),
	})
}
