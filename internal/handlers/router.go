package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/assessment-randomizer/internal/services"
	"github.com/SAP-F-2025/assessment-randomizer/internal/utils"
	"github.com/SAP-F-2025/assessment-randomizer/internal/validator"
)

type HandlerManager struct {
	attemptHandler     *AttemptHandler
	testHandler        *TestHandler
	diagnosticsHandler *DiagnosticsHandler
	identity           IdentityResolver
	health             func(ctx context.Context) error
	logger             utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	identity IdentityResolver,
) *HandlerManager {
	if identity == nil {
		identity = HeaderIdentityResolver{}
	}

	return &HandlerManager{
		attemptHandler:     NewAttemptHandler(serviceManager.Attempt(), logger),
		testHandler:        NewTestHandler(serviceManager.Test(), logger),
		diagnosticsHandler: NewDiagnosticsHandler(serviceManager.Diagnostics(), validator, logger),
		identity:           identity,
		health:             serviceManager.HealthCheck,
		logger:             logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.healthCheck)

	v1 := router.Group("/api/v1")
	{
		// Attempt routes act for the candidate named by the gateway
		attempts := v1.Group("/attempts")
		attempts.Use(CandidateMiddleware(hm.identity))
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.POST("/:id/resume", hm.attemptHandler.ResumeAttempt)
			attempts.POST("/:id/answers", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/complete", hm.attemptHandler.CompleteAttempt)
		}

		tests := v1.Group("/tests")
		{
			tests.POST("", hm.testHandler.CreateTest)
			tests.POST("/:id/questions", hm.testHandler.AddQuestion)
			tests.POST("/:id/shuffle-report", hm.diagnosticsHandler.ShuffleReport)
		}
	}
}

func (hm *HandlerManager) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hm.health(ctx); err != nil {
		utils.FromContext(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "assessment-randomizer",
	})
}
