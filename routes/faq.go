package routes

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"university-faq-assistant/internal/config"
	"university-faq-assistant/internal/queue"
	"university-faq-assistant/internal/telemetry"
	"university-faq-assistant/models"
	"university-faq-assistant/services"
	"university-faq-assistant/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

// AskRequest is one incoming question.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// SetupFAQRoutes registers the question-answering API.
func SetupFAQRoutes(
	router *gin.Engine,
	cfg *config.Config,
	retriever *services.Retriever,
	synthesizer *services.Synthesizer,
	asynqClient *asynq.Client,
	metrics *telemetry.Metrics,
) {
	api := router.Group("/api")
	api.POST("/ask", askHandler(cfg, retriever, synthesizer, metrics))
	api.GET("/stats", statsHandler(retriever))
	api.POST("/ingest", ingestHandler(asynqClient))
}

func askHandler(cfg *config.Config, retriever *services.Retriever, synthesizer *services.Synthesizer, metrics *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Request body must contain a question", err.Error())
			return
		}

		question := strings.TrimSpace(req.Question)
		if msg, ok := validateQuestion(question); !ok {
			utils.RespondWithBadRequest(c, msg, nil)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(),
			time.Duration(cfg.QueryTimeoutSecs)*time.Second)
		defer cancel()

		result, err := retriever.Retrieve(ctx, question, cfg.TopK)
		if err != nil {
			if errors.Is(err, models.ErrInvalidArgument) {
				utils.RespondWithBadRequest(c, "Invalid retrieval parameters", err.Error())
				return
			}
			utils.RespondWithInternalError(c, "Retrieval failed", err.Error())
			return
		}

		answer, err := synthesizer.Synthesize(ctx, question, result)
		if err != nil {
			if metrics != nil {
				metrics.RecordQuestion("error")
			}
			if errors.Is(err, models.ErrGenerationUnavailable) {
				utils.RespondWithServiceUnavailable(c, "The assistant is temporarily unavailable. Please try again shortly.")
				return
			}
			utils.RespondWithInternalError(c, "Answer synthesis failed", err.Error())
			return
		}

		if metrics != nil {
			if answer.Unavailable {
				metrics.RecordQuestion("unavailable")
			} else {
				metrics.RecordQuestion("answered")
			}
		}

		c.JSON(http.StatusOK, answer)
	}
}

// validateQuestion mirrors the limits the frontend enforces; requests can
// arrive from anywhere, so they are enforced here too.
func validateQuestion(question string) (string, bool) {
	if question == "" {
		return "Please enter a question", false
	}
	if len(question) < 3 {
		return "Question is too short. Please provide more details.", false
	}
	if len(question) > 1000 {
		return "Question is too long. Please keep it under 1000 characters.", false
	}
	return "", true
}

func statsHandler(retriever *services.Retriever) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, retriever.Stats())
	}
}

func ingestHandler(asynqClient *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if asynqClient == nil {
			utils.RespondWithServiceUnavailable(c, "Background ingestion is not configured")
			return
		}

		task, err := queue.NewIngestTask("api")
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create ingestion task", err.Error())
			return
		}

		info, err := asynqClient.Enqueue(task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue ingestion task", err.Error())
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"task_id": info.ID,
			"queue":   info.Queue,
			"status":  "queued",
		})
	}
}
