package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdf-insight-be/service"
	"github.com/tieubaoca/pdf-insight-be/types"
)

type ChatHandler struct {
	jobService *service.JobService
	aiService  service.AIService
}

func NewChatHandler(jobService *service.JobService, aiService service.AIService) *ChatHandler {
	return &ChatHandler{
		jobService: jobService,
		aiService:  aiService,
	}
}

// HandleChat answers a conversation grounded in a completed job's document
// text. Jobs that are unknown or still in flight are reported as not found.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request",
		})
		return
	}
	if req.JobID == "" || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "job_id and messages are required",
		})
		return
	}

	messages, err := h.jobService.ChatMessages(c.Request.Context(), req.JobID, req.Messages)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	reply, err := h.aiService.Chat(c.Request.Context(), messages)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.ChatResponse{
		Content: reply.Content,
	})
}
