package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdf-insight-be/service"
	"github.com/tieubaoca/pdf-insight-be/types"
	"github.com/tieubaoca/pdf-insight-be/utils"
)

type ProcessHandler struct {
	jobService *service.JobService
	uploadDir  string
}

func NewProcessHandler(jobService *service.JobService, uploadDir string) *ProcessHandler {
	return &ProcessHandler{
		jobService: jobService,
		uploadDir:  uploadDir,
	}
}

// HandleProcess accepts a multipart upload, registers a queued job and
// starts background processing. The background goroutine gets its own
// context: the pipeline must not die with the upload request.
func (h *ProcessHandler) HandleProcess(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid file",
		})
		return
	}

	filePath, err := utils.SaveUploadedFile(file, h.uploadDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), file.Filename, filePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	go h.jobService.Process(context.Background(), job.ID, filePath)

	c.JSON(http.StatusOK, types.ProcessResponse{
		JobID:   job.ID,
		Status:  string(types.JobStatusQueued),
		Message: "PDF processing has been queued.",
	})
}
