package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdf-insight-be/service"
	"github.com/tieubaoca/pdf-insight-be/types"
)

type StatusHandler struct {
	jobService *service.JobService
}

func NewStatusHandler(jobService *service.JobService) *StatusHandler {
	return &StatusHandler{
		jobService: jobService,
	}
}

// HandleStatus reports the job's current stage. The result payload is only
// attached once the job is terminal: chunk data on completed, the error
// string on failed.
func (h *StatusHandler) HandleStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	job, err := h.jobService.GetJob(c.Request.Context(), jobID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, types.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, types.DataResponse{
			Status:  "error",
			Message: "Job not found",
		})
		return
	}

	response := types.JobStatusResponse{
		JobID:  job.ID,
		Status: job.Status,
	}
	switch job.Status {
	case types.JobStatusCompleted:
		response.Result = job.Result
	case types.JobStatusFailed:
		errMessage := job.Error
		if errMessage == "" {
			errMessage = "Unknown error"
		}
		response.Result = gin.H{"error": errMessage}
	}

	c.JSON(http.StatusOK, response)
}
