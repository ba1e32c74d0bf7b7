package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tieubaoca/pdf-insight-be/database"
	"github.com/tieubaoca/pdf-insight-be/types"
)

const defaultSearchLimit = 5

type SearchHandler struct {
	index database.ChunkIndexer
}

func NewSearchHandler(index database.ChunkIndexer) *SearchHandler {
	return &SearchHandler{
		index: index,
	}
}

// HandleSearch runs a semantic query over indexed chunks, optionally scoped
// to one job. Returns 503 when the server runs without a vector store.
func (h *SearchHandler) HandleSearch(c *gin.Context) {
	if h.index == nil {
		c.JSON(http.StatusServiceUnavailable, types.DataResponse{
			Status:  "error",
			Message: "Search is not configured",
		})
		return
	}

	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request",
		})
		return
	}
	if len(req.Queries) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "queries are required",
		})
		return
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	chunks, err := h.index.SearchChunks(c.Request.Context(), req.JobID, req.Queries, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status:  "success",
		Message: "Search completed",
		Data: types.SearchResponse{
			Chunks: chunks,
		},
	})
}
