package database

import (
	"context"

	"github.com/tieubaoca/pdf-insight-be/types"
)

// JobStore holds job records for the lifetime of the service. The in-memory
// implementation below is the default; repository.JobRepo is the durable
// Mongo-backed alternative.
type JobStore interface {
	Create(ctx context.Context, job *types.Job) error
	Get(ctx context.Context, id string) (*types.Job, error)
	SetStatus(ctx context.Context, id string, status types.JobStatus) error
	// SetResult stores the result and moves the job to completed.
	SetResult(ctx context.Context, id string, result *types.JobResult) error
	// SetError stores the error message and moves the job to failed.
	SetError(ctx context.Context, id string, message string) error
}

// ChunkIndexer indexes completed chunks for similarity search.
type ChunkIndexer interface {
	IndexChunks(ctx context.Context, jobID string, chunks []types.Chunk) error
	SearchChunks(ctx context.Context, jobID string, queries []string, limit int) ([]types.Chunk, error)
}
