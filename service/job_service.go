package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tieubaoca/pdf-insight-be/database"
	"github.com/tieubaoca/pdf-insight-be/types"
	"go.uber.org/zap"
)

// JobService drives each job through the fixed pipeline
// queued -> processing_ocr -> processing_chunks -> completed, with failed
// absorbing from any non-terminal state. One goroutine per job, no
// cancellation, no resumption.
type JobService struct {
	store  database.JobStore
	ocr    OCRProcessor
	latex  *LatexService
	chunks *ChunkService
	index  database.ChunkIndexer
	logger *zap.Logger
}

func NewJobService(
	store database.JobStore,
	ocr OCRProcessor,
	latex *LatexService,
	chunks *ChunkService,
	index database.ChunkIndexer,
	logger *zap.Logger,
) *JobService {
	return &JobService{
		store:  store,
		ocr:    ocr,
		latex:  latex,
		chunks: chunks,
		index:  index,
		logger: logger,
	}
}

// CreateJob registers a new queued job. IDs are collision-resistant; two
// near-simultaneous uploads of the same file name get distinct jobs.
func (s *JobService) CreateJob(ctx context.Context, fileName, filePath string) (*types.Job, error) {
	now := time.Now().Unix()
	job := &types.Job{
		ID:        "job_" + uuid.NewString(),
		FileName:  fileName,
		FilePath:  filePath,
		Status:    types.JobStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Info("created job", zap.String("job_id", job.ID), zap.String("file", fileName))
	return job, nil
}

func (s *JobService) GetJob(ctx context.Context, id string) (*types.Job, error) {
	return s.store.Get(ctx, id)
}

// Process runs the whole pipeline for one job. Meant to be launched in its
// own goroutine; any pipeline error flips the job to failed and stops this
// job only.
func (s *JobService) Process(ctx context.Context, jobID, filePath string) {
	if err := s.run(ctx, jobID, filePath); err != nil {
		s.logger.Error("job processing failed", zap.String("job_id", jobID), zap.Error(err))
		if storeErr := s.store.SetError(ctx, jobID, err.Error()); storeErr != nil {
			s.logger.Error("failed to record job error", zap.String("job_id", jobID), zap.Error(storeErr))
		}
	}
}

func (s *JobService) run(ctx context.Context, jobID, filePath string) error {
	if err := s.store.SetStatus(ctx, jobID, types.JobStatusProcessingOCR); err != nil {
		return err
	}
	ocrResult, err := s.ocr.ProcessFile(ctx, filePath)
	if err != nil {
		return err
	}

	if s.latex != nil {
		s.latex.NormalizePages(ctx, ocrResult)
	}

	if err := s.store.SetStatus(ctx, jobID, types.JobStatusProcessingChunks); err != nil {
		return err
	}
	chunks := s.chunks.ProcessOCRResult(ctx, ocrResult)

	pages := make(map[string]string, len(ocrResult.Pages))
	for i := range ocrResult.Pages {
		page := &ocrResult.Pages[i]
		text := page.CorrectedText
		if text == "" {
			text = page.Content()
		}
		pages[strconv.Itoa(i+1)] = text
	}

	result := &types.JobResult{
		Chunks:      chunks,
		Pages:       pages,
		TotalChunks: len(chunks),
	}
	if err := s.store.SetResult(ctx, jobID, result); err != nil {
		return err
	}
	s.logger.Info("job completed", zap.String("job_id", jobID), zap.Int("total_chunks", len(chunks)))

	if s.index != nil {
		if err := s.index.IndexChunks(ctx, jobID, chunks); err != nil {
			// Indexing is best effort, the job result already stands.
			s.logger.Warn("chunk indexing failed", zap.String("job_id", jobID), zap.Error(err))
		}
	}
	return nil
}

const documentContextPrompt = "You are a document assistant. Answer using the following document content as context.\n\n%s"

// ChatMessages prepends the job's document context as a system message to
// the caller's conversation.
func (s *JobService) ChatMessages(ctx context.Context, jobID string, messages []types.Message) ([]types.Message, error) {
	docContext, err := s.JobContext(ctx, jobID)
	if err != nil {
		return nil, err
	}
	out := make([]types.Message, 0, len(messages)+1)
	out = append(out, types.Message{
		Role:    "system",
		Content: fmt.Sprintf(documentContextPrompt, docContext),
	})
	out = append(out, messages...)
	return out, nil
}

// JobContext aggregates the corrected page texts of a completed job, in
// ascending page order, into one document context string for chat. A job
// that is missing or not yet completed is reported as not found.
func (s *JobService) JobContext(ctx context.Context, jobID string) (string, error) {
	job, err := s.store.Get(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != types.JobStatusCompleted || job.Result == nil {
		return "", fmt.Errorf("%w: job %s is not completed", types.ErrNotFound, jobID)
	}

	pageNumbers := make([]int, 0, len(job.Result.Pages))
	for key := range job.Result.Pages {
		if n, err := strconv.Atoi(key); err == nil {
			pageNumbers = append(pageNumbers, n)
		}
	}
	sort.Ints(pageNumbers)

	var b strings.Builder
	for _, n := range pageNumbers {
		fmt.Fprintf(&b, "Page %d:\n%s\n\n", n, job.Result.Pages[strconv.Itoa(n)])
	}
	return b.String(), nil
}
