package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tieubaoca/pdf-insight-be/database"
	"github.com/tieubaoca/pdf-insight-be/types"
	"go.uber.org/zap"
)

type fakeOCR struct {
	response *types.OCRResponse
	err      error
}

func (f *fakeOCR) ProcessFile(ctx context.Context, filePath string) (*types.OCRResponse, error) {
	return f.response, f.err
}

func newTestJobService(ocr OCRProcessor, ai AIService) (*JobService, *database.MemoryJobStore) {
	logger := zap.NewNop()
	store := database.NewMemoryJobStore()
	chunks := NewChunkService(ai, 15, time.Minute, logger)
	latex := NewLatexService(ai, logger)
	return NewJobService(store, ocr, latex, chunks, nil, logger), store
}

func TestCreateJobDistinctIDs(t *testing.T) {
	svc, _ := newTestJobService(&fakeOCR{}, &fakeAI{})
	ctx := context.Background()

	a, err := svc.CreateJob(ctx, "report.pdf", "uploads/report.pdf")
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	b, err := svc.CreateJob(ctx, "report.pdf", "uploads/report.pdf")
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("two jobs share ID %q", a.ID)
	}
	if !strings.HasPrefix(a.ID, "job_") {
		t.Errorf("job ID = %q, want job_ prefix", a.ID)
	}
	if a.Status != types.JobStatusQueued {
		t.Errorf("new job status = %q, want queued", a.Status)
	}
}

func TestProcessOCRFailureMarksJobFailed(t *testing.T) {
	ocr := &fakeOCR{err: errors.New("ocr provider rejected the document")}
	svc, _ := newTestJobService(ocr, &fakeAI{})
	ctx := context.Background()

	job, err := svc.CreateJob(ctx, "broken.pdf", "uploads/broken.pdf")
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	svc.Process(ctx, job.ID, "uploads/broken.pdf")

	got, err := svc.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != types.JobStatusFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.Error == "" {
		t.Error("failed job has empty error message")
	}
	if got.Result != nil {
		t.Error("failed job carries a result")
	}
}

func TestProcessEndToEnd(t *testing.T) {
	ocr := &fakeOCR{response: &types.OCRResponse{Pages: []types.OCRPage{
		{Index: 0, Text: "First page body"},
		{Index: 1, Text: ""},
	}}}
	ai := &fakeAI{generate: func(string) (string, error) { return validChunkReply, nil }}
	svc, _ := newTestJobService(ocr, ai)
	ctx := context.Background()

	job, err := svc.CreateJob(ctx, "doc.pdf", "uploads/doc.pdf")
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	svc.Process(ctx, job.ID, "uploads/doc.pdf")

	got, err := svc.GetJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetJob() error = %v", err)
	}
	if got.Status != types.JobStatusCompleted {
		t.Fatalf("status = %q, want completed (error: %s)", got.Status, got.Error)
	}
	if got.Result == nil {
		t.Fatal("completed job has no result")
	}
	if got.Result.TotalChunks != len(got.Result.Chunks) {
		t.Errorf("total_chunks = %d, want %d", got.Result.TotalChunks, len(got.Result.Chunks))
	}
	for _, chunk := range got.Result.Chunks {
		if chunk.Page != 1 {
			t.Errorf("chunk on page %d, want only page 1 (page 2 is empty)", chunk.Page)
		}
	}
	if len(got.Result.Pages) != 2 {
		t.Errorf("got %d pages, want 2", len(got.Result.Pages))
	}
	if got.Result.Pages["1"] != "First page body" {
		t.Errorf("page 1 text = %q", got.Result.Pages["1"])
	}
}

func TestJobContextOrdersPages(t *testing.T) {
	ocr := &fakeOCR{response: &types.OCRResponse{Pages: []types.OCRPage{
		{Index: 0, Text: "alpha"},
		{Index: 1, Text: "beta"},
	}}}
	ai := &fakeAI{generate: func(string) (string, error) { return validChunkReply, nil }}
	svc, _ := newTestJobService(ocr, ai)
	ctx := context.Background()

	job, _ := svc.CreateJob(ctx, "doc.pdf", "uploads/doc.pdf")
	svc.Process(ctx, job.ID, "uploads/doc.pdf")

	docContext, err := svc.JobContext(ctx, job.ID)
	if err != nil {
		t.Fatalf("JobContext() error = %v", err)
	}
	first := strings.Index(docContext, "Page 1:\nalpha")
	second := strings.Index(docContext, "Page 2:\nbeta")
	if first == -1 || second == -1 || first > second {
		t.Errorf("document context pages out of order:\n%s", docContext)
	}
}

func TestChatMessagesRejectsInFlightJob(t *testing.T) {
	svc, store := newTestJobService(&fakeOCR{}, &fakeAI{})
	ctx := context.Background()

	job, _ := svc.CreateJob(ctx, "doc.pdf", "uploads/doc.pdf")
	if err := store.SetStatus(ctx, job.ID, types.JobStatusProcessingOCR); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	_, err := svc.ChatMessages(ctx, job.ID, []types.Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound for in-flight job", err)
	}
}

func TestChatMessagesUnknownJob(t *testing.T) {
	svc, _ := newTestJobService(&fakeOCR{}, &fakeAI{})

	_, err := svc.ChatMessages(context.Background(), "job_missing", []types.Message{{Role: "user", Content: "hi"}})
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestChatMessagesPrependsContext(t *testing.T) {
	ocr := &fakeOCR{response: &types.OCRResponse{Pages: []types.OCRPage{{Index: 0, Text: "the answer is 42"}}}}
	ai := &fakeAI{generate: func(string) (string, error) { return validChunkReply, nil }}
	svc, _ := newTestJobService(ocr, ai)
	ctx := context.Background()

	job, _ := svc.CreateJob(ctx, "doc.pdf", "uploads/doc.pdf")
	svc.Process(ctx, job.ID, "uploads/doc.pdf")

	messages, err := svc.ChatMessages(ctx, job.ID, []types.Message{{Role: "user", Content: "what is the answer?"}})
	if err != nil {
		t.Fatalf("ChatMessages() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].Role != "system" || !strings.Contains(messages[0].Content, "the answer is 42") {
		t.Errorf("system message missing document context: %+v", messages[0])
	}
	if messages[1].Content != "what is the answer?" {
		t.Errorf("user message = %q", messages[1].Content)
	}
}
