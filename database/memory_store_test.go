package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tieubaoca/pdf-insight-be/types"
)

func newJob(id string) *types.Job {
	return &types.Job{
		ID:       id,
		FileName: "doc.pdf",
		Status:   types.JobStatusQueued,
	}
}

func TestMemoryJobStoreCreateAndGet(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	if err := store.Create(ctx, newJob("job_a")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := store.Get(ctx, "job_a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.FileName != "doc.pdf" || got.Status != types.JobStatusQueued {
		t.Errorf("Get() = %+v", got)
	}
}

func TestMemoryJobStoreDuplicateCreate(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	if err := store.Create(ctx, newJob("job_a")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Create(ctx, newJob("job_a")); err == nil {
		t.Error("second Create() = nil, want error")
	}
}

func TestMemoryJobStoreGetUnknown(t *testing.T) {
	store := NewMemoryJobStore()

	_, err := store.Get(context.Background(), "job_missing")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestMemoryJobStoreUpdateUnknown(t *testing.T) {
	store := NewMemoryJobStore()

	err := store.SetStatus(context.Background(), "job_missing", types.JobStatusProcessingOCR)
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestMemoryJobStoreLifecycle(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	if err := store.Create(ctx, newJob("job_a")); err != nil {
		t.Fatal(err)
	}
	if err := store.SetStatus(ctx, "job_a", types.JobStatusProcessingOCR); err != nil {
		t.Fatal(err)
	}
	if err := store.SetStatus(ctx, "job_a", types.JobStatusProcessingChunks); err != nil {
		t.Fatal(err)
	}
	result := &types.JobResult{
		Chunks:      []types.Chunk{{Type: types.ChunkTypeText, Page: 1, Content: "hello"}},
		Pages:       map[string]string{"1": "hello"},
		TotalChunks: 1,
	}
	if err := store.SetResult(ctx, "job_a", result); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "job_a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != types.JobStatusCompleted {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.Result == nil || got.Result.TotalChunks != 1 {
		t.Errorf("result = %+v", got.Result)
	}
}

func TestMemoryJobStoreSetError(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	if err := store.Create(ctx, newJob("job_a")); err != nil {
		t.Fatal(err)
	}
	if err := store.SetError(ctx, "job_a", "ocr timed out"); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Get(ctx, "job_a")
	if got.Status != types.JobStatusFailed || got.Error != "ocr timed out" {
		t.Errorf("job = %+v", got)
	}
}

func TestMemoryJobStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	if err := store.Create(ctx, newJob("job_a")); err != nil {
		t.Fatal(err)
	}
	first, _ := store.Get(ctx, "job_a")
	first.Status = types.JobStatusFailed

	second, _ := store.Get(ctx, "job_a")
	if second.Status != types.JobStatusQueued {
		t.Errorf("store mutated through returned copy: status = %q", second.Status)
	}
}
