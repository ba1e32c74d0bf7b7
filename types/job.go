package types

// JobStatus is the lifecycle stage of a processing job.
type JobStatus string

const (
	JobStatusQueued           JobStatus = "queued"
	JobStatusProcessingOCR    JobStatus = "processing_ocr"
	JobStatusProcessingChunks JobStatus = "processing_chunks"
	JobStatusCompleted        JobStatus = "completed"
	JobStatusFailed           JobStatus = "failed"
)

// Job tracks one uploaded document through the pipeline.
type Job struct {
	ID        string     `json:"job_id" bson:"_id"`
	FileName  string     `json:"file_name" bson:"file_name"`
	FilePath  string     `json:"-" bson:"file_path"`
	Status    JobStatus  `json:"status" bson:"status"`
	Result    *JobResult `json:"result,omitempty" bson:"result,omitempty"`
	Error     string     `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt int64      `json:"created_at" bson:"created_at"`
	UpdatedAt int64      `json:"updated_at" bson:"updated_at"`
}

// IsDone reports whether the job reached a terminal state.
func (j *Job) IsDone() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// JobResult is stored on the job once processing completes.
// Pages maps the 1-based page number (as a string, for BSON compatibility)
// to the corrected text of that page.
type JobResult struct {
	Chunks      []Chunk           `json:"chunks" bson:"chunks"`
	Pages       map[string]string `json:"pages" bson:"pages"`
	TotalChunks int               `json:"total_chunks" bson:"total_chunks"`
}
