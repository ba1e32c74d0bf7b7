package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ProcessResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type JobStatusResponse struct {
	JobID  string      `json:"job_id"`
	Status JobStatus   `json:"status"`
	Result interface{} `json:"result,omitempty"`
}

type ChatResponse struct {
	Content string `json:"content"`
}

type SearchResponse struct {
	Chunks []Chunk `json:"chunks"`
}
