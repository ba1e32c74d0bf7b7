package types

type ChatRequest struct {
	JobID    string    `json:"job_id"`
	Messages []Message `json:"messages"`
}

type SearchRequest struct {
	JobID   string   `json:"job_id,omitempty"`
	Queries []string `json:"queries"`
	Limit   int      `json:"limit,omitempty"`
}
