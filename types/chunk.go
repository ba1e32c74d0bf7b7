package types

const (
	ChunkTypeText  = "text"
	ChunkTypeTable = "table"
	ChunkTypeImage = "image"
)

// Chunk is a semantically scoped unit of page content with descriptive
// metadata, used downstream for retrieval and embedding. Text chunks come
// from the model, table and image chunks pass through from OCR unchanged.
type Chunk struct {
	Type       string `json:"type" bson:"type"`
	Page       int    `json:"page" bson:"page"`
	Content    string `json:"content,omitempty" bson:"content,omitempty"`
	Meaning    string `json:"meaning" bson:"meaning"`
	Summary    string `json:"summary" bson:"summary"`
	TableIndex *int   `json:"table_index,omitempty" bson:"table_index,omitempty"`
	ImageIndex *int   `json:"image_index,omitempty" bson:"image_index,omitempty"`
	Caption    string `json:"caption,omitempty" bson:"caption,omitempty"`
	ImageData  string `json:"image_data,omitempty" bson:"image_data,omitempty"`
}

// ChunkList is the shape the model is asked to reply with.
type ChunkList struct {
	Chunks []Chunk `json:"chunks"`
}
