package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/tieubaoca/pdf-insight-be/config"
	"github.com/tieubaoca/pdf-insight-be/types"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "chunkType", DataType: []string{"text"}},
			{Name: "meaning", DataType: []string{"text"}},
			{Name: "summary", DataType: []string{"text"}},
			{Name: "caption", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "jobId", DataType: []string{"text"}},
		},
		VectorIndexType: "hnsw",
	}
)

// WeaviateStore indexes completed chunks for similarity search.
type WeaviateStore struct {
	client *weaviate.Client
}

func NewWeaviateStore(config config.WeaviateStoreConfig) (*WeaviateStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	CHUNK_CLASS_OBJECT.Vectorizer = config.Text2Vec
	CHUNK_CLASS_OBJECT.ModuleConfig = config.ModuleConfig
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	// Create DocumentChunk class if it doesn't exist
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create DocumentChunk class: %v", err)
		}
	}
	return &WeaviateStore{
		client: client,
	}, nil
}

func (s *WeaviateStore) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete DocumentChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create DocumentChunk class: %v", err)
	}
	return nil
}

// IndexChunks batch-inserts the text-bearing chunks of a job. Image chunks
// without caption carry nothing searchable and are skipped.
func (s *WeaviateStore) IndexChunks(ctx context.Context, jobID string, chunks []types.Chunk) error {
	indexable := make([]types.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Content == "" && chunk.Caption == "" {
			continue
		}
		indexable = append(indexable, chunk)
	}

	total := len(indexable)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(&models.Object{
				Class:      CHUNK_CLASS,
				Properties: chunkProperties(jobID, indexable[j]),
			})
		}

		if _, err := batcher.Do(ctx); err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
	}

	return nil
}

// SearchChunks runs a nearText query over indexed chunks, optionally
// filtered to one job.
func (s *WeaviateStore) SearchChunks(ctx context.Context, jobID string, queries []string, limit int) ([]types.Chunk, error) {
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "chunkType"},
		{Name: "meaning"},
		{Name: "summary"},
		{Name: "caption"},
		{Name: "page"},
		{Name: "jobId"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}

	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts(queries).
		WithCertainty(0.7)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearText(nearText)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}
	if jobID != "" {
		getBuilder = getBuilder.WithWhere(filters.Where().
			WithPath([]string{"jobId"}).
			WithOperator(filters.Equal).
			WithValueString(jobID))
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var chunks []types.Chunk
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			if props, ok := item.(map[string]interface{}); ok {
				chunks = append(chunks, types.Chunk{
					Type:    stringProp(props, "chunkType"),
					Content: stringProp(props, "content"),
					Meaning: stringProp(props, "meaning"),
					Summary: stringProp(props, "summary"),
					Caption: stringProp(props, "caption"),
					Page:    intProp(props, "page"),
				})
			}
		}
	}

	return chunks, nil
}

func chunkProperties(jobID string, chunk types.Chunk) map[string]interface{} {
	return map[string]interface{}{
		"content":   chunk.Content,
		"chunkType": chunk.Type,
		"meaning":   chunk.Meaning,
		"summary":   chunk.Summary,
		"caption":   chunk.Caption,
		"page":      chunk.Page,
		"jobId":     jobID,
	}
}

// Helper functions
func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func intProp(props map[string]interface{}, key string) int {
	if v, ok := props[key].(float64); ok {
		return int(v)
	}
	return 0
}
