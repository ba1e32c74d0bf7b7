package service

import (
	"context"

	"github.com/tieubaoca/pdf-insight-be/types"
)

// AIService is the LLM provider used for chunking, LaTeX correction and chat.
type AIService interface {
	// Generate sends a single prompt and returns the raw reply text.
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, messages []types.Message) (*types.Message, error)
	ChatStream(ctx context.Context, messages []types.Message, streamHandler types.StreamHandler) error
}
