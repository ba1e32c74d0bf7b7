package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"
	"github.com/tieubaoca/pdf-insight-be/types"
)

// OpenAIService talks to any OpenAI-compatible chat completion endpoint.
type OpenAIService struct {
	client *openai.Client
	apiKey string
	model  string
}

func NewOpenAIService(baseURL string, apiKey, model string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL // Set this to your local LLM server URL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client: client,
		apiKey: apiKey,
		model:  model,
	}
}

func (s *OpenAIService) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := s.Chat(ctx, []types.Message{{Role: openai.ChatMessageRoleUser, Content: prompt}})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

func (s *OpenAIService) Chat(ctx context.Context, messages []types.Message) (*types.Message, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", types.ErrMissingAPIKey)
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: openaiMessages(messages),
			Model:    s.model,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrProvider, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response generated", types.ErrProvider)
	}

	return &types.Message{
		Role:    "assistant",
		Content: resp.Choices[0].Message.Content,
	}, nil
}

func (s *OpenAIService) ChatStream(ctx context.Context, messages []types.Message, streamHandler types.StreamHandler) error {
	if s.apiKey == "" {
		return fmt.Errorf("%w: OPENAI_API_KEY is not set", types.ErrMissingAPIKey)
	}

	stream, err := s.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{
			Messages: openaiMessages(messages),
			Model:    s.model,
		},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrProvider, err)
	}
	defer stream.Close()
	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("%w: %v", types.ErrProvider, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		streamHandler(resp.Choices[0].Delta.Content)
	}
}

// openaiMessages converts our Message type to OpenAI chat messages.
func openaiMessages(messages []types.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		switch role {
		case openai.ChatMessageRoleSystem, openai.ChatMessageRoleAssistant, openai.ChatMessageRoleUser:
		default:
			role = openai.ChatMessageRoleUser
		}
		out = append(out, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return out
}
