package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/tieubaoca/pdf-insight-be/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiService talks to the Gemini API. The client is created lazily on the
// first call so that a missing credential surfaces as a configuration error
// on the failing operation instead of at startup.
type GeminiService struct {
	apiKey    string
	modelName string
	client    *genai.Client
	model     *genai.GenerativeModel
	mu        sync.Mutex
}

func NewGeminiService(apiKey, modelName string) *GeminiService {
	return &GeminiService{
		apiKey:    apiKey,
		modelName: modelName,
	}
}

func (s *GeminiService) ensureModel(ctx context.Context) (*genai.GenerativeModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model != nil {
		return s.model, nil
	}
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is not set", types.ErrMissingAPIKey)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrProvider, err)
	}
	s.client = client
	s.model = client.GenerativeModel(s.modelName)
	return s.model, nil
}

func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	model, err := s.ensureModel(ctx)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrProvider, err)
	}
	content := collectText(resp)
	if content == "" {
		return "", fmt.Errorf("%w: no response generated", types.ErrProvider)
	}
	return content, nil
}

func (s *GeminiService) Chat(ctx context.Context, messages []types.Message) (*types.Message, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages provided")
	}
	model, err := s.ensureModel(ctx)
	if err != nil {
		return nil, err
	}

	chat := model.StartChat()
	chat.History = geminiHistory(messages[:len(messages)-1])

	resp, err := chat.SendMessage(ctx, genai.Text(messages[len(messages)-1].Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrProvider, err)
	}
	content := collectText(resp)
	if content == "" {
		return nil, fmt.Errorf("%w: no response generated", types.ErrProvider)
	}
	return &types.Message{
		Role:    "assistant",
		Content: content,
	}, nil
}

func (s *GeminiService) ChatStream(ctx context.Context, messages []types.Message, streamHandler types.StreamHandler) error {
	if len(messages) == 0 {
		return errors.New("no messages provided")
	}
	model, err := s.ensureModel(ctx)
	if err != nil {
		return err
	}

	chat := model.StartChat()
	chat.History = geminiHistory(messages[:len(messages)-1])

	iter := chat.SendMessageStream(ctx, genai.Text(messages[len(messages)-1].Content))
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrProvider, err)
		}
		if text := collectText(resp); text != "" {
			streamHandler(text)
		}
	}
}

// geminiHistory converts conversation messages into Gemini chat history.
// Gemini only knows the roles "user" and "model".
func geminiHistory(messages []types.Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := "user"
		if msg.Role == "assistant" || msg.Role == "model" {
			role = "model"
		}
		history = append(history, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  role,
		})
	}
	return history
}

func collectText(resp *genai.GenerateContentResponse) string {
	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				content += string(text)
			}
		}
	}
	return content
}
