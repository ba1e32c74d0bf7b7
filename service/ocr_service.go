package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tieubaoca/pdf-insight-be/types"
	"go.uber.org/zap"
)

// OCRProcessor converts a local document file into per-page OCR results.
type OCRProcessor interface {
	ProcessFile(ctx context.Context, filePath string) (*types.OCRResponse, error)
}

// MistralOCRService runs documents through the Mistral OCR API: upload the
// file, request a short-lived signed URL, then request OCR processing with
// inline image data. No retry is attempted.
type MistralOCRService struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewMistralOCRService(endpoint, apiKey, model string, logger *zap.Logger) *MistralOCRService {
	return &MistralOCRService{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logger,
	}
}

func (s *MistralOCRService) ProcessFile(ctx context.Context, filePath string) (*types.OCRResponse, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: MISTRAL_API_KEY is not set", types.ErrMissingAPIKey)
	}
	info, err := os.Stat(filePath)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: file %s", types.ErrNotFound, filePath)
	}

	s.logger.Info("uploading file to OCR provider", zap.String("file", filePath))
	fileID, err := s.uploadFile(ctx, filePath)
	if err != nil {
		return nil, err
	}

	signedURL, err := s.signedURL(ctx, fileID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting OCR processing", zap.String("file_id", fileID))
	return s.process(ctx, signedURL)
}

func (s *MistralOCRService) uploadFile(ctx context.Context, filePath string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: file %s", types.ErrNotFound, filePath)
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("purpose", "ocr"); err != nil {
		return "", fmt.Errorf("build upload request failed: %w", err)
	}
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return "", fmt.Errorf("build upload request failed: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("build upload request failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("build upload request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/v1/files", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := s.do(req, &uploaded); err != nil {
		return "", err
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("%w: upload response missing file id", types.ErrProvider)
	}
	return uploaded.ID, nil
}

func (s *MistralOCRService) signedURL(ctx context.Context, fileID string) (string, error) {
	url := fmt.Sprintf("%s/v1/files/%s/url?expiry=1", s.endpoint, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build signed url request failed: %w", err)
	}

	var signed struct {
		URL string `json:"url"`
	}
	if err := s.do(req, &signed); err != nil {
		return "", err
	}
	if signed.URL == "" {
		return "", fmt.Errorf("%w: signed url response missing url", types.ErrProvider)
	}
	return signed.URL, nil
}

func (s *MistralOCRService) process(ctx context.Context, documentURL string) (*types.OCRResponse, error) {
	reqBody := map[string]interface{}{
		"model": s.model,
		"document": map[string]string{
			"type":         "document_url",
			"document_url": documentURL,
		},
		"include_image_base64": true,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal ocr request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/v1/ocr", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build ocr request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result types.OCRResponse
	if err := s.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *MistralOCRService) do(req *http.Request, v any) error {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrProvider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response failed: %v", types.ErrProvider, err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", types.ErrProvider, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: parse response failed: %v", types.ErrProvider, err)
	}
	return nil
}
