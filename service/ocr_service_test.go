package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tieubaoca/pdf-insight-be/types"
	"go.uber.org/zap"
)

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessFileMissingAPIKey(t *testing.T) {
	svc := NewMistralOCRService("https://api.mistral.ai", "", "mistral-ocr-latest", zap.NewNop())

	_, err := svc.ProcessFile(context.Background(), writeTempPDF(t))
	if !errors.Is(err, types.ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestProcessFileMissingFile(t *testing.T) {
	svc := NewMistralOCRService("https://api.mistral.ai", "key", "mistral-ocr-latest", zap.NewNop())

	_, err := svc.ProcessFile(context.Background(), "no/such/file.pdf")
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestProcessFileHappyPath(t *testing.T) {
	var sawUpload, sawSignedURL, sawOCR bool
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/v1/files", func(w http.ResponseWriter, r *http.Request) {
		sawUpload = true
		if r.Method != http.MethodPost {
			t.Errorf("upload method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if got := r.FormValue("purpose"); got != "ocr" {
			t.Errorf("purpose = %q, want ocr", got)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "file-123"})
	})
	mux.HandleFunc("/v1/files/file-123/url", func(w http.ResponseWriter, r *http.Request) {
		sawSignedURL = true
		json.NewEncoder(w).Encode(map[string]string{"url": server.URL + "/signed/file-123"})
	})
	mux.HandleFunc("/v1/ocr", func(w http.ResponseWriter, r *http.Request) {
		sawOCR = true
		var body struct {
			Model    string `json:"model"`
			Document struct {
				Type        string `json:"type"`
				DocumentURL string `json:"document_url"`
			} `json:"document"`
			IncludeImageBase64 bool `json:"include_image_base64"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode ocr request: %v", err)
		}
		if body.Model != "mistral-ocr-latest" {
			t.Errorf("model = %q", body.Model)
		}
		if body.Document.Type != "document_url" || !strings.Contains(body.Document.DocumentURL, "/signed/file-123") {
			t.Errorf("document = %+v", body.Document)
		}
		if !body.IncludeImageBase64 {
			t.Error("include_image_base64 = false, want true")
		}
		json.NewEncoder(w).Encode(types.OCRResponse{
			Model: "mistral-ocr-latest",
			Pages: []types.OCRPage{{Index: 0, Markdown: "# Title"}},
		})
	})

	svc := NewMistralOCRService(server.URL, "test-key", "mistral-ocr-latest", zap.NewNop())
	result, err := svc.ProcessFile(context.Background(), writeTempPDF(t))
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if !sawUpload || !sawSignedURL || !sawOCR {
		t.Errorf("call sequence incomplete: upload=%v signedURL=%v ocr=%v", sawUpload, sawSignedURL, sawOCR)
	}
	if len(result.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(result.Pages))
	}
	if result.Pages[0].Content() != "# Title" {
		t.Errorf("page content = %q", result.Pages[0].Content())
	}
}

func TestProcessFileProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message": "invalid api key"}`)
	}))
	defer server.Close()

	svc := NewMistralOCRService(server.URL, "bad-key", "mistral-ocr-latest", zap.NewNop())
	_, err := svc.ProcessFile(context.Background(), writeTempPDF(t))
	if !errors.Is(err, types.ErrProvider) {
		t.Errorf("error = %v, want ErrProvider", err)
	}
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want status code in message", err)
	}
}
