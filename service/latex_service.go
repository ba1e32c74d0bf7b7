package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/tieubaoca/pdf-insight-be/types"
	"go.uber.org/zap"
)

const latexPrompt = "The following text was produced by OCR on a page containing mathematics. " +
	"Fix broken or malformed LaTeX expressions and formatting artifacts without changing the wording of the surrounding text. " +
	"Return only the corrected page text, nothing else.\n\n" +
	"Page text: %s"

// LatexService rewrites mathematics-bearing page text through the model.
// It runs as a separate pass over all pages before chunking and does not
// share the chunker's request budget.
type LatexService struct {
	ai     AIService
	logger *zap.Logger
}

func NewLatexService(ai AIService, logger *zap.Logger) *LatexService {
	return &LatexService{
		ai:     ai,
		logger: logger,
	}
}

// NormalizePages fills CorrectedText on every page. Pages without math
// markers pass through unchanged and cost no model call.
func (s *LatexService) NormalizePages(ctx context.Context, ocr *types.OCRResponse) {
	for i := range ocr.Pages {
		page := &ocr.Pages[i]
		page.CorrectedText = s.Normalize(ctx, page.Content(), i+1)
	}
}

// Normalize never fails: any model error falls back to the original text.
func (s *LatexService) Normalize(ctx context.Context, text string, pageNumber int) string {
	if !ContainsMath(text) {
		return text
	}

	reply, err := s.ai.Generate(ctx, fmt.Sprintf(latexPrompt, text))
	if err != nil {
		s.logger.Warn("latex correction failed, keeping original text",
			zap.Int("page", pageNumber), zap.Error(err))
		return text
	}
	return strings.TrimSpace(reply)
}

// ContainsMath reports whether the text carries LaTeX math markers.
func ContainsMath(text string) bool {
	return strings.Contains(text, "$") ||
		strings.Contains(text, `\(`) ||
		strings.Contains(text, `\[`)
}
