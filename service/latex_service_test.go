package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tieubaoca/pdf-insight-be/types"
	"go.uber.org/zap"
)

func TestNormalizeSkipsPagesWithoutMath(t *testing.T) {
	ai := &fakeAI{generate: func(string) (string, error) { return "should not be called", nil }}
	svc := NewLatexService(ai, zap.NewNop())

	text := "Plain prose about history, no formulas at all."
	got := svc.Normalize(context.Background(), text, 1)
	if got != text {
		t.Errorf("Normalize() = %q, want original text", got)
	}
	if ai.calls != 0 {
		t.Errorf("model called %d times for math-free text", ai.calls)
	}
}

func TestNormalizeTrimsModelReply(t *testing.T) {
	ai := &fakeAI{generate: func(string) (string, error) { return "  $E = mc^2$\n", nil }}
	svc := NewLatexService(ai, zap.NewNop())

	got := svc.Normalize(context.Background(), `The equation $E = mc^{2$ holds.`, 1)
	if got != "$E = mc^2$" {
		t.Errorf("Normalize() = %q, want trimmed reply", got)
	}
	if ai.calls != 1 {
		t.Errorf("model called %d times, want 1", ai.calls)
	}
}

func TestNormalizeFallsBackOnModelError(t *testing.T) {
	ai := &fakeAI{generate: func(string) (string, error) { return "", errors.New("provider down") }}
	svc := NewLatexService(ai, zap.NewNop())

	text := `Broken math: \[ x + 1 `
	got := svc.Normalize(context.Background(), text, 3)
	if got != text {
		t.Errorf("Normalize() = %q, want original text on error", got)
	}
}

func TestNormalizePagesFillsCorrectedText(t *testing.T) {
	ai := &fakeAI{generate: func(string) (string, error) { return "$x$", nil }}
	svc := NewLatexService(ai, zap.NewNop())

	ocr := &types.OCRResponse{Pages: []types.OCRPage{
		{Index: 0, Text: "no math here"},
		{Index: 1, Text: "inline $x$ math"},
	}}
	svc.NormalizePages(context.Background(), ocr)

	if ocr.Pages[0].CorrectedText != "no math here" {
		t.Errorf("page 1 corrected = %q, want passthrough", ocr.Pages[0].CorrectedText)
	}
	if ocr.Pages[1].CorrectedText != "$x$" {
		t.Errorf("page 2 corrected = %q, want model reply", ocr.Pages[1].CorrectedText)
	}
	if ai.calls != 1 {
		t.Errorf("model called %d times, want 1", ai.calls)
	}
}

func TestContainsMath(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"plain text", false},
		{"a $formula$ inline", true},
		{`display \[ x \]`, true},
		{`inline \( y \)`, true},
		{"price is 5 dollars", false},
	}
	for _, tt := range tests {
		if got := ContainsMath(tt.text); got != tt.want {
			t.Errorf("ContainsMath(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
