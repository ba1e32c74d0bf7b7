package types

import "strings"

// OCRResponse is the OCR provider's result for one document.
type OCRResponse struct {
	Model string    `json:"model,omitempty"`
	Pages []OCRPage `json:"pages"`
}

// OCRPage is one page of the OCR result. Index is 0-based as returned by
// the provider; page numbers exposed to clients are 1-based.
type OCRPage struct {
	Index         int        `json:"index"`
	Text          string     `json:"text,omitempty"`
	Markdown      string     `json:"markdown,omitempty"`
	CorrectedText string     `json:"corrected_text,omitempty"`
	Tables        []string   `json:"tables,omitempty"`
	Images        []OCRImage `json:"images,omitempty"`
}

// OCRImage is an extracted image, optionally with inline base64 data.
type OCRImage struct {
	ID      string `json:"id,omitempty"`
	Caption string `json:"caption,omitempty"`
	Base64  string `json:"image_base64,omitempty"`
}

// Content returns the usable text of the page, preferring the plain text
// field and falling back to markdown.
func (p *OCRPage) Content() string {
	if strings.TrimSpace(p.Text) != "" {
		return p.Text
	}
	return p.Markdown
}
