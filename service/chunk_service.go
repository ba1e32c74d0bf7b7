package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tieubaoca/pdf-insight-be/types"
	"github.com/tieubaoca/pdf-insight-be/utils"
	"go.uber.org/zap"
)

const chunkPrompt = "Analyze the following page content and divide it into distinct sections. " +
	"Treat each section as a logically self-contained unit of information - this could be a header with its related text, a group of paragraphs, a list, etc. " +
	"For each section, provide the following keys:\n" +
	"  - 'content': The full text content of the section.\n" +
	"  - 'type': The type or category of the section (for example, heading, paragraph, list, etc.).\n" +
	"  - 'meaning': A description of what the section represents (e.g., 'Education details', 'Work experience', 'Project summary', etc.).\n" +
	"  - 'summary': A brief summary highlighting the key points of the section.\n" +
	"Return a JSON object with a key 'chunks' mapping to an array of these objects, ensuring each distinct section is returned as a separate chunk.\n\n" +
	"Page content: %s"

const (
	fallbackMeaning = "Full page text without further chunking."
	fallbackSummary = "Fallback chunk."
	tableMeaning    = "Table data extracted from the page."
	tableSummary    = "Table representation."
	imageMeaning    = "Visual content on the page."
	imageSummary    = "Extracted image."
)

// ChunkService turns OCR pages into semantic chunks via the model, capping
// calls to rateLimit per rolling rateWindow within one document. Clock and
// sleep are swappable for tests.
type ChunkService struct {
	ai         AIService
	rateLimit  int
	rateWindow time.Duration
	now        func() time.Time
	sleep      func(time.Duration)
	logger     *zap.Logger
}

func NewChunkService(ai AIService, rateLimit int, rateWindow time.Duration, logger *zap.Logger) *ChunkService {
	if rateLimit <= 0 {
		rateLimit = 15
	}
	if rateWindow <= 0 {
		rateWindow = time.Minute
	}
	return &ChunkService{
		ai:         ai,
		rateLimit:  rateLimit,
		rateWindow: rateWindow,
		now:        time.Now,
		sleep:      time.Sleep,
		logger:     logger,
	}
}

// rateGate is the sliding request budget for one chunking pass. Bursts up
// to the limit run back-to-back; the first call past the limit blocks until
// the window elapses, then the window restarts.
type rateGate struct {
	limit  int
	window time.Duration
	count  int
	start  time.Time
	now    func() time.Time
	sleep  func(time.Duration)
}

func (g *rateGate) wait(logger *zap.Logger) {
	if g.count < g.limit {
		return
	}
	elapsed := g.now().Sub(g.start)
	if elapsed < g.window {
		logger.Info("model request budget reached, waiting for window to elapse",
			zap.Duration("sleep", g.window-elapsed))
		g.sleep(g.window - elapsed)
	}
	g.count = 0
	g.start = g.now()
}

// record counts one successful call. Failed calls do not consume budget.
func (g *rateGate) record() {
	g.count++
}

// ProcessOCRResult produces the ordered chunk sequence for a whole document.
// Pages are processed sequentially in ascending page order; the request
// budget is scoped to this single pass. This never fails: every page error
// degrades to a single fallback chunk.
func (s *ChunkService) ProcessOCRResult(ctx context.Context, ocr *types.OCRResponse) []types.Chunk {
	gate := &rateGate{
		limit:  s.rateLimit,
		window: s.rateWindow,
		start:  s.now(),
		now:    s.now,
		sleep:  s.sleep,
	}

	chunks := []types.Chunk{}
	for i := range ocr.Pages {
		pageNumber := i + 1
		chunks = append(chunks, s.processPage(ctx, gate, &ocr.Pages[i], pageNumber)...)
	}
	s.logger.Info("semantic chunking completed", zap.Int("total_chunks", len(chunks)))
	return chunks
}

// processPage emits text chunks first, then table chunks, then image
// chunks. Tables and images pass through unconditionally; only the text
// content goes through the model.
func (s *ChunkService) processPage(ctx context.Context, gate *rateGate, page *types.OCRPage, pageNumber int) []types.Chunk {
	var chunks []types.Chunk

	content := page.Content()
	if strings.TrimSpace(content) != "" {
		gate.wait(s.logger)
		chunks = append(chunks, s.chunkText(ctx, gate, content, pageNumber)...)
	}

	for i, table := range page.Tables {
		tableIndex := i
		chunks = append(chunks, types.Chunk{
			Type:       types.ChunkTypeTable,
			Page:       pageNumber,
			TableIndex: &tableIndex,
			Content:    table,
			Meaning:    tableMeaning,
			Summary:    tableSummary,
		})
	}

	for i, img := range page.Images {
		imageIndex := i
		chunks = append(chunks, types.Chunk{
			Type:       types.ChunkTypeImage,
			Page:       pageNumber,
			ImageIndex: &imageIndex,
			Meaning:    imageMeaning,
			Summary:    imageSummary,
			Caption:    img.Caption,
			ImageData:  img.Base64,
		})
	}

	return chunks
}

func (s *ChunkService) chunkText(ctx context.Context, gate *rateGate, content string, pageNumber int) []types.Chunk {
	reply, err := s.ai.Generate(ctx, fmt.Sprintf(chunkPrompt, content))
	if err != nil {
		s.logger.Warn("chunking call failed, adding fallback chunk",
			zap.Int("page", pageNumber), zap.Error(err))
		return []types.Chunk{fallbackChunk(content, pageNumber)}
	}
	gate.record()

	var parsed types.ChunkList
	if err := utils.ExtractJSONObject(reply, &parsed); err != nil {
		s.logger.Warn("could not decode chunking reply, adding fallback chunk",
			zap.Int("page", pageNumber), zap.Error(err))
		return []types.Chunk{fallbackChunk(content, pageNumber)}
	}

	chunks := make([]types.Chunk, 0, len(parsed.Chunks))
	for _, chunk := range parsed.Chunks {
		chunk.Page = pageNumber
		chunks = append(chunks, chunk)
	}
	return chunks
}

func fallbackChunk(content string, pageNumber int) types.Chunk {
	return types.Chunk{
		Type:    types.ChunkTypeText,
		Page:    pageNumber,
		Content: content,
		Meaning: fallbackMeaning,
		Summary: fallbackSummary,
	}
}
