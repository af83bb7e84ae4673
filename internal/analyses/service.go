package analyses

import (
	"context"
	"errors"
	"strings"
	"time"

	"docmind-backend/internal/chunk"
	"docmind-backend/internal/extract"
	"docmind-backend/internal/llm"
	"docmind-backend/internal/prompt"
	"docmind-backend/internal/shared/metrics"
	"docmind-backend/internal/shared/telemetry"
)

// Request carries one uploaded document plus the user's analysis
// instructions through the pipeline.
type Request struct {
	UserID       string
	Instructions string
	Filename     string
	Data         []byte
	Model        string
}

// Service contains business logic for document analyses. The pipeline is
// extract, chunk, build prompt, generate; nothing is persisted.
type Service struct {
	Extractor      *extract.Extractor
	LLM            llm.Client
	Model          string
	ChunkSize      int
	ChunkOverlap   int
	PromptMaxChars int
}

// Analyze runs the full pipeline and blocks until the model answers.
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	if s == nil || s.Extractor == nil || s.LLM == nil {
		return Result{}, errors.New("analyses service not configured")
	}

	startedAt := time.Now().UTC()
	metrics.IncAnalysisStarted()

	chunks, err := s.prepare(req)
	if err != nil {
		s.failAnalysis(ctx, req, 0, err, &startedAt)
		return Result{}, err
	}

	model := s.model(req)
	p := prompt.Build(req.Instructions, req.Filename, chunks, s.PromptMaxChars)

	analysis, err := s.LLM.Generate(ctx, llm.GenerateInput{Model: model, Prompt: p})
	if err != nil {
		s.failAnalysis(ctx, req, len(chunks), err, &startedAt)
		return Result{}, err
	}

	completedAt := time.Now().UTC()
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(durationMs(&startedAt, &completedAt))
	telemetry.Info("analysis.completed", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"user_id":     req.UserID,
		"filename":    req.Filename,
		"model":       model,
		"chunks":      len(chunks),
		"duration_ms": durationMs(&startedAt, &completedAt),
	})

	return Result{
		Filename:        req.Filename,
		Instructions:    req.Instructions,
		Analysis:        analysis,
		Model:           model,
		ChunksProcessed: len(chunks),
	}, nil
}

// OpenStream runs extraction and chunking, then opens a streaming
// generation. The streamed prompt always embeds only the first chunk with
// the single-part template, so very large documents stream a partial
// analysis rather than blocking. The caller owns the returned stream.
func (s *Service) OpenStream(ctx context.Context, req Request) (llm.TokenStream, error) {
	if s == nil || s.Extractor == nil || s.LLM == nil {
		return nil, errors.New("analyses service not configured")
	}

	startedAt := time.Now().UTC()
	metrics.IncAnalysisStarted()

	chunks, err := s.prepare(req)
	if err != nil {
		s.failAnalysis(ctx, req, 0, err, &startedAt)
		return nil, err
	}

	if len(chunks) > 1 {
		chunks = chunks[:1]
	}

	model := s.model(req)
	p := prompt.Build(req.Instructions, req.Filename, chunks, s.PromptMaxChars)

	stream, err := s.LLM.Stream(ctx, llm.GenerateInput{Model: model, Prompt: p})
	if err != nil {
		s.failAnalysis(ctx, req, len(chunks), err, &startedAt)
		return nil, err
	}

	telemetry.Info("analysis.stream.open", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"user_id":    req.UserID,
		"filename":   req.Filename,
		"model":      model,
	})
	return stream, nil
}

func (s *Service) prepare(req Request) ([]string, error) {
	text, err := s.Extractor.Text(req.Data, req.Filename)
	if err != nil {
		return nil, err
	}
	return chunk.Split(text, s.ChunkSize, s.ChunkOverlap)
}

func (s *Service) model(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	return s.Model
}

func (s *Service) failAnalysis(ctx context.Context, req Request, chunks int, err error, startedAt *time.Time) {
	completedAt := time.Now().UTC()
	metrics.IncAnalysisFailed()
	if startedAt != nil {
		metrics.ObserveAnalysisDurationMs(durationMs(startedAt, &completedAt))
	}
	telemetry.Error("analysis.failed", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"user_id":     req.UserID,
		"filename":    req.Filename,
		"model":       s.model(req),
		"chunks":      chunks,
		"error_code":  classifyFailure(err),
		"error":       sanitizeError(err),
		"duration_ms": durationMs(startedAt, &completedAt),
	})
}

func durationMs(startedAt, completedAt *time.Time) float64 {
	if startedAt == nil || completedAt == nil {
		return 0
	}
	return float64(completedAt.Sub(*startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) string {
	switch {
	case err == nil:
		return ErrorCodeInternal
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return ErrorCodeUnsupportedFormat
	case errors.Is(err, extract.ErrParseFailure):
		return ErrorCodeParseFailure
	case errors.Is(err, extract.ErrUnreadableFile):
		return ErrorCodeUnreadableFile
	case errors.Is(err, llm.ErrUnavailable):
		return ErrorCodeLLMTimeout
	case errors.Is(err, llm.ErrUpstream):
		return ErrorCodeLLMError
	case errors.Is(err, chunk.ErrBadWindow):
		return ErrorCodeValidation
	default:
		return ErrorCodeInternal
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return msg
}
