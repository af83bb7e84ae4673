package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docmind-backend/internal/chunk"
	"docmind-backend/internal/extract"
	"docmind-backend/internal/llm"
	"docmind-backend/internal/models"
	"docmind-backend/internal/shared/metrics"
	"docmind-backend/internal/shared/server/middleware"
	"docmind-backend/internal/shared/server/respond"
	"docmind-backend/internal/shared/telemetry"
	"docmind-backend/internal/shared/util"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
	// MaxUploadBytes caps the multipart body; zero means the default.
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.POST("/analyze/stream", h.analyzeStream)
}

func (h *Handler) analyze(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	result, err := h.Svc.Analyze(ctx, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respond.JSON(c, http.StatusOK, result)
}

func (h *Handler) analyzeStream(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	stream, err := h.Svc.OpenStream(ctx, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	defer stream.Close()

	header := c.Writer.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	var fragments uint64
	sawDone := false
	for {
		select {
		case <-ctx.Done():
			h.finishStream(ctx, req, fragments, sawDone)
			return
		default:
		}

		frag, err := stream.Next()
		if err != nil {
			// io.EOF means the upstream finished; anything else means the
			// connection dropped mid-stream. Either way the relay is over.
			break
		}
		if frag.HasText {
			if !writeEvent(c.Writer, gin.H{"text": frag.Text}) {
				break
			}
			fragments++
		}
		if frag.Done {
			sawDone = true
			writeEvent(c.Writer, gin.H{"done": true})
			break
		}
	}

	h.finishStream(ctx, req, fragments, sawDone)
}

func (h *Handler) finishStream(ctx context.Context, req Request, fragments uint64, sawDone bool) {
	metrics.AddStreamFragments(fragments)
	metrics.IncAnalysisCompleted()
	telemetry.Info("analysis.stream.closed", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"user_id":    req.UserID,
		"filename":   req.Filename,
		"fragments":  fragments,
		"done":       sawDone,
	})
}

// writeEvent sends one server-sent event and reports whether the client
// connection is still writable.
func writeEvent(w gin.ResponseWriter, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return false
	}
	w.Flush()
	return true
}

func (h *Handler) parseRequest(c *gin.Context) (Request, bool) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = maxUploadSize
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return Request{}, false
	}

	instructions := strings.TrimSpace(c.PostForm("instructions"))
	if instructions == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "instructions is required", nil)
		return Request{}, false
	}

	model := strings.TrimSpace(c.PostForm("model"))
	if model != "" && !models.IsAvailable(model) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown model: "+model, nil)
		return Request{}, false
	}

	filename, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return Request{}, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return Request{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return Request{}, false
	}

	return Request{
		UserID:       middleware.UserIDFromContext(c),
		Instructions: instructions,
		Filename:     filename,
		Data:         data,
		Model:        model,
	}, true
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_format", sanitizeError(err), nil)
	case errors.Is(err, extract.ErrParseFailure):
		respond.Error(c, http.StatusBadRequest, "parse_failure", sanitizeError(err), nil)
	case errors.Is(err, extract.ErrUnreadableFile):
		respond.Error(c, http.StatusBadRequest, "unreadable_file", "File must be text-based", nil)
	case errors.Is(err, chunk.ErrBadWindow):
		respond.Error(c, http.StatusInternalServerError, "internal_error", sanitizeError(err), nil)
	case errors.Is(err, llm.ErrUnavailable):
		respond.Error(c, http.StatusGatewayTimeout, "llm_timeout", "AI model timeout - try a shorter document", nil)
	case errors.Is(err, llm.ErrUpstream):
		respond.Error(c, http.StatusBadGateway, "llm_error", "AI error: "+sanitizeError(err), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", nil)
	}
}
