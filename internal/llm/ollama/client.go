package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"docmind-backend/internal/llm"
)

const (
	// DefaultBaseURL is the conventional local Ollama address.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultTimeout bounds a blocking generation end to end.
	DefaultTimeout = 300 * time.Second

	noResponseFallback = "No response"
)

// Client implements llm.Client against an Ollama-compatible server.
// Blocking calls run on a timeout-bounded HTTP client. Streams use a
// separate client with no total-duration timeout; cancellation comes
// from the request context instead.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	streamClient *http.Client
}

// NewClient constructs a Client. An empty baseURL selects the local
// default; a non-positive timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:      base,
		httpClient:   &http.Client{Timeout: timeout},
		streamClient: &http.Client{},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response *string `json:"response"`
	Done     bool    `json:"done"`
}

// Generate performs one blocking generation.
func (c *Client) Generate(ctx context.Context, input llm.GenerateInput) (string, error) {
	resp, err := c.post(ctx, c.httpClient, input, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classifyTransportErr(err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: response parse: %v", llm.ErrUpstream, err)
	}
	if parsed.Response == nil {
		return noResponseFallback, nil
	}
	return *parsed.Response, nil
}

// Stream opens a streaming generation. The caller must Close the stream.
func (c *Client) Stream(ctx context.Context, input llm.GenerateInput) (llm.TokenStream, error) {
	resp, err := c.post(ctx, c.streamClient, input, true)
	if err != nil {
		return nil, err
	}
	return newTokenStream(resp.Body), nil
}

func (c *Client) post(ctx context.Context, hc *http.Client, input llm.GenerateInput, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  input.Model,
		Prompt: input.Prompt,
		Stream: stream,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", llm.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", llm.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return nil, classifyTransportErr(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := readErrorBody(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d: %s", llm.ErrUpstream, resp.StatusCode, detail)
	}
	return resp, nil
}

func classifyTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
		return fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", llm.ErrUnavailable, err)
	}
	return fmt.Errorf("%w: %v", llm.ErrUpstream, err)
}

func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return "unreadable error body"
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "empty error body"
	}
	return msg
}

var _ llm.Client = (*Client)(nil)
