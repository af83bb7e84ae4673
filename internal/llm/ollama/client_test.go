package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docmind-backend/internal/llm"
)

func TestGenerate_ReturnsResponseField(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"model":"mistral:latest","response":"ok","done":true}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	got, err := client.Generate(context.Background(), llm.GenerateInput{Model: "mistral:latest", Prompt: "hello"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "ok" {
		t.Fatalf("expected ok, got %q", got)
	}

	if gotBody["model"] != "mistral:latest" || gotBody["prompt"] != "hello" {
		t.Fatalf("request body missing fields: %v", gotBody)
	}
	if stream, ok := gotBody["stream"].(bool); !ok || stream {
		t.Fatalf("expected stream:false in request, got %v", gotBody["stream"])
	}
}

func TestGenerate_MissingResponseFieldFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"done":true}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	got, err := client.Generate(context.Background(), llm.GenerateInput{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "No response" {
		t.Fatalf("expected fallback text, got %q", got)
	}
}

func TestGenerate_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 50*time.Millisecond)
	_, err := client.Generate(context.Background(), llm.GenerateInput{Model: "m", Prompt: "p"})
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGenerate_ContextDeadlineIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	client := NewClient(srv.URL, time.Minute)
	_, err := client.Generate(ctx, llm.GenerateInput{Model: "m", Prompt: "p"})
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestGenerate_ServerErrorIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Generate(context.Background(), llm.GenerateInput{Model: "nope", Prompt: "p"})
	if !errors.Is(err, llm.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGenerate_ConnectionRefusedIsUpstream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Generate(context.Background(), llm.GenerateInput{Model: "m", Prompt: "p"})
	if err == nil {
		t.Fatal("expected error for refused connection")
	}
	if !errors.Is(err, llm.ErrUpstream) && !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected a classified inference error, got %v", err)
	}
}

func TestStream_FragmentsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.Stream {
			t.Errorf("expected stream:true request, got %+v err=%v", req, err)
		}
		io.WriteString(w, `{"response":"a"}`+"\n")
		io.WriteString(w, `{"response":"b"}`+"\n")
		io.WriteString(w, "this line is not json\n")
		io.WriteString(w, `{"response":"","done":true}`+"\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	stream, err := client.Stream(context.Background(), llm.GenerateInput{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	var texts []string
	var sawDone bool
	for {
		frag, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if frag.HasText && frag.Text != "" {
			texts = append(texts, frag.Text)
		}
		if frag.Done {
			sawDone = true
		}
	}

	if len(texts) != 2 || texts[0] != "a" || texts[1] != "b" {
		t.Fatalf("expected fragments a, b in order, got %v", texts)
	}
	if !sawDone {
		t.Fatal("expected a done fragment")
	}

	if _, err := stream.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF after done, got %v", err)
	}
}

func TestStream_ConnectionCloseEndsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"response":"partial"}`+"\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	stream, err := client.Stream(context.Background(), llm.GenerateInput{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	frag, err := stream.Next()
	if err != nil || frag.Text != "partial" {
		t.Fatalf("expected partial fragment, got %+v err=%v", frag, err)
	}
	if _, err := stream.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF on connection close, got %v", err)
	}
}

func TestStream_CancelStopsReads(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Error("flusher unsupported")
			return
		}
		io.WriteString(w, `{"response":"first"}`+"\n")
		flusher.Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(srv.URL, time.Second)
	stream, err := client.Stream(ctx, llm.GenerateInput{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	defer stream.Close()

	if frag, err := stream.Next(); err != nil || frag.Text != "first" {
		t.Fatalf("expected first fragment, got %+v err=%v", frag, err)
	}

	cancel()
	if _, err := stream.Next(); err == nil || err == io.EOF {
		t.Fatalf("expected a read error after cancellation, got %v", err)
	}
}

func TestStream_UpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Stream(context.Background(), llm.GenerateInput{Model: "m", Prompt: "p"})
	if !errors.Is(err, llm.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
