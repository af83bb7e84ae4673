package ollama

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"docmind-backend/internal/llm"
)

// maxLineBytes bounds a single NDJSON line from the server.
const maxLineBytes = 1 << 20

// tokenStream decodes newline-delimited JSON fragments from an open
// response body. Malformed lines are skipped so a glitchy upstream still
// yields its readable fragments.
type tokenStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func newTokenStream(body io.ReadCloser) *tokenStream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &tokenStream{body: body, scanner: scanner}
}

// Next returns the next decoded fragment. It returns io.EOF once a
// done-flagged line has been consumed or the connection has closed.
func (s *tokenStream) Next() (llm.Fragment, error) {
	if s.done {
		return llm.Fragment{}, io.EOF
	}

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var payload generateResponse
		if err := json.Unmarshal(line, &payload); err != nil {
			continue
		}
		if payload.Response == nil && !payload.Done {
			continue
		}

		frag := llm.Fragment{Done: payload.Done}
		if payload.Response != nil {
			frag.Text = *payload.Response
			frag.HasText = true
		}
		if payload.Done {
			s.done = true
		}
		return frag, nil
	}

	if err := s.scanner.Err(); err != nil {
		return llm.Fragment{}, err
	}
	return llm.Fragment{}, io.EOF
}

// Close releases the upstream connection. Closing mid-stream aborts the
// generation server-side once the write fails.
func (s *tokenStream) Close() error {
	return s.body.Close()
}

var _ llm.TokenStream = (*tokenStream)(nil)
