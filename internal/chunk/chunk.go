package chunk

import (
	"errors"
	"fmt"
)

const (
	// DefaultSize is the window size used when callers pass a non-positive size.
	DefaultSize = 8000
	// DefaultOverlap is the overlap used when callers pass a negative overlap.
	DefaultOverlap = 500
)

// ErrBadWindow reports an overlap that would prevent the window from advancing.
var ErrBadWindow = errors.New("chunk overlap must be smaller than chunk size")

// Split divides text into overlapping windows of at most size runes.
// Window i+1 starts overlap runes before window i ends, so context that
// straddles a boundary appears in both. Text at most size runes long is
// returned whole as a single chunk.
func Split(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrBadWindow, size, overlap)
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}, nil
	}

	step := size - overlap
	chunks := make([]string, 0, (len(runes)+step-1)/step)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}
