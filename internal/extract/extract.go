package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrUnsupportedFormat means the extension names a structured format
	// whose parser is not registered.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrParseFailure means the bytes do not conform to the claimed format.
	ErrParseFailure = errors.New("file could not be parsed")
	// ErrUnreadableFile means the content is not decodable as text.
	ErrUnreadableFile = errors.New("file is not readable as text")
)

// Parser converts raw file bytes into plain text. The original filename
// is passed along for parsers whose output references it.
type Parser func(data []byte, filename string) (string, error)

// builtin maps the structured-format extensions to their parsers. An
// extension listed here never falls through to the plain-text decoder.
var builtin = map[string]Parser{
	"pdf":  parsePDF,
	"docx": parseWord,
	"doc":  parseWord,
	"dxf":  parseDXF,
}

// Extractor dispatches uploads to format parsers by filename extension.
// The parser set is resolved once at startup; querying it afterwards is
// read-only and safe for concurrent use.
type Extractor struct {
	parsers map[string]Parser
}

// New builds an Extractor with the named formats enabled. Unknown names
// are ignored. New() with no arguments enables plain text only.
func New(formats ...string) *Extractor {
	e := &Extractor{parsers: make(map[string]Parser)}
	for _, f := range formats {
		ext := normalizeExt(f)
		if p, ok := builtin[ext]; ok {
			e.parsers[ext] = p
		}
	}
	return e
}

// NewWithAllFormats enables every built-in parser.
func NewWithAllFormats() *Extractor {
	return New("pdf", "docx", "doc", "dxf")
}

// Register adds or replaces the parser for an extension.
func (e *Extractor) Register(ext string, p Parser) {
	if p == nil {
		return
	}
	e.parsers[normalizeExt(ext)] = p
}

// Supports reports whether a parser is registered for the extension.
func (e *Extractor) Supports(ext string) bool {
	_, ok := e.parsers[normalizeExt(ext)]
	return ok
}

// Text converts uploaded bytes into plain text, dispatching on the
// filename's extension. Unrecognized extensions are decoded as plain
// text with a Latin-1 fallback. Errors are ErrUnsupportedFormat,
// ErrParseFailure, or ErrUnreadableFile, wrapped with context.
func (e *Extractor) Text(data []byte, filename string) (string, error) {
	ext := normalizeExt(filepath.Ext(filename))

	if _, structured := builtin[ext]; structured {
		parser, ok := e.parsers[ext]
		if !ok {
			return "", fmt.Errorf("%w: .%s parsing is not enabled", ErrUnsupportedFormat, ext)
		}
		text, err := parser(data, filename)
		if err != nil {
			if errors.Is(err, ErrParseFailure) {
				return "", err
			}
			return "", fmt.Errorf("%w: %s: %v", ErrParseFailure, ext, err)
		}
		return text, nil
	}

	return decodePlainText(data)
}

func normalizeExt(ext string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
}

// decodePlainText decodes bytes as UTF-8, falling back to Latin-1, which
// maps every byte value. The result is rejected when it does not look
// like text, so binary payloads never masquerade as documents.
func decodePlainText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("%w: latin-1 decode: %v", ErrUnreadableFile, err)
		}
		text = string(decoded)
	}

	if !plausibleText(text) {
		return "", fmt.Errorf("%w: content does not look like text", ErrUnreadableFile)
	}
	return text, nil
}

const (
	plausibleSampleRunes  = 512
	plausibleMinPrintable = 0.8
)

func plausibleText(text string) bool {
	if text == "" {
		return true
	}
	total := 0
	printable := 0
	for _, r := range text {
		if r == 0 {
			return false
		}
		total++
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
		if total >= plausibleSampleRunes {
			break
		}
	}
	return float64(printable)/float64(total) >= plausibleMinPrintable
}
