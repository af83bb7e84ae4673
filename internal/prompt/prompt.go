package prompt

import "fmt"

// DefaultMaxChars bounds how much document text is embedded in a prompt.
const DefaultMaxChars = 12000

const singleChunkTemplate = `You are an expert document analyst. Analyze the following document according to the user's instructions. Be thorough and detailed.

INSTRUCTIONS: %s

DOCUMENT (%s):
---
%s
---

Provide your analysis based on the instructions above.`

const multiChunkTemplate = `You are an expert document analyst. This is a large document split into %d parts. Analyze it according to the user's instructions.

INSTRUCTIONS: %s

DOCUMENT (%s) - Part 1 of %d:
---
%s
---

Note: This document continues. Focus on extracting key information relevant to the instructions.

Provide your analysis based on the instructions above.`

// Build renders the analysis prompt from user instructions, the uploaded
// filename, and the chunked document text. Only the first chunk is embedded;
// when more than one chunk exists the template tells the model it is seeing
// part 1 of the whole. The embedded chunk is truncated to maxChars runes.
func Build(instructions, filename string, chunks []string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var body string
	if len(chunks) > 0 {
		body = Truncate(chunks[0], maxChars)
	}

	if len(chunks) > 1 {
		return fmt.Sprintf(multiChunkTemplate, len(chunks), instructions, filename, len(chunks), body)
	}
	return fmt.Sprintf(singleChunkTemplate, instructions, filename, body)
}

// Truncate caps s at n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
