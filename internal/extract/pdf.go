package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"
)

// parsePDF extracts per-page text and joins the pages with newlines.
// A page with no extractable text, or whose text extraction fails,
// contributes nothing rather than aborting the document.
func parsePDF(data []byte, _ string) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}
