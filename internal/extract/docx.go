package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// parseWord extracts text from a Word document. Paragraphs and table rows
// are emitted in document order, newline-joined; a table row is rendered as
// its non-blank cell values joined with " | ".
func parseWord(data []byte, _ string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty document")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a word document: %v", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	return walkDocumentXML(rc)
}

// walkDocumentXML streams tokens from document.xml. Cells contain their own
// paragraphs, so paragraph text inside an open cell belongs to that cell and
// only top-level paragraphs become lines of their own.
func walkDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		lines     []string
		cellStack []*[]string
		rowStack  []*[]string
		para      strings.Builder
		inPara    bool
		inText    bool
	)

	flushParagraph := func() {
		text := strings.TrimSpace(para.String())
		para.Reset()
		if text == "" {
			return
		}
		if len(cellStack) > 0 {
			top := cellStack[len(cellStack)-1]
			*top = append(*top, text)
			return
		}
		lines = append(lines, text)
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document xml: %v", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
			case "t":
				inText = true
			case "tr":
				rowStack = append(rowStack, &[]string{})
			case "tc":
				cellStack = append(cellStack, &[]string{})
			case "tab":
				if inPara {
					para.WriteString("\t")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inPara {
					flushParagraph()
					inPara = false
				}
			case "t":
				inText = false
			case "tc":
				if len(cellStack) == 0 {
					break
				}
				parts := *cellStack[len(cellStack)-1]
				cellStack = cellStack[:len(cellStack)-1]
				if len(rowStack) > 0 {
					row := rowStack[len(rowStack)-1]
					*row = append(*row, strings.TrimSpace(strings.Join(parts, " ")))
				}
			case "tr":
				if len(rowStack) == 0 {
					break
				}
				cells := *rowStack[len(rowStack)-1]
				rowStack = rowStack[:len(rowStack)-1]
				var nonBlank []string
				for _, cell := range cells {
					if cell != "" {
						nonBlank = append(nonBlank, cell)
					}
				}
				if len(nonBlank) == 0 {
					break
				}
				rowText := strings.Join(nonBlank, " | ")
				if len(cellStack) > 0 {
					top := cellStack[len(cellStack)-1]
					*top = append(*top, rowText)
					break
				}
				lines = append(lines, rowText)
			}
		case xml.CharData:
			if inText && inPara {
				para.Write(t)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
