package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const docxWithTable = `<?xml version="1.0"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
	`<w:p><w:r><w:t>Intro paragraph</w:t></w:r></w:p>` +
	`<w:tbl>` +
	`<w:tr><w:tc><w:p><w:r><w:t>Name</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>Value</w:t></w:r></w:p></w:tc></w:tr>` +
	`<w:tr><w:tc><w:p><w:r><w:t>Rate</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>42</w:t></w:r></w:p></w:tc></w:tr>` +
	`<w:tr><w:tc><w:p><w:r><w:t></w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>OnlyCell</w:t></w:r></w:p></w:tc></w:tr>` +
	`</w:tbl>` +
	`<w:p><w:r><w:t>Closing paragraph</w:t></w:r></w:p>` +
	`<w:p><w:r><w:t>   </w:t></w:r></w:p>` +
	`</w:body></w:document>`

func TestText_DocxParagraphsAndTables(t *testing.T) {
	e := New("docx")
	got, err := e.Text(buildDocx(t, docxWithTable), "contract.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	want := "Intro paragraph\nName | Value\nRate | 42\nOnlyCell\nClosing paragraph"
	if got != want {
		t.Fatalf("unexpected extraction\n got: %q\nwant: %q", got, want)
	}
}

func TestText_DocxSplitRuns(t *testing.T) {
	xml := `<?xml version="1.0"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Hel</w:t></w:r><w:r><w:t>lo</w:t></w:r></w:p>` +
		`</w:body></w:document>`
	e := New("docx")
	got, err := e.Text(buildDocx(t, xml), "runs.docx")
	if err != nil {
		t.Fatalf("extract docx: %v", err)
	}
	if got != "Hello" {
		t.Fatalf("expected runs to concatenate, got %q", got)
	}
}

func TestText_DocExtensionUsesWordParser(t *testing.T) {
	e := NewWithAllFormats()
	got, err := e.Text(buildDocx(t, docxWithTable), "legacy.doc")
	if err != nil {
		t.Fatalf("extract doc: %v", err)
	}
	if got == "" {
		t.Fatal("expected text from .doc dispatch")
	}
}

func TestText_InvalidDocxIsParseFailure(t *testing.T) {
	e := New("docx")
	_, err := e.Text([]byte("plain text pretending"), "fake.docx")
	if !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure for non-zip, got %v", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("unrelated.txt")
	_, _ = w.Write([]byte("hi"))
	_ = zw.Close()
	_, err = e.Text(buf.Bytes(), "hollow.docx")
	if !errors.Is(err, ErrParseFailure) {
		t.Fatalf("expected ErrParseFailure for zip without document.xml, got %v", err)
	}
}
