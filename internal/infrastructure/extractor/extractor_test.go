package extractor

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExtractHTMLStripsScriptsAndTags(t *testing.T) {
	e := New()
	input := []byte(`<script>bad()</script><p>Hello <b>World</b></p>`)

	got, err := e.Extract(input, "page.html")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "Hello World" {
		t.Fatalf("Extract() = %q, want %q", got, "Hello World")
	}
}

func TestExtractHTMLStripsStyleAndCollapsesWhitespace(t *testing.T) {
	e := New()
	input := []byte("<STYLE>body { color: red }</STYLE>\n<div>  a\n\tb  </div>\n")

	got, err := e.Extract(input, "page.htm")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "a b" {
		t.Fatalf("Extract() = %q, want %q", got, "a b")
	}
}

func TestExtractUnsupportedExtensionYieldsEmpty(t *testing.T) {
	e := New()
	for _, name := range []string{"data.csv", "photo.jpg", "archive", "scan.png"} {
		got, err := e.Extract([]byte("some,data"), name)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
		if got != "" {
			t.Fatalf("%s: expected empty text, got %q", name, got)
		}
	}
}

func TestExtractPlainTextVerbatim(t *testing.T) {
	e := New()
	got, err := e.Extract([]byte("line one\nline two"), "notes.TXT")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "line one\nline two" {
		t.Fatalf("Extract() = %q", got)
	}
}

func TestExtractCorruptPDFReturnsError(t *testing.T) {
	e := New()
	if _, err := e.Extract([]byte("not a pdf at all"), "scan.pdf"); err == nil {
		t.Fatalf("expected error for corrupt pdf")
	}
}

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := entry.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDOCXParagraphText(t *testing.T) {
	docXML := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t> paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	e := New()
	got, err := e.Extract(buildDOCX(t, docXML), "report.docx")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "First paragraph.") || !strings.Contains(got, "Second paragraph.") {
		t.Fatalf("missing paragraph text: %q", got)
	}
	if strings.Contains(got, "<") {
		t.Fatalf("markup leaked into text: %q", got)
	}
}

func TestExtractDOCXWithoutDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, _ := writer.Create("other.xml")
	_, _ = entry.Write([]byte("<x/>"))
	_ = writer.Close()

	e := New()
	if _, err := e.Extract(buf.Bytes(), "broken.docx"); err == nil {
		t.Fatalf("expected error for docx without word/document.xml")
	}
}

func TestExtractXLSXCellText(t *testing.T) {
	workbook := excelize.NewFile()
	_ = workbook.SetCellValue("Sheet1", "A1", "blood pressure")
	_ = workbook.SetCellValue("Sheet1", "B1", "120/80")
	_ = workbook.SetCellValue("Sheet1", "A2", "pulse")
	buf, err := workbook.WriteToBuffer()
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	e := New()
	got, err := e.Extract(buf.Bytes(), "vitals.xlsx")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(got, "blood pressure 120/80") || !strings.Contains(got, "pulse") {
		t.Fatalf("unexpected xlsx text: %q", got)
	}
}
