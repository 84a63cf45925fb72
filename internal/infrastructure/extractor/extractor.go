package extractor

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Extractor converts raw uploaded bytes into plain text. Dispatch is by file
// extension, not content sniffing. Unsupported extensions yield an empty
// string without error so that informational attachments (images and the
// like) never abort an upload.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(buffer []byte, fileName string) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return extractPDF(buffer)
	case ".docx":
		return extractDOCX(buffer)
	case ".xlsx":
		return extractXLSX(buffer)
	case ".txt":
		return string(buffer), nil
	case ".html", ".htm":
		return extractHTML(buffer), nil
	default:
		return "", nil
	}
}

var (
	scriptRe = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

func extractHTML(buffer []byte) string {
	text := string(buffer)
	text = scriptRe.ReplaceAllString(text, "")
	text = styleRe.ReplaceAllString(text, "")
	text = tagRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
