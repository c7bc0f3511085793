// Package extract turns uploaded files into plain text for scanning.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	appotel "github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/otel"
)

var tracer = appotel.Tracer("github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/extract")

// ErrUnsupportedType is returned for file types with no extractor yet.
var ErrUnsupportedType = fmt.Errorf("unsupported file type")

// Extractor extracts text content from uploaded file bytes.
type Extractor struct {
	maxSize int64
}

// NewExtractor creates an extractor with a size limit in MB.
func NewExtractor(maxSizeMB int) *Extractor {
	return &Extractor{maxSize: int64(maxSizeMB) * 1024 * 1024}
}

// MaxSize returns the configured size limit in bytes.
func (e *Extractor) MaxSize() int64 { return e.maxSize }

// Extract converts file content to text based on the filename extension.
// Supported: .txt, .md, .csv, .log (passthrough), .html/.htm (tags
// stripped). PDF and DOCX extraction is not implemented yet and returns
// ErrUnsupportedType. Files without a known extension are treated as
// plain text.
func (e *Extractor) Extract(ctx context.Context, content []byte, filename string) (string, error) {
	_, span := tracer.Start(ctx, "extract.extract")
	defer span.End()

	if int64(len(content)) > e.maxSize {
		return "", fmt.Errorf("file size %d exceeds limit %d bytes", len(content), e.maxSize)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md", ".csv", ".log", "":
		return decodeText(content), nil

	case ".html", ".htm":
		return bluemonday.StrictPolicy().Sanitize(decodeText(content)), nil

	case ".pdf", ".docx":
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(filename))

	default:
		return decodeText(content), nil
	}
}

// decodeText returns content as a string, falling back to a Latin-1
// interpretation when the bytes are not valid UTF-8 so legacy exports
// still scan instead of erroring.
func decodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	runes := make([]rune, len(content))
	for i, b := range content {
		runes[i] = rune(b)
	}
	return string(runes)
}
