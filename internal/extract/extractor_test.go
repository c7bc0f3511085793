package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPlainText(t *testing.T) {
	e := NewExtractor(1)
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		content  string
	}{
		{"txt", "notes.txt", "call 555-123-4567"},
		{"markdown", "README.md", "# heading\nuser@example.org"},
		{"csv", "export.csv", "name,email\nJane,jane@example.org"},
		{"log", "app.log", "request from 10.0.0.1"},
		{"no extension", "LICENSE", "plain content"},
		{"unknown extension", "data.xyz", "whatever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Extract(ctx, []byte(tt.content), tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.content, out)
		})
	}
}

func TestExtractHTMLStripsTags(t *testing.T) {
	e := NewExtractor(1)

	out, err := e.Extract(context.Background(), []byte(
		`<html><body><p>Email: <b>user@example.org</b></p><script>alert(1)</script></body></html>`,
	), "page.html")
	require.NoError(t, err)
	assert.Contains(t, out, "user@example.org")
	assert.NotContains(t, out, "<p>")
	assert.NotContains(t, out, "alert(1)")
}

func TestExtractUnsupportedTypes(t *testing.T) {
	e := NewExtractor(1)

	for _, name := range []string{"report.pdf", "letter.docx"} {
		_, err := e.Extract(context.Background(), []byte("binary"), name)
		require.ErrorIs(t, err, ErrUnsupportedType, name)
	}
}

func TestExtractSizeLimit(t *testing.T) {
	e := NewExtractor(1)
	big := strings.Repeat("a", 1024*1024+1)

	_, err := e.Extract(context.Background(), []byte(big), "big.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestExtractLatin1Fallback(t *testing.T) {
	e := NewExtractor(1)

	// 0xE9 is 'é' in Latin-1 but invalid standalone UTF-8.
	out, err := e.Extract(context.Background(), []byte{'c', 'a', 'f', 0xE9}, "menu.txt")
	require.NoError(t, err)
	assert.Equal(t, "café", out)
}

func TestMaxSize(t *testing.T) {
	assert.Equal(t, int64(10*1024*1024), NewExtractor(10).MaxSize())
}
