package detect

import "strings"

// Placeholder returns the fixed redaction token for a category, e.g.
// "[EMAIL_REDACTED]". Tokens are constant-width per category and contain
// no digits or '@', so redacted output never re-matches a pattern rule
// and leaks no length information about the original content.
func Placeholder(cat Category) string {
	return "[" + string(cat) + "_REDACTED]"
}

// RedactText replaces each finding's span with its category placeholder,
// leaving every byte outside the spans untouched. Findings must be
// non-overlapping and sorted by span start — i.e. merger output. The
// output is built by copying the gaps between spans and splicing
// placeholders, so earlier replacements never invalidate later offsets.
func RedactText(text string, findings []Finding) string {
	if len(findings) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, f := range findings {
		b.WriteString(text[last:f.Span.Start])
		b.WriteString(Placeholder(f.Category))
		last = f.Span.End
	}
	b.WriteString(text[last:])
	return b.String()
}
