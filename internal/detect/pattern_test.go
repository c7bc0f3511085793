package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternDetection(t *testing.T) {
	d := MustNewPatternDetector()

	tests := []struct {
		name     string
		text     string
		wantCats []Category
	}{
		{
			name:     "no PII",
			text:     "hello world, nothing to see here",
			wantCats: nil,
		},
		{
			name:     "email address",
			text:     "reach me at user@example.org thanks",
			wantCats: []Category{CategoryEmail},
		},
		{
			name:     "phone number dashed",
			text:     "555-123-4567",
			wantCats: []Category{CategoryPhone},
		},
		{
			name:     "phone number dotted",
			text:     "555.123.4567",
			wantCats: []Category{CategoryPhone},
		},
		{
			name:     "ssn does not trigger phone",
			text:     "123-45-6789",
			wantCats: []Category{CategorySSN},
		},
		{
			name:     "credit card passes luhn",
			text:     "4111 1111 1111 1111",
			wantCats: []Category{CategoryCreditCard},
		},
		{
			name:     "ipv4 address",
			text:     "connect to 192.168.1.100 please",
			wantCats: []Category{CategoryIPAddress},
		},
		{
			name:     "multiple categories",
			text:     "user@example.org or 555-123-4567",
			wantCats: []Category{CategoryEmail, CategoryPhone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := d.Detect(tt.text)
			var cats []Category
			for _, f := range findings {
				cats = append(cats, f.Category)
			}
			assert.ElementsMatch(t, tt.wantCats, cats)
			for _, f := range findings {
				assert.Equal(t, tt.text[f.Span.Start:f.Span.End], f.MatchedText)
				assert.Equal(t, SourcePattern, f.Source)
			}
		})
	}
}

func TestLuhnGate(t *testing.T) {
	d := MustNewPatternDetector()

	// 16 digits in card format but an invalid checksum: the regex matches,
	// the Luhn gate rejects.
	findings := d.Detect("number 1234-5678-1234-5678 on file")
	assert.Empty(t, findings)

	findings = d.Detect("number 4111-1111-1111-1111 on file")
	require.Len(t, findings, 1)
	assert.Equal(t, CategoryCreditCard, findings[0].Category)
}

func TestContextBoost(t *testing.T) {
	d := MustNewPatternDetector()

	// "server" is a context word for the IP recognizer.
	boosted := d.Detect("server at 10.0.0.1")
	require.Len(t, boosted, 1)
	assert.InDelta(t, 0.8+ContextBoost, boosted[0].Confidence, 1e-9)

	plain := d.Detect("value 10.0.0.1 recorded")
	require.Len(t, plain, 1)
	assert.InDelta(t, 0.8, plain[0].Confidence, 1e-9)
}

func TestContextBoostClamped(t *testing.T) {
	d := MustNewPatternDetector()

	// Email base 0.95 + 0.35 boost clamps to 1.0.
	findings := d.Detect("contact: user@example.org")
	require.Len(t, findings, 1)
	assert.Equal(t, 1.0, findings[0].Confidence)
}

func TestMinScoreFilter(t *testing.T) {
	d := MustNewPatternDetector(WithMinScore(0.85))

	// IP base score 0.8 without context falls below the floor.
	assert.Empty(t, d.Detect("value 10.0.0.1 recorded"))

	// With a context word the boosted score clears it.
	findings := d.Detect("server at 10.0.0.1")
	require.Len(t, findings, 1)
}

func TestCategoryFilters(t *testing.T) {
	text := "user@example.org or 555-123-4567"

	only := MustNewPatternDetector(WithEnabledCategories([]Category{CategoryEmail}))
	findings := only.Detect(text)
	require.Len(t, findings, 1)
	assert.Equal(t, CategoryEmail, findings[0].Category)

	without := MustNewPatternDetector(WithDisabledCategories([]Category{CategoryEmail}))
	findings = without.Detect(text)
	require.Len(t, findings, 1)
	assert.Equal(t, CategoryPhone, findings[0].Category)
}

func TestCustomRecognizers(t *testing.T) {
	custom := []RecognizerConfig{
		{
			Name:     "Employee ID",
			Category: "OTHER",
			Patterns: []PatternConfig{
				{Name: "emp id", Regex: `\bEMP-\d{5}\b`, Score: 0.7},
			},
		},
	}
	d, err := NewPatternDetector(WithCustomRecognizers(custom))
	require.NoError(t, err)

	findings := d.Detect("badge EMP-00421 issued")
	require.Len(t, findings, 1)
	assert.Equal(t, CategoryOther, findings[0].Category)
	assert.Equal(t, "EMP-00421", findings[0].MatchedText)
}

func TestCustomRecognizerDisablesDefault(t *testing.T) {
	disabled := false
	custom := []RecognizerConfig{
		{Name: "IP Address", Category: "IP_ADDRESS", Enabled: &disabled},
	}
	d, err := NewPatternDetector(WithCustomRecognizers(custom))
	require.NoError(t, err)

	assert.Empty(t, d.Detect("value 10.0.0.1 recorded"))
}

func TestNewPatternDetectorBadRegex(t *testing.T) {
	_, err := NewPatternDetector(WithCustomRecognizers([]RecognizerConfig{
		{
			Name:     "broken",
			Category: "OTHER",
			Patterns: []PatternConfig{{Name: "bad", Regex: `(unclosed`, Score: 0.5}},
		},
	}))
	require.Error(t, err)
}

func TestLuhnValid(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"4111111111111111", true},
		{"5105105105105100", true},
		{"1234567812345678", false},
		{"", false},
		{"7", false},
		{"4111a11111111111", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, luhnValid(tt.number), tt.number)
	}
}

func TestStripNonDigits(t *testing.T) {
	assert.Equal(t, "4111111111111111", stripNonDigits("4111-1111 1111.1111"))
	assert.Equal(t, "", stripNonDigits("abc"))
}
