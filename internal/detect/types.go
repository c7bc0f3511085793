// Package detect implements the PII detection core: independent detectors
// (regex patterns and pluggable NER providers) run over the same text, their
// raw findings are merged into a non-overlapping set, scored for overall
// privacy risk, and optionally redacted with category placeholders.
package detect

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors surfaced by the pipeline.
var (
	// ErrInvalidInput is returned when the input text is not valid UTF-8.
	// No partial scan is attempted.
	ErrInvalidInput = errors.New("input text is not valid UTF-8")

	// ErrProviderUnavailable signals that a model provider cannot run.
	// The pipeline recovers by treating its contribution as empty and
	// attaching a warning to the result instead of failing the scan.
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// Category is the closed set of PII categories a finding can carry.
type Category string

const (
	CategoryEmail        Category = "EMAIL"
	CategoryPhone        Category = "PHONE"
	CategorySSN          Category = "SSN"
	CategoryCreditCard   Category = "CREDIT_CARD"
	CategoryIPAddress    Category = "IP_ADDRESS"
	CategoryPersonName   Category = "PERSON_NAME"
	CategoryOrganization Category = "ORGANIZATION"
	CategoryOther        Category = "OTHER"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryEmail,
	CategoryPhone,
	CategorySSN,
	CategoryCreditCard,
	CategoryIPAddress,
	CategoryPersonName,
	CategoryOrganization,
	CategoryOther,
}

// ParseCategory maps an arbitrary label to a Category. Unknown labels map
// to CategoryOther so custom recognizers always land somewhere valid.
func ParseCategory(s string) Category {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// Source tags the provenance of a finding. The merger's tie-break rules and
// the pipeline's registration ordering depend on it.
type Source string

// SourcePattern is the regex pattern detector.
const SourcePattern Source = "pattern"

const modelSourcePrefix = "model:"

// ModelSource returns the Source for a named model provider.
func ModelSource(providerID string) Source {
	return Source(modelSourcePrefix + providerID)
}

// IsPattern reports whether the source is the pattern detector.
func (s Source) IsPattern() bool { return s == SourcePattern }

// ProviderID returns the provider name for a model source, or "" for the
// pattern detector.
func (s Source) ProviderID() string {
	return strings.TrimPrefix(string(s), modelSourcePrefix)
}

// Span is a half-open character range [Start, End) over the original text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Valid reports whether the span is well-formed for a text of n bytes:
// 0 <= Start < End <= n.
func (s Span) Valid(n int) bool {
	return s.Start >= 0 && s.Start < s.End && s.End <= n
}

// Overlaps reports whether the two half-open spans share any position.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Finding is one detected PII occurrence. Findings are immutable after
// construction; MatchedText is always the exact slice of the original text
// covered by Span.
type Finding struct {
	Span        Span     `json:"span"`
	Category    Category `json:"category"`
	Confidence  float64  `json:"confidence"`
	Source      Source   `json:"source"`
	MatchedText string   `json:"matched_text"`
}

// NewFinding constructs a validated Finding over text. It enforces the
// construction invariants: the span is in bounds and non-empty, confidence
// is in [0,1], and MatchedText is text[span.Start:span.End].
func NewFinding(text string, span Span, cat Category, confidence float64, source Source) (Finding, error) {
	if !span.Valid(len(text)) {
		return Finding{}, fmt.Errorf("invalid span [%d,%d) for text of length %d", span.Start, span.End, len(text))
	}
	if confidence < 0 || confidence > 1 {
		return Finding{}, fmt.Errorf("confidence %v out of range [0,1]", confidence)
	}
	return Finding{
		Span:        span,
		Category:    cat,
		Confidence:  confidence,
		Source:      source,
		MatchedText: text[span.Start:span.End],
	}, nil
}

// validFor re-checks the construction invariants against text. Used to
// reject malformed detector output before it reaches the merger.
func (f Finding) validFor(text string) bool {
	return f.Span.Valid(len(text)) &&
		f.Confidence >= 0 && f.Confidence <= 1 &&
		f.MatchedText == text[f.Span.Start:f.Span.End]
}

// RiskTier buckets the aggregate risk score.
type RiskTier string

const (
	TierLow    RiskTier = "LOW"
	TierMedium RiskTier = "MEDIUM"
	TierHigh   RiskTier = "HIGH"
)

// Warning reports a pipeline-level degradation: a detector that could not
// run or whose output was rejected. Warnings distinguish "no PII found"
// from "no detection capability".
type Warning struct {
	Detector Source `json:"detector"`
	Reason   string `json:"reason"`
}

// ScanResult is the immutable outcome of one scan. Findings are pairwise
// non-overlapping and sorted by span start.
type ScanResult struct {
	ID        string    `json:"id"`
	Findings  []Finding `json:"findings"`
	RiskScore float64   `json:"risk_score"`
	RiskTier  RiskTier  `json:"risk_tier"`
	Warnings  []Warning `json:"warnings,omitempty"`
}

// RedactionResult carries the redacted text and the findings that were
// redacted. Characters outside any finding span are byte-for-byte identical
// to the original.
type RedactionResult struct {
	RedactedText string    `json:"redacted_text"`
	Findings     []Finding `json:"findings"`
	Warnings     []Warning `json:"warnings,omitempty"`
}
