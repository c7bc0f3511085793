package detect

import (
	"fmt"
	"strings"
)

const (
	// ContextBoost is the confidence boost applied when one of a rule's
	// context words appears near a match. Matches Presidio's default
	// context_similarity_factor.
	ContextBoost = 0.35

	// ContextWindowChars is how far before and after a match to look for
	// context words.
	ContextWindowChars = 100
)

// PatternDetector applies compiled regex rules to text. Detection is
// deterministic and side-effect-free; it never blocks.
type PatternDetector struct {
	rules    []Rule
	minScore float64
}

// PatternOption configures a PatternDetector.
type PatternOption func(*patternConfig)

type patternConfig struct {
	recognizerFile     string
	customRecognizers  []RecognizerConfig
	enabledCategories  []Category
	disabledCategories []Category
	minScore           float64
}

// WithRecognizerFile layers recognizers from a YAML file over the embedded
// defaults. A missing file is silently skipped.
func WithRecognizerFile(path string) PatternOption {
	return func(c *patternConfig) { c.recognizerFile = path }
}

// WithCustomRecognizers adds per-caller recognizer definitions on top of
// the defaults and any file overrides.
func WithCustomRecognizers(recs []RecognizerConfig) PatternOption {
	return func(c *patternConfig) { c.customRecognizers = recs }
}

// WithEnabledCategories restricts detection to the given categories.
func WithEnabledCategories(cats []Category) PatternOption {
	return func(c *patternConfig) { c.enabledCategories = cats }
}

// WithDisabledCategories excludes the given categories from detection.
func WithDisabledCategories(cats []Category) PatternOption {
	return func(c *patternConfig) { c.disabledCategories = cats }
}

// WithMinScore overrides the minimum confidence a match needs to become a
// finding. Zero keeps the default of accepting every rule match.
func WithMinScore(score float64) PatternOption {
	return func(c *patternConfig) { c.minScore = score }
}

// NewPatternDetector builds a detector from the embedded defaults plus any
// option layers. Configuration errors (bad regex, bad score) are returned
// here, once, never per scan.
func NewPatternDetector(opts ...PatternOption) (*PatternDetector, error) {
	var cfg patternConfig
	for _, o := range opts {
		o(&cfg)
	}

	defaults, err := DefaultRecognizers()
	if err != nil {
		return nil, fmt.Errorf("loading default recognizers: %w", err)
	}

	var fileRecs []RecognizerConfig
	if cfg.recognizerFile != "" {
		rf, err := LoadRecognizerFile(cfg.recognizerFile)
		if err != nil {
			return nil, fmt.Errorf("loading recognizer file: %w", err)
		}
		if rf != nil {
			fileRecs = rf.Recognizers
		}
	}

	merged := MergeRecognizers(defaults, fileRecs, cfg.customRecognizers)
	merged = FilterByCategories(merged, cfg.enabledCategories, cfg.disabledCategories)

	rules, err := CompileRules(merged)
	if err != nil {
		return nil, fmt.Errorf("compiling rules: %w", err)
	}

	return &PatternDetector{rules: rules, minScore: cfg.minScore}, nil
}

// MustNewPatternDetector is like NewPatternDetector but panics on error.
// Useful for zero-config startup where the embedded defaults are expected
// to always compile.
func MustNewPatternDetector(opts ...PatternOption) *PatternDetector {
	d, err := NewPatternDetector(opts...)
	if err != nil {
		panic(fmt.Sprintf("detect.NewPatternDetector: %v", err))
	}
	return d
}

// Detect runs every rule over text and returns the raw findings, tagged
// with SourcePattern. Each rule's own pass yields non-overlapping matches
// (leftmost-greedy scanning); overlaps across different rules are left for
// the merger to resolve.
func (d *PatternDetector) Detect(text string) []Finding {
	var findings []Finding

	for _, rule := range d.rules {
		matches := rule.Pattern.FindAllStringIndex(text, -1)
		for _, m := range matches {
			value := text[m[0]:m[1]]

			// Hard validation gate: Luhn checksum for card numbers.
			if rule.ValidateLuhn && !luhnValid(stripNonDigits(value)) {
				continue
			}

			confidence := boostWithContext(text, m[0], rule.Score, rule.Context)
			if confidence < d.minScore {
				continue
			}

			f, err := NewFinding(text, Span{Start: m[0], End: m[1]}, rule.Category, confidence, SourcePattern)
			if err != nil {
				continue
			}
			findings = append(findings, f)
		}
	}
	return findings
}

// Rules returns the number of compiled rules. Used by startup logging.
func (d *PatternDetector) Rules() int { return len(d.rules) }

// boostWithContext raises the base score by ContextBoost when any context
// word appears within ContextWindowChars of the match, clamped to 1.0.
func boostWithContext(text string, position int, base float64, contextWords []string) float64 {
	if len(contextWords) == 0 {
		return base
	}
	start := position - ContextWindowChars
	if start < 0 {
		start = 0
	}
	end := position + ContextWindowChars
	if end > len(text) {
		end = len(text)
	}
	window := strings.ToLower(text[start:end])

	for _, cw := range contextWords {
		if strings.Contains(window, strings.ToLower(cw)) {
			boosted := base + ContextBoost
			if boosted > 1.0 {
				boosted = 1.0
			}
			return boosted
		}
	}
	return base
}

// luhnValid checks whether a digit string passes the Luhn algorithm
// (ISO/IEC 7812).
func luhnValid(number string) bool {
	n := len(number)
	if n < 2 {
		return false
	}
	sum := 0
	alt := false
	for i := n - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if alt {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		alt = !alt
	}
	return sum%10 == 0
}

// stripNonDigits removes all non-digit characters from s.
func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
