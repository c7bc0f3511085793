package detect

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/patterns"
)

// RecognizerFile is the top-level YAML structure for a recognizer config
// file. Mirrors Presidio's recognizer registry format.
type RecognizerFile struct {
	Recognizers []RecognizerConfig `yaml:"recognizers"`
}

// RecognizerConfig declares one pattern recognizer: a PII category, one or
// more regex patterns with base scores, optional context words that boost
// confidence, and an optional hard validation gate.
type RecognizerConfig struct {
	Name       string          `yaml:"name" json:"name"`
	Category   string          `yaml:"category" json:"category"`
	Enabled    *bool           `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Patterns   []PatternConfig `yaml:"patterns,omitempty" json:"patterns,omitempty"`
	Context    []string        `yaml:"context,omitempty" json:"context,omitempty"`
	Validation string          `yaml:"validation,omitempty" json:"validation,omitempty"`
}

// PatternConfig is a single regex pattern within a recognizer.
type PatternConfig struct {
	Name  string  `yaml:"name" json:"name"`
	Regex string  `yaml:"regex" json:"regex"`
	Score float64 `yaml:"score" json:"score"`
}

// isEnabled returns true if the recognizer is enabled (defaults to true).
func (r *RecognizerConfig) isEnabled() bool {
	if r.Enabled == nil {
		return true
	}
	return *r.Enabled
}

// Rule is a compiled, ready-to-run pattern rule.
type Rule struct {
	Name         string
	Category     Category
	Pattern      *regexp.Regexp
	Score        float64
	Context      []string
	ValidateLuhn bool
}

// ParseRecognizerFile parses recognizer YAML bytes.
func ParseRecognizerFile(data []byte) (*RecognizerFile, error) {
	var rf RecognizerFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing recognizer YAML: %w", err)
	}
	return &rf, nil
}

// LoadRecognizerFile reads and parses a recognizer YAML file from disk.
// Returns nil (not an error) if the file does not exist, so callers can
// treat a missing override file as a no-op.
func LoadRecognizerFile(path string) (*RecognizerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading recognizer file %s: %w", path, err)
	}
	return ParseRecognizerFile(data)
}

// DefaultRecognizers returns the built-in recognizers parsed from the
// embedded pii_default.yaml. First layer in the merge chain.
func DefaultRecognizers() ([]RecognizerConfig, error) {
	rf, err := ParseRecognizerFile(patterns.PIIDefaultYAML())
	if err != nil {
		return nil, fmt.Errorf("parsing embedded recognizers: %w", err)
	}
	return rf.Recognizers, nil
}

// MergeRecognizers layers defaults, then global overrides, then per-call
// custom recognizers. Later layers override earlier ones by Name; new
// recognizers are appended.
func MergeRecognizers(layers ...[]RecognizerConfig) []RecognizerConfig {
	index := make(map[string]int)
	var merged []RecognizerConfig

	for _, layer := range layers {
		for _, rc := range layer {
			if idx, exists := index[rc.Name]; exists {
				merged[idx] = rc
			} else {
				index[rc.Name] = len(merged)
				merged = append(merged, rc)
			}
		}
	}
	return merged
}

// CompileRules converts recognizer configs into runtime Rules. Disabled
// recognizers are skipped. A malformed regex or out-of-range score is a
// configuration error, fatal at startup rather than per scan.
func CompileRules(recognizers []RecognizerConfig) ([]Rule, error) {
	var rules []Rule

	for _, rec := range recognizers {
		if !rec.isEnabled() {
			continue
		}
		if rec.Validation != "" && rec.Validation != "luhn" {
			return nil, fmt.Errorf("recognizer %q: unknown validation %q", rec.Name, rec.Validation)
		}
		for _, p := range rec.Patterns {
			compiled, err := regexp.Compile(p.Regex)
			if err != nil {
				return nil, fmt.Errorf("compiling pattern %q in recognizer %q: %w", p.Name, rec.Name, err)
			}
			if p.Score < 0 || p.Score > 1 {
				return nil, fmt.Errorf("pattern %q in recognizer %q: score %v out of range [0,1]", p.Name, rec.Name, p.Score)
			}
			rules = append(rules, Rule{
				Name:         rec.Name,
				Category:     ParseCategory(rec.Category),
				Pattern:      compiled,
				Score:        p.Score,
				Context:      rec.Context,
				ValidateLuhn: rec.Validation == "luhn",
			})
		}
	}
	return rules, nil
}

// FilterByCategories applies enabled/disabled category filters to a
// recognizer list. A non-empty enabled list is a whitelist; the disabled
// list is then applied as a blacklist.
func FilterByCategories(recognizers []RecognizerConfig, enabled, disabled []Category) []RecognizerConfig {
	result := recognizers

	if len(enabled) > 0 {
		allowed := make(map[Category]bool, len(enabled))
		for _, c := range enabled {
			allowed[c] = true
		}
		var filtered []RecognizerConfig
		for _, r := range result {
			if allowed[ParseCategory(r.Category)] {
				filtered = append(filtered, r)
			}
		}
		result = filtered
	}

	if len(disabled) > 0 {
		blocked := make(map[Category]bool, len(disabled))
		for _, c := range disabled {
			blocked[c] = true
		}
		var filtered []RecognizerConfig
		for _, r := range result {
			if !blocked[ParseCategory(r.Category)] {
				filtered = append(filtered, r)
			}
		}
		result = filtered
	}
	return result
}
