package detect

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/patterns"
)

// Tier thresholds over the clamped [0,1] risk score.
const (
	TierMediumThreshold = 0.3
	TierHighThreshold   = 0.7
)

// Weights maps each category to its severity weight. The table is
// calibration config, not a contract: the scorer's determinism and
// monotonicity hold for any table.
type Weights map[Category]float64

type weightsFile struct {
	Weights map[string]float64 `yaml:"weights"`
}

// ParseWeights parses a severity weight YAML document. Negative weights
// are a configuration error because they would break monotonicity.
func ParseWeights(data []byte) (Weights, error) {
	var wf weightsFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parsing weights YAML: %w", err)
	}
	w := make(Weights, len(wf.Weights))
	for name, weight := range wf.Weights {
		if weight < 0 {
			return nil, fmt.Errorf("weight for %q is negative", name)
		}
		w[ParseCategory(name)] = weight
	}
	return w, nil
}

// DefaultWeights returns the embedded severity weight table.
func DefaultWeights() (Weights, error) {
	return ParseWeights(patterns.WeightsYAML())
}

// LoadWeightsFile reads a weight table from disk. Returns nil (not an
// error) if the file does not exist so callers fall back to the defaults.
func LoadWeightsFile(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading weights file %s: %w", path, err)
	}
	return ParseWeights(data)
}

// Scorer aggregates final findings into a scalar risk score and tier.
type Scorer struct {
	weights Weights
}

// NewScorer builds a scorer over the given weight table. Categories
// missing from the table fall back to the OTHER weight.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// MustNewScorer builds a scorer over the embedded default weights,
// panicking if the embedded table fails to parse.
func MustNewScorer() *Scorer {
	w, err := DefaultWeights()
	if err != nil {
		panic(fmt.Sprintf("detect.DefaultWeights: %v", err))
	}
	return NewScorer(w)
}

// Score computes min(1.0, sum(weight[category] * confidence)) over the
// findings and buckets it into a tier. Adding a finding never lowers the
// score: weights and confidences are non-negative and the sum is clamped.
func (s *Scorer) Score(findings []Finding) (float64, RiskTier) {
	score := 0.0
	for _, f := range findings {
		w, ok := s.weights[f.Category]
		if !ok {
			w = s.weights[CategoryOther]
		}
		score += w * f.Confidence
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, tierFor(score)
}

func tierFor(score float64) RiskTier {
	switch {
	case score >= TierHighThreshold:
		return TierHigh
	case score >= TierMediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}
