package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreEmpty(t *testing.T) {
	s := MustNewScorer()
	score, tier := s.Score(nil)
	assert.Equal(t, 0.0, score)
	assert.Equal(t, TierLow, tier)
}

func TestScoreSingleEmail(t *testing.T) {
	s := MustNewScorer()
	score, tier := s.Score([]Finding{
		mkFinding(0, 10, CategoryEmail, 1.0, SourcePattern),
	})
	assert.InDelta(t, 0.35, score, 1e-9)
	assert.Equal(t, TierMedium, tier)
}

func TestScoreClampedToOne(t *testing.T) {
	s := MustNewScorer()
	score, tier := s.Score([]Finding{
		mkFinding(0, 10, CategorySSN, 1.0, SourcePattern),
		mkFinding(20, 30, CategoryCreditCard, 1.0, SourcePattern),
		mkFinding(40, 50, CategoryEmail, 1.0, SourcePattern),
	})
	assert.Equal(t, 1.0, score)
	assert.Equal(t, TierHigh, tier)
}

func TestScoreTierBoundaries(t *testing.T) {
	s := NewScorer(Weights{CategoryOther: 1.0})

	tests := []struct {
		conf float64
		want RiskTier
	}{
		{0.0, TierLow},
		{0.29, TierLow},
		{0.3, TierMedium},
		{0.69, TierMedium},
		{0.7, TierHigh},
		{1.0, TierHigh},
	}
	for _, tt := range tests {
		_, tier := s.Score([]Finding{mkFinding(0, 5, CategoryOther, tt.conf, SourcePattern)})
		assert.Equal(t, tt.want, tier, "confidence %v", tt.conf)
	}
}

func TestScoreMonotonic(t *testing.T) {
	s := MustNewScorer()
	findings := []Finding{
		mkFinding(0, 10, CategoryEmail, 0.9, SourcePattern),
	}
	base, _ := s.Score(findings)

	grown, _ := s.Score(append(findings, mkFinding(20, 30, CategoryIPAddress, 0.5, SourcePattern)))
	assert.GreaterOrEqual(t, grown, base)
}

func TestScoreUnknownCategoryFallsBackToOther(t *testing.T) {
	s := NewScorer(Weights{CategoryOther: 0.4})
	score, _ := s.Score([]Finding{
		mkFinding(0, 10, Category("CUSTOM_THING"), 1.0, SourcePattern),
	})
	assert.InDelta(t, 0.4, score, 1e-9)
}

func TestParseWeightsNegative(t *testing.T) {
	_, err := ParseWeights([]byte("weights:\n  EMAIL: -0.1\n"))
	require.Error(t, err)
}

func TestLoadWeightsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weights:\n  EMAIL: 0.5\n"), 0o600))

	w, err := LoadWeightsFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, w[CategoryEmail])
}

func TestLoadWeightsFileMissing(t *testing.T) {
	w, err := LoadWeightsFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestDefaultWeightsParse(t *testing.T) {
	w, err := DefaultWeights()
	require.NoError(t, err)
	assert.Equal(t, 0.6, w[CategorySSN])
	assert.Equal(t, 0.35, w[CategoryEmail])
	assert.Contains(t, w, CategoryOther)
}
