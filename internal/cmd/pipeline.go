package cmd

import (
	"fmt"
	"os"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/config"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect/ner"
)

// buildPipeline assembles the detection pipeline from resolved config:
// pattern detector with optional recognizer overrides, the model provider
// registry, and the scorer. Recognizer and weight files are validated here,
// at startup, so a malformed rule never surfaces mid-scan.
func buildPipeline(cfg *config.Config) (*detect.Pipeline, error) {
	var patternOpts []detect.PatternOption
	if cfg.PatternFile != "" {
		patternOpts = append(patternOpts, detect.WithRecognizerFile(cfg.PatternFile))
	}
	if cfg.MinScore > 0 {
		patternOpts = append(patternOpts, detect.WithMinScore(cfg.MinScore))
	}
	pattern, err := detect.NewPatternDetector(patternOpts...)
	if err != nil {
		return nil, fmt.Errorf("building pattern detector: %w", err)
	}

	weights, err := detect.DefaultWeights()
	if err != nil {
		return nil, fmt.Errorf("loading default weights: %w", err)
	}
	if cfg.WeightsFile != "" {
		override, err := detect.LoadWeightsFile(cfg.WeightsFile)
		if err != nil {
			return nil, fmt.Errorf("loading weights file: %w", err)
		}
		for cat, w := range override {
			weights[cat] = w
		}
	}

	registry := buildRegistry(cfg)

	return detect.NewPipeline(pattern, registry, detect.NewScorer(weights)), nil
}

// buildRegistry registers every configured model provider. Registration is
// cheap; providers only connect on first use, and an unreachable provider
// degrades scans with a warning instead of failing them.
func buildRegistry(cfg *config.Config) *detect.Registry {
	registry := detect.NewRegistry()

	if cfg.NERBaseURL != "" {
		baseURL := cfg.NERBaseURL
		drop := cfg.DropUnmapped
		registry.Register("hf_ner", func() (detect.Provider, error) {
			return ner.NewHTTPProvider("hf_ner", baseURL, drop)
		})
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		model := cfg.OpenAIModel
		drop := cfg.DropUnmapped
		registry.Register("openai", func() (detect.Provider, error) {
			return ner.NewOpenAIProvider(key, model, drop)
		})
	}

	return registry
}
