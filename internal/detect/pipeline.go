package detect

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	appotel "github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/otel"
)

var tracer = appotel.Tracer("github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect")

// Options selects which detectors participate in one scan. A nil or empty
// Detectors slice enables every registered detector.
type Options struct {
	Detectors []Source
}

// Pipeline wires the pattern detector, the model provider registry, and
// the scorer into the scan/redact entry points. Detectors share no mutable
// state; each scan hands every enabled detector its own read-only view of
// the text and joins the results before the merge.
type Pipeline struct {
	pattern  *PatternDetector
	registry *Registry
	scorer   *Scorer
}

// NewPipeline builds a pipeline. registry may be nil when no model
// providers are configured.
func NewPipeline(pattern *PatternDetector, registry *Registry, scorer *Scorer) *Pipeline {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Pipeline{pattern: pattern, registry: registry, scorer: scorer}
}

// sources returns every detector source in registration order: the pattern
// detector first, then model providers in the order they were registered.
func (p *Pipeline) sources() []Source {
	out := []Source{SourcePattern}
	for _, id := range p.registry.IDs() {
		out = append(out, ModelSource(id))
	}
	return out
}

// enabledSources filters the registered sources by opts.
func (p *Pipeline) enabledSources(opts Options) []Source {
	all := p.sources()
	if len(opts.Detectors) == 0 {
		return all
	}
	want := make(map[Source]bool, len(opts.Detectors))
	for _, s := range opts.Detectors {
		want[s] = true
	}
	var out []Source
	for _, s := range all {
		if want[s] {
			out = append(out, s)
		}
	}
	return out
}

// detectorBatch is one detector's joined contribution to a scan.
type detectorBatch struct {
	source   Source
	findings []Finding
	warning  *Warning
}

// Scan runs every enabled detector over text, merges the raw findings,
// and scores the result. Model provider failures degrade to warnings on
// the result; the only errors returned are invalid input and context
// cancellation before the merge point.
func (p *Pipeline) Scan(ctx context.Context, text string, opts Options) (*ScanResult, error) {
	ctx, span := tracer.Start(ctx, "detect.scan")
	defer span.End()

	if !utf8.ValidString(text) {
		return nil, ErrInvalidInput
	}

	enabled := p.enabledSources(opts)
	rank := make(map[Source]int, len(enabled))
	for i, s := range p.sources() {
		rank[s] = i
	}

	var warnings []Warning
	if len(enabled) == 0 {
		// Absence of detection capability is not absence of PII; say so.
		warnings = append(warnings, Warning{Detector: "", Reason: "no detectors enabled"})
	}

	batches := p.runDetectors(ctx, text, enabled)

	var raw []Finding
	for _, b := range batches {
		if b.warning != nil {
			warnings = append(warnings, *b.warning)
			continue
		}
		valid := true
		for _, f := range b.findings {
			if !f.validFor(text) {
				valid = false
				break
			}
		}
		if !valid {
			// Malformed output poisons the whole batch: discard the
			// detector's entire contribution rather than guess which
			// findings to trust.
			log.Warn().Str("detector", string(b.source)).Msg("detector returned malformed findings, output discarded")
			warnings = append(warnings, Warning{Detector: b.source, Reason: "malformed findings discarded"})
			continue
		}
		raw = append(raw, b.findings...)
	}

	// The join is the last cancellation point; merge and score are cheap.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	final := Merge(raw, rank)
	score, tier := p.scorer.Score(final)

	span.SetAttributes(
		attribute.Int("scan.raw_findings", len(raw)),
		attribute.Int("scan.final_findings", len(final)),
		attribute.Float64("scan.risk_score", score),
		attribute.String("scan.risk_tier", string(tier)),
	)

	return &ScanResult{
		ID:        uuid.NewString(),
		Findings:  final,
		RiskScore: score,
		RiskTier:  tier,
		Warnings:  warnings,
	}, nil
}

// Score exposes the pipeline's configured scorer for callers that need to
// re-score a finding set (e.g. audit logging of redactions).
func (p *Pipeline) Score(findings []Finding) (float64, RiskTier) {
	return p.scorer.Score(findings)
}

// Redact scans text and splices category placeholders over the final
// findings. Everything outside a finding span is preserved byte-for-byte.
func (p *Pipeline) Redact(ctx context.Context, text string, opts Options) (*RedactionResult, error) {
	ctx, span := tracer.Start(ctx, "detect.redact")
	defer span.End()

	res, err := p.Scan(ctx, text, opts)
	if err != nil {
		return nil, err
	}

	return &RedactionResult{
		RedactedText: RedactText(text, res.Findings),
		Findings:     res.Findings,
		Warnings:     res.Warnings,
	}, nil
}

// runDetectors invokes each enabled detector concurrently and joins the
// results. Pattern detection is effectively instantaneous; model providers
// may block on inference, so they run in parallel and honor ctx.
func (p *Pipeline) runDetectors(ctx context.Context, text string, enabled []Source) []detectorBatch {
	batches := make([]detectorBatch, len(enabled))

	var wg sync.WaitGroup
	for i, src := range enabled {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			batches[i] = p.runOne(ctx, text, src)
		}(i, src)
	}
	wg.Wait()
	return batches
}

func (p *Pipeline) runOne(ctx context.Context, text string, src Source) detectorBatch {
	if src.IsPattern() {
		return detectorBatch{source: src, findings: p.pattern.Detect(text)}
	}

	id := src.ProviderID()
	provider, err := p.registry.provider(id)
	if err != nil {
		log.Debug().Str("provider", id).Err(err).Msg("model provider unavailable")
		return detectorBatch{source: src, warning: &Warning{Detector: src, Reason: err.Error()}}
	}

	entities, err := provider.Recognize(ctx, text)
	if err != nil {
		log.Debug().Str("provider", id).Err(err).Msg("model provider failed")
		return detectorBatch{source: src, warning: &Warning{Detector: src, Reason: err.Error()}}
	}

	findings := make([]Finding, 0, len(entities))
	for _, e := range entities {
		f, err := NewFinding(text, e.Span, e.Category, e.Confidence, src)
		if err != nil {
			// One bad entity invalidates the provider's whole batch.
			return detectorBatch{source: src, warning: &Warning{Detector: src, Reason: "malformed findings discarded"}}
		}
		findings = append(findings, f)
	}
	return detectorBatch{source: src, findings: findings}
}
