package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
	appotel "github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/otel"
)

var tracer = appotel.Tracer("github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect/ner")

// Timeouts for model inference calls.
const (
	TimeoutRecognize = 30 * time.Second
	timeoutProbe     = 5 * time.Second
)

// HTTPProvider calls a transformer NER model served as an HTTP sidecar
// (POST /v1/entities). The sidecar contract: request {"text": ...},
// response {"entities": [{"start", "end", "label", "score"}, ...]}.
type HTTPProvider struct {
	id           string
	baseURL      string
	httpClient   *http.Client
	dropUnmapped bool
}

// NewHTTPProvider probes the sidecar's /health endpoint and returns an
// error wrapping detect.ErrProviderUnavailable when the service is not
// reachable, so the registry records the provider as degraded instead of
// failing scans.
func NewHTTPProvider(id, baseURL string, dropUnmapped bool) (*HTTPProvider, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: %s: no base URL configured", detect.ErrProviderUnavailable, id)
	}
	p := &HTTPProvider{
		id:           id,
		baseURL:      baseURL,
		httpClient:   &http.Client{},
		dropUnmapped: dropUnmapped,
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutProbe)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", detect.ErrProviderUnavailable, id, err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", detect.ErrProviderUnavailable, id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: health returned %d", detect.ErrProviderUnavailable, id, resp.StatusCode)
	}
	return p, nil
}

// ID returns the provider identifier.
func (p *HTTPProvider) ID() string { return p.id }

type entitiesRequest struct {
	Text string `json:"text"`
}

type entitiesResponse struct {
	Entities []wireEntity `json:"entities"`
}

type wireEntity struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Recognize sends text to the sidecar and maps the returned entities.
func (p *HTTPProvider) Recognize(ctx context.Context, text string) ([]detect.Entity, error) {
	ctx, span := tracer.Start(ctx, "ner.recognize")
	defer span.End()
	span.SetAttributes(attribute.String("ner.provider", p.id))

	ctx, cancel := context.WithTimeout(ctx, TimeoutRecognize)
	defer cancel()

	body, err := json.Marshal(entitiesRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshalling entities request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/entities", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating entities request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %s: %v", detect.ErrProviderUnavailable, p.id, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: entities returned %d", detect.ErrProviderUnavailable, p.id, resp.StatusCode)
	}

	var apiResp entitiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding entities response: %w", err)
	}

	out := make([]detect.Entity, 0, len(apiResp.Entities))
	for _, e := range apiResp.Entities {
		cat, keep := resolveLabel(e.Label, p.dropUnmapped)
		if !keep {
			continue
		}
		out = append(out, detect.Entity{
			Span:       detect.Span{Start: e.Start, End: e.End},
			Category:   cat,
			Confidence: e.Score,
		})
	}
	span.SetAttributes(attribute.Int("ner.entities", len(out)))
	return out, nil
}
