package ner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// openAIConfidence is the fixed confidence assigned to LLM-extracted
// entities: the chat API reports no per-entity score, and 0.6 keeps LLM
// findings below every pattern rule's base confidence so regex wins ties.
const openAIConfidence = 0.6

const extractionPrompt = `Extract every person name and organization name from the user's text.
Respond with a JSON array only, no prose: [{"text": "<exact substring>", "label": "PERSON|ORG"}].
Respond with [] if there are none.`

// OpenAIProvider uses a chat model to extract person and organization
// names the regex rules cannot see. Entity offsets are recovered by
// locating each extracted substring in the original text; extractions
// that cannot be located are skipped.
type OpenAIProvider struct {
	client       *openai.Client
	model        string
	dropUnmapped bool
}

// NewOpenAIProvider returns ErrProviderUnavailable-wrapped errors when no
// API key is configured, so a keyless deployment degrades instead of
// failing.
func NewOpenAIProvider(apiKey, model string, dropUnmapped bool) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai: no API key configured", detect.ErrProviderUnavailable)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client:       openai.NewClient(apiKey),
		model:        model,
		dropUnmapped: dropUnmapped,
	}, nil
}

// ID returns the provider identifier.
func (p *OpenAIProvider) ID() string { return "openai" }

type extractedEntity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Recognize asks the chat model for entities and maps them to spans.
func (p *OpenAIProvider) Recognize(ctx context.Context, text string) ([]detect.Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, TimeoutRecognize)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", detect.ErrProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var extracted []extractedEntity
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &extracted); err != nil {
		return nil, fmt.Errorf("decoding entity extraction: %w", err)
	}

	return locateEntities(text, extracted, p.dropUnmapped), nil
}

// locateEntities maps extracted substrings back to spans. Repeated
// extractions of the same substring advance through the text left to
// right so each occurrence gets its own span.
func locateEntities(text string, extracted []extractedEntity, dropUnmapped bool) []detect.Entity {
	cursor := make(map[string]int)
	var out []detect.Entity

	for _, e := range extracted {
		if e.Text == "" {
			continue
		}
		cat, keep := resolveLabel(e.Label, dropUnmapped)
		if !keep {
			continue
		}
		from := cursor[e.Text]
		if from > len(text) {
			continue
		}
		idx := strings.Index(text[from:], e.Text)
		if idx < 0 {
			continue
		}
		start := from + idx
		end := start + len(e.Text)
		cursor[e.Text] = end
		out = append(out, detect.Entity{
			Span:       detect.Span{Start: start, End: end},
			Category:   cat,
			Confidence: openAIConfidence,
		})
	}
	return out
}
