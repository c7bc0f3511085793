package ner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
)

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "", true)
	require.ErrorIs(t, err, detect.ErrProviderUnavailable)
}

func TestNewOpenAIProviderDefaults(t *testing.T) {
	p, err := NewOpenAIProvider("sk-test", "", true)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.ID())
	assert.Equal(t, DefaultOpenAIModel, p.model)
}

func TestLocateEntities(t *testing.T) {
	text := "John met Jane at Acme Corp. Later John left."
	extracted := []extractedEntity{
		{Text: "John", Label: "PERSON"},
		{Text: "Jane", Label: "PERSON"},
		{Text: "Acme Corp", Label: "ORG"},
		{Text: "John", Label: "PERSON"}, // second occurrence
	}

	entities := locateEntities(text, extracted, true)
	require.Len(t, entities, 4)

	assert.Equal(t, detect.Span{Start: 0, End: 4}, entities[0].Span)
	assert.Equal(t, detect.Span{Start: 9, End: 13}, entities[1].Span)
	assert.Equal(t, detect.CategoryOrganization, entities[2].Category)

	// Repeated extraction advances past the first occurrence.
	assert.Equal(t, "John", text[entities[3].Span.Start:entities[3].Span.End])
	assert.Greater(t, entities[3].Span.Start, entities[0].Span.Start)

	for _, e := range entities {
		assert.Equal(t, openAIConfidence, e.Confidence)
	}
}

func TestLocateEntitiesSkipsMissingAndUnmapped(t *testing.T) {
	text := "only Jane here"
	extracted := []extractedEntity{
		{Text: "Bob", Label: "PERSON"},    // not in text
		{Text: "Jane", Label: "ANIMAL"},   // unmapped label
		{Text: "", Label: "PERSON"},       // empty extraction
		{Text: "Jane", Label: "B-PERSON"}, // kept
	}

	entities := locateEntities(text, extracted, true)
	require.Len(t, entities, 1)
	assert.Equal(t, detect.CategoryPersonName, entities[0].Category)
	assert.Equal(t, "Jane", text[entities[0].Span.Start:entities[0].Span.End])
}
