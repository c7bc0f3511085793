package ner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
)

func TestMapLabel(t *testing.T) {
	tests := []struct {
		label  string
		want   detect.Category
		wantOK bool
	}{
		{"PER", detect.CategoryPersonName, true},
		{"PERSON", detect.CategoryPersonName, true},
		{"B-PER", detect.CategoryPersonName, true},
		{"I-ORG", detect.CategoryOrganization, true},
		{"org", detect.CategoryOrganization, true},
		{" email_address ", detect.CategoryEmail, true},
		{"PHONE_NUMBER", detect.CategoryPhone, true},
		{"MISC", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		cat, ok := MapLabel(tt.label)
		assert.Equal(t, tt.wantOK, ok, tt.label)
		if tt.wantOK {
			assert.Equal(t, tt.want, cat, tt.label)
		}
	}
}

func TestResolveLabelPolicy(t *testing.T) {
	_, keep := resolveLabel("MISC", true)
	assert.False(t, keep)

	cat, keep := resolveLabel("MISC", false)
	assert.True(t, keep)
	assert.Equal(t, detect.CategoryOther, cat)

	cat, keep = resolveLabel("B-PER", true)
	assert.True(t, keep)
	assert.Equal(t, detect.CategoryPersonName, cat)
}
