// Package ner adapts external named-entity-recognition backends to the
// detect.Provider capability. Each adapter owns the mapping from its
// backend's native label set to the closed PII category enumeration.
package ner

import (
	"strings"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
)

// labelMap covers the common NER label vocabularies (CoNLL-2003, spaCy,
// Presidio). Unmapped labels are either dropped or bucketed into OTHER,
// per adapter configuration.
var labelMap = map[string]detect.Category{
	"PER":           detect.CategoryPersonName,
	"PERSON":        detect.CategoryPersonName,
	"ORG":           detect.CategoryOrganization,
	"ORGANIZATION":  detect.CategoryOrganization,
	"EMAIL":         detect.CategoryEmail,
	"EMAIL_ADDRESS": detect.CategoryEmail,
	"PHONE":         detect.CategoryPhone,
	"PHONE_NUMBER":  detect.CategoryPhone,
	"SSN":           detect.CategorySSN,
	"CREDIT_CARD":   detect.CategoryCreditCard,
	"IP_ADDRESS":    detect.CategoryIPAddress,
}

// MapLabel maps a backend label to a category. Labels like "B-PER"/"I-ORG"
// (IOB tagging) are normalized before lookup. ok is false for labels with
// no mapping.
func MapLabel(label string) (cat detect.Category, ok bool) {
	norm := strings.ToUpper(strings.TrimSpace(label))
	norm = strings.TrimPrefix(norm, "B-")
	norm = strings.TrimPrefix(norm, "I-")
	cat, ok = labelMap[norm]
	return cat, ok
}

// resolveLabel applies the adapter's unmapped-label policy.
func resolveLabel(label string, dropUnmapped bool) (detect.Category, bool) {
	if cat, ok := MapLabel(label); ok {
		return cat, true
	}
	if dropUnmapped {
		return "", false
	}
	return detect.CategoryOther, true
}
