// Package patterns provides the embedded default detection configuration.
// pii_default.yaml uses a Presidio-compatible recognizer format; weights.yaml
// holds the per-category severity weights used by the risk scorer.
package patterns

import _ "embed"

//go:embed pii_default.yaml
var piiDefaultYAML []byte

//go:embed weights.yaml
var weightsYAML []byte

// PIIDefaultYAML returns the embedded default PII recognizer definitions.
func PIIDefaultYAML() []byte { return piiDefaultYAML }

// WeightsYAML returns the embedded default severity weight table.
func WeightsYAML() []byte { return weightsYAML }
