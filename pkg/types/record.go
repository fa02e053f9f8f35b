// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Canonical quality dimension names. These match the field names the
// oracle is instructed to emit, so a NormalizedRecord and a prompt
// schema index the same keys.
const (
	DimOverall              = "overall_quality"
	DimRelevance            = "relevance"
	DimCompleteness         = "completeness"
	DimCredibility          = "credibility"
	DimClarity              = "clarity"
	DimProfessionalWriting  = "professional_writing_quality"
	DimAnalyticalDepth      = "analytical_depth"
	DimEvidenceQuality      = "evidence_quality"
	DimCriticalThinking     = "critical_thinking"
	DimPublicationReadiness = "publication_readiness"
)

// FieldValue is the tri-state value of one numeric dimension: either a
// score in [0.0, 1.0] with Present set, or explicitly missing. A missing
// dimension never carries a number that could be mistaken for a score.
type FieldValue struct {
	Value   float64 `json:"value" yaml:"value"`
	Present bool    `json:"present" yaml:"present"`
}

// Score returns a present FieldValue.
func Score(v float64) FieldValue {
	return FieldValue{Value: v, Present: true}
}

// Missing returns an explicitly missing FieldValue.
func Missing() FieldValue {
	return FieldValue{}
}

// RawTheme is a free-form theme label as emitted by the oracle, with the
// model's self-reported confidence. Labels are resolved against the
// taxonomy later; a RawTheme carries no taxonomy path.
type RawTheme struct {
	Label      string  `json:"theme" yaml:"theme"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// NormalizedRecord is the canonical structured decode of one raw oracle
// response: dimension scores keyed by canonical name, raw theme labels,
// and the model's free-text justification.
type NormalizedRecord struct {
	Dimensions    map[string]FieldValue `json:"dimensions" yaml:"dimensions"`
	Themes        []RawTheme            `json:"themes,omitempty" yaml:"themes,omitempty"`
	Justification string                `json:"justification,omitempty" yaml:"justification,omitempty"`
}

// Dimension returns the named dimension, or an explicit missing value
// when the record does not carry it.
func (r *NormalizedRecord) Dimension(name string) FieldValue {
	if r == nil || r.Dimensions == nil {
		return Missing()
	}
	return r.Dimensions[name]
}
