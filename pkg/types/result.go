// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// MiscellaneousBucket is the reserved destination for documents whose
// theme labels all failed to resolve against the taxonomy.
const MiscellaneousBucket = "miscellaneous"

// ThemeAssignment is one resolved taxonomy path with its final
// confidence (model-reported confidence discounted by match similarity).
type ThemeAssignment struct {
	// Path is a slash-separated taxonomy path (e.g. "infrastructure/ppps").
	Path string `json:"path" yaml:"path"`

	// Confidence is in [0.0, 1.0].
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// CurationResult is the immutable per-document outcome of one analysis
// pass: scores, resolved themes, verdict, and a human-readable rationale.
// Re-analysis produces a new CurationResult, never an edit of an old one.
type CurationResult struct {
	// NoteID identifies the source document.
	NoteID string `json:"note_id" yaml:"note_id"`

	// RunID identifies the batch run that produced this result.
	RunID string `json:"run_id,omitempty" yaml:"run_id,omitempty"`

	// Scores holds the quality score vector keyed by canonical
	// dimension name. Absent dimensions are explicitly missing.
	Scores map[string]FieldValue `json:"scores" yaml:"scores"`

	// Composite is the weight-blended average of present dimensions.
	// Informational only; the verdict comes from independent gates.
	Composite float64 `json:"composite" yaml:"composite"`

	// Themes lists resolved taxonomy assignments. Empty means the
	// document routes to the miscellaneous bucket.
	Themes []ThemeAssignment `json:"themes,omitempty" yaml:"themes,omitempty"`

	// Unresolved lists raw theme labels that matched no taxonomy node.
	Unresolved []string `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`

	// Accepted is the curation verdict.
	Accepted bool `json:"accepted" yaml:"accepted"`

	// Rationale explains the verdict, including on failure paths.
	Rationale string `json:"rationale" yaml:"rationale"`

	// Justification is the model's own free-text reasoning, kept for
	// audit. Empty when analysis never produced a parsed record.
	Justification string `json:"justification,omitempty" yaml:"justification,omitempty"`

	// Model is the oracle model that produced the analysis. Empty when
	// the document was rejected before any oracle call.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`

	// Attempts is the number of oracle invocations made.
	Attempts int `json:"attempts" yaml:"attempts"`

	// AnalyzedAt is when the result was produced.
	AnalyzedAt time.Time `json:"analyzed_at" yaml:"analyzed_at"`
}

// TopTheme returns the highest-confidence theme assignment and true, or
// a zero assignment and false when the list is empty.
func (r CurationResult) TopTheme() (ThemeAssignment, bool) {
	if len(r.Themes) == 0 {
		return ThemeAssignment{}, false
	}
	top := r.Themes[0]
	for _, t := range r.Themes[1:] {
		if t.Confidence > top.Confidence {
			top = t
		}
	}
	return top, true
}
