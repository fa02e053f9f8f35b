// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score derives a curation verdict from a normalized record.
// Dimensions gate independently: acceptance requires every configured
// threshold to hold, not a blended passing score, so lowering one
// threshold changes the accept rate without compensating changes
// elsewhere. Missing data is never imputed to a passing or failing
// default.
package score

import (
	"fmt"
	"strings"

	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// RationaleInsufficient is the rationale prefix for verdicts rejected
// because a required dimension was missing from the analysis.
const RationaleInsufficient = "insufficient analysis data"

// Verdict is the scorer's output: the score vector, the informational
// composite, the accept/reject decision, and its rationale.
type Verdict struct {
	Scores    map[string]types.FieldValue
	Composite float64
	Accepted  bool
	Rationale string
}

// Evaluate applies the configured gates to a normalized record.
// contentLength is the document body length in characters; the length
// gate is re-checked here even though the orchestrator short-circuits
// short documents before calling the oracle.
func Evaluate(rec *types.NormalizedRecord, contentLength int, thresholds types.ThresholdConfig, dims []types.DimensionSpec) Verdict {
	if len(dims) == 0 {
		dims = types.DefaultDimensions()
	}

	v := Verdict{Scores: make(map[string]types.FieldValue, len(dims))}
	for _, d := range dims {
		v.Scores[d.Name] = rec.Dimension(d.Name)
	}
	v.Composite = composite(v.Scores, dims)

	// Missing required dimensions force a reject before any gate is
	// consulted; an unset field must never influence a numeric decision.
	var missing []string
	for _, d := range dims {
		if d.Required && !v.Scores[d.Name].Present {
			missing = append(missing, d.Name)
		}
	}
	if len(missing) > 0 {
		v.Rationale = fmt.Sprintf("%s: missing %s", RationaleInsufficient, strings.Join(missing, ", "))
		return v
	}

	var failures []string

	if contentLength < thresholds.MinContentLength {
		failures = append(failures, fmt.Sprintf("content length %d below minimum %d", contentLength, thresholds.MinContentLength))
	}

	// Scores compare unrounded against their thresholds.
	for _, g := range []struct {
		dim       string
		threshold float64
	}{
		{types.DimOverall, thresholds.Quality},
		{types.DimRelevance, thresholds.Relevance},
		{types.DimProfessionalWriting, thresholds.ProfessionalWriting},
	} {
		s, ok := v.Scores[g.dim]
		if !ok || !s.Present {
			v.Rationale = fmt.Sprintf("%s: missing %s", RationaleInsufficient, g.dim)
			return v
		}
		if s.Value < g.threshold {
			failures = append(failures, fmt.Sprintf("%s %.2f below threshold %.2f", g.dim, s.Value, g.threshold))
		}
	}

	if len(failures) > 0 {
		v.Rationale = "rejected: " + strings.Join(failures, "; ")
		return v
	}

	v.Accepted = true
	v.Rationale = "accepted: all quality gates passed"
	return v
}

// LengthReject builds the verdict for a document rejected before any
// oracle call because its body is shorter than the configured minimum.
func LengthReject(contentLength int, dims []types.DimensionSpec, thresholds types.ThresholdConfig) Verdict {
	if len(dims) == 0 {
		dims = types.DefaultDimensions()
	}
	scores := make(map[string]types.FieldValue, len(dims))
	for _, d := range dims {
		scores[d.Name] = types.Missing()
	}
	return Verdict{
		Scores: scores,
		Rationale: fmt.Sprintf("rejected: content length %d below minimum %d",
			contentLength, thresholds.MinContentLength),
	}
}

// composite blends present dimensions by normalized weight. It is
// informational only; the verdict comes from the gates above.
func composite(scores map[string]types.FieldValue, dims []types.DimensionSpec) float64 {
	var sum, weight float64
	for _, d := range dims {
		s := scores[d.Name]
		if !s.Present || d.Weight <= 0 {
			continue
		}
		sum += s.Value * d.Weight
		weight += d.Weight
	}
	if weight == 0 {
		return 0
	}
	return sum / weight
}
