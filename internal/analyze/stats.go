// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// DimensionStats summarizes one dimension's distribution over a batch.
// Only present values contribute; missing dimensions are not counted
// as zeros.
type DimensionStats struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
}

// BatchStats aggregates per-document outcomes. It is a pure fold over
// already-produced curation results; verdicts are never re-derived.
type BatchStats struct {
	Analyzed   int                       `json:"analyzed" yaml:"analyzed"`
	Accepted   int                       `json:"accepted" yaml:"accepted"`
	Rejected   int                       `json:"rejected" yaml:"rejected"`
	Skipped    int                       `json:"skipped" yaml:"skipped"`
	AcceptRate float64                   `json:"accept_rate" yaml:"accept_rate"`
	Dimensions map[string]DimensionStats `json:"dimensions" yaml:"dimensions"`
}

// ComputeStats folds curation results into summary statistics.
func ComputeStats(results []types.CurationResult) BatchStats {
	stats := BatchStats{
		Analyzed:   len(results),
		Dimensions: make(map[string]DimensionStats),
	}

	sums := make(map[string]float64)
	for _, r := range results {
		if r.Accepted {
			stats.Accepted++
		} else {
			stats.Rejected++
		}
		for name, s := range r.Scores {
			if !s.Present {
				continue
			}
			d, seen := stats.Dimensions[name]
			if !seen || s.Value < d.Min {
				d.Min = s.Value
			}
			if !seen || s.Value > d.Max {
				d.Max = s.Value
			}
			d.Count++
			sums[name] += s.Value
			stats.Dimensions[name] = d
		}
	}

	for name, d := range stats.Dimensions {
		d.Mean = sums[name] / float64(d.Count)
		stats.Dimensions[name] = d
	}

	if stats.Analyzed > 0 {
		stats.AcceptRate = float64(stats.Accepted) / float64(stats.Analyzed)
	}
	return stats
}
