// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analyze orchestrates curation analysis: build a prompt,
// invoke the oracle, normalize the response, then score and resolve
// themes into one immutable curation result per document. Oracle
// failures are retried up to a bound and then downgraded to reject;
// they never abort a batch.
package analyze

import (
	"context"
	"fmt"
	"time"

	"github.com/jcordovilla/obsidian-curator-sub000/internal/normalize"
	"github.com/jcordovilla/obsidian-curator-sub000/internal/score"
	"github.com/jcordovilla/obsidian-curator-sub000/internal/taxonomy"
	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// RationaleUnavailable is the rationale for documents whose analysis
// exhausted the retry bound.
const RationaleUnavailable = "analysis unavailable"

const (
	defaultMaxAttempts = 3
	defaultTimeout     = 120 * time.Second
)

// docState tracks a document through the analysis state machine. No
// state repeats except the prompted/parse-failed retry loop, which is
// strictly bounded.
type docState int

const (
	statePending docState = iota
	statePrompted
	stateParsed
	stateParseFailed
	stateScored
	stateDone
)

// Analyzer runs curation analysis against a fixed oracle, taxonomy,
// and configuration. It holds no per-document state, so one Analyzer
// serves concurrent Analyze calls.
type Analyzer struct {
	oracle Oracle
	tax    *taxonomy.Taxonomy
	schema normalize.Schema
	cfg    types.AnalysisConfig
}

// New builds an Analyzer. The configuration is validated eagerly:
// out-of-range thresholds are fatal before any document is processed.
func New(oracle Oracle, tax *taxonomy.Taxonomy, cfg types.AnalysisConfig) (*Analyzer, error) {
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("threshold configuration: %w", err)
	}
	if len(cfg.Dimensions) == 0 {
		cfg.Dimensions = types.DefaultDimensions()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Analyzer{
		oracle: oracle,
		tax:    tax,
		schema: normalize.NewSchema(cfg.Dimensions),
		cfg:    cfg,
	}, nil
}

// Analyze produces exactly one curation result for the note. It is
// total with respect to oracle-side failures: unavailability, timeout,
// and malformed output all resolve to a reject verdict with a
// diagnostic rationale. The only returned error is ctx.Err(), so a
// cancelled batch can omit the document instead of recording a verdict
// it never earned.
func (a *Analyzer) Analyze(ctx context.Context, note types.Note) (types.CurationResult, error) {
	// Degenerate input short-circuits before any oracle call.
	if note.Length < a.cfg.Thresholds.MinContentLength {
		v := score.LengthReject(note.Length, a.cfg.Dimensions, a.cfg.Thresholds)
		return a.result(note, v, nil, nil, nil, 0), nil
	}

	prompt, err := buildPrompt(note, a.tax)
	if err != nil {
		v := score.LengthReject(note.Length, a.cfg.Dimensions, a.cfg.Thresholds)
		v.Rationale = fmt.Sprintf("rejected: prompt construction failed: %v", err)
		return a.result(note, v, nil, nil, nil, 0), nil
	}

	var (
		rec        *types.NormalizedRecord
		verdict    score.Verdict
		themes     []types.ThemeAssignment
		unresolved []string
		attempts   int
		lastErr    error
		res        types.CurationResult
	)

	for st := statePending; ; {
		switch st {
		case statePending:
			st = statePrompted

		case statePrompted:
			if err := ctx.Err(); err != nil {
				return types.CurationResult{}, err
			}
			attempts++
			callCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
			raw, err := a.oracle.Complete(callCtx, a.cfg.ResolvedModel(), prompt)
			cancel()
			if err != nil {
				lastErr = err
				st = stateParseFailed
				continue
			}
			r, err := normalize.Normalize(raw, a.schema)
			if err != nil {
				lastErr = err
				st = stateParseFailed
				continue
			}
			rec = r
			st = stateParsed

		case stateParseFailed:
			if err := ctx.Err(); err != nil {
				return types.CurationResult{}, err
			}
			if attempts >= a.cfg.MaxAttempts {
				v := score.LengthReject(note.Length, a.cfg.Dimensions, a.cfg.Thresholds)
				v.Rationale = fmt.Sprintf("rejected: %s: %v", RationaleUnavailable, lastErr)
				return a.result(note, v, nil, nil, nil, attempts), nil
			}
			// Bounded retry: a fresh oracle call with the same prompt.
			st = statePrompted

		case stateParsed:
			verdict = score.Evaluate(rec, note.Length, a.cfg.Thresholds, a.cfg.Dimensions)
			themes, unresolved = a.tax.Resolve(rec.Themes, a.cfg.MatchThreshold)
			st = stateScored

		case stateScored:
			res = a.result(note, verdict, rec, themes, unresolved, attempts)
			st = stateDone

		case stateDone:
			return res, nil
		}
	}
}

func (a *Analyzer) result(note types.Note, v score.Verdict, rec *types.NormalizedRecord, themes []types.ThemeAssignment, unresolved []string, attempts int) types.CurationResult {
	res := types.CurationResult{
		NoteID:     note.ID,
		Scores:     v.Scores,
		Composite:  v.Composite,
		Themes:     themes,
		Unresolved: unresolved,
		Accepted:   v.Accepted,
		Rationale:  v.Rationale,
		Attempts:   attempts,
		AnalyzedAt: time.Now().UTC(),
	}
	if attempts > 0 {
		res.Model = a.cfg.ResolvedModel()
	}
	if rec != nil {
		res.Justification = rec.Justification
	}
	return res
}
