// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// Verdict filters query results by curation outcome.
type Verdict string

const (
	VerdictAny      Verdict = ""
	VerdictAccepted Verdict = "accepted"
	VerdictRejected Verdict = "rejected"
)

// QueryOptions holds parameters for result queries.
type QueryOptions struct {
	// Query is an FTS5 full-text search over rationale and
	// justification text.
	Query string

	// RunID restricts results to one batch run.
	RunID string

	// NoteID restricts results to one document across runs.
	NoteID string

	// Verdict filters by curation outcome.
	Verdict Verdict

	// Theme filters to results carrying the given taxonomy path.
	Theme string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.RunID == "" && q.NoteID == "" &&
		q.Verdict == VerdictAny && q.Theme == ""
}

// Results queries stored curation results with optional full-text
// search and structured filters. Full-text queries rank by relevance;
// structured-only queries sort newest first.
func (s *Store) Results(ctx context.Context, opts QueryOptions) ([]types.CurationResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT r.note_id, r.run_id, r.accepted, r.composite, r.scores,
				r.themes, r.unresolved, r.rationale, r.justification,
				r.model, r.attempts, r.analyzed_at
			FROM results_fts
			JOIN results r ON r.rowid = results_fts.rowid
			WHERE results_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT r.note_id, r.run_id, r.accepted, r.composite, r.scores,
				r.themes, r.unresolved, r.rationale, r.justification,
				r.model, r.attempts, r.analyzed_at
			FROM results r
			WHERE 1=1`)
	}

	if opts.RunID != "" {
		qb.WriteString(` AND r.run_id = ?`)
		args = append(args, opts.RunID)
	}

	if opts.NoteID != "" {
		qb.WriteString(` AND r.note_id = ?`)
		args = append(args, opts.NoteID)
	}

	switch opts.Verdict {
	case VerdictAccepted:
		qb.WriteString(` AND r.accepted = 1`)
	case VerdictRejected:
		qb.WriteString(` AND r.accepted = 0`)
	}

	if opts.Theme != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(r.themes) WHERE json_extract(value, '$.path') = ?)`)
		args = append(args, opts.Theme)
	}

	if useFTS {
		qb.WriteString(` ORDER BY results_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.analyzed_at DESC, r.note_id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []types.CurationResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

func scanResult(rows *sql.Rows) (types.CurationResult, error) {
	var (
		r              types.CurationResult
		accepted       int
		scoresJSON     sql.NullString
		themesJSON     sql.NullString
		unresolvedJSON sql.NullString
		model          sql.NullString
		analyzedAt     sql.NullString
	)

	if err := rows.Scan(
		&r.NoteID, &r.RunID, &accepted, &r.Composite, &scoresJSON,
		&themesJSON, &unresolvedJSON, &r.Rationale, &r.Justification,
		&model, &r.Attempts, &analyzedAt,
	); err != nil {
		return r, fmt.Errorf("scanning result: %w", err)
	}

	r.Accepted = accepted != 0
	if scoresJSON.Valid {
		json.Unmarshal([]byte(scoresJSON.String), &r.Scores)
	}
	if themesJSON.Valid {
		json.Unmarshal([]byte(themesJSON.String), &r.Themes)
	}
	if unresolvedJSON.Valid {
		json.Unmarshal([]byte(unresolvedJSON.String), &r.Unresolved)
	}
	if model.Valid {
		r.Model = model.String
	}
	if analyzedAt.Valid {
		r.AnalyzedAt, _ = time.Parse(time.RFC3339Nano, analyzedAt.String)
	}

	return r, nil
}
