// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize decodes raw oracle responses into normalized records.
// The oracle is an untrusted text source: its output may bury the JSON
// payload in prose, truncate mid-value, use the wrong quote style, or
// leave control characters inside strings. Normalization is a strict
// two-stage decode: locate the payload, repair it, then validate every
// field against the schema. Fields of the wrong type or outside their
// range become explicitly missing, never a coerced or defaulted number.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// FailureReason classifies why a raw response could not be normalized.
type FailureReason string

const (
	// ReasonNoPayload means no balanced payload region was found and
	// label-pattern fallback located no recognizable field.
	ReasonNoPayload FailureReason = "no_payload"

	// ReasonSchemaViolation means a payload decoded but carried none of
	// the expected fields.
	ReasonSchemaViolation FailureReason = "schema_violation"

	// ReasonTruncation means the payload was cut off and repair could
	// not recover a usable record.
	ReasonTruncation FailureReason = "truncation"
)

// ParseFailure is the typed error surfaced to the orchestrator for
// retry decision-making. It is never fatal to a batch.
type ParseFailure struct {
	Reason FailureReason
	Detail string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse failure (%s): %s", e.Reason, e.Detail)
}

// FieldSpec declares one expected numeric field with its valid range.
type FieldSpec struct {
	Name string
	Min  float64
	Max  float64
}

// Schema is the set of expected fields. Label patterns for the
// field-by-field fallback are compiled once at construction.
type Schema struct {
	fields   []FieldSpec
	patterns map[string]*regexp.Regexp
}

// NewSchema builds a Schema from dimension specs; every dimension is a
// numeric field in [0.0, 1.0].
func NewSchema(dims []types.DimensionSpec) Schema {
	s := Schema{patterns: make(map[string]*regexp.Regexp, len(dims))}
	for _, d := range dims {
		s.fields = append(s.fields, FieldSpec{Name: d.Name, Min: 0.0, Max: 1.0})
		s.patterns[d.Name] = regexp.MustCompile(
			`["']?` + regexp.QuoteMeta(d.Name) + `["']?\s*[:=]\s*(-?[0-9]+(?:\.[0-9]+)?)`)
	}
	return s
}

// Fields returns the declared field specs.
func (s Schema) Fields() []FieldSpec { return s.fields }

// themePattern matches one theme entry in free text for the fallback path.
var themePattern = regexp.MustCompile(
	`"theme"\s*:\s*"([^"]+)"\s*,\s*"confidence"\s*:\s*(-?[0-9]+(?:\.[0-9]+)?)`)

// justificationPattern matches the justification field in free text.
var justificationPattern = regexp.MustCompile(`"justification"\s*:\s*"([^"]*)"`)

// Normalize decodes a raw oracle response against the schema. It is a
// pure function of its inputs: no shared mutable state, identical input
// always yields an identical record.
func Normalize(raw string, schema Schema) (*types.NormalizedRecord, error) {
	var firstErr *ParseFailure
	located := false

	// A brace pair in surrounding prose can shadow the real payload, so
	// candidate regions are tried in order until one yields usable fields.
	for from := 0; from < len(raw); {
		region, start, found, truncated := locatePayload(raw, from)
		if !found {
			break
		}
		located = true
		from = start + 1

		repaired, closed := repair(region)
		truncated = truncated || closed

		var payload map[string]any
		if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
			if firstErr == nil {
				reason := ReasonSchemaViolation
				if truncated {
					reason = ReasonTruncation
				}
				firstErr = &ParseFailure{Reason: reason, Detail: err.Error()}
			}
			continue
		}

		rec := buildRecord(payload, schema)
		if !recordEmpty(rec) {
			return rec, nil
		}
		if firstErr == nil {
			firstErr = &ParseFailure{Reason: ReasonSchemaViolation, Detail: "payload carries none of the expected fields"}
		}
	}

	if rec, ok := extractByLabels(raw, schema); ok {
		return rec, nil
	}
	if !located {
		return nil, &ParseFailure{Reason: ReasonNoPayload, Detail: "no balanced payload region and no recognizable fields"}
	}
	return nil, firstErr
}

// locatePayload finds the first balanced brace pair at or after from,
// tolerating surrounding prose. When the text ends inside the payload
// the unbalanced tail is returned with truncated set.
func locatePayload(raw string, from int) (region string, start int, found, truncated bool) {
	start = strings.IndexByte(raw[from:], '{')
	if start < 0 {
		return "", -1, false, false
	}
	start += from

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], start, true, false
			}
		}
	}

	// Ran out of text with open delimiters: truncated payload.
	return raw[start:], start, true, true
}

// buildRecord validates the decoded payload field by field. A field of
// the wrong type or outside its declared range becomes explicitly
// missing; it is never clamped or coerced.
func buildRecord(payload map[string]any, schema Schema) *types.NormalizedRecord {
	rec := &types.NormalizedRecord{Dimensions: make(map[string]types.FieldValue, len(schema.fields))}

	for _, f := range schema.fields {
		v, ok := payload[f.Name]
		if !ok {
			rec.Dimensions[f.Name] = types.Missing()
			continue
		}
		num, ok := v.(float64)
		if !ok || num < f.Min || num > f.Max {
			rec.Dimensions[f.Name] = types.Missing()
			continue
		}
		rec.Dimensions[f.Name] = types.Score(num)
	}

	if list, ok := payload["themes"].([]any); ok {
		for _, entry := range list {
			m, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			label, _ := m["theme"].(string)
			conf, confOK := m["confidence"].(float64)
			if label == "" || !confOK || conf < 0.0 || conf > 1.0 {
				continue
			}
			rec.Themes = append(rec.Themes, types.RawTheme{Label: label, Confidence: conf})
		}
	}

	if j, ok := payload["justification"].(string); ok {
		rec.Justification = j
	}

	return rec
}

// extractByLabels is the field-by-field fallback: locate each expected
// field by its label pattern independent of surrounding syntax validity.
func extractByLabels(raw string, schema Schema) (*types.NormalizedRecord, bool) {
	rec := &types.NormalizedRecord{Dimensions: make(map[string]types.FieldValue, len(schema.fields))}
	located := false

	for _, f := range schema.fields {
		m := schema.patterns[f.Name].FindStringSubmatch(raw)
		if m == nil {
			rec.Dimensions[f.Name] = types.Missing()
			continue
		}
		var num float64
		if _, err := fmt.Sscanf(m[1], "%g", &num); err != nil || num < f.Min || num > f.Max {
			rec.Dimensions[f.Name] = types.Missing()
			continue
		}
		rec.Dimensions[f.Name] = types.Score(num)
		located = true
	}

	for _, m := range themePattern.FindAllStringSubmatch(raw, -1) {
		var conf float64
		if _, err := fmt.Sscanf(m[2], "%g", &conf); err != nil || conf < 0.0 || conf > 1.0 {
			continue
		}
		rec.Themes = append(rec.Themes, types.RawTheme{Label: m[1], Confidence: conf})
		located = true
	}

	if m := justificationPattern.FindStringSubmatch(raw); m != nil {
		rec.Justification = m[1]
	}

	return rec, located
}

// recordEmpty reports whether no dimension is present and no theme was
// recovered.
func recordEmpty(rec *types.NormalizedRecord) bool {
	for _, v := range rec.Dimensions {
		if v.Present {
			return false
		}
	}
	return len(rec.Themes) == 0
}
