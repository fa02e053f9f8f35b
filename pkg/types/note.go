// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Note is a single vault document presented to the analysis pipeline.
// It is read-only for the duration of analysis; re-analysis reads the
// file again rather than mutating an existing Note.
type Note struct {
	// ID is the vault-relative path without the .md extension
	// (e.g. "inbox/2024-03-ppp-funding").
	ID string `json:"id" yaml:"id"`

	// Path is the absolute filesystem path to the note.
	Path string `json:"path" yaml:"path"`

	// Title is taken from front matter, or the file name when absent.
	Title string `json:"title" yaml:"title"`

	// Content is the note body with front matter stripped.
	Content string `json:"content" yaml:"content"`

	// FrontMatter holds the raw decoded YAML front matter, if any.
	FrontMatter map[string]any `json:"front_matter,omitempty" yaml:"front_matter,omitempty"`

	// Tags lists front-matter tags.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// DeclaredType is the front-matter "type" field (e.g. "clipping",
	// "literature-note"). Empty when the note does not declare one.
	DeclaredType string `json:"declared_type,omitempty" yaml:"declared_type,omitempty"`

	// Length is the body length in characters.
	Length int `json:"length" yaml:"length"`

	// WordCount is the approximate body word count.
	WordCount int `json:"word_count" yaml:"word_count"`

	// ModTime is the file modification time at scan.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}
