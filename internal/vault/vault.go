// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vault reads Markdown notes out of an Obsidian vault and
// turns them into analyzable documents.
package vault

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"

	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// Scan walks vaultDir recursively and loads every Markdown note.
// Obsidian housekeeping directories (.obsidian, .trash) and hidden
// files are skipped. Notes that fail to load are reported on w and
// omitted; a broken note never aborts the scan.
func Scan(vaultDir string, w io.Writer) ([]types.Note, error) {
	info, err := os.Stat(vaultDir)
	if err != nil {
		return nil, fmt.Errorf("opening vault %s: %w", vaultDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %s is not a directory", vaultDir)
	}

	var notes []types.Note

	err = filepath.WalkDir(vaultDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != vaultDir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".md") {
			return nil
		}

		note, err := loadNote(vaultDir, path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", path, err)
			return nil
		}
		notes = append(notes, note)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking vault %s: %w", vaultDir, err)
	}

	return notes, nil
}

// LoadNote reads a single note by its vault-relative or absolute path.
func LoadNote(vaultDir, path string) (types.Note, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(vaultDir, path)
	}
	return loadNote(vaultDir, path)
}

func loadNote(vaultDir, path string) (types.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Note{}, fmt.Errorf("reading note: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return types.Note{}, fmt.Errorf("stating note: %w", err)
	}

	rel, err := filepath.Rel(vaultDir, path)
	if err != nil {
		return types.Note{}, fmt.Errorf("resolving note path: %w", err)
	}
	id := strings.TrimSuffix(filepath.ToSlash(rel), ".md")

	fm, body := splitFrontMatter(string(data))

	note := types.Note{
		ID:          id,
		Path:        path,
		Content:     body,
		FrontMatter: fm,
		Length:      utf8.RuneCountInString(body),
		WordCount:   len(strings.Fields(body)),
		ModTime:     info.ModTime().UTC(),
	}

	note.Title = noteTitle(fm, body, id)
	note.Tags = stringList(fm["tags"])
	if t, ok := fm["type"].(string); ok {
		note.DeclaredType = t
	}

	return note, nil
}

// splitFrontMatter separates a leading YAML front matter block from the
// note body. Malformed front matter is treated as body text rather than
// rejected; the note is still analyzable.
func splitFrontMatter(content string) (map[string]any, string) {
	if !strings.HasPrefix(content, "---\n") && !strings.HasPrefix(content, "---\r\n") {
		return nil, content
	}

	rest := content[strings.Index(content, "\n")+1:]
	end := -1
	for _, marker := range []string{"\n---\n", "\n---\r\n"} {
		if i := strings.Index(rest, marker); i >= 0 && (end < 0 || i < end) {
			end = i
		}
	}
	if end < 0 {
		if strings.HasSuffix(rest, "\n---") {
			end = len(rest) - 4
		} else {
			return nil, content
		}
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return nil, content
	}

	body := rest[end:]
	if i := strings.Index(body[1:], "\n"); i >= 0 {
		body = body[i+2:]
	} else {
		body = ""
	}
	return fm, strings.TrimLeft(body, "\r\n")
}

// noteTitle picks the display title: front matter title, else the first
// H1 heading, else the note's base name.
func noteTitle(fm map[string]any, body, id string) string {
	if t, ok := fm["title"].(string); ok && t != "" {
		return t
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return filepath.Base(id)
}

// stringList coerces a front matter value into a string slice. Obsidian
// writes tags either as a YAML list or a single scalar.
func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		var out []string
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
