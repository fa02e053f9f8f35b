// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package organize files accepted notes into a curated directory tree
// keyed by resolved taxonomy path.
package organize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// Summary holds counts from one organize pass.
type Summary struct {
	Organized int
	Rejected  int
	Missing   int
	Failed    int
}

// Total returns the number of results processed.
func (s Summary) Total() int {
	return s.Organized + s.Rejected + s.Missing + s.Failed
}

// Organize copies each accepted note into curatedDir under its
// highest-confidence taxonomy path, stamping curation metadata into the
// front matter. Notes with no resolved theme land in the miscellaneous
// bucket. The source vault is never modified. Rejected results are
// counted and skipped.
func Organize(notes []types.Note, results []types.CurationResult, curatedDir string, w io.Writer) (Summary, error) {
	byID := make(map[string]types.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}

	var summary Summary
	claimed := make(map[string]bool, len(results))

	for _, res := range results {
		if !res.Accepted {
			summary.Rejected++
			continue
		}

		note, ok := byID[res.NoteID]
		if !ok {
			fmt.Fprintf(w, "missing %s: no loaded note for result\n", res.NoteID)
			summary.Missing++
			continue
		}

		dest, err := destPath(curatedDir, note, res, claimed)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", res.NoteID, err)
			summary.Failed++
			continue
		}

		if err := writeCurated(dest, note, res); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", res.NoteID, err)
			summary.Failed++
			continue
		}

		rel, _ := filepath.Rel(curatedDir, dest)
		fmt.Fprintf(w, "organized %s -> %s\n", res.NoteID, filepath.ToSlash(rel))
		summary.Organized++
	}

	fmt.Fprintf(w, "\norganized: %d, rejected: %d, missing: %d, failed: %d\n",
		summary.Organized, summary.Rejected, summary.Missing, summary.Failed)

	return summary, nil
}

// destPath resolves the curated location for a note. The bucket is the
// top theme's taxonomy path, or the miscellaneous bucket when no theme
// resolved. Notes from different vault folders can share a base name,
// so a file name already claimed this pass gets a numeric suffix.
func destPath(curatedDir string, note types.Note, res types.CurationResult, claimed map[string]bool) (string, error) {
	bucket := types.MiscellaneousBucket
	if top, ok := res.TopTheme(); ok {
		bucket = top.Path
	}

	dir := filepath.Join(curatedDir, filepath.FromSlash(bucket))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating bucket directory: %w", err)
	}

	base := filepath.Base(note.ID)
	dest := filepath.Join(dir, base+".md")
	for n := 1; claimed[dest]; n++ {
		dest = filepath.Join(dir, fmt.Sprintf("%s-%d.md", base, n))
	}
	claimed[dest] = true
	return dest, nil
}

// writeCurated writes the note with curation metadata merged into its
// front matter. The original front matter keys are preserved.
func writeCurated(dest string, note types.Note, res types.CurationResult) error {
	fm := make(map[string]any, len(note.FrontMatter)+1)
	for k, v := range note.FrontMatter {
		fm[k] = v
	}
	fm["curation"] = curationMeta(res)

	data, err := renderNote(fm, note.Content)
	if err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func curationMeta(res types.CurationResult) map[string]any {
	meta := map[string]any{
		"run_id":     res.RunID,
		"curated_at": res.AnalyzedAt.UTC().Format(time.RFC3339),
		"composite":  res.Composite,
	}
	if res.Model != "" {
		meta["model"] = res.Model
	}
	if len(res.Themes) > 0 {
		paths := make([]string, len(res.Themes))
		for i, t := range res.Themes {
			paths[i] = t.Path
		}
		sort.Strings(paths)
		meta["themes"] = paths
	}
	return meta
}

// renderNote serializes front matter and body back into Markdown.
func renderNote(fm map[string]any, body string) ([]byte, error) {
	meta, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshaling front matter: %w", err)
	}

	out := make([]byte, 0, len(meta)+len(body)+16)
	out = append(out, "---\n"...)
	out = append(out, meta...)
	out = append(out, "---\n\n"...)
	out = append(out, body...)
	return out, nil
}
