package organize

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

func sampleNote(id string) types.Note {
	return types.Note{
		ID:      id,
		Title:   filepath.Base(id),
		Content: "Concession contracts allocate demand risk.\n",
		FrontMatter: map[string]any{
			"title": filepath.Base(id),
			"tags":  []any{"infrastructure"},
		},
	}
}

func acceptedResult(noteID, themePath string) types.CurationResult {
	res := types.CurationResult{
		NoteID:     noteID,
		RunID:      "run-1",
		Composite:  0.8,
		Accepted:   true,
		Rationale:  "accepted: all quality gates passed",
		Model:      "test-model",
		AnalyzedAt: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
	}
	if themePath != "" {
		res.Themes = []types.ThemeAssignment{{Path: themePath, Confidence: 0.85}}
	}
	return res
}

func TestOrganize_FilesByTheme(t *testing.T) {
	curatedDir := t.TempDir()
	notes := []types.Note{sampleNote("topics/water")}
	results := []types.CurationResult{acceptedResult("topics/water", "infrastructure/water")}

	summary, err := Organize(notes, results, curatedDir, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Organized != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	dest := filepath.Join(curatedDir, "infrastructure", "water", "water.md")
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("curated note not written: %v", err)
	}
	content := string(data)

	if !strings.HasPrefix(content, "---\n") {
		t.Error("missing front matter block")
	}
	if !strings.Contains(content, "Concession contracts allocate demand risk.") {
		t.Error("body not preserved")
	}

	// Original keys survive alongside the curation stamp.
	fmEnd := strings.Index(content[4:], "\n---\n")
	var fm map[string]any
	if err := yaml.Unmarshal([]byte(content[4:4+fmEnd]), &fm); err != nil {
		t.Fatal(err)
	}
	if fm["title"] != "water" {
		t.Errorf("title = %v", fm["title"])
	}
	curation, ok := fm["curation"].(map[string]any)
	if !ok {
		t.Fatalf("curation stamp = %T", fm["curation"])
	}
	if curation["run_id"] != "run-1" || curation["model"] != "test-model" {
		t.Errorf("curation = %v", curation)
	}
}

func TestOrganize_MiscellaneousBucket(t *testing.T) {
	curatedDir := t.TempDir()
	notes := []types.Note{sampleNote("topics/odd")}
	results := []types.CurationResult{acceptedResult("topics/odd", "")}

	if _, err := Organize(notes, results, curatedDir, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	dest := filepath.Join(curatedDir, types.MiscellaneousBucket, "odd.md")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("note not in miscellaneous bucket: %v", err)
	}
}

func TestOrganize_HighestConfidenceThemeWins(t *testing.T) {
	curatedDir := t.TempDir()
	notes := []types.Note{sampleNote("topics/mixed")}
	res := acceptedResult("topics/mixed", "economics/regulation")
	res.Themes = append(res.Themes, types.ThemeAssignment{Path: "infrastructure/ppps", Confidence: 0.95})
	results := []types.CurationResult{res}

	if _, err := Organize(notes, results, curatedDir, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(curatedDir, "infrastructure", "ppps", "mixed.md")); err != nil {
		t.Fatalf("note not filed under top theme: %v", err)
	}
	if _, err := os.Stat(filepath.Join(curatedDir, "economics", "regulation", "mixed.md")); err == nil {
		t.Fatal("note duplicated under secondary theme")
	}
}

func TestOrganize_SkipsRejectedAndCountsMissing(t *testing.T) {
	curatedDir := t.TempDir()
	notes := []types.Note{sampleNote("topics/kept")}

	rejected := acceptedResult("topics/kept", "infrastructure/water")
	rejected.Accepted = false
	orphan := acceptedResult("topics/gone", "infrastructure/water")

	var buf bytes.Buffer
	summary, err := Organize(notes, []types.CurationResult{rejected, orphan}, curatedDir, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Organized != 0 || summary.Rejected != 1 || summary.Missing != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	entries, err := os.ReadDir(curatedDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("curated dir not empty: %v", entries)
	}
	if !strings.Contains(buf.String(), "missing topics/gone") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestOrganize_NoteWithoutFrontMatter(t *testing.T) {
	curatedDir := t.TempDir()
	note := sampleNote("plain")
	note.FrontMatter = nil
	results := []types.CurationResult{acceptedResult("plain", "infrastructure/water")}

	summary, err := Organize([]types.Note{note}, results, curatedDir, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Organized != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	data, err := os.ReadFile(filepath.Join(curatedDir, "infrastructure", "water", "plain.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "curation:") {
		t.Error("curation stamp missing for bare note")
	}
}

func TestOrganize_BaseNameCollision(t *testing.T) {
	curatedDir := t.TempDir()

	inbox := sampleNote("inbox/index")
	inbox.Content = "Inbox index body.\n"
	archive := sampleNote("archive/index")
	archive.Content = "Archive index body.\n"

	notes := []types.Note{inbox, archive}
	results := []types.CurationResult{
		acceptedResult("inbox/index", ""),
		acceptedResult("archive/index", ""),
	}

	summary, err := Organize(notes, results, curatedDir, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if summary.Organized != 2 {
		t.Fatalf("summary = %+v", summary)
	}

	bucket := filepath.Join(curatedDir, types.MiscellaneousBucket)
	entries, err := os.ReadDir(bucket)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("organized 2 notes but bucket holds %d file(s): %v", len(entries), entries)
	}

	first, err := os.ReadFile(filepath.Join(bucket, "index.md"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(filepath.Join(bucket, "index-1.md"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(first), "Inbox index body.") {
		t.Errorf("first file body = %q", first)
	}
	if !strings.Contains(string(second), "Archive index body.") {
		t.Errorf("second file body = %q", second)
	}
}

func TestOrganize_Reorganize(t *testing.T) {
	curatedDir := t.TempDir()
	notes := []types.Note{sampleNote("topics/water")}
	results := []types.CurationResult{acceptedResult("topics/water", "infrastructure/water")}

	for i := 0; i < 2; i++ {
		summary, err := Organize(notes, results, curatedDir, &bytes.Buffer{})
		if err != nil {
			t.Fatal(err)
		}
		if summary.Organized != 1 {
			t.Fatalf("pass %d summary = %+v", i, summary)
		}
	}

	entries, err := os.ReadDir(filepath.Join(curatedDir, "infrastructure", "water"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("reorganize duplicated files: %v", entries)
	}
}
