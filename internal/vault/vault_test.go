package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// --- test helpers ---

func writeNote(t *testing.T, vaultDir, rel, content string) {
	t.Helper()
	path := filepath.Join(vaultDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const sampleNote = `---
title: Water Concessions in Latin America
tags: [infrastructure, water]
type: article
---

# Water Concessions

Concession contracts allocate demand risk to the private operator.
`

// --- tests ---

func TestScan_LoadsNotes(t *testing.T) {
	vaultDir := t.TempDir()
	writeNote(t, vaultDir, "topics/water.md", sampleNote)
	writeNote(t, vaultDir, "inbox/clipping.md", "A short clipping without front matter.\n")

	notes, err := Scan(vaultDir, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(notes))
	}

	byID := make(map[string]int)
	for i, n := range notes {
		byID[n.ID] = i
	}
	i, ok := byID["topics/water"]
	if !ok {
		t.Fatalf("missing topics/water, got %v", byID)
	}

	n := notes[i]
	if n.Title != "Water Concessions in Latin America" {
		t.Errorf("title = %q", n.Title)
	}
	if !reflect.DeepEqual(n.Tags, []string{"infrastructure", "water"}) {
		t.Errorf("tags = %v", n.Tags)
	}
	if n.DeclaredType != "article" {
		t.Errorf("type = %q", n.DeclaredType)
	}
	if n.Length == 0 || n.WordCount == 0 {
		t.Errorf("length/words = %d/%d", n.Length, n.WordCount)
	}
	if n.ModTime.IsZero() {
		t.Error("zero mod time")
	}
}

func TestScan_SkipsHousekeepingDirs(t *testing.T) {
	vaultDir := t.TempDir()
	writeNote(t, vaultDir, "real.md", "Real note content here.\n")
	writeNote(t, vaultDir, ".obsidian/workspace.md", "editor state")
	writeNote(t, vaultDir, ".trash/deleted.md", "deleted note")
	writeNote(t, vaultDir, ".hidden.md", "hidden file")
	writeNote(t, vaultDir, "attachments/diagram.png.md", "still markdown, kept")
	if err := os.WriteFile(filepath.Join(vaultDir, "notes.txt"), []byte("not markdown"), 0o644); err != nil {
		t.Fatal(err)
	}

	notes, err := Scan(vaultDir, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		ids := make([]string, 0, len(notes))
		for _, n := range notes {
			ids = append(ids, n.ID)
		}
		t.Fatalf("notes = %v, want real and attachments/diagram.png only", ids)
	}
}

func TestScan_MissingVault(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"), &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected error for missing vault")
	}
}

func TestLoadNote_RelativePath(t *testing.T) {
	vaultDir := t.TempDir()
	writeNote(t, vaultDir, "topics/water.md", sampleNote)

	n, err := LoadNote(vaultDir, "topics/water.md")
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != "topics/water" {
		t.Errorf("id = %q", n.ID)
	}
}

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantFM    bool
		wantTitle string
		wantBody  string
	}{
		{
			name:      "with front matter",
			content:   "---\ntitle: Hello\n---\n\nBody text.\n",
			wantFM:    true,
			wantTitle: "Hello",
			wantBody:  "Body text.\n",
		},
		{
			name:     "no front matter",
			content:  "Just body text.\n",
			wantBody: "Just body text.\n",
		},
		{
			name:     "malformed yaml treated as body",
			content:  "---\n: : bad [yaml\n---\nBody.\n",
			wantBody: "---\n: : bad [yaml\n---\nBody.\n",
		},
		{
			name:     "unterminated block treated as body",
			content:  "---\ntitle: Dangling\nBody without closing marker.\n",
			wantBody: "---\ntitle: Dangling\nBody without closing marker.\n",
		},
		{
			name:    "empty body",
			content: "---\ntitle: Only Meta\n---",
			wantFM:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body := splitFrontMatter(tt.content)
			if (fm != nil) != tt.wantFM {
				t.Fatalf("front matter presence = %v, want %v", fm != nil, tt.wantFM)
			}
			if tt.wantTitle != "" && fm["title"] != tt.wantTitle {
				t.Errorf("title = %v", fm["title"])
			}
			if tt.wantBody != "" && body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestNoteTitle_Fallbacks(t *testing.T) {
	if got := noteTitle(nil, "# Heading Title\n\nBody.", "dir/note"); got != "Heading Title" {
		t.Errorf("heading fallback = %q", got)
	}
	if got := noteTitle(nil, "No headings here.", "dir/note"); got != "note" {
		t.Errorf("basename fallback = %q", got)
	}
	fm := map[string]any{"title": "Explicit"}
	if got := noteTitle(fm, "# Ignored\n", "dir/note"); got != "Explicit" {
		t.Errorf("front matter title = %q", got)
	}
}

func TestStringList(t *testing.T) {
	if got := stringList("solo"); !reflect.DeepEqual(got, []string{"solo"}) {
		t.Errorf("scalar = %v", got)
	}
	if got := stringList([]any{"a", "b", 3}); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("list = %v", got)
	}
	if got := stringList(nil); got != nil {
		t.Errorf("nil = %v", got)
	}
}
