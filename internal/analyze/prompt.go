// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"text/template"
	"unicode/utf8"

	"github.com/jcordovilla/obsidian-curator-sub000/internal/taxonomy"
	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// promptBodyLimit caps the note body embedded in the prompt so retries
// stay within the model context window. The cut point is fixed, keeping
// the prompt a deterministic function of (note, taxonomy).
const promptBodyLimit = 8000

// analysisPromptTmpl instructs the model to return a single JSON object
// with ten quality dimensions, candidate themes, and a justification.
var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`You are a document curation analyst. Assess the following note for inclusion in a curated knowledge vault.

Score each dimension as a float between 0.0 and 1.0:
- overall_quality: overall fitness for a curated collection
- relevance: topical relevance to the vault's domains listed below
- completeness: whether the note covers its subject fully
- credibility: trustworthiness of claims and sourcing
- clarity: readability and structure
- professional_writing_quality: prose quality by professional standards
- analytical_depth: depth of analysis beyond summary
- evidence_quality: strength of supporting evidence
- critical_thinking: engagement with counterarguments and limitations
- publication_readiness: fitness for publication as-is

Also identify the note's themes. Known theme paths:
{{- range .Themes}}
- {{.}}
{{- end}}

Respond with a single JSON object and no text outside it. It must contain the ten dimension fields above, a "themes" array of {"theme": string, "confidence": float} objects (use your own words for theme if none of the known paths fits), and a "justification" string explaining your assessment.

Example response:
{"overall_quality": 0.7, "relevance": 0.8, "completeness": 0.6, "credibility": 0.7, "clarity": 0.75, "professional_writing_quality": 0.65, "analytical_depth": 0.5, "evidence_quality": 0.6, "critical_thinking": 0.45, "publication_readiness": 0.4, "themes": [{"theme": "infrastructure/ppps", "confidence": 0.9}], "justification": "Well-sourced note on concession contracts."}

Note title: {{.Title}}
{{- if .DeclaredType}}
Declared type: {{.DeclaredType}}
{{- end}}

Note body:
{{.Body}}
`))

type promptData struct {
	Title        string
	DeclaredType string
	Body         string
	Themes       []string
}

// buildPrompt renders the analysis prompt for one note. It is a pure
// function of the note and taxonomy: identical inputs produce identical
// prompts, so retries are comparable.
func buildPrompt(note types.Note, tax *taxonomy.Taxonomy) (string, error) {
	body := note.Content
	if len(body) > promptBodyLimit {
		cut := body[:promptBodyLimit]
		// Back up to a rune boundary rather than splitting a character.
		for len(cut) > 0 {
			r, size := utf8.DecodeLastRuneInString(cut)
			if r == utf8.RuneError && size == 1 {
				cut = cut[:len(cut)-1]
				continue
			}
			break
		}
		body = cut
	}

	var buf bytes.Buffer
	err := analysisPromptTmpl.Execute(&buf, promptData{
		Title:        note.Title,
		DeclaredType: note.DeclaredType,
		Body:         body,
		Themes:       tax.Paths(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
