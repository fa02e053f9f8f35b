// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package taxonomy loads the fixed theme hierarchy and resolves the
// oracle's free-form theme labels against it. The tree is built once at
// load time and is immutable for the run; resolution is a pure function
// over the tree.
package taxonomy

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Node is one taxonomy entry: a category, or a subcategory beneath one.
type Node struct {
	// Category is the top-level category name.
	Category string

	// Subcategory is empty for category-level nodes.
	Subcategory string

	// Synonyms are alternate labels that match this node exactly.
	Synonyms []string

	path  string
	names []string // canonicalized name + synonyms
}

// Path returns the slash-separated taxonomy path
// (e.g. "infrastructure/ppps").
func (n *Node) Path() string { return n.path }

// Depth is 1 for categories and 2 for subcategories. Deeper nodes win
// similarity ties during resolution.
func (n *Node) Depth() int {
	if n.Subcategory == "" {
		return 1
	}
	return 2
}

// Taxonomy is the immutable tree of theme nodes.
type Taxonomy struct {
	nodes  []*Node
	byPath map[string]*Node
}

type nodeFile struct {
	Synonyms      []string            `yaml:"synonyms"`
	Subcategories map[string]nodeFile `yaml:"subcategories"`
}

type taxonomyFile struct {
	Categories map[string]nodeFile `yaml:"categories"`
}

// Load reads and validates a taxonomy YAML file. Duplicate node names
// are a fatal configuration error, raised before any document is
// processed.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading taxonomy %s: %w", path, err)
	}

	var file taxonomyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing taxonomy %s: %w", path, err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy %s defines no categories", path)
	}

	return build(file)
}

func build(file taxonomyFile) (*Taxonomy, error) {
	t := &Taxonomy{byPath: make(map[string]*Node)}
	seen := make(map[string]string) // node name → path that claimed it

	claim := func(name, path string) error {
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("duplicate taxonomy node name %q (%s and %s)", name, prev, path)
		}
		seen[name] = path
		return nil
	}

	categories := sortedKeys(file.Categories)
	for _, cat := range categories {
		cfg := file.Categories[cat]

		node := &Node{Category: cat, Synonyms: cfg.Synonyms, path: cat}
		if err := claim(cat, node.path); err != nil {
			return nil, err
		}
		node.names = canonicalNames(cat, cfg.Synonyms)
		t.nodes = append(t.nodes, node)
		t.byPath[node.path] = node

		for _, sub := range sortedKeys(cfg.Subcategories) {
			subCfg := cfg.Subcategories[sub]
			subNode := &Node{
				Category:    cat,
				Subcategory: sub,
				Synonyms:    subCfg.Synonyms,
				path:        cat + "/" + sub,
			}
			if err := claim(sub, subNode.path); err != nil {
				return nil, err
			}
			subNode.names = canonicalNames(sub, subCfg.Synonyms)
			t.nodes = append(t.nodes, subNode)
			t.byPath[subNode.path] = subNode
		}
	}

	return t, nil
}

// Nodes returns all nodes in deterministic (path-sorted) order.
func (t *Taxonomy) Nodes() []*Node { return t.nodes }

// Lookup returns the node at the given path.
func (t *Taxonomy) Lookup(path string) (*Node, bool) {
	n, ok := t.byPath[path]
	return n, ok
}

// Paths lists every node path in deterministic order.
func (t *Taxonomy) Paths() []string {
	paths := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		paths[i] = n.path
	}
	return paths
}

// Len returns the number of nodes.
func (t *Taxonomy) Len() int { return len(t.nodes) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func canonicalNames(name string, synonyms []string) []string {
	names := make([]string, 0, len(synonyms)+1)
	names = append(names, canonicalize(name))
	for _, s := range synonyms {
		if c := canonicalize(s); c != "" {
			names = append(names, c)
		}
	}
	return names
}

// canonicalize lowercases and strips punctuation so matching is
// insensitive to case, hyphenation, and separator style.
func canonicalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
