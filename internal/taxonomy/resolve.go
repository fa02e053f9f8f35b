// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxonomy

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/jcordovilla/obsidian-curator-sub000/pkg/types"
)

// DefaultMatchThreshold is the minimum similarity for a label to
// resolve to a node.
const DefaultMatchThreshold = 0.6

// Resolve maps the oracle's free-form theme labels onto taxonomy nodes.
// Each label resolves to the highest-similarity node at or above the
// match threshold; its confidence is the model-reported confidence
// discounted by the match similarity. Ties prefer the deeper node.
// Labels matching no node are returned as unresolved; all-unresolved is
// a normal outcome that routes the document to the miscellaneous
// bucket downstream. Resolve never invents a path outside the tree.
func (t *Taxonomy) Resolve(labels []types.RawTheme, matchThreshold float64) (assignments []types.ThemeAssignment, unresolved []string) {
	if matchThreshold <= 0 {
		matchThreshold = DefaultMatchThreshold
	}

	// First-occurrence order is preserved; repeated labels resolving to
	// the same node keep the higher confidence.
	index := make(map[string]int)

	for _, label := range labels {
		canon := canonicalize(label.Label)
		if canon == "" {
			unresolved = append(unresolved, label.Label)
			continue
		}

		node, sim := t.bestMatch(canon)
		if node == nil || sim < matchThreshold {
			unresolved = append(unresolved, label.Label)
			continue
		}

		conf := label.Confidence * sim
		if i, ok := index[node.path]; ok {
			if conf > assignments[i].Confidence {
				assignments[i].Confidence = conf
			}
			continue
		}
		index[node.path] = len(assignments)
		assignments = append(assignments, types.ThemeAssignment{Path: node.path, Confidence: conf})
	}

	return assignments, unresolved
}

// bestMatch returns the most similar node for a canonicalized label.
// Nodes are scanned in path-sorted order, so equal-similarity,
// equal-depth candidates resolve to the lexicographically first path,
// keeping resolution fully deterministic.
func (t *Taxonomy) bestMatch(canon string) (*Node, float64) {
	var best *Node
	bestSim := 0.0

	for _, n := range t.nodes {
		sim := n.similarity(canon)
		if sim > bestSim || (sim == bestSim && best != nil && n.Depth() > best.Depth()) {
			best = n
			bestSim = sim
		}
	}
	return best, bestSim
}

// similarity is the best score over the node's canonical name and
// synonyms. Exact matches score 1.0; otherwise a normalized edit
// distance, which is symmetric and grows with shared substring length.
func (n *Node) similarity(canon string) float64 {
	best := 0.0
	for _, name := range n.names {
		if name == canon {
			return 1.0
		}
		if s := editSimilarity(name, canon); s > best {
			best = s
		}
	}
	return best
}

func editSimilarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	d := levenshtein.ComputeDistance(a, b)
	if d >= longest {
		return 0
	}
	return 1.0 - float64(d)/float64(longest)
}
