// Package dataset decodes the precomputed assets read by the explorer.
//
// Two kinds of JSON documents live in a data directory:
//
//   - defaults.json: a two-element array. The first element lists the
//     original text of every sample, the second lists every sample's
//     default latent vector. Both are indexed by sample number.
//   - <sample>.json: the reconstruction tree for one sample, a nest of
//     arrays [latent.Dims] levels deep whose leaves are reconstructed texts.
//
// Texts carry an end-of-sequence marker token ([Marker]) that is stripped
// with [Normalize] before display.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/matzehuels/latentscope/pkg/errors"
	"github.com/matzehuels/latentscope/pkg/latent"
)

// Marker is the end-of-sequence token emitted by the model.
const Marker = "EOS"

// DefaultsFile is the name of the shared defaults asset.
const DefaultsFile = "defaults.json"

// SampleFile returns the asset name holding the tree for sample.
func SampleFile(sample int) string {
	return fmt.Sprintf("%d.json", sample)
}

// Normalize drops space-separated marker tokens and trims the result.
// Other whitespace inside the text is left as is.
func Normalize(s string) string {
	words := strings.Split(s, " ")
	out := words[:0]
	for _, w := range words {
		if w != Marker {
			out = append(out, w)
		}
	}
	return strings.TrimSpace(strings.Join(out, " "))
}

// =============================================================================
// Defaults
// =============================================================================

// Defaults is the shared table of original texts and default vectors.
type Defaults struct {
	Texts   []string
	Vectors []latent.Vector
}

// Len returns the number of samples described by the table.
func (d *Defaults) Len() int { return min(len(d.Texts), len(d.Vectors)) }

// Sample returns the normalized original text and a copy of the default
// vector for sample.
func (d *Defaults) Sample(sample int) (string, latent.Vector, error) {
	if sample < 0 || sample >= d.Len() {
		return "", nil, errors.New(errors.ErrCodeInvalidSample, "sample %d not in defaults table (size %d)", sample, d.Len())
	}
	v := d.Vectors[sample]
	if err := v.Validate(); err != nil {
		return "", nil, errors.Wrap(errors.ErrCodeMalformed, err, "default vector for sample %d", sample)
	}
	return Normalize(d.Texts[sample]), v.Clone(), nil
}

// UnmarshalJSON decodes the [texts, vectors] pair layout.
func (d *Defaults) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(errors.ErrCodeMalformed, err, "defaults: expected [texts, vectors]")
	}
	if len(raw) != 2 {
		return errors.New(errors.ErrCodeMalformed, "defaults: expected 2 elements, got %d", len(raw))
	}
	var texts []string
	if err := json.Unmarshal(raw[0], &texts); err != nil {
		return errors.Wrap(errors.ErrCodeMalformed, err, "defaults: texts")
	}
	var vectors [][]int
	if err := json.Unmarshal(raw[1], &vectors); err != nil {
		return errors.Wrap(errors.ErrCodeMalformed, err, "defaults: vectors")
	}
	d.Texts = texts
	d.Vectors = make([]latent.Vector, len(vectors))
	for i, v := range vectors {
		d.Vectors[i] = latent.Vector(v)
	}
	return nil
}

// MarshalJSON encodes the table in the same [texts, vectors] layout.
func (d Defaults) MarshalJSON() ([]byte, error) {
	vectors := make([][]int, len(d.Vectors))
	for i, v := range d.Vectors {
		vectors[i] = []int(v)
	}
	return json.Marshal([]any{d.Texts, vectors})
}

// DecodeDefaults parses a defaults.json document.
func DecodeDefaults(data []byte) (*Defaults, error) {
	var d Defaults
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// =============================================================================
// Reconstruction Tree
// =============================================================================

// Tree is one node of a reconstruction tree. Interior nodes hold one child
// per latent level; leaves hold the raw reconstructed text.
type Tree struct {
	Children []*Tree
	Text     string
	Leaf     bool
}

// UnmarshalJSON decodes nested arrays terminated by strings.
func (t *Tree) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New(errors.ErrCodeMalformed, "tree: empty node")
	}
	switch data[0] {
	case '"':
		t.Leaf = true
		return json.Unmarshal(data, &t.Text)
	case '[':
		return json.Unmarshal(data, &t.Children)
	default:
		return errors.New(errors.ErrCodeMalformed, "tree: unexpected node %.20s", data)
	}
}

// MarshalJSON encodes the tree back into nested arrays.
func (t *Tree) MarshalJSON() ([]byte, error) {
	if t.Leaf {
		return json.Marshal(t.Text)
	}
	if t.Children == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.Children)
}

// DecodeTree parses a <sample>.json document.
func DecodeTree(data []byte) (*Tree, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformed, err, "decode reconstruction tree")
	}
	return &t, nil
}

// Lookup descends the tree by the coordinates of v in order and returns the
// raw leaf text.
func (t *Tree) Lookup(v latent.Vector) (string, error) {
	node := t
	for depth, x := range v {
		if node.Leaf {
			return "", errors.New(errors.ErrCodeMalformed, "tree: leaf reached at depth %d of %d", depth, len(v))
		}
		if x < 0 || x >= len(node.Children) {
			return "", errors.New(errors.ErrCodeNotFound, "tree: no branch %d at depth %d", x, depth)
		}
		node = node.Children[x]
		if node == nil {
			return "", errors.New(errors.ErrCodeMalformed, "tree: null branch at depth %d", depth)
		}
	}
	if !node.Leaf {
		return "", errors.New(errors.ErrCodeMalformed, "tree: no leaf after %d levels", len(v))
	}
	return node.Text, nil
}

// Reconstruction looks up v and normalizes the leaf text.
func (t *Tree) Reconstruction(v latent.Vector) (string, error) {
	s, err := t.Lookup(v)
	if err != nil {
		return "", err
	}
	return Normalize(s), nil
}

// Walk visits every node depth-first. The path holds the branch indices from
// the root to the visited node and is reused between calls.
func (t *Tree) Walk(fn func(path []int, node *Tree)) {
	var walk func(path []int, n *Tree)
	walk = func(path []int, n *Tree) {
		fn(path, n)
		for i, c := range n.Children {
			if c != nil {
				walk(append(path, i), c)
			}
		}
	}
	walk(nil, t)
}

// Depth returns the number of levels above the leaves along the first branch.
func (t *Tree) Depth() int {
	d := 0
	for n := t; !n.Leaf && len(n.Children) > 0 && n.Children[0] != nil; n = n.Children[0] {
		d++
	}
	return d
}

// Build constructs a complete tree of the given depth and branching factor,
// labelling each leaf with leaf(path).
func Build(depth, branching int, leaf func(path []int) string) *Tree {
	var build func(path []int) *Tree
	build = func(path []int) *Tree {
		if len(path) == depth {
			return &Tree{Leaf: true, Text: leaf(path)}
		}
		n := &Tree{Children: make([]*Tree, branching)}
		for i := range n.Children {
			n.Children[i] = build(append(path[:len(path):len(path)], i))
		}
		return n
	}
	return build(nil)
}
