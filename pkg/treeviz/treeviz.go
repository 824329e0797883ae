// Package treeviz draws reconstruction trees as node-link diagrams.
//
// [ToDOT] turns a [dataset.Tree] into Graphviz DOT source where every inner
// node is one latent coordinate choice and every leaf carries the
// normalized reconstruction text. [RenderSVG] lays the DOT out in-process
// with [github.com/goccy/go-graphviz].
//
//	dot := treeviz.ToDOT(tree, treeviz.Options{Highlight: v, MaxDepth: 2})
//	svg, err := treeviz.RenderSVG(dot)
package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/latentscope/pkg/dataset"
	"github.com/matzehuels/latentscope/pkg/latent"
)

// Options configures diagram generation.
type Options struct {
	// Highlight marks the path of a latent vector. Nil highlights nothing.
	Highlight latent.Vector
	// MaxDepth stops descending below this depth. Zero draws everything.
	MaxDepth int
	// Title labels the graph.
	Title string
}

// ToDOT converts a reconstruction tree to Graphviz DOT.
func ToDOT(t *dataset.Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("\n")

	var edges []string
	t.Walk(func(path []int, n *dataset.Tree) {
		if opts.MaxDepth > 0 && len(path) > opts.MaxDepth {
			return
		}
		id := nodeID(path)
		attrs := []string{fmt.Sprintf("label=%q", label(path, n))}
		if onPath(path, opts.Highlight) {
			attrs = append(attrs, "fillcolor=\"#006699\"", "fontcolor=white")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
		if len(path) > 0 {
			edges = append(edges, fmt.Sprintf("  %q -> %q [label=%q];\n",
				nodeID(path[:len(path)-1]), id, strconv.Itoa(path[len(path)-1])))
		}
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(path []int) string {
	if len(path) == 0 {
		return "root"
	}
	parts := make([]string, len(path))
	for i, x := range path {
		parts[i] = strconv.Itoa(x)
	}
	return "z" + strings.Join(parts, "_")
}

func label(path []int, n *dataset.Tree) string {
	if n.Leaf {
		return dataset.Normalize(n.Text)
	}
	if len(path) == 0 {
		return "z"
	}
	return fmt.Sprintf("z%d = %d", len(path)-1, path[len(path)-1])
}

func onPath(path []int, v latent.Vector) bool {
	if v == nil || len(path) > len(v) {
		return false
	}
	for i, x := range path {
		if v[i] != x {
			return false
		}
	}
	return true
}

// RenderSVG lays out DOT source and returns SVG bytes.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
