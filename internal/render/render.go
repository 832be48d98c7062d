// Package render turns item bodies into sanitized HTML and handles the
// task-list checkbox round trip.
package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// Renderer converts Markdown bodies to sanitized HTML. Task-list checkboxes
// are emitted enabled so cards can toggle them directly, instead of the
// disabled ones goldmark produces by default.
type Renderer struct {
	policy *bluemonday.Policy
}

// New creates a Renderer.
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("type", "checked", "data-task-index").OnElements("input")
	return &Renderer{policy: policy}
}

// Render converts body Markdown into sanitized HTML. The goldmark instance is
// built per call because the checkbox renderer numbers boxes in document
// order and must start from zero for every document.
func (r *Renderer) Render(body string) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(&taskCheckBoxRenderer{}, 100),
			),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render: convert markdown: %w", err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// taskCheckBoxRenderer replaces goldmark's TaskCheckBox output: no disabled
// attribute, and a data-task-index attribute numbering the boxes in document
// order so a click can be mapped back to its Markdown line.
type taskCheckBoxRenderer struct {
	index int
}

// RegisterFuncs implements renderer.NodeRenderer.
func (r *taskCheckBoxRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(east.KindTaskCheckBox, r.renderTaskCheckBox)
}

func (r *taskCheckBoxRenderer) renderTaskCheckBox(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*east.TaskCheckBox)
	if n.IsChecked {
		fmt.Fprintf(w, `<input type="checkbox" checked data-task-index="%d">`, r.index)
	} else {
		fmt.Fprintf(w, `<input type="checkbox" data-task-index="%d">`, r.index)
	}
	r.index++
	return ast.WalkContinue, nil
}
