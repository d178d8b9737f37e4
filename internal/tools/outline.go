package tools

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractOutlineHeadings walks plan as CommonMark and collects heading
// text in document order. This is the non-gating OutlineHeadings
// annotation from SPEC_FULL.md §3.1 — purely observational: ReviewPlan
// logs the heading count at debug level, and the headings never affect the
// decision.
func ExtractOutlineHeadings(plan string) []string {
	source := []byte(plan)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var headings []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		for c := h.FirstChild(); c != nil; c = c.NextSibling() {
			if t, ok := c.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		if buf.Len() > 0 {
			headings = append(headings, buf.String())
		}
		return ast.WalkContinue, nil
	})
	return headings
}
