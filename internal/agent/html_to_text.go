package agent

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// HTMLToTextAgent strips markup from an HTML fragment, keeping block-level
// line breaks. Ground truth teacher's tools.HTMLToTextTool.
type HTMLToTextAgent struct{}

func (a *HTMLToTextAgent) Name() string           { return "html_to_text" }
func (a *HTMLToTextAgent) Capabilities() []string { return []string{"html_to_text"} }

func (a *HTMLToTextAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	src := stringParam(params, "html", node.Task)
	if src == "" {
		return graph.Ok(""), nil
	}
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	var b strings.Builder
	extractText(doc, &b, false)
	return graph.Ok(strings.TrimSpace(compactWhitespace(b.String()))), nil
}

func extractText(n *html.Node, b *strings.Builder, inHidden bool) {
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript":
			inHidden = true
		case "br", "p", "div", "li", "tr":
			b.WriteString("\n")
		}
	}
	if !inHidden && n.Type == html.TextNode {
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, b, inHidden)
	}
}

func compactWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = strings.Join(strings.Fields(ln), " ")
	}
	var out []string
	for _, ln := range lines {
		if strings.TrimSpace(ln) != "" {
			out = append(out, ln)
		}
	}
	return strings.Join(out, "\n")
}
