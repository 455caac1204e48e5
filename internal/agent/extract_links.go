package agent

import (
	"encoding/json"
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// ExtractLinksAgent parses HTML and returns the anchors it finds as a JSON
// array of {href, text}, resolved against an optional base_url. Ground
// truth teacher's tools.ExtractLinksTool.
type ExtractLinksAgent struct{}

func (a *ExtractLinksAgent) Name() string           { return "extract_links" }
func (a *ExtractLinksAgent) Capabilities() []string { return []string{"extract_links"} }

func (a *ExtractLinksAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	src := stringParam(params, "html", node.Task)
	max := intParam(params, "max", 50)
	if strings.TrimSpace(src) == "" {
		return graph.Ok("[]"), nil
	}

	var base *url.URL
	if b := stringParam(params, "base_url", ""); b != "" {
		if u, err := url.Parse(b); err == nil {
			base = u
		}
	}

	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	links := make([]map[string]string, 0)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil || len(links) >= max {
			return
		}
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "a") {
			var href string
			for _, attr := range n.Attr {
				if strings.EqualFold(attr.Key, "href") {
					href = strings.TrimSpace(attr.Val)
					break
				}
			}
			text := strings.TrimSpace(nodeText(n))
			if href != "" {
				if base != nil {
					if u, err := url.Parse(href); err == nil {
						href = base.ResolveReference(u).String()
					}
				}
				links = append(links, map[string]string{"href": href, "text": text})
			}
		}
		for c := n.FirstChild; c != nil && len(links) < max; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	out, err := json.Marshal(links)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	return graph.Ok(string(out)), nil
}

func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(x *html.Node) {
		if x.Type == html.TextNode {
			b.WriteString(x.Data)
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
