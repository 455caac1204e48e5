package agent

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// RegexExtractAgent finds all matches of a pattern in text, returning named
// groups as objects when the pattern uses them. Ground truth teacher's
// tools.RegexExtractTool.
type RegexExtractAgent struct{}

func (a *RegexExtractAgent) Name() string           { return "regex_extract" }
func (a *RegexExtractAgent) Capabilities() []string { return []string{"regex_extract"} }

func (a *RegexExtractAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	text := stringParam(params, "text", "")
	pattern := stringParam(params, "pattern", "")
	if pattern == "" {
		return graph.Err("missing pattern"), nil
	}
	if strings.TrimSpace(text) == "" {
		return graph.Ok("[]"), nil
	}

	flags := strings.ToLower(stringParam(params, "flags", ""))
	prefix := ""
	var f []string
	if strings.Contains(flags, "i") {
		f = append(f, "i")
	}
	if strings.Contains(flags, "m") {
		f = append(f, "m")
	}
	if strings.Contains(flags, "s") {
		f = append(f, "s")
	}
	if len(f) > 0 {
		prefix = "(?" + strings.Join(f, "") + ")"
	}

	rx, err := regexp.Compile(prefix + pattern)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	limit := intParam(params, "limit", 100)

	names := rx.SubexpNames()
	hasNamed := false
	for _, n := range names {
		if n != "" {
			hasNamed = true
			break
		}
	}

	var out any
	if hasNamed {
		rows := make([]map[string]string, 0)
		for _, idx := range rx.FindAllStringSubmatchIndex(text, limit) {
			row := map[string]string{}
			for gi := 1; gi < len(names); gi++ {
				name := names[gi]
				if name == "" {
					continue
				}
				s, e := idx[2*gi], idx[2*gi+1]
				if s >= 0 && e >= 0 && s <= e && e <= len(text) {
					row[name] = text[s:e]
				}
			}
			rows = append(rows, row)
		}
		out = rows
	} else {
		rows := rx.FindAllStringSubmatch(text, limit)
		if rows == nil {
			rows = [][]string{}
		}
		out = rows
	}

	b, err := json.Marshal(out)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	return graph.Ok(string(b)), nil
}
