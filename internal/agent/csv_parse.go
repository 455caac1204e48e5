package agent

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// CSVParseAgent converts CSV text into an array of row objects, using
// header names from the first row unless overridden. Ground truth
// teacher's tools.CSVParseTool.
type CSVParseAgent struct{}

func (a *CSVParseAgent) Name() string           { return "csv_parse" }
func (a *CSVParseAgent) Capabilities() []string { return []string{"csv_parse"} }

func (a *CSVParseAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	raw := stringParam(params, "csv", node.Task)
	if strings.TrimSpace(raw) == "" {
		return graph.Ok("[]"), nil
	}

	rdr := csv.NewReader(strings.NewReader(raw))
	rdr.FieldsPerRecord = -1
	if d := stringParam(params, "delimiter", ""); d != "" {
		r := []rune(d)
		if len(r) != 1 {
			return graph.Err("delimiter must be a single character"), nil
		}
		rdr.Comma = r[0]
	}

	var headers []string
	if params != nil {
		if hv, ok := params["headers"].([]any); ok {
			for _, v := range hv {
				if s, ok := v.(string); ok {
					headers = append(headers, s)
				}
			}
		}
	}
	hasHeader := true
	if params != nil {
		if b, ok := params["has_header"].(bool); ok {
			hasHeader = b
		}
	}

	var err error
	if len(headers) == 0 && hasHeader {
		headers, err = rdr.Read()
		if err != nil {
			return graph.Err(err.Error()), nil
		}
		for i := range headers {
			headers[i] = strings.TrimSpace(headers[i])
		}
	}

	rows := make([]map[string]string, 0, 64)
	for {
		rec, err := rdr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF") {
				break
			}
			return graph.Err(err.Error()), nil
		}
		if len(headers) == 0 {
			headers = make([]string, len(rec))
			for i := range rec {
				headers[i] = fmt.Sprintf("c%d", i+1)
			}
		}
		row := map[string]string{}
		for i := range headers {
			var v string
			if i < len(rec) {
				v = rec[i]
			}
			row[headers[i]] = v
		}
		rows = append(rows, row)
	}

	b, err := json.Marshal(rows)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	return graph.Ok(string(b)), nil
}
