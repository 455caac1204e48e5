package agent

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// FileExtractAgent sniffs a base64-encoded upload's type by extension and
// magic bytes, then delegates to PDFExtractAgent or HTMLToTextAgent, or
// returns plain text bodies as-is. Ground truth teacher's
// tools.FileExtractTool.
type FileExtractAgent struct {
	MaxBytes int
	pdf      PDFExtractAgent
	html     HTMLToTextAgent
}

func (a *FileExtractAgent) Name() string           { return "file_extract" }
func (a *FileExtractAgent) Capabilities() []string { return []string{"file_extract"} }

func (a *FileExtractAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	b64 := stringParam(params, "data_base64", node.Task)
	if b64 == "" {
		return graph.Err("missing data_base64"), nil
	}
	raw := b64
	if i := strings.Index(raw, ","); i != -1 {
		raw = raw[i+1:]
	}
	buf, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return graph.Err("invalid base64: " + err.Error()), nil
	}
	maxBytes := a.MaxBytes
	if maxBytes <= 0 {
		maxBytes = intParam(params, "max_bytes", 20*1024*1024)
	}
	if len(buf) > maxBytes {
		return graph.Err("file too large"), nil
	}

	filename := stringParam(params, "filename", "")
	contentType := stringParam(params, "content_type", "")
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	isPDF := strings.HasPrefix(string(buf), "%PDF-") || ext == "pdf" || strings.Contains(contentType, "pdf")
	if isPDF {
		return a.pdf.Execute(ctx, &graph.TaskNode{ID: node.ID, Task: b64})
	}

	looksHTML := ext == "html" || ext == "htm" || strings.Contains(contentType, "html")
	if !looksHTML {
		s := strings.ToLower(string(buf))
		looksHTML = strings.Contains(s, "<html") || strings.Contains(s, "<body")
	}
	if looksHTML {
		return a.html.Execute(ctx, &graph.TaskNode{ID: node.ID, Task: string(buf)})
	}

	switch {
	case ext == "txt" || ext == "md" || ext == "markdown" || ext == "csv" || ext == "json" || ext == "log" || ext == "yaml" || ext == "yml",
		strings.Contains(contentType, "text/"), strings.Contains(contentType, "json"),
		strings.Contains(contentType, "csv"), strings.Contains(contentType, "yaml"):
		return graph.Ok(strings.TrimSpace(string(buf))), nil
	}

	return graph.Err(errors.New("unsupported file type; provide PDF/HTML/text/CSV/JSON/YAML").Error()), nil
}
