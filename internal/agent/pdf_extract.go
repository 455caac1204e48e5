package agent

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pdfx "github.com/ledongthuc/pdf"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

// PDFExtractAgent decodes a base64-encoded PDF and returns the plain text
// of its pages, optionally restricted to a page range. Ground truth
// teacher's tools.PDFExtractTool.
type PDFExtractAgent struct {
	MaxBytes int
	MaxPages int
}

func (a *PDFExtractAgent) Name() string           { return "pdf_extract" }
func (a *PDFExtractAgent) Capabilities() []string { return []string{"pdf_extract"} }

func (a *PDFExtractAgent) Execute(ctx context.Context, node *graph.TaskNode) (graph.TaskResult, error) {
	params := parseParams(node.Task)
	data := stringParam(params, "data_base64", node.Task)
	if data == "" {
		return graph.Err("missing data_base64"), nil
	}
	maxBytes := a.MaxBytes
	if maxBytes <= 0 {
		maxBytes = intParam(params, "max_bytes", 20*1024*1024)
	}
	maxPages := a.MaxPages
	if maxPages <= 0 {
		maxPages = intParam(params, "max_pages", 20)
	}

	if i := strings.Index(data, ","); i != -1 {
		data = data[i+1:]
	}
	buf, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return graph.Err("invalid base64: " + err.Error()), nil
	}
	if len(buf) > maxBytes {
		return graph.Err(fmt.Sprintf("pdf too large: %d bytes > limit %d", len(buf), maxBytes)), nil
	}

	dir := os.TempDir()
	path := filepath.Join(dir, fmt.Sprintf("pdf_%d_%s.pdf", os.Getpid(), node.ID))
	if err := os.WriteFile(path, buf, 0600); err != nil {
		return graph.Err(err.Error()), nil
	}
	defer os.Remove(path)

	f, r, err := pdfx.Open(path)
	if err != nil {
		return graph.Err(err.Error()), nil
	}
	defer f.Close()

	totalPages := r.NumPage()
	pagesSpec := stringParam(params, "pages", "")
	selected := expandPages(pagesSpec, totalPages)
	if len(selected) == 0 {
		for i := 1; i <= totalPages; i++ {
			selected = append(selected, i)
		}
	}
	if len(selected) > maxPages {
		selected = selected[:maxPages]
	}

	var out strings.Builder
	for _, page := range selected {
		select {
		case <-ctx.Done():
			return graph.Err(errors.New("pdf extraction canceled").Error()), nil
		default:
		}
		p := r.Page(page)
		txt, _ := p.GetPlainText(nil)
		if t := strings.TrimSpace(txt); t != "" {
			out.WriteString(t)
			out.WriteString("\n\n")
		}
	}
	return graph.Ok(strings.TrimSpace(out.String())), nil
}

func expandPages(spec string, total int) []int {
	var out []int
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return out
	}
	seen := map[int]struct{}{}
	add := func(n int) {
		if n >= 1 && n <= total {
			if _, ok := seen[n]; !ok {
				out = append(out, n)
				seen[n] = struct{}{}
			}
		}
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			rng := strings.SplitN(part, "-", 2)
			lo, _ := strconv.Atoi(strings.TrimSpace(rng[0]))
			hi, _ := strconv.Atoi(strings.TrimSpace(rng[1]))
			if lo > hi {
				lo, hi = hi, lo
			}
			for i := lo; i <= hi; i++ {
				add(i)
			}
		} else {
			n, _ := strconv.Atoi(part)
			add(n)
		}
	}
	return out
}
