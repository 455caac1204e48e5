package agent

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbrick/taskorchestrator/internal/graph"
)

func TestHTTPFetchAgent_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello from server"))
	}))
	defer ts.Close()

	a := &HTTPFetchAgent{Client: ts.Client()}
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: ts.URL})
	require.NoError(t, err)
	assert.True(t, result.IsOk())
	assert.Equal(t, "hello from server", result.Output)
}

func TestHTTPFetchAgent_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("nope"))
	}))
	defer ts.Close()

	a := &HTTPFetchAgent{Client: ts.Client()}
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: ts.URL})
	require.NoError(t, err)
	assert.False(t, result.IsOk())
	assert.Contains(t, result.Output, "404")
}

func TestHTTPFetchAgent_MissingURL(t *testing.T) {
	a := &HTTPFetchAgent{}
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: `{"foo":"bar"}`})
	require.NoError(t, err)
	assert.False(t, result.IsOk())
}

func TestHTTPPostJSONAgent_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	a := &HTTPPostJSONAgent{Client: ts.Client()}
	task := `{"url":"` + ts.URL + `","json":{"a":1}}`
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: task})
	require.NoError(t, err)
	assert.True(t, result.IsOk())
	assert.Contains(t, result.Output, `"ok":true`)
}

func TestHTTPPostJSONAgent_InvalidScheme(t *testing.T) {
	a := &HTTPPostJSONAgent{}
	task := `{"url":"ftp://example.com","json":{}}`
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: task})
	require.NoError(t, err)
	assert.False(t, result.IsOk())
}

func TestFileExtractAgent_PlainText(t *testing.T) {
	a := &FileExtractAgent{}
	encoded := base64.StdEncoding.EncodeToString([]byte("plain body"))
	task := `{"data_base64":"` + encoded + `","filename":"notes.txt"}`
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: task})
	require.NoError(t, err)
	assert.True(t, result.IsOk())
	assert.Equal(t, "plain body", result.Output)
}

func TestFileExtractAgent_HTML(t *testing.T) {
	a := &FileExtractAgent{}
	encoded := base64.StdEncoding.EncodeToString([]byte("<html><body>hi there</body></html>"))
	task := `{"data_base64":"` + encoded + `","filename":"page.html"}`
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: task})
	require.NoError(t, err)
	assert.True(t, result.IsOk())
	assert.Contains(t, result.Output, "hi there")
}

func TestFileExtractAgent_UnsupportedType(t *testing.T) {
	a := &FileExtractAgent{}
	encoded := base64.StdEncoding.EncodeToString([]byte{0x00, 0x01, 0x02})
	task := `{"data_base64":"` + encoded + `","filename":"blob.bin"}`
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: task})
	require.NoError(t, err)
	assert.False(t, result.IsOk())
}

func TestFileExtractAgent_InvalidBase64(t *testing.T) {
	a := &FileExtractAgent{}
	task := `{"data_base64":"not-base64!!"}`
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: task})
	require.NoError(t, err)
	assert.False(t, result.IsOk())
}

func TestPDFExtractAgent_MissingData(t *testing.T) {
	a := &PDFExtractAgent{}
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: `{}`})
	require.NoError(t, err)
	assert.False(t, result.IsOk())
}

func TestPDFExtractAgent_InvalidBase64(t *testing.T) {
	a := &PDFExtractAgent{}
	task := `{"data_base64":"not valid base64!!"}`
	result, err := a.Execute(context.Background(), &graph.TaskNode{ID: "n", Task: task})
	require.NoError(t, err)
	assert.False(t, result.IsOk())
}

func TestExpandPages(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, expandPages("1-3", 10))
	assert.Equal(t, []int{1, 3, 5}, expandPages("1,3,5", 10))
	assert.Equal(t, []int{1, 2}, expandPages("1-2,2", 10))
	assert.Equal(t, []int(nil), expandPages("", 10))
	assert.Equal(t, []int{9, 10}, expandPages("9-15", 10))
}
