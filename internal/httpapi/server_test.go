package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/mwiater/pagemcp/internal/httpapi"
	"github.com/mwiater/pagemcp/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, opts ...tools.Option) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry(opts...)
	require.NoError(t, r.Register(tools.Definition{
		Name:        "post_to_facebook",
		Description: "Create a new Facebook Page post with a text message",
		Parameters:  []tools.Parameter{{Name: "message", Kind: tools.KindString, Required: true, Description: "The message to post"}},
		Handler: func(_ context.Context, args tools.Args) (any, error) {
			return map[string]any{"id": "123_456", "message": args.String("message")}, nil
		},
	}))
	require.NoError(t, r.Register(tools.Definition{
		Name:        "get_page_posts",
		Description: "Fetch the most recent posts on the Page",
		Handler: func(context.Context, tools.Args) (any, error) {
			return map[string]any{"data": []any{}}, nil
		},
	}))
	require.NoError(t, r.Register(tools.Definition{
		Name:        "delete_post",
		Description: "Delete a specific post from the Facebook Page",
		Handler: func(context.Context, tools.Args) (any, error) {
			return nil, errors.New("graph api: status 400: Unsupported delete request")
		},
	}))
	return r
}

func newServer(t *testing.T, opts ...tools.Option) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(httpapi.New(newRegistry(t, opts...), httpapi.Info{Service: "pagemcp", Version: "1.0.0"}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]any, http.Header) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out, resp.Header
}

func Test_Health(t *testing.T) {
	srv := newServer(t)
	status, body, header := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"status": "healthy", "service": "pagemcp", "version": "1.0.0"}, body)
	assert.NotEmpty(t, header.Get(httpapi.RequestIDHeader))
}

func Test_RequestIDEchoed(t *testing.T) {
	srv := newServer(t)
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(httpapi.RequestIDHeader, "req-1")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "req-1", resp.Header.Get(httpapi.RequestIDHeader))
}

func Test_ListTools(t *testing.T) {
	srv := newServer(t)
	status, body, _ := do(t, srv, http.MethodGet, "/tools", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(3), body["count"])

	list, ok := body["tools"].([]any)
	require.True(t, ok)
	require.Len(t, list, 3)
	first := list[0].(map[string]any)
	assert.Equal(t, "post_to_facebook", first["name"])
	assert.Equal(t, map[string]any{
		"message": map[string]any{"type": "string", "required": true, "description": "The message to post"},
	}, first["parameters"])
	assert.Equal(t, map[string]any{}, list[1].(map[string]any)["parameters"])
}

func Test_CallTool(t *testing.T) {
	srv := newServer(t)

	status, body, _ := do(t, srv, http.MethodPost, "/tools/post_to_facebook", `{"arguments":{"message":"hello"}}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{
		"success": true,
		"tool":    "post_to_facebook",
		"data":    map[string]any{"id": "123_456", "message": "hello"},
	}, body)

	status, body, _ = do(t, srv, http.MethodPost, "/tools/get_page_posts", `{}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
}

func Test_CallTool_Errors(t *testing.T) {
	srv := newServer(t)

	tcases := []struct {
		name   string
		path   string
		body   string
		status int
		err    string
	}{
		{"unknown tool", "/tools/nonexistent_tool", `{"arguments":{}}`, http.StatusNotFound, "Unknown tool: nonexistent_tool"},
		{"case sensitive", "/tools/Post_To_Facebook", `{"arguments":{}}`, http.StatusNotFound, "Unknown tool: Post_To_Facebook"},
		{"handler fault", "/tools/delete_post", `{"arguments":{"post_id":"1"}}`, http.StatusInternalServerError, "graph api: status 400: Unsupported delete request"},
		{"invalid json", "/tools/get_page_posts", `{"arguments":`, http.StatusBadRequest, "Request body must be valid JSON"},
		{"empty body", "/tools/get_page_posts", ``, http.StatusBadRequest, "Request body must be valid JSON"},
		{"array body", "/tools/get_page_posts", `[1,2]`, http.StatusBadRequest, "Request body must be valid JSON"},
		{"arguments not object", "/tools/get_page_posts", `{"arguments":"x"}`, http.StatusBadRequest, "Request body must be valid JSON"},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			status, body, _ := do(t, srv, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, map[string]any{"success": false, "error": tc.err}, body)
		})
	}
}

func Test_CallTool_Strict(t *testing.T) {
	srv := newServer(t, tools.WithStrictArguments(true))
	status, body, _ := do(t, srv, http.MethodPost, "/tools/post_to_facebook", `{"arguments":{}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "message")
}

func Test_Batch(t *testing.T) {
	srv := newServer(t)

	status, body, _ := do(t, srv, http.MethodPost, "/tools/batch", `{"tools":[
		{"name":"get_page_posts"},
		{"name":"bogus","arguments":{"a":1}},
		{"name":"delete_post","arguments":{"post_id":"1"}},
		{"name":"post_to_facebook","arguments":{"message":"hi"}}
	]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 4)
	assert.Equal(t, map[string]any{"tool": "get_page_posts", "success": true, "data": map[string]any{"data": []any{}}}, results[0])
	assert.Equal(t, map[string]any{"tool": "bogus", "success": false, "error": "Unknown tool: bogus"}, results[1])
	assert.Equal(t, false, results[2].(map[string]any)["success"])
	assert.Equal(t, "post_to_facebook", results[3].(map[string]any)["tool"])
	assert.Equal(t, true, results[3].(map[string]any)["success"])
}

func Test_Batch_MalformedEntries(t *testing.T) {
	srv := newServer(t)

	status, body, _ := do(t, srv, http.MethodPost, "/tools/batch", `{"tools":[
		{"name":"get_page_posts"},
		{"name":"post_to_facebook","arguments":"oops"},
		{"name":5},
		"bogus",
		null,
		{"name":"post_to_facebook","arguments":{"message":"hi"}}
	]}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	results, ok := body["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 6)
	assert.Equal(t, map[string]any{"tool": "get_page_posts", "success": true, "data": map[string]any{"data": []any{}}}, results[0])
	assert.Equal(t, map[string]any{"tool": "post_to_facebook", "success": false, "error": "Tool arguments must be a JSON object"}, results[1])
	assert.Equal(t, map[string]any{"tool": "5", "success": false, "error": "Unknown tool: 5"}, results[2])
	assert.Equal(t, map[string]any{"tool": "", "success": false, "error": "Tool entry must be a JSON object"}, results[3])
	assert.Equal(t, map[string]any{"tool": "", "success": false, "error": "Tool entry must be a JSON object"}, results[4])
	assert.Equal(t, true, results[5].(map[string]any)["success"])
}

func Test_RequestIDPropagatesToDispatchLogs(t *testing.T) {
	var buf bytes.Buffer
	xlog.SetFormatter(xlog.NewStringFormatter(&buf))
	xlog.SetGlobalLogLevel(xlog.DEBUG)
	t.Cleanup(func() {
		xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
		xlog.SetGlobalLogLevel(xlog.INFO)
	})

	srv := newServer(t)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/tools/get_page_posts", strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set(httpapi.RequestIDHeader, "req-42")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	// one line from the dispatcher, one from the request log
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "req-42"), 2, buf.String())
	assert.Contains(t, buf.String(), "get_page_posts")
}

func Test_Batch_Malformed(t *testing.T) {
	srv := newServer(t)
	for _, body := range []string{``, `{}`, `{"tool":[]}`, `not json`} {
		status, out, _ := do(t, srv, http.MethodPost, "/tools/batch", body)
		assert.Equal(t, http.StatusBadRequest, status, body)
		assert.Equal(t, `Request must contain "tools" array`, out["error"], body)
	}

	status, out, _ := do(t, srv, http.MethodPost, "/tools/batch", `{"tools":[]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{}, out["results"])
}

func Test_NotFound(t *testing.T) {
	srv := newServer(t)
	status, body, _ := do(t, srv, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, map[string]any{"success": false, "error": "Endpoint not found"}, body)
}

func Test_Run_Shutdown(t *testing.T) {
	s := httpapi.New(newRegistry(t), httpapi.Info{Service: "pagemcp", Version: "test"})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
