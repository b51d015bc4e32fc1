package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

// resetFlags restores every flag in the tree to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	currentConfig = nil

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	_, err := rootCmd.ExecuteC()
	return out.String(), errOut.String(), err
}

// withGraph points the environment at a Graph stand-in and returns its hit counter.
func withGraph(t *testing.T, status int, body string) *atomic.Int32 {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	t.Chdir(t.TempDir())
	t.Setenv("GRAPH_API_BASE_URL", srv.URL)
	t.Setenv("PAGE_ID", "page1")
	t.Setenv("PAGE_ACCESS_TOKEN", "super-secret-token")
	return &hits
}

func TestRootCmd(t *testing.T) {
	_, errOut, err := execute(t, "nonexistent")
	require.Error(t, err)
	assert.Contains(t, errOut, `unknown command "nonexistent" for "pagemcp"`)
}

func TestListCommands(t *testing.T) {
	withGraph(t, http.StatusOK, `{}`)
	out, _, err := execute(t, "list", "commands")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands and Subcommands:")
	assert.Contains(t, out, "pagemcp tools call")
	assert.Contains(t, out, "pagemcp serve")
	assert.Contains(t, out, "pagemcp show config")
	assert.NotContains(t, out, "completion")
}

func TestToolsList(t *testing.T) {
	withGraph(t, http.StatusOK, `{}`)

	out, _, err := execute(t, "tools", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "post_to_facebook")
	assert.Contains(t, out, "image_url*, caption")
	assert.Contains(t, out, "30 tools")

	out, _, err = execute(t, "tools", "list", "-o", "json")
	require.NoError(t, err)
	var listed struct {
		Count int `json:"count"`
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Equal(t, 30, listed.Count)
	assert.Equal(t, "post_to_facebook", listed.Tools[0].Name)
	assert.Equal(t, "send_dm_to_user", listed.Tools[29].Name)

	out, _, err = execute(t, "tools", "list", "--output", "yaml")
	require.NoError(t, err)
	var descs []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &descs))
	assert.Len(t, descs, 30)

	_, _, err = execute(t, "tools", "list", "-o", "xml")
	assert.Error(t, err)
}

func TestToolsCall(t *testing.T) {
	hits := withGraph(t, http.StatusOK, `{"id":"123_456"}`)

	out, errOut, err := execute(t, "tools", "call", "post_to_facebook", "--args", `{"message":"hello"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"id":"123_456"}}`, out)
	assert.Contains(t, errOut, "post_to_facebook")
	assert.Equal(t, int32(1), hits.Load())

	out, _, err = execute(t, "tools", "call", "nonexistent_tool")
	require.Error(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Unknown tool: nonexistent_tool","kind":"UnknownToolError"}`, out)

	_, _, err = execute(t, "tools", "call", "post_to_facebook", "--args", `not json`)
	assert.Error(t, err)
}

func TestToolsCallBackendError(t *testing.T) {
	withGraph(t, http.StatusUnauthorized, `{"error":{"message":"Invalid OAuth access token."}}`)

	out, errOut, err := execute(t, "tools", "call", "get_page_posts")
	require.Error(t, err)
	assert.JSONEq(t, `{"success":false,"error":"graph api: status 401: Invalid OAuth access token.","kind":"HandlerError"}`, out)
	assert.Contains(t, errOut, "HandlerError")
}

func TestToolsCallStrictArguments(t *testing.T) {
	hits := withGraph(t, http.StatusOK, `{}`)

	out, _, err := execute(t, "--strictArguments", "tools", "call", "post_to_facebook")
	require.Error(t, err)
	assert.Contains(t, out, "InvalidArgumentsError")
	assert.Zero(t, hits.Load())
}

func TestToolsCallRequiresCredentials(t *testing.T) {
	withGraph(t, http.StatusOK, `{}`)
	t.Setenv("PAGE_ACCESS_TOKEN", "")

	_, _, err := execute(t, "tools", "call", "get_page_posts")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestShowConfig(t *testing.T) {
	withGraph(t, http.StatusOK, `{}`)

	out, _, err := execute(t, "show", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "No config file loaded")
	assert.Contains(t, out, "page1")
	assert.NotContains(t, out, "super-secret")
}

func TestServeRequiresCredentials(t *testing.T) {
	withGraph(t, http.StatusOK, `{}`)
	t.Setenv("PAGE_ID", "")

	_, _, err := execute(t, "serve", "--port", "0")
	assert.Error(t, err)
}
