package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = xlog.NewPackageLogger("github.com/mwiater/pagemcp/internal", "logging_test")

func captureStderr(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	orig := stderr
	stderr = &buf
	t.Cleanup(func() {
		stderr = orig
		_ = Close()
		xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
		xlog.SetGlobalLogLevel(xlog.INFO)
	})
	return &buf
}

func TestInitWritesToFileAndStderr(t *testing.T) {
	buf := captureStderr(t)
	logPath := filepath.Join(t.TempDir(), "nested", "pagemcp.log")

	require.NoError(t, Init(logPath, false))
	testLogger.KV(xlog.INFO, "status", "hello world")
	testLogger.KV(xlog.DEBUG, "status", "hidden")
	require.NoError(t, Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello world")
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, buf.String(), "hello world")
}

func TestInitDebug(t *testing.T) {
	buf := captureStderr(t)

	require.NoError(t, Init("", true))
	testLogger.KV(xlog.DEBUG, "status", "verbose")
	assert.Contains(t, buf.String(), "verbose")
}

func TestInitBadPath(t *testing.T) {
	captureStderr(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	assert.Error(t, Init(filepath.Join(blocker, "sub", "pagemcp.log"), false))
}

func TestCloseWithoutFile(t *testing.T) {
	assert.NoError(t, Close())
	assert.Equal(t, xlog.DEBUG, Level(true))
	assert.Equal(t, xlog.INFO, Level(false))
}
