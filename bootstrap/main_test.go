package bootstrap

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pubgo/geminiquick/configs"
)

const childEnv = "GEMINIQUICK_BOOTSTRAP_CHILD"

// TestMainChild runs Main when started by runMain.
func TestMainChild(t *testing.T) {
	if os.Getenv(childEnv) != "1" {
		t.Skip("started by runMain only")
	}

	os.Args = []string{"geminiquick"}
	Main()
	os.Exit(0)
}

func runMain(t *testing.T, dir string, env ...string) (stdout, stderr string, code int) {
	t.Helper()

	cmd := exec.Command(os.Args[0], "-test.run=^TestMainChild$")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		childEnv+"=1",
		"XDG_CONFIG_HOME="+dir,
		"GEMINI_API_KEY=",
		"GOOGLE_API_KEY=",
		debugEnv+"=false",
	)
	cmd.Env = append(cmd.Env, env...)

	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	err := cmd.Run()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return out.String(), errOut.String(), exitErr.ExitCode()
	}
	require.NoError(t, err)
	return out.String(), errOut.String(), 0
}

func TestMainWithoutCredential(t *testing.T) {
	stdout, stderr, code := runMain(t, t.TempDir())
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "GEMINI_API_KEY")
}

func TestMainPrintsAnswer(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("x-goog-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{
				map[string]any{
					"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": "PONG"}}},
					"finishReason": "STOP",
				},
			},
		})
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := strings.Replace(string(configs.GetDefaultConfig()), `base_url: ""`, "base_url: "+srv.URL, 1)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "geminiquick"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geminiquick", "config.yaml"), []byte(cfg), 0o644))

	stdout, stderr, code := runMain(t, dir, "GEMINI_API_KEY=test-key")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "PONG\n", stdout)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMainRejectedKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "status": "INVALID_ARGUMENT", "message": "API key not valid. Please pass a valid API key."},
		})
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := strings.Replace(string(configs.GetDefaultConfig()), `base_url: ""`, "base_url: "+srv.URL, 1)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "geminiquick"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "geminiquick", "config.yaml"), []byte(cfg), 0o644))

	stdout, _, code := runMain(t, dir, "GEMINI_API_KEY=bad-key")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
}
