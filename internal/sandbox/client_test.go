package sandbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crucible/internal/common"
	"crucible/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(url string) config.SandboxConfig {
	return config.SandboxConfig{
		BaseURL:            url,
		CompileTimeoutMs:   10000,
		RunTimeoutMs:       3000,
		CompileMemoryLimit: -1,
		RunMemoryLimit:     -1,
		RequestSlackMs:     2000,
	}
}

func TestRunSendsPistonRequest(t *testing.T) {
	var got ExecuteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/execute", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"language":"python","version":"3.10.0","run":{"stdout":"3\n","stderr":"","output":"3\n","code":0,"signal":null}}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL+"/api/v2/"), zap.NewNop())
	resp, err := client.Run(context.Background(), "Python3", "print(1+2)", "1 2")
	require.NoError(t, err)

	assert.Equal(t, "python", got.Language)
	assert.Equal(t, "*", got.Version)
	require.Len(t, got.Files, 1)
	assert.Equal(t, "main.py", got.Files[0].Name)
	assert.Equal(t, "print(1+2)", got.Files[0].Content)
	assert.Equal(t, "1 2", got.Stdin)
	assert.Equal(t, 10000, got.CompileTimeout)
	assert.Equal(t, 3000, got.RunTimeout)
	assert.Equal(t, -1, got.CompileMemoryLimit)
	assert.Equal(t, -1, got.RunMemoryLimit)

	require.NotNil(t, resp.Run)
	require.NotNil(t, resp.Run.Output)
	assert.Equal(t, "3\n", *resp.Run.Output)
	require.NotNil(t, resp.Run.Code)
	assert.Equal(t, 0, *resp.Run.Code)
	assert.Nil(t, resp.Run.Signal)
	assert.Nil(t, resp.Compile)
}

func TestExecuteNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"runtime is unknown"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Run(context.Background(), "brainfudge", "+", "")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "runtime is unknown")
	assert.ErrorIs(t, err, common.ErrExecution)
}

func TestExecuteMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Run(context.Background(), "go", "package main", "")
	assert.ErrorIs(t, err, common.ErrExecution)
}

func TestExecuteUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(testConfig(url), zap.NewNop())
	_, err := client.Run(context.Background(), "go", "package main", "")
	assert.ErrorIs(t, err, common.ErrExecution)
}

func TestExecuteHonoursContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(testConfig(server.URL), zap.NewNop())
	_, err := client.Run(ctx, "go", "package main", "")
	assert.ErrorIs(t, err, common.ErrExecution)
}

func TestNormalizeLanguage(t *testing.T) {
	tests := map[string]string{
		"JavaScript": "javascript",
		"js":         "javascript",
		"python3":    "python",
		"Python":     "python",
		"C++":        "cpp",
		"cpp":        "cpp",
		"ts":         "typescript",
		"Rust":       "rust",
		" go ":       "go",
		"Kotlin":     "kotlin",
	}

	for in, want := range tests {
		assert.Equal(t, want, NormalizeLanguage(in), in)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "main.java", FileName("java"))
	assert.Equal(t, "main.rs", FileName("rust"))
	assert.Equal(t, "main.cpp", FileName("cpp"))
	assert.Equal(t, "main.txt", FileName("kotlin"))
}
