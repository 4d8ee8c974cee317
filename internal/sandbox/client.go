// Package sandbox talks to a Piston-compatible remote code execution service.
package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"crucible/internal/common"
	"crucible/internal/config"

	"go.uber.org/zap"
)

const maxErrorBody = 512

// StatusError is returned when the sandbox answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sandbox returned status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return common.ErrExecution
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        config.SandboxConfig
	logger     *zap.Logger
}

func NewClient(cfg config.SandboxConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout()},
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes source code once with the given stdin.
func (c *Client) Run(ctx context.Context, language, code, stdin string) (*ExecuteResponse, error) {
	lang := NormalizeLanguage(language)
	return c.Execute(ctx, ExecuteRequest{
		Language: lang,
		Version:  "*",
		Files: []File{{
			Name:     FileName(lang),
			Content:  code,
			Encoding: "utf8",
		}},
		Stdin:              stdin,
		Args:               []string{},
		CompileTimeout:     c.cfg.CompileTimeoutMs,
		RunTimeout:         c.cfg.RunTimeoutMs,
		CompileMemoryLimit: c.cfg.CompileMemoryLimit,
		RunMemoryLimit:     c.cfg.RunMemoryLimit,
	})
}

func (c *Client) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal execute request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build execute request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("sandbox request failed",
			zap.String("language", req.Language),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", common.ErrExecution, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("sandbox returned error status",
			zap.String("language", req.Language),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
	}

	var result ExecuteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode sandbox response: %v", common.ErrExecution, err)
	}

	fields := []zap.Field{
		zap.String("language", req.Language),
		zap.Duration("elapsed", time.Since(start)),
	}
	if result.Run != nil && result.Run.Code != nil {
		fields = append(fields, zap.Int("exit_code", *result.Run.Code))
	}
	c.logger.Debug("sandbox execution completed", fields...)

	return &result, nil
}
