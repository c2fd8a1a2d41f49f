package emailcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Result is the verdict of the external email validation service.
type Result struct {
	Valid  bool   `json:"is_valid"`
	Banned bool   `json:"is_banned"`
	Reason string `json:"reason"`
}

// Verifier checks whether an email address may register.
type Verifier interface {
	Verify(ctx context.Context, email string) (Result, error)
}

// Client calls the external validation endpoint over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient constructs an HTTP verifier against the given endpoint.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Verify posts the email to the validation service and decodes its
// verdict. Transport failures are returned to the caller so it can
// decide whether to fail open or closed.
func (c *Client) Verify(ctx context.Context, email string) (Result, error) {
	payload, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return Result{}, fmt.Errorf("marshal email check request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build email check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("email check request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("email check returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode email check response: %w", err)
	}
	return result, nil
}

// Noop accepts every address. Used when no validation endpoint is
// configured.
type Noop struct{}

// Verify always reports the address as valid.
func (Noop) Verify(_ context.Context, _ string) (Result, error) {
	return Result{Valid: true}, nil
}

// NewVerifier returns an HTTP client when an endpoint is configured and
// a Noop verifier otherwise.
func NewVerifier(baseURL string, timeout time.Duration, logger *zap.Logger) Verifier {
	if baseURL == "" {
		return Noop{}
	}
	return NewClient(baseURL, timeout, logger)
}
