package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	domainErrors "github.com/polkiloo/beautymart/internal/domain/errors"
)

const maxErrorBody = 4 << 10

// restClient is the HTTP plumbing shared by provider adapters.
type restClient struct {
	provider   string
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

func newRESTClient(provider, baseURL string, timeout time.Duration, logger *slog.Logger) (*restClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s url: %w", provider, err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("%s url must be absolute", provider)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &restClient{
		provider: provider,
		baseURL:  parsed,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func (c *restClient) endpoint(parts ...string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(append([]string{endpoint.Path}, parts...)...)
	return endpoint.String()
}

func (c *restClient) newRequest(ctx context.Context, method, endpoint, contentType string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *restClient) newJSONRequest(ctx context.Context, method, endpoint string, payload any) (*http.Request, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return c.newRequest(ctx, method, endpoint, "application/json", bytes.NewReader(encoded))
}

// do sends the request and decodes a 2xx JSON body into out. Transport
// failures and unexpected statuses become *ProviderError.
func (c *restClient) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domainErrors.ProviderError{Provider: c.provider, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Error("payment provider request failed",
			slog.String("provider", c.provider),
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return &domainErrors.ProviderError{Provider: c.provider, Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domainErrors.ProviderError{Provider: c.provider, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
