package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ashureev/adolai/internal/domain"
	"github.com/ashureev/adolai/internal/metrics"
)

// DefaultTimeout bounds every upstream request unless overridden.
const DefaultTimeout = 45 * time.Second

const maxErrorBody = 64 << 10

// Config configures a Client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client calls the chatbot REST API.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client for the API at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("invalid chat api base url %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{baseURL: base, timeout: cfg.Timeout, http: cfg.HTTPClient, logger: cfg.Logger}, nil
}

// SendMessage posts a chat message and returns the bot reply.
func (c *Client) SendMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.do(ctx, http.MethodPost, "/chat", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Topics lists the health topics the bot covers.
func (c *Client) Topics(ctx context.Context) (*TopicsResponse, error) {
	var out TopicsResponse
	if err := c.do(ctx, http.MethodGet, "/topics", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FollowUps returns suggested follow-up questions, optionally for a topic.
func (c *Client) FollowUps(ctx context.Context, userID, topic string) (*FollowUpResponse, error) {
	q := url.Values{}
	if topic != "" {
		q.Set("topic", topic)
	}
	var out FollowUpResponse
	if err := c.do(ctx, http.MethodGet, "/follow-up/"+url.PathEscape(userID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns the upstream health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	out := map[string]any{}
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NextQuestion fetches the next quiz question.
func (c *Client) NextQuestion(ctx context.Context, topic, difficulty string) (*domain.Question, error) {
	q := url.Values{}
	if topic != "" {
		q.Set("topic", topic)
	}
	if difficulty != "" {
		q.Set("difficulty", difficulty)
	}
	var out questionWire
	if err := c.do(ctx, http.MethodGet, "/mcq/next", q, nil, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// SubmitAttempt grades an answer.
func (c *Client) SubmitAttempt(ctx context.Context, req AttemptRequest) (*domain.AttemptResult, error) {
	var out domain.AttemptResult
	if err := c.do(ctx, http.MethodPost, "/mcq/attempt", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (err error) {
	endpoint := method + " " + metricPath(path)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(KindOf(err))
			if outcome == "" {
				outcome = "error"
			}
		}
		metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
		metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Chat API request", "method", method, "url", u)
	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := transportError(endpoint, err)
		c.logger.Warn("Chat API request failed", "endpoint", endpoint, "kind", apiErr.Kind, "error", err)
		return apiErr
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close chat api response body", "error", closeErr)
		}
	}()

	c.logger.Debug("Chat API response", "status", resp.StatusCode, "url", u, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		detail := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &eb) == nil && eb.detail() != "" {
			detail = eb.detail()
		}
		apiErr := &Error{Kind: kindForStatus(resp.StatusCode), Endpoint: endpoint, Status: resp.StatusCode, Detail: detail}
		c.logger.Warn("Chat API error response", "endpoint", endpoint, "status", resp.StatusCode, "detail", detail)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return transportError(endpoint, ctx.Err())
		}
		return &Error{Kind: KindDecode, Endpoint: endpoint, Status: resp.StatusCode, Err: err}
	}
	return nil
}

// metricPath keeps per-user path segments out of metric labels.
func metricPath(path string) string {
	if strings.HasPrefix(path, "/follow-up/") {
		return "/follow-up/{userId}"
	}
	return path
}
