package wakatime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"

	"github.com/anivanovic/codestats/pkg/chart"
	"github.com/anivanovic/codestats/pkg/statserr"
)

const (
	DefaultBaseURL = "https://wakatime.com/api/v1"
	DefaultRange   = "all_time"
	DefaultSection = "languages"

	serviceName = "wakatime"
)

var sections = map[string]struct{}{
	"languages":         {},
	"editors":           {},
	"operating_systems": {},
	"categories":        {},
	"projects":          {},
	"machines":          {},
}

type Config struct {
	BaseURL string
	APIKey  string
	Range   string
	Section string

	// Attempts bounds the requests made for one Stats call.
	Attempts uint
	Delay    time.Duration
}

type Client struct {
	c      *http.Client
	cfg    Config
	logger *zap.Logger
}

type (
	statsResponse struct {
		Data map[string]json.RawMessage `json:"data"`
	}

	statItem struct {
		Name    string   `json:"name"`
		Percent *float64 `json:"percent"`
		Text    string   `json:"text"`
	}
)

func New(cfg Config, client *http.Client, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Range == "" {
		cfg.Range = DefaultRange
	}
	if cfg.Section == "" {
		cfg.Section = DefaultSection
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	if _, ok := sections[cfg.Section]; !ok {
		return nil, fmt.Errorf("wakatime: unknown stats section %q: %w", cfg.Section, statserr.ErrInvalidConfig)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("wakatime: base url: %v: %w", err, statserr.ErrInvalidConfig)
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{c: client, cfg: cfg, logger: logger}, nil
}

func (c *Client) Url() string {
	return fmt.Sprintf("%s/users/current/stats/%s", strings.TrimSuffix(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Range))
}

// Stats returns the entries of the configured section in the order the
// provider sent them. Outages are retried with exponential backoff.
func (c *Client) Stats(ctx context.Context) ([]chart.Entry, error) {
	var entries []chart.Entry
	err := retry.Do(
		func() error {
			var err error
			entries, err = c.fetch(ctx)
			return err
		},
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, statserr.ErrUpstreamUnavailable)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("wakatime request attempt failed",
				zap.Uint("attempt", n+1),
				zap.Uint("attempts", c.cfg.Attempts),
				zap.Error(err))
		}),
		retry.LastErrorOnly(true),
		retry.Attempts(c.cfg.Attempts),
		retry.Delay(c.cfg.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (c *Client) fetch(ctx context.Context) ([]chart.Entry, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Url(), nil)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.cfg.APIKey)))
	r.Header.Set("Accept", "application/json")

	res, err := c.c.Do(r)
	if err != nil {
		return nil, fmt.Errorf("wakatime request: %v: %w", err, statserr.ErrUpstreamUnavailable)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			c.logger.Warn("error closing stats response",
				zap.Error(err),
				zap.String("url", c.Url()))
		}
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("wakatime read body: %v: %w", err, statserr.ErrUpstreamUnavailable)
	}

	if res.StatusCode != http.StatusOK {
		c.logger.Warn("Stats response with error status code",
			zap.Int("statusCode", res.StatusCode),
			zap.String("url", c.Url()))
		return nil, statserr.FromStatus(serviceName, res.StatusCode, truncate(body))
	}

	return c.readEntries(body)
}

func (c *Client) readEntries(body []byte) ([]chart.Entry, error) {
	var response statsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode stats: %v: %w", err, statserr.ErrMalformedData)
	}
	if response.Data == nil {
		return nil, fmt.Errorf("stats response without data: %w", statserr.ErrMalformedData)
	}
	raw, ok := response.Data[c.cfg.Section]
	if !ok || string(raw) == "null" {
		return nil, fmt.Errorf("stats response without %s: %w", c.cfg.Section, statserr.ErrMalformedData)
	}

	var items []statItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %v: %w", c.cfg.Section, err, statserr.ErrMalformedData)
	}

	entries := make([]chart.Entry, 0, len(items))
	for i, item := range items {
		if item.Name == "" || item.Percent == nil {
			return nil, fmt.Errorf("%s[%d] is missing name or percent: %w", c.cfg.Section, i, statserr.ErrMalformedData)
		}
		entries = append(entries, chart.Entry{
			Label:   item.Name,
			Percent: *item.Percent,
			Text:    item.Text,
		})
	}
	c.logger.Debug("received stats",
		zap.String("section", c.cfg.Section),
		zap.Int("entries", len(entries)))

	return entries, nil
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
