package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"catalog-service/core/resilience"

	"go.uber.org/zap"
)

// Client is the typed client for the external collector. Every fetch goes
// through the resilience gate, so callers only ever see tagged failures.
type Client struct {
	baseURL string
	size    int
	httpc   *http.Client
	gate    *resilience.Gate
	logger  *zap.Logger
}

// NewClient creates a collector client on top of the given gate.
// The gate owns timeouts, so the underlying http.Client carries none.
func NewClient(cfg Config, gate *resilience.Gate, logger *zap.Logger) *Client {
	size := cfg.PageSize
	if size <= 0 {
		size = 200
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		size:    size,
		httpc:   &http.Client{},
		gate:    gate,
		logger:  logger,
	}
}

// PageSize returns the configured page size.
func (c *Client) PageSize() int {
	return c.size
}

// FetchPage requests one page of raw records starting at cursor. An empty
// cursor requests the first page.
func (c *Client) FetchPage(ctx context.Context, cursor string) (Page, error) {
	return resilience.Call(ctx, c.gate, func(ctx context.Context) (Page, error) {
		return c.fetch(ctx, cursor)
	})
}

func (c *Client) fetch(ctx context.Context, cursor string) (Page, error) {
	q := url.Values{}
	q.Set("size", strconv.Itoa(c.size))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/records?"+q.Encode(), nil)
	if err != nil {
		return Page{}, resilience.NewError(resilience.KindNonTransient, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		// Connection errors and context deadlines; the gate classifies them.
		return Page{}, err
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode); err != nil {
		return Page{}, err
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Page{}, resilience.Errorf(resilience.KindTransient, "decode collector page: %v", err)
	}

	c.logger.Debug("fetched collector page",
		zap.Int("records", len(page.Records)),
		zap.String("next_cursor", page.NextCursor),
		zap.Bool("end_of_data", page.EndOfData),
	)
	return page, nil
}

// classifyStatus maps a non-2xx response onto the failure taxonomy.
// 5xx and 429 are transient; any other 4xx is a permanent rejection.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500 || code == http.StatusTooManyRequests:
		return resilience.NewError(resilience.KindTransient, fmt.Errorf("collector returned %d", code))
	case code == http.StatusNotFound:
		return resilience.NewError(resilience.KindNotFound, fmt.Errorf("collector returned %d", code))
	default:
		return resilience.NewError(resilience.KindNonTransient, fmt.Errorf("collector returned %d", code))
	}
}
