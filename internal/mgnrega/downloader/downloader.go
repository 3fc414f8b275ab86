package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/farxc/mgnrega-goa/internal/logger"
	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
	"github.com/patrickmn/go-cache"
)

var DataGovURL = "https://api.data.gov.in/resource/"

const DefaultTimeout = 10 * time.Second

type Config struct {
	BaseURL     string
	ResourceID  string
	APIKey      string
	StateFilter string
	Timeout     time.Duration
	// CacheTTL memoizes successful fetches; zero disables it.
	CacheTTL time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	memo   *cache.Cache
	logger *logger.Logger
}

type recordsPayload struct {
	Records []types.RawRecord `json:"records"`
}

func NewClient(cfg Config, appLogger *logger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DataGovURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: appLogger,
	}
	if cfg.CacheTTL > 0 {
		c.memo = cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}
	return c
}

// Configured reports whether both an endpoint identifier and a key are set.
func (c *Client) Configured() bool {
	return c != nil && strings.TrimSpace(c.cfg.ResourceID) != "" && strings.TrimSpace(c.cfg.APIKey) != ""
}

// Endpoint is the resource URL without credentials. A resource id that is
// already an absolute URL is used as is.
func (c *Client) Endpoint() string {
	id := strings.TrimSpace(c.cfg.ResourceID)
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		return id
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(id, "/")
}

func (c *Client) requestURL() (string, error) {
	u, err := url.Parse(c.Endpoint())
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("api-key", c.cfg.APIKey)
	q.Set("format", "json")
	if c.cfg.StateFilter != "" {
		q.Set("filters[state_name]", c.cfg.StateFilter)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchData issues one bounded request for the first page of records.
// memoized reports that no request was made because a previous answer is
// still within CacheTTL. Every failure, including an empty record list, is
// ErrRemoteUnavailable.
func (c *Client) FetchData(ctx context.Context) (records []types.RawRecord, memoized bool, err error) {
	const component = "Downloader"

	if !c.Configured() {
		return nil, false, fmt.Errorf("%w: credentials not configured", types.ErrRemoteUnavailable)
	}

	endpoint := c.Endpoint()
	if c.memo != nil {
		if cached, ok := c.memo.Get(endpoint); ok {
			records = cached.([]types.RawRecord)
			c.logger.Debug(component, "Serving memoized remote records: endpoint=%s records=%d", endpoint, len(records))
			return records, true, nil
		}
	}

	reqURL, err := c.requestURL()
	if err != nil {
		return nil, false, fmt.Errorf("%w: invalid endpoint: %v", types.ErrRemoteUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	c.logger.Debug(component, "Starting fetch: endpoint=%s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to create request: %v", types.ErrRemoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%w: request failed: %v", types.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, false, fmt.Errorf("%w: status %d", types.ErrRemoteUnavailable, resp.StatusCode)
	}

	var payload recordsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("%w: decode body: %v", types.ErrRemoteUnavailable, err)
	}
	if len(payload.Records) == 0 {
		return nil, false, fmt.Errorf("%w: empty record list", types.ErrRemoteUnavailable)
	}

	if c.memo != nil {
		c.memo.SetDefault(endpoint, payload.Records)
	}

	c.logger.Info(component, "Fetch completed: endpoint=%s records=%d", endpoint, len(payload.Records))
	return payload.Records, false, nil
}

// Forget drops any memoized response.
func (c *Client) Forget() {
	if c != nil && c.memo != nil {
		c.memo.Flush()
	}
}
