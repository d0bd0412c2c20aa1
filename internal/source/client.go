package source

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/rhysr01/jobping/internal/util"
)

const (
	userAgent          = "jobping/1.0 (hello@jobping.eu)"
	contentType        = "application/json"
	defaultMinInterval = 500 * time.Millisecond
	rateLimitBackoff   = 2 * time.Second
	requestTimeout     = 15 * time.Second
)

// Client is the HTTP machinery shared by adapters. Each adapter owns its own
// Client instance, so the inter-request interval is enforced per source and
// never globally.
type Client struct {
	HTTPClient  *http.Client
	UserAgent   string
	logger      *zap.Logger
	minInterval time.Duration
	lastRequest time.Time
}

// NewClient creates a client with the default timeout and request interval.
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: requestTimeout,
		},
		UserAgent:   userAgent,
		logger:      logger,
		minInterval: defaultMinInterval,
	}
}

// GetJSON fetches the URL and decodes the JSON body into target. On HTTP 429
// it sleeps a fixed backoff and retries exactly once before failing. Requests
// within a single adapter are spaced by the minimum interval.
func (c *Client) GetJSON(req *http.Request, q url.Values, target interface{}) error {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	if err := c.throttle(req); err != nil {
		return err
	}

	resp, err := c.request(req)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		resp.Body.Close()
		c.logger.Warn("rate limited, backing off",
			zap.String("url", req.URL.String()),
			zap.Duration("backoff", rateLimitBackoff),
		)
		if err := util.WaitFor(req.Context(), rateLimitBackoff); err != nil {
			return err
		}
		resp, err = c.request(req)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if target == nil {
		return nil
	}

	return json.Unmarshal(data, target)
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) throttle(req *http.Request) error {
	if c.lastRequest.IsZero() {
		c.lastRequest = time.Now()
		return nil
	}

	elapsed := time.Since(c.lastRequest)
	if elapsed < c.minInterval {
		if err := util.WaitFor(req.Context(), c.minInterval-elapsed); err != nil {
			return err
		}
	}
	c.lastRequest = time.Now()

	return nil
}
