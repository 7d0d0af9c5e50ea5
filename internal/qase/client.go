package qase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Client is the interface for the QA-management API.
type Client interface {
	GetRuns(ctx context.Context, limit, offset int) ([]Run, error)
	GetCases(ctx context.Context, limit int) ([]Case, error)
}

// Config holds the connection settings for the QA API.
type Config struct {
	BaseURL     string
	Token       string
	ProjectCode string

	Timeout time.Duration
}

// NewClient creates a new QA API client.
func NewClient(cfg Config) Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.qase.io/v1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type httpClient struct {
	cfg  Config
	http *http.Client
}

func (c *httpClient) GetRuns(ctx context.Context, limit, offset int) ([]Run, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var out envelope[Run]
	if err := c.get(ctx, "/run/"+c.cfg.ProjectCode, params, &out); err != nil {
		return nil, err
	}
	return out.Result.Entities, nil
}

func (c *httpClient) GetCases(ctx context.Context, limit int) ([]Case, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var out envelope[Case]
	if err := c.get(ctx, "/case/"+c.cfg.ProjectCode, params, &out); err != nil {
		return nil, err
	}
	return out.Result.Entities, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.cfg.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	log.Debug().Str("url", reqURL).Msg("Qase request")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Token", c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("QA API authentication failed (%d): check the API token", resp.StatusCode)
		case http.StatusTooManyRequests:
			return fmt.Errorf("QA API rate limit exceeded (429)")
		default:
			return fmt.Errorf("QA API returned status %d", resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode QA API response: %w", err)
	}
	return nil
}
