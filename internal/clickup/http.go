package clickup

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

type httpClient struct {
	cfg  Config
	http *http.Client
}

func newHTTPClient(cfg Config) *httpClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.clickup.com/api/v2"
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

func (c *httpClient) GetTeams(ctx context.Context) ([]Team, error) {
	var out teamsResponse
	if err := c.get(ctx, "/team", nil, &out); err != nil {
		return nil, err
	}
	return out.Teams, nil
}

func (c *httpClient) GetSpaces(ctx context.Context, workspaceID string) ([]Space, error) {
	var out spacesResponse
	if err := c.get(ctx, fmt.Sprintf("/team/%s/space", workspaceID), nil, &out); err != nil {
		return nil, err
	}
	return out.Spaces, nil
}

func (c *httpClient) GetFolders(ctx context.Context, spaceID string) ([]Folder, error) {
	var out foldersResponse
	if err := c.get(ctx, fmt.Sprintf("/space/%s/folder", spaceID), nil, &out); err != nil {
		return nil, err
	}
	return out.Folders, nil
}

func (c *httpClient) GetLists(ctx context.Context, spaceID string, folderID string) ([]List, error) {
	params := url.Values{}
	if folderID != "" {
		params.Set("folder_id", folderID)
	}
	var out listsResponse
	if err := c.get(ctx, fmt.Sprintf("/space/%s/list", spaceID), params, &out); err != nil {
		return nil, err
	}
	return out.Lists, nil
}

func (c *httpClient) GetTasks(ctx context.Context, listID string, q TaskQuery) ([]Task, error) {
	params := url.Values{}
	params.Set("include_closed", strconv.FormatBool(q.IncludeClosed))
	params.Set("subtasks", strconv.FormatBool(q.Subtasks))
	params.Set("include_time", strconv.FormatBool(q.IncludeTime))
	params.Set("page", strconv.Itoa(q.Page))

	var out tasksResponse
	if err := c.get(ctx, fmt.Sprintf("/list/%s/task", listID), params, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.cfg.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	log.Debug().Str("url", reqURL).Msg("ClickUp request")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests {
			return &RateLimitError{RetryAfter: resp.Header.Get("Retry-After")}
		}
		// The API attaches {err, ECODE} payloads to most failures; decode
		// them for a readable message, fall back to the status code.
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}
