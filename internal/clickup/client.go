package clickup

import (
	"context"
	"time"
)

// TaskQuery mirrors the query flags accepted by the task listing endpoint.
type TaskQuery struct {
	IncludeClosed bool
	Subtasks      bool
	IncludeTime   bool
	Page          int
}

// Client is the interface for interacting with the project-management API.
type Client interface {
	GetTeams(ctx context.Context) ([]Team, error)
	GetSpaces(ctx context.Context, workspaceID string) ([]Space, error)
	GetFolders(ctx context.Context, spaceID string) ([]Folder, error)
	GetLists(ctx context.Context, spaceID string, folderID string) ([]List, error)
	GetTasks(ctx context.Context, listID string, q TaskQuery) ([]Task, error)
}

// Config holds the authentication and connection settings for the API.
type Config struct {
	BaseURL string
	Token   string

	Timeout time.Duration
}

// NewClient creates a new API client based on the provided configuration.
func NewClient(cfg Config) Client {
	return newHTTPClient(cfg)
}
