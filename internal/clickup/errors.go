package clickup

import "fmt"

// APIError is a structured error payload returned by the API alongside a
// non-2xx status. ECODE identifies the failure class.
type APIError struct {
	Err        string `json:"err"`
	ECode      string `json:"ECODE"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	switch e.ECode {
	case "OAUTH_027":
		return fmt.Sprintf("authorization error: %s (check that the API token has the required permissions)", e.Err)
	case "OAUTH_001":
		return fmt.Sprintf("invalid API token: %s", e.Err)
	case "OAUTH_002":
		return fmt.Sprintf("expired API token: %s (regenerate the token)", e.Err)
	case "OAUTH_003":
		return fmt.Sprintf("insufficient permissions: %s", e.Err)
	}
	if e.ECode != "" {
		return fmt.Sprintf("API error (%s): %s", e.ECode, e.Err)
	}

	switch e.StatusCode {
	case 401:
		return "authentication failed: check the API token"
	case 403:
		return "access denied: check the API token permissions"
	case 404:
		return "resource not found: check the workspace or space identifier"
	}
	if e.StatusCode >= 500 {
		return fmt.Sprintf("upstream server error (%d), retry later", e.StatusCode)
	}
	return fmt.Sprintf("API returned status %d", e.StatusCode)
}

// RateLimitError signals a 429 response. The orchestrator treats it as
// retryable once after a fixed pause.
type RateLimitError struct {
	RetryAfter string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter != "" {
		return fmt.Sprintf("rate limit exceeded (429), retry after %s seconds", e.RetryAfter)
	}
	return "rate limit exceeded (429)"
}
