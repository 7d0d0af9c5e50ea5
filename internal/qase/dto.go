package qase

// envelope is the {status, result: {total, entities}} wrapper every listing
// endpoint responds with.
type envelope[T any] struct {
	Status bool `json:"status"`
	Result struct {
		Total    int `json:"total"`
		Entities []T `json:"entities"`
	} `json:"result"`
}

// RunStats carries the pass/fail breakdown of a run. Some deployments report
// the counts at the top level of the run instead; both are decoded.
type RunStats struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// Run is a test run entity.
type Run struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Status     int      `json:"status"`
	StatusText string   `json:"status_text"`
	Passed     int      `json:"passed"`
	Failed     int      `json:"failed"`
	Skipped    int      `json:"skipped"`
	Total      int      `json:"total"`
	Stats      RunStats `json:"stats"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time"`
}

// CaseSuite is the suite a case belongs to.
type CaseSuite struct {
	Title string `json:"title"`
}

// Case is a test case entity. Automation, status and priority are numeric
// codes translated by the quality package.
type Case struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Automation  int        `json:"automation"`
	Status      int        `json:"status"`
	Priority    int        `json:"priority"`
	Suite       *CaseSuite `json:"suite"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}
