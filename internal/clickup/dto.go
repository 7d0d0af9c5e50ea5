package clickup

import "encoding/json"

// Team represents a workspace entry returned by the teams endpoint.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Space is a top-level container for folders and lists.
type Space struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Lists is populated by the orchestrator during discovery; the spaces
	// endpoint itself does not return lists.
	Lists []List `json:"-"`
}

// Folder groups lists within a space.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List is a task list. Sprint lists and the backlog are both Lists,
// distinguished only by name.
type List struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TaskCount int    `json:"task_count"`
}

// TaskStatus is the free-text status attached to a task.
type TaskStatus struct {
	Status string `json:"status"`
	Color  string `json:"color"`
}

// CustomField is a named custom attribute on a task. Value is kept raw
// because the API returns numbers, numeric strings, or null depending on
// the field type.
type CustomField struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// TaskPriority is decoded but not interpreted; the dashboard does not rank
// by priority.
type TaskPriority struct {
	ID       string `json:"id"`
	Priority string `json:"priority"`
}

// Task is a single work item. Date fields are epoch-milliseconds strings,
// the API's native representation.
type Task struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Status       TaskStatus    `json:"status"`
	DueDate      string        `json:"due_date"`
	DateCreated  string        `json:"date_created"`
	TimeEstimate int64         `json:"time_estimate"`
	TimeSpent    int64         `json:"time_spent"`
	Priority     *TaskPriority `json:"priority"`
	Points       float64       `json:"points"`
	CustomFields []CustomField `json:"custom_fields"`
}

type teamsResponse struct {
	Teams []Team `json:"teams"`
}

type spacesResponse struct {
	Spaces []Space `json:"spaces"`
}

type foldersResponse struct {
	Folders []Folder `json:"folders"`
}

type listsResponse struct {
	Lists []List `json:"lists"`
}

type tasksResponse struct {
	Tasks []Task `json:"tasks"`
}
