package dashboard

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"qaboard/internal/clickup"
	"qaboard/internal/config"
	"qaboard/internal/history"
	"qaboard/internal/qase"
	"qaboard/internal/quality"
	"qaboard/internal/sprint"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func millis(value string) string {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return strconv.FormatInt(t.UnixMilli(), 10)
}

type fakeClickUp struct {
	teams     []clickup.Team
	teamsErr  error
	spaces    []clickup.Space
	spacesErr error
	lists     map[string][]clickup.List
	listsErr  map[string]error
	tasks     map[string][]clickup.Task
	taskErrs  map[string][]error

	mu        sync.Mutex // GetTasks runs concurrently within a batch
	taskCalls map[string]int
	queries   map[string][]clickup.TaskQuery
}

func (f *fakeClickUp) GetTeams(ctx context.Context) ([]clickup.Team, error) {
	return f.teams, f.teamsErr
}

func (f *fakeClickUp) GetSpaces(ctx context.Context, workspaceID string) ([]clickup.Space, error) {
	return f.spaces, f.spacesErr
}

func (f *fakeClickUp) GetFolders(ctx context.Context, spaceID string) ([]clickup.Folder, error) {
	return nil, nil
}

func (f *fakeClickUp) GetLists(ctx context.Context, spaceID string, folderID string) ([]clickup.List, error) {
	if err := f.listsErr[spaceID]; err != nil {
		return nil, err
	}
	return f.lists[spaceID], nil
}

func (f *fakeClickUp) GetTasks(ctx context.Context, listID string, q clickup.TaskQuery) ([]clickup.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taskCalls == nil {
		f.taskCalls = make(map[string]int)
	}
	if f.queries == nil {
		f.queries = make(map[string][]clickup.TaskQuery)
	}
	f.taskCalls[listID]++
	f.queries[listID] = append(f.queries[listID], q)

	if queue := f.taskErrs[listID]; len(queue) > 0 {
		err := queue[0]
		f.taskErrs[listID] = queue[1:]
		return nil, err
	}
	return f.tasks[listID], nil
}

type downQase struct{}

func (downQase) GetRuns(ctx context.Context, limit, offset int) ([]qase.Run, error) {
	return nil, errors.New("unreachable")
}

func (downQase) GetCases(ctx context.Context, limit int) ([]qase.Case, error) {
	return nil, errors.New("unreachable")
}

func task(id, status, due string, points float64) clickup.Task {
	t := clickup.Task{
		ID:     id,
		Name:   id,
		Status: clickup.TaskStatus{Status: status},
		Points: points,
	}
	if due != "" {
		t.DueDate = millis(due)
	}
	return t
}

// engineeringFixture is a workspace with a backlog, a completed sprint and
// an active sprint.
func engineeringFixture() *fakeClickUp {
	return &fakeClickUp{
		teams:  []clickup.Team{{ID: "w1", Name: "Acme"}},
		spaces: []clickup.Space{{ID: "s1", Name: "Engineering"}},
		lists: map[string][]clickup.List{
			"s1": {
				{ID: "l-backlog", Name: "BACKLOG"},
				{ID: "l41", Name: "Sprint 41"},
				{ID: "l42", Name: "Sprint 42"},
			},
		},
		tasks: map[string][]clickup.Task{
			"l-backlog": {
				task("b1", "in progress", "2024-06-14", 2),
				task("b2", "to do", "2024-06-16", 1),
			},
			"l41": {
				task("a1", "done", "2024-05-27", 4),
				task("a2", "done", "2024-06-07", 6),
			},
			"l42": {
				task("c1", "done", "2024-06-18", 5),
				task("c2", "in progress", "2024-06-12", 3),
			},
		},
	}
}

type testStores struct {
	velocity *history.VelocityStore
	cache    *history.SprintCacheStore
}

func newTestOrchestrator(cu clickup.Client) (*Orchestrator, testStores) {
	clock := func() time.Time { return testNow }
	cfg := &config.AppConfig{WorkspaceID: "w1", SprintFolderID: "f1"}
	stores := testStores{
		velocity: history.NewVelocityStore(history.NewMemKV()),
		cache:    history.NewSprintCacheStore(history.NewMemKV()).WithClock(clock),
	}
	runStore := history.NewTestRunStore(history.NewMemKV()).WithClock(clock)
	q := quality.NewRefresher(downQase{}, runStore).WithClock(clock)

	o := NewOrchestrator(cfg, cu, q, stores.velocity, stores.cache).WithClock(clock)
	o.stagger = 0
	o.batchPause = 0
	o.ratePause = 0
	o.historyPause = 0
	return o, stores
}

func TestRefreshSprintsCurrentBoard(t *testing.T) {
	cu := engineeringFixture()
	o, stores := newTestOrchestrator(cu)

	res, err := o.RefreshSprints(context.Background())
	if err != nil {
		t.Fatalf("RefreshSprints: %v", err)
	}
	if res.SpaceID != "s1" || res.SpaceName != "Engineering" {
		t.Errorf("space = %s/%s", res.SpaceID, res.SpaceName)
	}

	// Backlog plus the latest sprint, sorted by end date descending.
	if len(res.Sprints) != 2 {
		t.Fatalf("sprints = %+v", res.Sprints)
	}
	if res.Sprints[0].ID != "l42" || res.Sprints[1].ID != "l-backlog" {
		t.Errorf("board order = %s, %s", res.Sprints[0].ID, res.Sprints[1].ID)
	}
	if res.Sprints[0].Status != sprint.StatusActive {
		t.Errorf("Sprint 42 status = %s", res.Sprints[0].Status)
	}
	if cu.taskCalls["l41"] != 1 {
		t.Errorf("Sprint 41 should only be fetched for history, calls = %d", cu.taskCalls["l41"])
	}

	// History covers both sprint lists, never the backlog.
	if len(res.History) != 2 {
		t.Fatalf("history = %+v", res.History)
	}
	for _, s := range res.History {
		if s.ID == "l-backlog" {
			t.Error("backlog leaked into sprint history")
		}
	}

	// The active sprint's completed points were recorded.
	entries := stores.velocity.All()
	if len(entries) != 1 {
		t.Fatalf("velocity entries = %+v", entries)
	}
	if entries[0].SprintID != "l42" || entries[0].CompletedStoryPoints != 5 {
		t.Errorf("velocity entry = %+v", entries[0])
	}
}

func TestRefreshSprintsRateLimitRetry(t *testing.T) {
	plain := engineeringFixture()
	oPlain, _ := newTestOrchestrator(plain)
	want, err := oPlain.RefreshSprints(context.Background())
	if err != nil {
		t.Fatalf("baseline refresh: %v", err)
	}

	limited := engineeringFixture()
	limited.taskErrs = map[string][]error{
		"l42": {&clickup.RateLimitError{RetryAfter: "1"}},
	}
	oLimited, _ := newTestOrchestrator(limited)
	got, err := oLimited.RefreshSprints(context.Background())
	if err != nil {
		t.Fatalf("rate-limited refresh: %v", err)
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("rate-limited cycle diverged:\ngot  %+v\nwant %+v", got, want)
	}
	if limited.taskCalls["l42"] != plain.taskCalls["l42"]+1 {
		t.Errorf("expected exactly one retry, calls = %d", limited.taskCalls["l42"])
	}
}

func TestRefreshSprintsDiscoveryFailure(t *testing.T) {
	cu := engineeringFixture()
	cu.teamsErr = errors.New("401")
	o, _ := newTestOrchestrator(cu)
	if _, err := o.RefreshSprints(context.Background()); err == nil {
		t.Error("workspace discovery failure should abort the cycle")
	}

	cu = engineeringFixture()
	cu.spacesErr = errors.New("503")
	o, _ = newTestOrchestrator(cu)
	if _, err := o.RefreshSprints(context.Background()); err == nil {
		t.Error("space discovery failure should abort the cycle")
	}
}

func TestRefreshSprintsSkipsBrokenSpace(t *testing.T) {
	cu := engineeringFixture()
	cu.spaces = []clickup.Space{
		{ID: "s0", Name: "Marketing"},
		{ID: "s1", Name: "Engineering"},
	}
	cu.listsErr = map[string]error{"s0": errors.New("403")}

	o, _ := newTestOrchestrator(cu)
	res, err := o.RefreshSprints(context.Background())
	if err != nil {
		t.Fatalf("RefreshSprints: %v", err)
	}
	if res.SpaceID != "s1" {
		t.Errorf("expected the healthy space, got %s", res.SpaceID)
	}
}

func TestSelectSpace(t *testing.T) {
	spaces := []clickup.Space{
		{ID: "s0", Name: "Marketing"},
		{ID: "s1", Name: "Product Development"},
	}
	got, err := selectSpace(spaces)
	if err != nil || got.ID != "s1" {
		t.Errorf("selectSpace = %+v, %v", got, err)
	}

	got, err = selectSpace(spaces[:1])
	if err != nil || got.ID != "s0" {
		t.Errorf("fallback to first space = %+v, %v", got, err)
	}

	if _, err = selectSpace(nil); err == nil {
		t.Error("expected error for an empty workspace")
	}
}

func TestCurrentBoardFallback(t *testing.T) {
	cu := engineeringFixture()
	cu.lists["s1"] = []clickup.List{
		{ID: "l-iter", Name: "Iteration 7"},
		{ID: "l-empty", Name: "Icebox"},
	}
	cu.tasks = map[string][]clickup.Task{
		"l-iter": {
			task("i1", "in progress", "2024-06-14", 2),
			task("i2", "done", "2024-06-16", 3),
		},
		"l-empty": nil,
	}

	o, _ := newTestOrchestrator(cu)
	res, err := o.RefreshSprints(context.Background())
	if err != nil {
		t.Fatalf("RefreshSprints: %v", err)
	}
	if len(res.Sprints) != 1 || res.Sprints[0].ID != "l-iter" {
		t.Fatalf("fallback board = %+v", res.Sprints)
	}

	// The fallback pass widens the query to include subtasks.
	queries := cu.queries["l-iter"]
	if len(queries) == 0 || !queries[len(queries)-1].Subtasks {
		t.Errorf("fallback queries = %+v", queries)
	}
}

func TestSprintHistoryReusesCompletedCache(t *testing.T) {
	cu := engineeringFixture()
	o, stores := newTestOrchestrator(cu)

	cached := sprint.Sprint{
		ID:      "l41",
		Name:    "Sprint 41",
		Status:  sprint.StatusCompleted,
		EndDate: "2024-06-07",
	}
	stores.cache.Save("s1", []sprint.Sprint{cached})

	res, err := o.RefreshSprints(context.Background())
	if err != nil {
		t.Fatalf("RefreshSprints: %v", err)
	}

	if cu.taskCalls["l41"] != 0 {
		t.Errorf("completed cached sprint was refetched %d times", cu.taskCalls["l41"])
	}
	found := false
	for _, s := range res.History {
		if s.ID == "l41" {
			found = true
			if !reflect.DeepEqual(s, cached) {
				t.Errorf("cached sprint was rewritten: %+v", s)
			}
		}
	}
	if !found {
		t.Error("cached sprint missing from history")
	}
}

func TestDedupeByID(t *testing.T) {
	in := []sprint.Sprint{
		{ID: "a", Name: "first", EndDate: "2024-06-01"},
		{ID: "b", EndDate: "2024-06-20"},
		{ID: "a", Name: "second", EndDate: "2024-06-10"},
	}
	out := dedupeByID(in)
	if len(out) != 2 {
		t.Fatalf("dedupe = %+v", out)
	}
	if out[0].ID != "b" {
		t.Errorf("expected end-date descending order, got %+v", out)
	}
	if out[1].Name != "second" {
		t.Errorf("expected last write to win, got %+v", out[1])
	}
}

func TestRefreshComposesState(t *testing.T) {
	cu := engineeringFixture()
	o, _ := newTestOrchestrator(cu)

	state, err := o.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if state.SpaceName != "Engineering" {
		t.Errorf("space = %q", state.SpaceName)
	}
	// Sprint 41 completed 10 points and is the only completed sprint in the
	// averaging window.
	if state.AverageVelocity != 10 {
		t.Errorf("average velocity = %d", state.AverageVelocity)
	}
	if len(state.VelocityHistory) != 1 {
		t.Errorf("velocity history = %+v", state.VelocityHistory)
	}
	// The QA side is down; the state still assembles with empty quality data.
	if len(state.TestRuns) != 0 || state.TestCaseStats != (quality.CaseStats{}) {
		t.Errorf("quality data should be empty: %+v", state.TestRuns)
	}
	if !state.RefreshedAt.Equal(testNow) {
		t.Errorf("refreshed at = %v", state.RefreshedAt)
	}
}
