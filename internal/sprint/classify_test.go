package sprint

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		label string
		want  StatusClass
	}{
		{"Done", ClassCompleted},
		{"DONE", ClassCompleted},
		{"Closed", ClassCompleted},
		{"Resolved", ClassCompleted},
		{"Ready for Deployment", ClassCompleted},
		{"Shipped", ClassCompleted},
		{"Cancelled", ClassCompleted},
		{"CANCELED", ClassCompleted},
		{"Abandoned", ClassCompleted},
		{"Terminé", ClassCompleted},
		{"In Progress", ClassInProgress},
		{"Code Review", ClassInProgress},
		{"Testing", ClassInProgress},
		{"QA", ClassInProgress},
		{"En cours", ClassInProgress},
		{"Blocked", ClassBlocked},
		{"On Hold", ClassBlocked},
		{"Waiting for input", ClassBlocked},
		{"Bloqué", ClassBlocked},
		{"Open", ClassPending},
		{"To Do", ClassPending},
		{"New", ClassPending},
		{"À faire", ClassPending},
		{"", ClassPending},
		{"Something Unrecognized", ClassPending},
	}

	for _, tc := range cases {
		if got := Classify(tc.label); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.label, got, tc.want)
		}
	}
}

func TestClassifyOrderedGroups(t *testing.T) {
	// "Ready" alone is pending, but completion keywords take precedence
	// when both appear in a label.
	if got := Classify("Ready for Deployment"); got != ClassCompleted {
		t.Errorf("expected completed for deployment-ready label, got %s", got)
	}
	if got := Classify("Ready for QA"); got != ClassInProgress {
		t.Errorf("expected in_progress for QA-ready label, got %s", got)
	}
}
