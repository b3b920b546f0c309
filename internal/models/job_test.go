package models

import "testing"

func TestCanTransition_ForwardPath(t *testing.T) {
	path := []JobStatus{
		JobStatusPending,
		JobStatusAssigned,
		JobStatusEnRoute,
		JobStatusInProgress,
		JobStatusCompleted,
	}
	for i := 0; i < len(path)-1; i++ {
		if !CanTransition(path[i], path[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestCanTransition_NoSkippingOrGoingBack(t *testing.T) {
	if CanTransition(JobStatusPending, JobStatusInProgress) {
		t.Error("pending -> in_progress should not be allowed")
	}
	if CanTransition(JobStatusInProgress, JobStatusAssigned) {
		t.Error("in_progress -> assigned should not be allowed")
	}
}

func TestCanTransition_CancelAndHoldFromAnyNonTerminal(t *testing.T) {
	for _, from := range []JobStatus{JobStatusPending, JobStatusAssigned, JobStatusEnRoute, JobStatusInProgress} {
		if !CanTransition(from, JobStatusCancelled) {
			t.Errorf("%s -> cancelled should be allowed", from)
		}
		if !CanTransition(from, JobStatusOnHold) {
			t.Errorf("%s -> on_hold should be allowed", from)
		}
	}
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	for _, from := range []JobStatus{JobStatusCompleted, JobStatusCancelled} {
		if !from.IsTerminal() {
			t.Errorf("%s should be terminal", from)
		}
		for _, to := range []JobStatus{JobStatusPending, JobStatusInProgress, JobStatusOnHold, JobStatusCancelled} {
			if CanTransition(from, to) {
				t.Errorf("%s -> %s should not be allowed", from, to)
			}
		}
	}
	if JobStatusOnHold.IsTerminal() {
		t.Error("on_hold should not be terminal")
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	if CanTransition(JobStatus("washing"), JobStatusCompleted) {
		t.Error("unknown source status should not transition")
	}
}
