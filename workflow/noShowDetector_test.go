package workflow

import (
	"testing"
	"time"

	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
)

func cutoffAt(clock time.Time, toleranceMinutes int) time.Time {
	return clock.Add(-time.Duration(toleranceMinutes) * time.Minute)
}

func TestNoShowPredicate_ToleranceBoundary(t *testing.T) {
	scheduled := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	// One minute before the tolerance expires: not yet a no-show.
	at1029 := cutoffAt(time.Date(2026, 3, 10, 10, 29, 0, 0, time.UTC), 30)
	if AssignmentEligible(models.AssignmentStatusAccepted, nil, models.JobStatusAccepted, scheduled, at1029) {
		t.Error("10:29 with 30m tolerance: expected not eligible")
	}

	// One minute past: eligible.
	at1031 := cutoffAt(time.Date(2026, 3, 10, 10, 31, 0, 0, time.UTC), 30)
	if !AssignmentEligible(models.AssignmentStatusAccepted, nil, models.JobStatusAccepted, scheduled, at1031) {
		t.Error("10:31 with 30m tolerance: expected eligible")
	}

	// Exactly at the deadline: eligible (scheduled <= cutoff).
	at1030 := cutoffAt(time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC), 30)
	if !AssignmentEligible(models.AssignmentStatusAccepted, nil, models.JobStatusAccepted, scheduled, at1030) {
		t.Error("10:30 with 30m tolerance: expected eligible")
	}
}

func TestNoShowPredicate_CheckedInWorkerNeverEligible(t *testing.T) {
	scheduled := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	started := scheduled.Add(5 * time.Minute)
	cutoff := cutoffAt(scheduled.Add(4*time.Hour), 30)

	if AssignmentEligible(models.AssignmentStatusAccepted, &started, models.JobStatusInProgress, scheduled, cutoff) {
		t.Error("started assignment: expected not eligible regardless of elapsed time")
	}
	// Even if the job status were stale, a set started_at wins.
	if AssignmentEligible(models.AssignmentStatusAccepted, &started, models.JobStatusAccepted, scheduled, cutoff) {
		t.Error("started assignment with stale job status: expected not eligible")
	}
}

func TestNoShowPredicate_RequiresAcceptedAssignment(t *testing.T) {
	scheduled := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	cutoff := cutoffAt(scheduled.Add(2*time.Hour), 30)

	for _, status := range []models.AssignmentStatus{
		models.AssignmentStatusPending,
		models.AssignmentStatusDeclined,
		models.AssignmentStatusExpired,
		models.AssignmentStatusNoShow,
	} {
		if AssignmentEligible(status, nil, models.JobStatusAccepted, scheduled, cutoff) {
			t.Errorf("assignment status %s: expected not eligible", status)
		}
	}
}

func TestNoShowPredicate_RequiresPreExecutionJobStatus(t *testing.T) {
	scheduled := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	cutoff := cutoffAt(scheduled.Add(2*time.Hour), 30)

	for _, status := range []models.JobStatus{
		models.JobStatusPending,
		models.JobStatusInProgress,
		models.JobStatusCompleted,
		models.JobStatusCancelled,
	} {
		if AssignmentEligible(models.AssignmentStatusAccepted, nil, status, scheduled, cutoff) {
			t.Errorf("job status %s: expected not eligible", status)
		}
	}
	for _, status := range []models.JobStatus{models.JobStatusAssigned, models.JobStatusAccepted} {
		if !AssignmentEligible(models.AssignmentStatusAccepted, nil, status, scheduled, cutoff) {
			t.Errorf("job status %s: expected eligible", status)
		}
	}
}
