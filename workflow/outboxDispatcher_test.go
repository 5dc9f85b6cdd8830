package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/paygate"
)

func TestNextDeliveryBackoff_DoublesAndCaps(t *testing.T) {
	initial := 5 * time.Second
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{3, 20 * time.Second},
		{4, 40 * time.Second},
		{7, 320 * time.Second},
		{8, 10 * time.Minute},
		{20, 10 * time.Minute},
	}
	for _, tc := range cases {
		if got := NextDeliveryBackoff(initial, tc.attempt); got != tc.want {
			t.Errorf("attempt %d: expected %s, got %s", tc.attempt, tc.want, got)
		}
	}
}

func TestNextDeliveryBackoff_FirstAttemptUsesInitial(t *testing.T) {
	if got := NextDeliveryBackoff(30*time.Second, 0); got != 30*time.Second {
		t.Errorf("expected initial backoff, got %s", got)
	}
	if got := NextDeliveryBackoff(30*time.Second, 1); got != 30*time.Second {
		t.Errorf("expected initial backoff, got %s", got)
	}
}

// failingGateway refuses every refund, standing in for an unreachable
// payment provider.
type failingGateway struct {
	calls int
}

var _ paygate.Gateway = (*failingGateway)(nil)

func (g *failingGateway) Refund(ctx context.Context, paymentReference, reason, idempotencyKey string, metadata map[string]string) (string, error) {
	g.calls++
	return "", errors.New("gateway timeout")
}

// A refund failure is the dispatcher's problem, never the remediation's:
// the NO_SHOW/PENDING/penalty outcome committed before the refund event was
// even claimed, and the failed event is rescheduled rather than dropped.
func TestRefundFailure_LeavesCommittedOutcomeAndSchedulesRetry(t *testing.T) {
	// State as committed by the remediation transaction.
	assignment := models.Assignment{ID: 7, JobID: 3, WorkerID: 9, Status: models.AssignmentStatusNoShow}
	job := models.Job{ID: 3, Status: models.JobStatusPending}
	worker := models.WorkerProfile{UserID: 9, Rating: decimal.NewFromFloat(4.5), NoShowCount: 1}

	gateway := &failingGateway{}
	_, err := gateway.Refund(context.Background(), "pay_dev_3", "worker no-show", "noshow-7", nil)
	if err == nil {
		t.Fatal("expected gateway failure")
	}
	if gateway.calls != 1 {
		t.Fatalf("expected one refund attempt, got %d", gateway.calls)
	}

	// The failure only reschedules the event.
	now := time.Now().UTC()
	disposition := classifyDeliveryFailure(1, 20, 5*time.Second, now)
	if disposition.Status != models.OutboxDeliveryStatusFailed {
		t.Errorf("expected FAILED, got %s", disposition.Status)
	}
	if disposition.NextAttemptAt == nil {
		t.Fatal("expected a retry schedule")
	}
	if got := disposition.NextAttemptAt.Sub(now); got != 5*time.Second {
		t.Errorf("expected retry in 5s, got %s", got)
	}

	// Nothing about the committed outcome moved.
	if assignment.Status != models.AssignmentStatusNoShow {
		t.Errorf("assignment status changed: %s", assignment.Status)
	}
	if job.Status != models.JobStatusPending {
		t.Errorf("job status changed: %s", job.Status)
	}
	if !worker.Rating.Equal(decimal.NewFromFloat(4.5)) || worker.NoShowCount != 1 {
		t.Errorf("worker penalty changed: %+v", worker)
	}
}

func TestDeliveryFailure_GoesDeadAfterMaxAttempts(t *testing.T) {
	now := time.Now().UTC()

	disposition := classifyDeliveryFailure(20, 20, 5*time.Second, now)
	if disposition.Status != models.OutboxDeliveryStatusDead {
		t.Errorf("expected DEAD at max attempts, got %s", disposition.Status)
	}
	if disposition.NextAttemptAt != nil {
		t.Error("DEAD events must not be rescheduled")
	}

	disposition = classifyDeliveryFailure(19, 20, 5*time.Second, now)
	if disposition.Status != models.OutboxDeliveryStatusFailed {
		t.Errorf("expected FAILED below max attempts, got %s", disposition.Status)
	}
}

func TestDispatcher_UnknownEventTypeFails(t *testing.T) {
	d := &OutboxDispatcher{}
	err := d.deliver(context.Background(), models.OutboxEvent{
		EventType: models.OutboxEventType("SOMETHING_ELSE"),
	})
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}
