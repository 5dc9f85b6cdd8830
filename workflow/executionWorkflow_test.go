package workflow

import (
	"errors"
	"testing"

	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/utils"
)

func TestTransitionOrder_StrictlyMonotonic(t *testing.T) {
	statuses := []models.ExecutionStatus{
		models.ExecutionStatusNotStarted,
		models.ExecutionStatusCheckedIn,
		models.ExecutionStatusInProgress,
		models.ExecutionStatusCompleted,
	}
	allowedFrom := map[models.ExecutionAction]models.ExecutionStatus{
		models.ExecutionActionCheckIn:  models.ExecutionStatusNotStarted,
		models.ExecutionActionStart:    models.ExecutionStatusCheckedIn,
		models.ExecutionActionComplete: models.ExecutionStatusInProgress,
	}

	for action, from := range allowedFrom {
		for _, status := range statuses {
			err := validateTransitionOrder(action, status)
			if status == from {
				if err != nil {
					t.Errorf("%s from %s: expected allowed, got %v", action, status, err)
				}
				continue
			}
			if err == nil {
				t.Errorf("%s from %s: expected rejection", action, status)
				continue
			}
			var te *utils.TransitionError
			if !errors.As(err, &te) {
				t.Errorf("%s from %s: expected TransitionError, got %T", action, status, err)
			}
		}
	}
}

func TestTransitionOrder_RejectionCarriesCurrentStatus(t *testing.T) {
	err := validateTransitionOrder(models.ExecutionActionComplete, models.ExecutionStatusCheckedIn)
	if err == nil {
		t.Fatal("expected rejection")
	}
	detail := utils.ErrorDetail(err)
	if detail == nil {
		t.Fatal("expected structured detail on the rejection")
	}
	if detail["status"] != models.ExecutionStatusCheckedIn {
		t.Errorf("expected detail status CHECKED_IN, got %v", detail["status"])
	}
}

func TestTransitionOrder_UnknownActionRejected(t *testing.T) {
	err := validateTransitionOrder(models.ExecutionAction("PAUSE"), models.ExecutionStatusNotStarted)
	if err == nil {
		t.Fatal("expected rejection of unknown action")
	}
	var ve *utils.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %T", err)
	}
}
