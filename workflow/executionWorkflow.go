package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/config"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransitionInput struct {
	JobId     int
	ActorId   int
	Action    models.ExecutionAction
	Latitude  *float64
	Longitude *float64
}

type TransitionOutcome struct {
	Status  models.ExecutionStatus
	Message string
}

// validateTransitionOrder enforces the strictly monotonic execution state
// machine: any out-of-order action is rejected without mutating state.
func validateTransitionOrder(action models.ExecutionAction, current models.ExecutionStatus) error {
	var required models.ExecutionStatus
	switch action {
	case models.ExecutionActionCheckIn:
		required = models.ExecutionStatusNotStarted
	case models.ExecutionActionStart:
		required = models.ExecutionStatusCheckedIn
	case models.ExecutionActionComplete:
		required = models.ExecutionStatusInProgress
	default:
		return utils.NewValidationError("unknown execution action")
	}
	if current != required {
		return utils.NewTransitionError(
			fmt.Sprintf("cannot %s while execution is %s", action, current),
			map[string]interface{}{"status": current},
		)
	}
	return nil
}

// TransitionExecution runs one worker action through the execution state
// machine. The read-check-write happens inside a single transaction with a
// row lock on the execution so two concurrent requests cannot both observe
// the stale pre-transition status. Customer notifications are enqueued as
// outbox events in the same transaction and delivered after commit.
func TransitionExecution(ctx context.Context, db *gorm.DB, logger *logrus.Logger, settings config.SettingsProvider, in TransitionInput) (*TransitionOutcome, error) {
	cfg, err := settings.Operational(ctx)
	if err != nil {
		config.LogError(logger, "executionWorkflow.go", "TransitionExecution", "Operational settings", in.JobId, err)
		return nil, err
	}

	var outcome *TransitionOutcome
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		agg, err := models.GetJobAggregate(ctx, tx, in.JobId)
		if err != nil {
			return err
		}
		if agg.Assignment.WorkerID != in.ActorId {
			return utils.NewAuthorizationError("only the assigned worker may update this job's execution")
		}

		execution, err := models.GetOrCreateExecution(ctx, tx, agg.Job)
		if err != nil {
			return err
		}
		// Re-read under a row lock; GetOrCreateExecution's read was unlocked.
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(execution, "id = ?", execution.ID).Error; err != nil {
			return err
		}

		if err := validateTransitionOrder(in.Action, execution.Status); err != nil {
			return err
		}

		now := time.Now().UTC()
		switch in.Action {
		case models.ExecutionActionCheckIn:
			outcome, err = applyCheckIn(ctx, tx, cfg, agg, execution, in, now)
		case models.ExecutionActionStart:
			outcome, err = applyStart(ctx, tx, cfg, execution, now)
		case models.ExecutionActionComplete:
			outcome, err = applyComplete(ctx, tx, cfg, agg, execution, in, now)
		default:
			err = utils.NewValidationError("unknown execution action")
		}
		return err
	})
	if err != nil {
		if utils.HTTPStatus(err) >= 500 {
			config.LogError(logger, "executionWorkflow.go", "TransitionExecution", "Transaction", in, err)
		}
		return nil, err
	}
	return outcome, nil
}

func applyCheckIn(ctx context.Context, tx *gorm.DB, cfg config.OperationalSettings, agg *models.JobAggregate, execution *models.Execution, in TransitionInput, now time.Time) (*TransitionOutcome, error) {
	geofence := ValidateGeofence(in.Latitude, in.Longitude, agg.Job.Latitude, agg.Job.Longitude, cfg.GeofenceRadiusMeters)
	if !geofence.Valid {
		return nil, utils.NewTransitionError(
			fmt.Sprintf("you are %.0fm from the job site; check-in requires being within %.0fm",
				geofence.DistanceMeters, geofence.MaxDistanceMeters),
			map[string]interface{}{
				"distance":         geofence.DistanceMeters,
				"maxDistance":      geofence.MaxDistanceMeters,
				"requiresOverride": true,
			},
		)
	}

	if err := tx.Model(execution).Updates(map[string]interface{}{
		"status":             models.ExecutionStatusCheckedIn,
		"checked_in_at":      now,
		"check_in_latitude":  in.Latitude,
		"check_in_longitude": in.Longitude,
	}).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Assignment{}).
		Where("id = ?", agg.Assignment.ID).
		Update("started_at", now).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Job{}).
		Where("id = ?", agg.Job.ID).
		Update("status", models.JobStatusInProgress).Error; err != nil {
		return nil, err
	}

	if err := models.EnqueueOutboxEvent(ctx, tx, models.OutboxEventCustomerArrival, agg.Job.ID, models.CustomerNoticePayload{
		JobId:      agg.Job.ID,
		CustomerId: agg.Customer.ID,
		Phone:      agg.Customer.Phone,
		Email:      agg.Customer.Email,
		WorkerName: agg.WorkerUser.Name,
	}); err != nil {
		return nil, err
	}

	return &TransitionOutcome{Status: models.ExecutionStatusCheckedIn, Message: "checked in"}, nil
}

func applyStart(ctx context.Context, tx *gorm.DB, cfg config.OperationalSettings, execution *models.Execution, now time.Time) (*TransitionOutcome, error) {
	beforeCount, err := models.CountExecutionPhotos(ctx, tx, execution.ID, models.PhotoTagBefore)
	if err != nil {
		return nil, err
	}
	gate := CanStart(beforeCount, cfg.RequiredBeforePhotos)
	if !gate.Allowed {
		return nil, utils.NewTransitionError(
			fmt.Sprintf("%d of %d required before photos uploaded", gate.PhotoCount, gate.RequiredPhotos),
			map[string]interface{}{
				"photoCount":     gate.PhotoCount,
				"requiredPhotos": gate.RequiredPhotos,
			},
		)
	}

	if err := tx.Model(execution).Updates(map[string]interface{}{
		"status":     models.ExecutionStatusInProgress,
		"started_at": now,
	}).Error; err != nil {
		return nil, err
	}
	return &TransitionOutcome{Status: models.ExecutionStatusInProgress, Message: "work started"}, nil
}

func applyComplete(ctx context.Context, tx *gorm.DB, cfg config.OperationalSettings, agg *models.JobAggregate, execution *models.Execution, in TransitionInput, now time.Time) (*TransitionOutcome, error) {
	afterCount, err := models.CountExecutionPhotos(ctx, tx, execution.ID, models.PhotoTagAfter)
	if err != nil {
		return nil, err
	}
	incomplete, err := models.IncompleteRequiredItems(ctx, tx, execution.ID)
	if err != nil {
		return nil, err
	}
	gate := CanComplete(afterCount, cfg.RequiredAfterPhotos, incomplete)
	if !gate.Allowed {
		detail := map[string]interface{}{
			"photoCount":     gate.PhotoCount,
			"requiredPhotos": gate.RequiredPhotos,
		}
		message := fmt.Sprintf("%d of %d required after photos uploaded", gate.PhotoCount, gate.RequiredPhotos)
		if len(gate.IncompleteItems) > 0 {
			detail["incompleteItems"] = gate.IncompleteItems
			message = fmt.Sprintf("required checklist items incomplete: %v", gate.IncompleteItems)
		}
		return nil, utils.NewTransitionError(message, detail)
	}

	if err := tx.Model(execution).Updates(map[string]interface{}{
		"status":              models.ExecutionStatusCompleted,
		"completed_at":        now,
		"check_out_latitude":  in.Latitude,
		"check_out_longitude": in.Longitude,
	}).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Job{}).
		Where("id = ?", agg.Job.ID).
		Update("status", models.JobStatusCompleted).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.WorkerProfile{}).
		Where("user_id = ?", agg.Assignment.WorkerID).
		Update("completed_job_count", gorm.Expr("completed_job_count + 1")).Error; err != nil {
		return nil, err
	}

	if err := models.EnqueueOutboxEvent(ctx, tx, models.OutboxEventJobCompleted, agg.Job.ID, models.CustomerNoticePayload{
		JobId:      agg.Job.ID,
		CustomerId: agg.Customer.ID,
		Phone:      agg.Customer.Phone,
		Email:      agg.Customer.Email,
		WorkerName: agg.WorkerUser.Name,
	}); err != nil {
		return nil, err
	}

	return &TransitionOutcome{Status: models.ExecutionStatusCompleted, Message: "job completed"}, nil
}

// ExecutionDetail is the read view for GET /jobs/:id/execution.
type ExecutionDetail struct {
	Execution models.Execution         `json:"execution"`
	Photos    []models.ExecutionPhoto  `json:"photos"`
	Checklist []models.ChecklistItem   `json:"checklist"`
	Progress  models.ExecutionProgress `json:"progress"`
}

// GetExecutionDetail returns the execution with photos, checklist, and
// derived progress. The execution is created lazily on first read, so this
// runs in a transaction too.
func GetExecutionDetail(ctx context.Context, db *gorm.DB, settings config.SettingsProvider, jobId, actorId int) (*ExecutionDetail, error) {
	cfg, err := settings.Operational(ctx)
	if err != nil {
		return nil, err
	}

	var detail ExecutionDetail
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		agg, err := models.GetJobAggregate(ctx, tx, jobId)
		if err != nil {
			return err
		}
		if agg.Assignment.WorkerID != actorId && agg.Job.CustomerID != actorId {
			return utils.NewAuthorizationError("not allowed to view this job's execution")
		}

		execution, err := models.GetOrCreateExecution(ctx, tx, agg.Job)
		if err != nil {
			return err
		}
		detail.Execution = *execution

		if err := tx.Where("execution_id = ?", execution.ID).
			Order("id ASC").Find(&detail.Photos).Error; err != nil {
			return err
		}
		if err := tx.Where("execution_id = ?", execution.ID).
			Order("sort_order ASC").Find(&detail.Checklist).Error; err != nil {
			return err
		}

		var beforeCount, afterCount, checklistDone int
		for _, p := range detail.Photos {
			switch p.Tag {
			case models.PhotoTagBefore:
				beforeCount++
			case models.PhotoTagAfter:
				afterCount++
			}
		}
		for _, item := range detail.Checklist {
			if item.Completed {
				checklistDone++
			}
		}
		detail.Progress = models.ComputeProgress(
			beforeCount, cfg.RequiredBeforePhotos,
			afterCount, cfg.RequiredAfterPhotos,
			checklistDone, len(detail.Checklist),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ToggleChecklistItem flips one checklist item's completion flag. Only the
// assigned worker may toggle, and not after the execution is COMPLETED.
func ToggleChecklistItem(ctx context.Context, db *gorm.DB, jobId, actorId, itemId int, completed bool) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		agg, err := models.GetJobAggregate(ctx, tx, jobId)
		if err != nil {
			return err
		}
		if agg.Assignment.WorkerID != actorId {
			return utils.NewAuthorizationError("only the assigned worker may update the checklist")
		}

		execution, err := models.GetOrCreateExecution(ctx, tx, agg.Job)
		if err != nil {
			return err
		}
		if execution.Status == models.ExecutionStatusCompleted {
			return utils.NewTransitionError("checklist is read-only after completion", nil)
		}

		var item models.ChecklistItem
		if err := tx.Where("id = ? AND execution_id = ?", itemId, execution.ID).First(&item).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return utils.NewNotFoundError("checklist item")
			}
			return err
		}

		updates := map[string]interface{}{"completed": completed}
		if completed {
			now := time.Now().UTC()
			updates["completed_at"] = now
		} else {
			updates["completed_at"] = nil
		}
		return tx.Model(&item).Updates(updates).Error
	})
}
