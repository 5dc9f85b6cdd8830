package workflow

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/config"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PenaltyOutcome is the result of applying one no-show strike.
type PenaltyOutcome struct {
	Rating      decimal.Decimal
	NoShowCount int
	Suspended   bool
}

// ApplyNoShowPenalty computes the worker's state after one more no-show:
// rating drops by the configured penalty (floored at 0) and the account is
// suspended once the strike count reaches the threshold.
func ApplyNoShowPenalty(rating decimal.Decimal, noShowCount int, cfg config.OperationalSettings) PenaltyOutcome {
	newCount := noShowCount + 1
	newRating := rating.Sub(cfg.NoShowRatingPenalty)
	if newRating.IsNegative() {
		newRating = decimal.Zero
	}
	return PenaltyOutcome{
		Rating:      newRating,
		NoShowCount: newCount,
		Suspended:   newCount >= cfg.NoShowSuspensionCount,
	}
}

// RemediateNoShow handles one abandoned assignment. The consistency-critical
// outcome (assignment NO_SHOW, job reopened, worker penalized) commits in a
// single transaction; refund, customer apology, and marketplace re-broadcast
// are enqueued as outbox events in that same transaction and delivered
// afterwards, so an unreachable gateway can never roll back the penalty.
//
// It is safe under overlapping sweeps: a redis claim narrows the window, and
// the conditional NO_SHOW update inside the transaction decides; zero rows
// affected means another run already handled it.
func RemediateNoShow(ctx context.Context, db *gorm.DB, logger *logrus.Logger, cfg config.OperationalSettings, assignmentId int) error {
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "noshow:claim:"+strconv.Itoa(assignmentId), 30*time.Second, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				// Another sweep run holds this assignment.
				return nil
			}
			// Redis is an optimization; the conditional update below is the guarantee.
			config.LogError(logger, "noShowRemediation.go", "RemediateNoShow", "redislock.Obtain", assignmentId, err)
		} else {
			defer lock.Release(ctx)
		}
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&models.Assignment{}).
			Where("id = ? AND status = ? AND started_at IS NULL", assignmentId, models.AssignmentStatusAccepted).
			Update("status", models.AssignmentStatusNoShow)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			// Already remediated (or the worker checked in since detection).
			return nil
		}

		var assignment models.Assignment
		if err := tx.First(&assignment, "id = ?", assignmentId).Error; err != nil {
			return err
		}

		agg, err := models.GetJobAggregate(ctx, tx, assignment.JobID)
		if err != nil {
			return err
		}

		// Return the job to the marketplace pool.
		if err := tx.Model(&models.Job{}).
			Where("id = ?", assignment.JobID).
			Updates(map[string]interface{}{
				"status":    models.JobStatusPending,
				"worker_id": nil,
			}).Error; err != nil {
			return err
		}

		var worker models.WorkerProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&worker, "user_id = ?", assignment.WorkerID).Error; err != nil {
			return err
		}
		penalty := ApplyNoShowPenalty(worker.Rating, worker.NoShowCount, cfg)
		workerUpdates := map[string]interface{}{
			"rating":        penalty.Rating,
			"no_show_count": penalty.NoShowCount,
		}
		if penalty.Suspended {
			workerUpdates["account_status"] = models.WorkerAccountStatusSuspended
		}
		if err := tx.Model(&worker).Updates(workerUpdates).Error; err != nil {
			return err
		}

		if agg.Payment != nil && agg.Payment.Status == models.PaymentStatusPaid {
			if err := models.EnqueueOutboxEvent(ctx, tx, models.OutboxEventRefundRequested, assignment.ID, models.RefundRequestedPayload{
				JobId:            assignment.JobID,
				AssignmentId:     assignment.ID,
				PaymentId:        agg.Payment.ID,
				GatewayReference: agg.Payment.GatewayReference,
				Amount:           agg.Payment.Amount,
				Reason:           "worker no-show",
			}); err != nil {
				return err
			}
		}

		if err := models.EnqueueOutboxEvent(ctx, tx, models.OutboxEventCustomerApology, assignment.JobID, models.CustomerNoticePayload{
			JobId:      assignment.JobID,
			CustomerId: agg.Customer.ID,
			Phone:      agg.Customer.Phone,
			Email:      agg.Customer.Email,
			WorkerName: agg.WorkerUser.Name,
		}); err != nil {
			return err
		}

		return models.EnqueueOutboxEvent(ctx, tx, models.OutboxEventMarketplaceRebroadcast, assignment.JobID, models.RebroadcastPayload{
			JobId:           assignment.JobID,
			ScheduledAt:     agg.Job.ScheduledAt,
			Address:         agg.Job.Address,
			ExcludeWorkerId: assignment.WorkerID,
		})
	})
}
