package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/config"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/notify"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/paygate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const refundHandlerName = "NoShowRefund"

// OutboxDispatcher delivers committed outbox events to the external
// collaborators: the payment gateway, the notification providers, and the
// marketplace Pub/Sub topic. Delivery is at-least-once with exponential
// backoff; events exhaust MaxAttempts and go DEAD rather than retry forever.
type OutboxDispatcher struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	Payments     paygate.Gateway
	Notifier     notify.Dispatcher
	DispatcherID string

	BatchSize       int
	PollInterval    time.Duration
	LockTimeout     time.Duration
	MaxAttempts     int
	InitialBackoff  time.Duration
	DeliveryTimeout time.Duration
}

func NewOutboxDispatcher(db *gorm.DB, logger *logrus.Logger, payments paygate.Gateway, notifier notify.Dispatcher) *OutboxDispatcher {
	return &OutboxDispatcher{
		DB:              db,
		Logger:          logger,
		Payments:        payments,
		Notifier:        notifier,
		DispatcherID:    uuid.NewString(),
		BatchSize:       50,
		PollInterval:    500 * time.Millisecond,
		LockTimeout:     30 * time.Second,
		MaxAttempts:     20,
		InitialBackoff:  5 * time.Second,
		DeliveryTimeout: 15 * time.Second,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.dispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.PollInterval):
		}
	}
}

func (d *OutboxDispatcher) dispatchOnce(ctx context.Context) {
	now := time.Now().UTC()
	staleBefore := now.Add(-d.LockTimeout)
	db := d.DB
	if db == nil {
		return
	}

	var claimed []models.OutboxEvent
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Eligible:
		// - PENDING / FAILED and ready to retry
		// - PROCESSING but lock is stale (dispatcher crashed mid-batch), reclaim after LockTimeout
		q := tx.
			Where(`
				(
					delivery_status IN ? AND (next_attempt_at IS NULL OR next_attempt_at <= ?)
				)
				OR
				(
					delivery_status = ? AND locked_at IS NOT NULL AND locked_at <= ?
				)
			`, []string{models.OutboxDeliveryStatusPending, models.OutboxDeliveryStatusFailed}, now, models.OutboxDeliveryStatusProcessing, staleBefore).
			Order("id ASC").
			Limit(d.BatchSize).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}
		for i := range claimed {
			// Enforce max attempts: poison events go terminal (DLQ equivalent).
			if d.MaxAttempts > 0 && claimed[i].DeliveryAttempts >= d.MaxAttempts {
				msg := fmt.Sprintf("max delivery attempts exceeded (%d)", d.MaxAttempts)
				claimed[i].DeliveryStatus = models.OutboxDeliveryStatusDead
				if err := tx.Model(&models.OutboxEvent{}).Where("id = ?", claimed[i].ID).Updates(map[string]interface{}{
					"delivery_status": models.OutboxDeliveryStatusDead,
					"last_error":      &msg,
					"next_attempt_at": nil,
					"locked_at":       nil,
					"locked_by":       nil,
				}).Error; err != nil {
					return err
				}
				continue
			}

			// Claim for delivery.
			claimed[i].DeliveryStatus = models.OutboxDeliveryStatusProcessing
			claimed[i].LockedAt = &now
			claimed[i].LockedBy = &d.DispatcherID
			claimed[i].DeliveryAttempts = claimed[i].DeliveryAttempts + 1
			claimed[i].LastError = nil
			if err := tx.Model(&models.OutboxEvent{}).Where("id = ?", claimed[i].ID).Updates(map[string]interface{}{
				"delivery_status":   claimed[i].DeliveryStatus,
				"locked_at":         claimed[i].LockedAt,
				"locked_by":         claimed[i].LockedBy,
				"delivery_attempts": gorm.Expr("delivery_attempts + 1"),
				"last_error":        nil,
				"next_attempt_at":   nil,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil || len(claimed) == 0 {
		return
	}

	for _, event := range claimed {
		// Skip terminal rows that were marked DEAD in the claim transaction.
		if event.DeliveryStatus == models.OutboxDeliveryStatusDead {
			continue
		}
		deliveryCtx, cancel := context.WithTimeout(ctx, d.DeliveryTimeout)
		deliverErr := d.deliver(deliveryCtx, event)
		cancel()
		if deliverErr != nil {
			d.markDeliveryFailed(ctx, event.ID, deliverErr, event.DeliveryAttempts)
			continue
		}
		d.markDeliverySent(ctx, event.ID, now)
	}
}

func (d *OutboxDispatcher) deliver(ctx context.Context, event models.OutboxEvent) error {
	switch event.EventType {
	case models.OutboxEventRefundRequested:
		return d.deliverRefund(ctx, event)
	case models.OutboxEventCustomerArrival:
		return d.deliverArrivalNotice(ctx, event)
	case models.OutboxEventJobCompleted:
		return d.deliverCompletionNotice(ctx, event)
	case models.OutboxEventCustomerApology:
		return d.deliverApologyNotice(ctx, event)
	case models.OutboxEventMarketplaceRebroadcast:
		return d.deliverRebroadcast(ctx, event)
	default:
		return fmt.Errorf("unknown outbox event type %q", event.EventType)
	}
}

func (d *OutboxDispatcher) deliverRefund(ctx context.Context, event models.OutboxEvent) error {
	var payload models.RefundRequestedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	skip, err := BeginRefundIdempotency(d.DB.WithContext(ctx), refundHandlerName, payload.AssignmentId)
	if err != nil {
		return err
	}
	if skip {
		return nil
	}

	refundId, err := d.Payments.Refund(ctx, payload.GatewayReference, payload.Reason,
		"noshow-"+strconv.Itoa(payload.AssignmentId), map[string]string{
			"job_id":        strconv.Itoa(payload.JobId),
			"assignment_id": strconv.Itoa(payload.AssignmentId),
		})
	if err != nil {
		_ = MarkRefundIdempotencyFailed(d.DB.WithContext(ctx), refundHandlerName, payload.AssignmentId, err)
		return err
	}

	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional flip keeps the at-most-one-refund-per-job invariant
		// even if the gateway accepted a duplicate call.
		if err := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", payload.PaymentId, models.PaymentStatusPaid).
			Updates(map[string]interface{}{
				"status":           models.PaymentStatusRefunded,
				"refund_reference": refundId,
			}).Error; err != nil {
			return err
		}
		return MarkRefundIdempotencySucceeded(tx, refundHandlerName, payload.AssignmentId)
	})
}

func (d *OutboxDispatcher) deliverArrivalNotice(ctx context.Context, event models.OutboxEvent) error {
	var payload models.CustomerNoticePayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}
	message := fmt.Sprintf("%s has arrived at your address and is starting your cleaning.", payload.WorkerName)
	return d.Notifier.SendSMS(ctx, payload.CustomerId, payload.Phone, message, map[string]string{
		"job_id": strconv.Itoa(payload.JobId),
		"kind":   "arrival",
	})
}

func (d *OutboxDispatcher) deliverCompletionNotice(ctx context.Context, event models.OutboxEvent) error {
	var payload models.CustomerNoticePayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}
	metadata := map[string]string{
		"job_id": strconv.Itoa(payload.JobId),
		"kind":   "completed",
	}
	message := fmt.Sprintf("%s has finished your cleaning. Open the app to review the results.", payload.WorkerName)
	if err := d.Notifier.SendSMS(ctx, payload.CustomerId, payload.Phone, message, metadata); err != nil {
		return err
	}
	if payload.Email == nil {
		return nil
	}
	return d.Notifier.SendEmail(ctx, payload.CustomerId, notify.Email{
		To:      *payload.Email,
		Subject: "Your cleaning is complete",
		Body:    message,
	}, metadata)
}

func (d *OutboxDispatcher) deliverApologyNotice(ctx context.Context, event models.OutboxEvent) error {
	var payload models.CustomerNoticePayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}
	if payload.Email == nil {
		return nil
	}
	return d.Notifier.SendEmail(ctx, payload.CustomerId, notify.Email{
		To:      *payload.Email,
		Subject: "We're sorry — your cleaner didn't show up",
		Body: "Your cleaner was unable to make your appointment. We've refunded your payment in full " +
			"and put your job back at the top of the queue so another cleaner can pick it up right away.",
	}, map[string]string{
		"job_id": strconv.Itoa(payload.JobId),
		"kind":   "apology",
	})
}

func (d *OutboxDispatcher) deliverRebroadcast(ctx context.Context, event models.OutboxEvent) error {
	var payload models.RebroadcastPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}
	if !config.PubSubConfigured() {
		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"module": "OutboxDispatcher",
				"job_id": payload.JobId,
			}).Warn("pubsub not configured; marketplace rebroadcast skipped")
		}
		return nil
	}
	_, err := config.PublishMarketplaceBroadcast(ctx, config.MarketplaceBroadcast{
		JobId:           payload.JobId,
		ScheduledAt:     payload.ScheduledAt,
		Address:         payload.Address,
		Urgent:          true,
		ExcludeWorkerId: payload.ExcludeWorkerId,
		CorrelationId:   event.CorrelationId,
	})
	return err
}

func (d *OutboxDispatcher) markDeliverySent(ctx context.Context, eventID int, now time.Time) {
	db := d.DB.WithContext(ctx)
	_ = db.Model(&models.OutboxEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"delivery_status": models.OutboxDeliveryStatusSent,
			"delivered_at":    &now,
			"locked_at":       nil,
			"locked_by":       nil,
			"next_attempt_at": nil,
		}).Error
}

// NextDeliveryBackoff doubles the initial backoff per prior attempt,
// capped at ten minutes.
func NextDeliveryBackoff(initial time.Duration, attempt int) time.Duration {
	backoff := initial
	for i := 1; i < attempt; i++ {
		backoff *= 2
		if backoff > time.Minute*10 {
			return time.Minute * 10
		}
	}
	return backoff
}

// deliveryFailure is the disposition for one failed delivery attempt.
type deliveryFailure struct {
	Status        string
	NextAttemptAt *time.Time
}

// classifyDeliveryFailure decides whether a failed attempt retries (FAILED
// with a backoff schedule) or goes terminal (DEAD after max attempts).
// The event row is the only thing touched either way; the state committed
// by the transaction that enqueued the event is never revisited.
func classifyDeliveryFailure(attempt, maxAttempts int, initial time.Duration, now time.Time) deliveryFailure {
	if maxAttempts > 0 && attempt >= maxAttempts {
		return deliveryFailure{Status: models.OutboxDeliveryStatusDead}
	}
	next := now.Add(NextDeliveryBackoff(initial, attempt))
	return deliveryFailure{Status: models.OutboxDeliveryStatusFailed, NextAttemptAt: &next}
}

func (d *OutboxDispatcher) markDeliveryFailed(ctx context.Context, eventID int, err error, attempt int) {
	db := d.DB.WithContext(ctx)
	now := time.Now().UTC()
	msg := err.Error()

	disposition := classifyDeliveryFailure(attempt, d.MaxAttempts, d.InitialBackoff, now)
	_ = db.Model(&models.OutboxEvent{}).
		Where("id = ?", eventID).
		Updates(map[string]interface{}{
			"delivery_status": disposition.Status,
			"last_error":      &msg,
			"next_attempt_at": disposition.NextAttemptAt,
			"locked_at":       nil,
			"locked_by":       nil,
		}).Error

	if d.Logger != nil {
		fields := logrus.Fields{
			"module":   "OutboxDispatcher",
			"event_id": eventID,
			"attempt":  attempt,
		}
		if disposition.Status == models.OutboxDeliveryStatusDead {
			d.Logger.WithFields(fields).Error("outbox delivery moved to DEAD after max attempts: " + fmt.Sprintf("%v", err))
			return
		}
		fields["next_attempt_at"] = disposition.NextAttemptAt.Format(time.RFC3339Nano)
		d.Logger.WithFields(fields).Error("outbox delivery failed: " + fmt.Sprintf("%v", err))
	}
}

// RetryFailedOutboxEvents flips FAILED events back to PENDING for immediate
// retry. Exposed as an internal ops endpoint.
func RetryFailedOutboxEvents(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("delivery_status = ?", models.OutboxDeliveryStatusFailed).
		Updates(map[string]interface{}{
			"delivery_status": models.OutboxDeliveryStatusPending,
			"next_attempt_at": nil,
			"locked_at":       nil,
			"locked_by":       nil,
		})
	return res.RowsAffected, res.Error
}

// RevertDeadOutboxEvents returns DEAD events to PENDING with a reset attempt
// counter. For operator use after fixing the underlying collaborator outage.
func RevertDeadOutboxEvents(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("delivery_status = ?", models.OutboxDeliveryStatusDead).
		Updates(map[string]interface{}{
			"delivery_status":   models.OutboxDeliveryStatusPending,
			"delivery_attempts": 0,
			"next_attempt_at":   nil,
			"locked_at":         nil,
			"locked_by":         nil,
		})
	return res.RowsAffected, res.Error
}
