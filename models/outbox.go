package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/utils"
	"gorm.io/gorm"
)

// Outbox delivery statuses for OutboxEvent.DeliveryStatus.
const (
	OutboxDeliveryStatusPending    = "PENDING"
	OutboxDeliveryStatusProcessing = "PROCESSING"
	OutboxDeliveryStatusSent       = "SENT"
	OutboxDeliveryStatusFailed     = "FAILED"
	OutboxDeliveryStatusDead       = "DEAD"
)

type OutboxEventType string

const (
	OutboxEventRefundRequested        OutboxEventType = "REFUND_REQUESTED"
	OutboxEventCustomerArrival        OutboxEventType = "CUSTOMER_ARRIVAL_NOTICE"
	OutboxEventJobCompleted           OutboxEventType = "JOB_COMPLETED_NOTICE"
	OutboxEventCustomerApology        OutboxEventType = "CUSTOMER_APOLOGY_NOTICE"
	OutboxEventMarketplaceRebroadcast OutboxEventType = "MARKETPLACE_REBROADCAST"
)

// OutboxEvent implements the transactional outbox: state-changing
// transactions enqueue events in the same commit, and the dispatcher
// delivers them after commit with retry/backoff. Consistency-critical state
// never waits on a network call.
type OutboxEvent struct {
	ID               int             `gorm:"primary_key" json:"id"`
	EventType        OutboxEventType `gorm:"size:40;not null;index" json:"event_type"`
	ReferenceId      int             `gorm:"not null;index" json:"reference_id"`
	Payload          []byte          `gorm:"type:json" json:"payload"`
	DeliveryStatus   string          `gorm:"size:20;not null;default:PENDING;index" json:"delivery_status"`
	DeliveryAttempts int             `gorm:"not null;default:0" json:"delivery_attempts"`
	LastError        *string         `gorm:"type:text" json:"last_error"`
	NextAttemptAt    *time.Time      `gorm:"index" json:"next_attempt_at"`
	LockedAt         *time.Time      `json:"locked_at"`
	LockedBy         *string         `gorm:"size:64" json:"locked_by"`
	DeliveredAt      *time.Time      `json:"delivered_at"`
	CorrelationId    string          `gorm:"size:64" json:"correlation_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// EnqueueOutboxEvent writes the event inside the caller's transaction.
// Delivery happens asynchronously after commit.
func EnqueueOutboxEvent(ctx context.Context, tx *gorm.DB, eventType OutboxEventType, referenceId int, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := OutboxEvent{
		EventType:      eventType,
		ReferenceId:    referenceId,
		Payload:        payloadJSON,
		DeliveryStatus: OutboxDeliveryStatusPending,
		CorrelationId:  correlationIdFromContextOrNew(ctx),
	}
	return tx.Create(&event).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// RefundRequestedPayload drives the refund delivery handler.
type RefundRequestedPayload struct {
	JobId            int             `json:"job_id"`
	AssignmentId     int             `json:"assignment_id"`
	PaymentId        int             `json:"payment_id"`
	GatewayReference string          `json:"gateway_reference"`
	Amount           decimal.Decimal `json:"amount"`
	Reason           string          `json:"reason"`
}

// CustomerNoticePayload drives the SMS/email delivery handlers.
type CustomerNoticePayload struct {
	JobId      int     `json:"job_id"`
	CustomerId int     `json:"customer_id"`
	Phone      string  `json:"phone"`
	Email      *string `json:"email"`
	WorkerName string  `json:"worker_name"`
}

// RebroadcastPayload drives the marketplace Pub/Sub broadcast.
type RebroadcastPayload struct {
	JobId           int       `json:"job_id"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	Address         string    `json:"address"`
	ExcludeWorkerId int       `json:"exclude_worker_id"`
}
