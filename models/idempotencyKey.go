package models

import "time"

type IdempotencyStatus string

const (
	IdempotencyStatusStarted   IdempotencyStatus = "STARTED"
	IdempotencyStatusSucceeded IdempotencyStatus = "SUCCEEDED"
	IdempotencyStatusFailed    IdempotencyStatus = "FAILED"
)

// RefundIdempotencyKey provides durable, DB-backed idempotency for refund
// delivery. The gateway deduplicates per reference id on its side too, but
// the orchestrator does not rely on that alone: one key per assignment
// guarantees at most one refund attempt sequence per no-show.
// Unique constraint: (handler_name, assignment_id).
type RefundIdempotencyKey struct {
	ID           int               `gorm:"primary_key" json:"id"`
	HandlerName  string            `gorm:"size:100;not null;index:uniq_refund_idem,unique" json:"handler_name"`
	AssignmentId int               `gorm:"not null;index:uniq_refund_idem,unique" json:"assignment_id"`
	Status       IdempotencyStatus `gorm:"size:20;not null;index" json:"status"`
	LastError    *string           `gorm:"type:text" json:"last_error"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}
