package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment records the gateway charge taken at booking time. Charging itself
// happens upstream; this engine only ever refunds. RefundReference is set
// exactly once: the REFUNDED flip is a conditional update on status=PAID.
type Payment struct {
	ID               int             `gorm:"primary_key" json:"id"`
	JobID            int             `gorm:"not null;index" json:"job_id"`
	GatewayReference string          `gorm:"size:100;not null" json:"gateway_reference"`
	RefundReference  *string         `gorm:"size:100" json:"refund_reference"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status           PaymentStatus   `gorm:"size:20;not null;default:PAID;index" json:"status"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
