package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WorkerProfile carries the marketplace reputation state for one worker.
// Rating is decimal so penalty arithmetic is exact; it never goes below 0.
type WorkerProfile struct {
	ID                int                 `gorm:"primary_key" json:"id"`
	UserID            int                 `gorm:"not null;unique" json:"user_id"`
	Rating            decimal.Decimal     `gorm:"type:decimal(3,2);default:5.00" json:"rating"`
	NoShowCount       int                 `gorm:"not null;default:0" json:"no_show_count"`
	CompletedJobCount int                 `gorm:"not null;default:0" json:"completed_job_count"`
	AccountStatus     WorkerAccountStatus `gorm:"size:20;not null;default:ACTIVE;index" json:"account_status"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}
