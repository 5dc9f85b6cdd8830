package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/utils"
	"gorm.io/gorm"
)

// Job is the customer-facing booking. JobStatus tracks the marketplace
// lifecycle; the fine-grained on-site state lives on Execution.
type Job struct {
	ID          int             `gorm:"primary_key" json:"id"`
	CustomerID  int             `gorm:"not null;index" json:"customer_id"`
	WorkerID    *int            `gorm:"index" json:"worker_id"`
	ServiceType string          `gorm:"size:50;not null" json:"service_type"`
	Status      JobStatus       `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	ScheduledAt time.Time       `gorm:"not null;index" json:"scheduled_at"`
	Address     string          `gorm:"size:500;not null" json:"address"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// JobAggregate is the immutable view of everything the controller and the
// remediation orchestrator need around one job: assignment, worker profile,
// customer contact, and payment. Loaded in one place so the multi-hop
// traversal (assignment -> job -> address, job -> payment) is not scattered
// across call sites.
type JobAggregate struct {
	Job        Job
	Assignment Assignment
	Worker     WorkerProfile
	WorkerUser User
	Customer   User
	Payment    *Payment
}

// GetJobAggregate loads the aggregate on the given handle (pass a tx to
// read inside a transaction). The payment is optional; everything else is
// required and yields NotFoundError when absent.
func GetJobAggregate(ctx context.Context, db *gorm.DB, jobId int) (*JobAggregate, error) {
	var agg JobAggregate

	if err := db.WithContext(ctx).First(&agg.Job, "id = ?", jobId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("job")
		}
		return nil, err
	}

	if err := db.WithContext(ctx).
		Where("job_id = ? AND status NOT IN ?", jobId, []AssignmentStatus{AssignmentStatusDeclined, AssignmentStatusExpired}).
		Order("id DESC").
		First(&agg.Assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("assignment")
		}
		return nil, err
	}

	if err := db.WithContext(ctx).First(&agg.Worker, "user_id = ?", agg.Assignment.WorkerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("worker profile")
		}
		return nil, err
	}
	if err := db.WithContext(ctx).First(&agg.WorkerUser, "id = ?", agg.Assignment.WorkerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("worker")
		}
		return nil, err
	}

	if err := db.WithContext(ctx).First(&agg.Customer, "id = ?", agg.Job.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("customer")
		}
		return nil, err
	}

	var payment Payment
	err := db.WithContext(ctx).Where("job_id = ?", jobId).Order("id DESC").First(&payment).Error
	if err == nil {
		agg.Payment = &payment
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &agg, nil
}

// HasSiteCoordinates reports whether the job address was geocoded at booking
// time. Without coordinates the geofence check is skipped.
func (j Job) HasSiteCoordinates() bool {
	return j.Latitude != nil && j.Longitude != nil
}
