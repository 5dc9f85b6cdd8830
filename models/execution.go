package models

import (
	"context"
	"errors"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Execution is the on-site state machine for one job, 1:1 with Job.
// It is created lazily on the first read or mutation of a job's on-site
// state (cloning the checklist template for the job's service type) and is
// never deleted: completed executions are the audit trail of what happened
// on site.
type Execution struct {
	ID                int             `gorm:"primary_key" json:"id"`
	JobID             int             `gorm:"not null;unique" json:"job_id"`
	Status            ExecutionStatus `gorm:"size:20;not null;default:NOT_STARTED" json:"status"`
	CheckedInAt       *time.Time      `json:"checked_in_at"`
	StartedAt         *time.Time      `json:"started_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
	CheckInLatitude   *float64        `json:"check_in_latitude"`
	CheckInLongitude  *float64        `json:"check_in_longitude"`
	CheckOutLatitude  *float64        `json:"check_out_latitude"`
	CheckOutLongitude *float64        `json:"check_out_longitude"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type ExecutionPhoto struct {
	ID           int       `gorm:"primary_key" json:"id"`
	ExecutionID  int       `gorm:"not null;index" json:"execution_id"`
	Tag          PhotoTag  `gorm:"size:10;not null" json:"tag"`
	Url          string    `gorm:"size:500;not null" json:"url"`
	UploadedByID int       `gorm:"not null" json:"uploaded_by_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ChecklistTemplateItem is the admin-authored template per service type.
// Authoring happens outside this engine; templates are read-only here.
type ChecklistTemplateItem struct {
	ID          int    `gorm:"primary_key" json:"id"`
	ServiceType string `gorm:"size:50;not null;index" json:"service_type"`
	Label       string `gorm:"size:200;not null" json:"label"`
	Required    bool   `gorm:"not null;default:0" json:"required"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
}

type ChecklistItem struct {
	ID          int        `gorm:"primary_key" json:"id"`
	ExecutionID int        `gorm:"not null;index" json:"execution_id"`
	Label       string     `gorm:"size:200;not null" json:"label"`
	Required    bool       `gorm:"not null;default:0" json:"required"`
	Completed   bool       `gorm:"not null;default:0" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	SortOrder   int        `gorm:"not null;default:0" json:"sort_order"`
}

// isDuplicateExecutionErr reports MySQL 1062 on the job_id unique key.
func isDuplicateExecutionErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// GetOrCreateExecution returns the job's execution, creating it (and cloning
// the checklist template) on first touch. Call with a tx when the caller is
// about to mutate.
func GetOrCreateExecution(ctx context.Context, tx *gorm.DB, job Job) (*Execution, error) {
	var execution Execution
	err := tx.WithContext(ctx).Where("job_id = ?", job.ID).First(&execution).Error
	if err == nil {
		return &execution, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	execution = Execution{
		JobID:  job.ID,
		Status: ExecutionStatusNotStarted,
	}
	if err := tx.WithContext(ctx).Create(&execution).Error; err != nil {
		// Two first-touch requests can both miss the read above; the loser
		// hits the job_id unique key. Re-read the winner's row.
		if isDuplicateExecutionErr(err) {
			if err := tx.WithContext(ctx).Where("job_id = ?", job.ID).First(&execution).Error; err != nil {
				return nil, err
			}
			return &execution, nil
		}
		return nil, err
	}

	var templateItems []ChecklistTemplateItem
	if err := tx.WithContext(ctx).
		Where("service_type = ?", job.ServiceType).
		Order("sort_order ASC").
		Find(&templateItems).Error; err != nil {
		return nil, err
	}
	for _, t := range templateItems {
		item := ChecklistItem{
			ExecutionID: execution.ID,
			Label:       t.Label,
			Required:    t.Required,
			SortOrder:   t.SortOrder,
		}
		if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
	}
	return &execution, nil
}

func CountExecutionPhotos(ctx context.Context, db *gorm.DB, executionId int, tag PhotoTag) (int, error) {
	var count int64
	err := db.WithContext(ctx).Model(&ExecutionPhoto{}).
		Where("execution_id = ? AND tag = ?", executionId, tag).
		Count(&count).Error
	return int(count), err
}

// IncompleteRequiredItems returns the labels of required checklist items not
// yet completed, in checklist order, for the COMPLETE gate and its error
// payload.
func IncompleteRequiredItems(ctx context.Context, db *gorm.DB, executionId int) ([]string, error) {
	var labels []string
	err := db.WithContext(ctx).Model(&ChecklistItem{}).
		Where("execution_id = ? AND required = 1 AND completed = 0", executionId).
		Order("sort_order ASC").
		Pluck("label", &labels).Error
	return labels, err
}

// ExecutionProgress is the derived view returned by GET /jobs/:id/execution.
type ExecutionProgress struct {
	ChecklistCompletedPct int `json:"checklist_completed_pct"`
	BeforePhotoCount      int `json:"before_photo_count"`
	RequiredBeforePhotos  int `json:"required_before_photos"`
	AfterPhotoCount       int `json:"after_photo_count"`
	RequiredAfterPhotos   int `json:"required_after_photos"`
}

func ComputeProgress(beforeCount, requiredBefore, afterCount, requiredAfter, checklistDone, checklistTotal int) ExecutionProgress {
	pct := 100
	if checklistTotal > 0 {
		pct = checklistDone * 100 / checklistTotal
	}
	return ExecutionProgress{
		ChecklistCompletedPct: pct,
		BeforePhotoCount:      beforeCount,
		RequiredBeforePhotos:  requiredBefore,
		AfterPhotoCount:       afterCount,
		RequiredAfterPhotos:   requiredAfter,
	}
}
