package models

import "time"

// Assignment links exactly one worker to one job. Its status is distinct
// from the job lifecycle: a job can return to PENDING while the assignment
// that abandoned it stays NO_SHOW for the audit trail.
//
// StartedAt is set when the worker checks in on site. The no-show detector
// only ever selects assignments where it is still null.
type Assignment struct {
	ID        int              `gorm:"primary_key" json:"id"`
	JobID     int              `gorm:"not null;index" json:"job_id"`
	WorkerID  int              `gorm:"not null;index" json:"worker_id"`
	Status    AssignmentStatus `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	ExpiresAt *time.Time       `json:"expires_at"`
	StartedAt *time.Time       `json:"started_at"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}
