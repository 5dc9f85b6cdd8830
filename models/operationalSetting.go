package models

import "time"

// OperationalSetting is one admin-managed tunable row (name/value), layered
// over env overrides and defaults by the settings provider. Rows are
// written by admin tooling; this service only reads them.
type OperationalSetting struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:64;not null;unique" json:"name"`
	Value     string    `gorm:"size:100;not null" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
