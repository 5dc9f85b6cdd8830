package config

import (
	"errors"
	"fmt"
	"testing"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

func TestIsMissingTableErr(t *testing.T) {
	missing := &mysqlDriver.MySQLError{Number: 1146, Message: "Table 'fixelo.operational_settings' doesn't exist"}
	if !isMissingTableErr(missing) {
		t.Error("expected 1146 to classify as missing table")
	}
	if !isMissingTableErr(fmt.Errorf("query: %w", missing)) {
		t.Error("expected wrapped 1146 to classify as missing table")
	}
	if isMissingTableErr(&mysqlDriver.MySQLError{Number: 1062}) {
		t.Error("duplicate key is not a missing table")
	}
	if isMissingTableErr(errors.New("connection refused")) {
		t.Error("generic errors are not a missing table")
	}
	if isMissingTableErr(nil) {
		t.Error("nil is not a missing table")
	}
}

func TestSettings_DefaultsSurviveEmptyRows(t *testing.T) {
	s := DefaultOperationalSettings()
	applySettingValues(&s, map[string]string{})

	if s.NoShowToleranceMinutes != 30 || s.NoShowSuspensionCount != 3 {
		t.Errorf("expected default tolerance/suspension, got %+v", s)
	}
	if !s.NoShowRatingPenalty.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("expected default penalty 0.5, got %s", s.NoShowRatingPenalty)
	}
	if s.GeofenceRadiusMeters != 100 || s.RequiredBeforePhotos != 3 || s.RequiredAfterPhotos != 3 {
		t.Errorf("expected default geofence/photo settings, got %+v", s)
	}
}

func TestSettings_RowValuesOverrideDefaults(t *testing.T) {
	s := DefaultOperationalSettings()
	applySettingValues(&s, map[string]string{
		"no_show_tolerance_minutes": "45",
		"geofence_radius_meters":    "250",
		"no_show_rating_penalty":    "1.0",
		"required_before_photos":    "0",
	})

	if s.NoShowToleranceMinutes != 45 {
		t.Errorf("expected tolerance 45, got %d", s.NoShowToleranceMinutes)
	}
	if s.GeofenceRadiusMeters != 250 {
		t.Errorf("expected radius 250, got %f", s.GeofenceRadiusMeters)
	}
	if !s.NoShowRatingPenalty.Equal(decimal.NewFromFloat(1.0)) {
		t.Errorf("expected penalty 1.0, got %s", s.NoShowRatingPenalty)
	}
	if s.RequiredBeforePhotos != 0 {
		t.Errorf("expected zero required before photos, got %d", s.RequiredBeforePhotos)
	}

	// Garbage values fall back to what was already set.
	applySettingValues(&s, map[string]string{"no_show_tolerance_minutes": "-5"})
	if s.NoShowToleranceMinutes != 45 {
		t.Errorf("expected negative value ignored, got %d", s.NoShowToleranceMinutes)
	}
}
