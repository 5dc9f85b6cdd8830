package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

// OperationalSettings are the tunables of the job execution and no-show
// remediation engine. They are read through a SettingsProvider so workers
// and tests never depend on process-wide mutable state.
type OperationalSettings struct {
	NoShowToleranceMinutes int             `json:"no_show_tolerance_minutes"`
	NoShowSuspensionCount  int             `json:"no_show_suspension_count"`
	NoShowRatingPenalty    decimal.Decimal `json:"no_show_rating_penalty"`
	GeofenceRadiusMeters   float64         `json:"geofence_radius_meters"`
	RequiredBeforePhotos   int             `json:"required_before_photos"`
	RequiredAfterPhotos    int             `json:"required_after_photos"`
}

func DefaultOperationalSettings() OperationalSettings {
	return OperationalSettings{
		NoShowToleranceMinutes: 30,
		NoShowSuspensionCount:  3,
		NoShowRatingPenalty:    decimal.NewFromFloat(0.5),
		GeofenceRadiusMeters:   100,
		RequiredBeforePhotos:   3,
		RequiredAfterPhotos:    3,
	}
}

type SettingsProvider interface {
	Operational(ctx context.Context) (OperationalSettings, error)
}

// StaticSettings returns fixed values. Used by tests and one-off CLIs.
type StaticSettings struct {
	Settings OperationalSettings
}

func (s StaticSettings) Operational(ctx context.Context) (OperationalSettings, error) {
	return s.Settings, nil
}

const settingsCacheKey = "opsettings"

// dbSettingsProvider layers admin-managed rows from operational_settings
// over env overrides over defaults, caching the merged result in redis.
type dbSettingsProvider struct {
	ttl time.Duration
}

func NewSettingsProvider() SettingsProvider {
	ttl := time.Duration(intFromEnv("SETTINGS_CACHE_TTL_SECONDS", 60)) * time.Second
	return &dbSettingsProvider{ttl: ttl}
}

func (p *dbSettingsProvider) Operational(ctx context.Context) (OperationalSettings, error) {
	values := map[string]string{}
	exists, err := GetRedisObject(settingsCacheKey, &values)
	if err != nil {
		return OperationalSettings{}, err
	}
	if !exists {
		values, err = loadSettingRows(ctx)
		if err != nil {
			return OperationalSettings{}, err
		}
		if err := SetRedisObject(settingsCacheKey, &values, p.ttl); err != nil {
			return OperationalSettings{}, err
		}
	}

	out := DefaultOperationalSettings()
	applyEnvOverrides(&out)
	applySettingValues(&out, values)
	return out, nil
}

// InvalidateSettingsCache drops the cached merged settings. Admin tooling
// calls this after updating operational_settings rows.
func InvalidateSettingsCache() error {
	return RemoveRedisKey(settingsCacheKey)
}

type settingRow struct {
	Name  string
	Value string
}

// isMissingTableErr reports MySQL 1146 (table doesn't exist). Deployments
// that run migrations as a separate job (SKIP_MIGRATIONS=true) can serve
// requests before the settings table exists; defaults apply until then.
func isMissingTableErr(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1146
	}
	return false
}

func loadSettingRows(ctx context.Context) (map[string]string, error) {
	values := map[string]string{}
	if db == nil {
		return values, nil
	}
	var rows []settingRow
	if err := db.WithContext(ctx).Table("operational_settings").
		Select("name", "value").Find(&rows).Error; err != nil {
		if isMissingTableErr(err) {
			return values, nil
		}
		return nil, err
	}
	for _, r := range rows {
		values[r.Name] = r.Value
	}
	return values, nil
}

func applyEnvOverrides(s *OperationalSettings) {
	applySettingValues(s, map[string]string{
		"no_show_tolerance_minutes": os.Getenv("NO_SHOW_TOLERANCE_MINUTES"),
		"no_show_suspension_count":  os.Getenv("NO_SHOW_SUSPENSION_COUNT"),
		"no_show_rating_penalty":    os.Getenv("NO_SHOW_RATING_PENALTY"),
		"geofence_radius_meters":    os.Getenv("GEOFENCE_RADIUS_METERS"),
		"required_before_photos":    os.Getenv("REQUIRED_BEFORE_PHOTOS"),
		"required_after_photos":     os.Getenv("REQUIRED_AFTER_PHOTOS"),
	})
}

func applySettingValues(s *OperationalSettings, values map[string]string) {
	for name, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		switch name {
		case "no_show_tolerance_minutes":
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				s.NoShowToleranceMinutes = n
			}
		case "no_show_suspension_count":
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				s.NoShowSuspensionCount = n
			}
		case "no_show_rating_penalty":
			if d, err := decimal.NewFromString(raw); err == nil && !d.IsNegative() {
				s.NoShowRatingPenalty = d
			}
		case "geofence_radius_meters":
			if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
				s.GeofenceRadiusMeters = f
			}
		case "required_before_photos":
			if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
				s.RequiredBeforePhotos = n
			}
		case "required_after_photos":
			if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
				s.RequiredAfterPhotos = n
			}
		}
	}
}
