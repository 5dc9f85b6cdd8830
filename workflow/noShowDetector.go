package workflow

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/config"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/models"
	"gorm.io/gorm"
)

// NoShowCandidate is one assignment the sweep flagged for remediation.
type NoShowCandidate struct {
	AssignmentId int       `json:"assignment_id"`
	JobId        int       `json:"job_id"`
	WorkerId     int       `json:"worker_id"`
	ScheduledAt  time.Time `json:"scheduled_at"`
}

// AssignmentEligible is the detector predicate: the worker accepted,
// never checked in, and the job's scheduled time plus tolerance has passed
// while the job still sits in a pre-execution status.
func AssignmentEligible(status models.AssignmentStatus, startedAt *time.Time, jobStatus models.JobStatus, scheduledAt, cutoff time.Time) bool {
	if status != models.AssignmentStatusAccepted {
		return false
	}
	if startedAt != nil {
		return false
	}
	if jobStatus != models.JobStatusAssigned && jobStatus != models.JobStatusAccepted {
		return false
	}
	return !scheduledAt.After(cutoff)
}

// DetectNoShows selects every assignment eligible for no-show remediation
// as of now. The query mirrors AssignmentEligible; once an assignment is
// marked NO_SHOW it falls out of this predicate, which is what makes the
// sweep idempotent.
func DetectNoShows(ctx context.Context, db *gorm.DB, cfg config.OperationalSettings) ([]NoShowCandidate, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(cfg.NoShowToleranceMinutes) * time.Minute)

	var candidates []NoShowCandidate
	err := db.WithContext(ctx).
		Table("assignments").
		Select("assignments.id AS assignment_id, assignments.job_id, assignments.worker_id, jobs.scheduled_at").
		Joins("JOIN jobs ON jobs.id = assignments.job_id").
		Where("assignments.status = ?", models.AssignmentStatusAccepted).
		Where("assignments.started_at IS NULL").
		Where("jobs.scheduled_at <= ?", cutoff).
		Where("jobs.status IN ?", []models.JobStatus{models.JobStatusAssigned, models.JobStatusAccepted}).
		Order("assignments.id ASC").
		Scan(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

// RunNoShowSweep detects and remediates in one pass. Candidates are
// processed independently: one bad record is logged and skipped, the sweep
// continues.
func RunNoShowSweep(ctx context.Context, db *gorm.DB, logger *logrus.Logger, settings config.SettingsProvider) (int, error) {
	cfg, err := settings.Operational(ctx)
	if err != nil {
		return 0, err
	}

	candidates, err := DetectNoShows(ctx, db, cfg)
	if err != nil {
		config.LogError(logger, "noShowDetector.go", "RunNoShowSweep", "DetectNoShows", nil, err)
		return 0, err
	}

	remediated := 0
	for _, candidate := range candidates {
		if err := RemediateNoShow(ctx, db, logger, cfg, candidate.AssignmentId); err != nil {
			config.LogError(logger, "noShowDetector.go", "RunNoShowSweep", "RemediateNoShow", candidate, err)
			continue
		}
		remediated++
	}
	return remediated, nil
}

// NoShowSweeper runs the sweep on an interval. The sweep itself is safe
// under overlapping runs, so schedule pressure is not a correctness issue.
type NoShowSweeper struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	Settings config.SettingsProvider
	Interval time.Duration
}

func NewNoShowSweeper(db *gorm.DB, logger *logrus.Logger, settings config.SettingsProvider) *NoShowSweeper {
	return &NoShowSweeper{
		DB:       db,
		Logger:   logger,
		Settings: settings,
		Interval: 60 * time.Second,
	}
}

func (s *NoShowSweeper) Run(ctx context.Context) {
	if s == nil || s.DB == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := RunNoShowSweep(ctx, s.DB, s.Logger, s.Settings); err != nil && s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{"module": "NoShowSweeper"}).Error("sweep failed: " + err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.Interval):
		}
	}
}
