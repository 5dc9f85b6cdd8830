package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/viniciussvasques/fixelo-cleaning-sub000/config"
)

func penaltyConfig() config.OperationalSettings {
	return config.OperationalSettings{
		NoShowRatingPenalty:   decimal.NewFromFloat(0.5),
		NoShowSuspensionCount: 3,
	}
}

func TestApplyNoShowPenalty_RatingDrop(t *testing.T) {
	out := ApplyNoShowPenalty(decimal.NewFromFloat(5.0), 0, penaltyConfig())
	if !out.Rating.Equal(decimal.NewFromFloat(4.5)) {
		t.Errorf("expected rating 4.5, got %s", out.Rating)
	}
	if out.NoShowCount != 1 {
		t.Errorf("expected count 1, got %d", out.NoShowCount)
	}
	if out.Suspended {
		t.Error("first strike should not suspend")
	}
}

func TestApplyNoShowPenalty_SuspensionAtThreshold(t *testing.T) {
	out := ApplyNoShowPenalty(decimal.NewFromFloat(4.0), 2, penaltyConfig())
	if out.NoShowCount != 3 {
		t.Errorf("expected count 3, got %d", out.NoShowCount)
	}
	if !out.Suspended {
		t.Error("third strike should suspend")
	}
	if !out.Rating.Equal(decimal.NewFromFloat(3.5)) {
		t.Errorf("expected rating 3.5, got %s", out.Rating)
	}

	// Beyond the threshold stays suspended.
	out = ApplyNoShowPenalty(decimal.NewFromFloat(3.5), 3, penaltyConfig())
	if !out.Suspended {
		t.Error("fourth strike should still suspend")
	}
}

func TestApplyNoShowPenalty_RatingFloorsAtZero(t *testing.T) {
	out := ApplyNoShowPenalty(decimal.NewFromFloat(0.3), 0, penaltyConfig())
	if !out.Rating.Equal(decimal.Zero) {
		t.Errorf("expected rating floored at 0, got %s", out.Rating)
	}

	out = ApplyNoShowPenalty(decimal.Zero, 0, penaltyConfig())
	if !out.Rating.Equal(decimal.Zero) {
		t.Errorf("expected rating to stay 0, got %s", out.Rating)
	}
}
