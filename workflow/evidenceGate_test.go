package workflow

import "testing"

func TestStartGate_BlocksUntilBeforePhotosUploaded(t *testing.T) {
	gate := CanStart(2, 3)
	if gate.Allowed {
		t.Fatal("expected start blocked with 2 of 3 before photos")
	}
	if gate.PhotoCount != 2 || gate.RequiredPhotos != 3 {
		t.Errorf("expected counts 2/3 in the rejection, got %d/%d", gate.PhotoCount, gate.RequiredPhotos)
	}

	if !CanStart(3, 3).Allowed {
		t.Error("expected start allowed with exactly the required photos")
	}
	if !CanStart(5, 3).Allowed {
		t.Error("expected start allowed with extra photos")
	}
}

func TestStartGate_ZeroRequirementAlwaysPasses(t *testing.T) {
	if !CanStart(0, 0).Allowed {
		t.Error("expected start allowed when no photos are required")
	}
}

func TestCompleteGate_BlocksOnMissingAfterPhotos(t *testing.T) {
	gate := CanComplete(2, 3, nil)
	if gate.Allowed {
		t.Fatal("expected complete blocked with 2 of 3 after photos")
	}
	if gate.PhotoCount != 2 || gate.RequiredPhotos != 3 {
		t.Errorf("expected counts 2/3 in the rejection, got %d/%d", gate.PhotoCount, gate.RequiredPhotos)
	}
}

func TestCompleteGate_NamesIncompleteRequiredItems(t *testing.T) {
	gate := CanComplete(3, 3, []string{"Clean bathroom fixtures"})
	if gate.Allowed {
		t.Fatal("expected complete blocked by incomplete required item")
	}
	if len(gate.IncompleteItems) != 1 || gate.IncompleteItems[0] != "Clean bathroom fixtures" {
		t.Errorf("expected the blocking item to be named, got %v", gate.IncompleteItems)
	}
}

func TestCompleteGate_PassesWithEvidenceComplete(t *testing.T) {
	if !CanComplete(3, 3, nil).Allowed {
		t.Error("expected complete allowed with photos and checklist done")
	}
}
