package workflow

// StartGate is the precondition check for moving an execution to
// IN_PROGRESS. The counts are carried so the rejection message can say
// exactly how many photos are missing.
type StartGate struct {
	Allowed        bool
	PhotoCount     int
	RequiredPhotos int
}

func CanStart(beforePhotoCount, requiredBefore int) StartGate {
	return StartGate{
		Allowed:        beforePhotoCount >= requiredBefore,
		PhotoCount:     beforePhotoCount,
		RequiredPhotos: requiredBefore,
	}
}

// CompleteGate is the precondition check for moving an execution to
// COMPLETED: enough after-photos and no incomplete required checklist items.
type CompleteGate struct {
	Allowed         bool
	PhotoCount      int
	RequiredPhotos  int
	IncompleteItems []string
}

func CanComplete(afterPhotoCount, requiredAfter int, incompleteRequired []string) CompleteGate {
	return CompleteGate{
		Allowed:         afterPhotoCount >= requiredAfter && len(incompleteRequired) == 0,
		PhotoCount:      afterPhotoCount,
		RequiredPhotos:  requiredAfter,
		IncompleteItems: incompleteRequired,
	}
}
