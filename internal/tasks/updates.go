package tasks

import (
	"fmt"

	"github.com/desertthunder/riff/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ReadClaims Phase = iota
	SyncUsers
	Summarize
)

func (p Phase) String() string {
	switch p {
	case ReadClaims:
		return "read_claims"
	case SyncUsers:
		return "sync_users"
	case Summarize:
		return "summarize"
	default:
		return ""
	}
}

func startImportUpdate(total, workers int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadClaims,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Reconciling %d claim sets with %d workers...", total, workers),
	}
}

func syncedUpdate(step, total int, res ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncUsers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, res.Outcome, displayEmail(res.Email)),
		Data:    res,
	}
}

func syncFailedUpdate(step, total int, res ImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncUsers,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, displayEmail(res.Email), res.Error),
		Data:    res,
	}
}

func summaryUpdate(result *BulkImportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase: Summarize,
		Step:  result.Total,
		Total: result.Total,
		Message: fmt.Sprintf("%d %s, %d %s, %d %s, %d failed",
			result.Created, services.OutcomeCreated,
			result.Updated, services.OutcomeUpdated,
			result.Unchanged, services.OutcomeUnchanged,
			result.Failed),
		Data: result,
	}
}

func displayEmail(email string) string {
	if email == "" {
		return "(no identity)"
	}
	return email
}
