package tasks

import "fmt"

// ProgressUpdate represents a progress event during a sync run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	ListUsers Phase = iota
	SyncUser
	UserComplete
	UserFailed
)

func (p Phase) String() string {
	switch p {
	case ListUsers:
		return "list_users"
	case SyncUser:
		return "sync_user"
	case UserComplete:
		return "user_complete"
	case UserFailed:
		return "user_failed"
	default:
		return ""
	}
}

func listUsersUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListUsers,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Found %d registered users", total),
	}
}

func syncUserUpdate(step, total int, email, fullName string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncUser,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Processing user: %s <%s>", step, total, fullName, email),
	}
}

func userCompleteUpdate(step, total int, email string, events int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UserComplete,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d events)", step, total, email, events),
		Data:    events,
	}
}

func userFailedUpdate(step, total int, email string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   UserFailed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, email, err),
	}
}
