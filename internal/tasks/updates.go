package tasks

import (
	"fmt"

	"github.com/desertthunder/ytlinks/internal/models"
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
	Queued Phase = iota
	Sending
	Retrying
	Completed
	Dropped
	ExportGroup
)

func (p Phase) String() string {
	switch p {
	case Queued:
		return "queued"
	case Sending:
		return "sending"
	case Retrying:
		return "retrying"
	case Completed:
		return "completed"
	case Dropped:
		return "dropped"
	case ExportGroup:
		return "export_group"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func queuedUpdate(job Job) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Queued,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Queued link %d for %s", job.LinkID, job.Use),
		Data:    job,
	}
}

func sendingUpdate(job Job, attempt, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Sending,
		Step:    attempt,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Sending link %d to %s webhook...", attempt, total, job.LinkID, job.Use),
		Data:    job,
	}
}

func retryingUpdate(job Job, attempt, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Retrying,
		Step:    attempt,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Link %d failed, retrying: %v", attempt, total, job.LinkID, err),
		Data:    job,
	}
}

func completedUpdate(res Result) ProgressUpdate {
	mark := "✓"
	if res.Status != models.StatusProcessed {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   Completed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s link %d %s after %d attempt(s)", mark, res.Job.LinkID, res.Status, res.Attempts),
		Data:    res,
	}
}

func droppedUpdate(job Job, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Dropped,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Dropped job for link %d: %s", job.LinkID, reason),
		Data:    job,
	}
}

func exportGroupUpdate(step, total int, res GroupExportResult) ProgressUpdate {
	if res.Error != nil {
		return ProgressUpdate{
			Phase:   ExportGroup,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Group, res.Error),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   ExportGroup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d links)", step, total, res.Group, res.Count),
		Data:    res,
	}
}
