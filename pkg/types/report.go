package types

// RollbackState tracks the rollback engine's progress through one run.
type RollbackState string

const (
	StateRequested      RollbackState = "requested"
	StatePreviewed      RollbackState = "previewed"
	StateConfirmed      RollbackState = "confirmed"
	StateDeclined       RollbackState = "declined"
	StateRestoring      RollbackState = "restoring"
	StateCompleted      RollbackState = "completed"
	StatePartialFailure RollbackState = "partial-failure"
	StateAborted        RollbackState = "aborted"
)

// RestoreResult is the outcome of restoring a single manifest entry.
// Entries are restored independently; one failure never stops the rest.
type RestoreResult struct {
	Original string
	Type     PathType
	Err      error
}

// Ok reports whether this entry restored cleanly.
func (r RestoreResult) Ok() bool {
	return r.Err == nil
}

// RollbackReport summarizes a restore-all run over one session's manifest.
type RollbackReport struct {
	SessionID string
	State     RollbackState
	Results   []RestoreResult
}

// Succeeded reports whether every entry restored cleanly.
func (r *RollbackReport) Succeeded() bool {
	for _, res := range r.Results {
		if !res.Ok() {
			return false
		}
	}
	return true
}

// FailedPaths returns the original paths that could not be restored, in
// manifest order.
func (r *RollbackReport) FailedPaths() []string {
	var failed []string
	for _, res := range r.Results {
		if !res.Ok() {
			failed = append(failed, res.Original)
		}
	}
	return failed
}

// ConfirmationDialog asks the user to approve a rollback before any
// destructive action. Implementations must default to declining when
// input cannot be read.
type ConfirmationDialog interface {
	ConfirmRollback(sessionID string, paths []string) (bool, error)
}
