package scheduler

import (
	"errors"
	"fmt"
)

// RetriesExceededError is recorded for a task whose fetch kept failing
// until its retry budget ran out. The task is skipped.
type RetriesExceededError struct {
	Task     string
	Attempts int
	Err      error // last failure
}

func (e *RetriesExceededError) Error() string {
	return fmt.Sprintf("task %s failed after %d attempts: %v", e.Task, e.Attempts, e.Err)
}

func (e *RetriesExceededError) Unwrap() error {
	return e.Err
}

// IsRetriesExceededError reports whether err is a RetriesExceededError.
// Uses errors.As to handle wrapped errors.
func IsRetriesExceededError(err error) bool {
	var re *RetriesExceededError
	return errors.As(err, &re)
}
