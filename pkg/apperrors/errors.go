package apperrors

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrSelfMerge     = errors.New("cannot merge a team into itself")
	ErrAlreadyMerged = errors.New("team is already merged")
	ErrCycleDetected = errors.New("merge would create a cycle")
)
