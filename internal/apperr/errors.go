package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidConfig  = errors.New("invalid config")
	ErrInvalidRange   = errors.New("invalid date range")
	ErrNoFilesInRange = errors.New("no log files in range")
	ErrUnreadableFile = errors.New("unreadable log file")
	ErrSlackPost      = errors.New("slack post failed")
)
