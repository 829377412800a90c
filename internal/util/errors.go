package util

import "errors"

var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrCourseNotFound      = errors.New("course not found")
	ErrLessonNotFound      = errors.New("lesson not found")
	ErrProgressNotFound    = errors.New("course progress not found")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrNotEligible         = errors.New("course not completed, certificate not available")
	ErrInvalidScore        = errors.New("score must be between 0 and 100")
	ErrInvalidTimeSpent    = errors.New("time spent must not be negative")
	ErrConflict            = errors.New("progress was modified concurrently, please retry")
	ErrLockTimeout         = errors.New("learner progress is busy, please retry")
)
