package service

import "errors"

// Sentinel errors surfaced by the attempt lifecycle. Handlers map these to
// response codes with errors.Is.
var (
	ErrExamNotFound        = errors.New("exam not found")
	ErrExamNotPublished    = errors.New("exam is not published")
	ErrExamNotStarted      = errors.New("exam has not started yet")
	ErrExamEnded           = errors.New("exam has already ended")
	ErrAttemptLimitReached = errors.New("maximum attempts reached")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrAttemptNotOwned     = errors.New("attempt belongs to another user")
	ErrAlreadySubmitted    = errors.New("attempt has already been submitted")
)
