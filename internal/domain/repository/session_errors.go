package repository

import "errors"

var (
	// ErrSessionAlreadyActive means an in_progress session already exists for
	// the (user, assessment) pair. The caller should fetch and return it.
	ErrSessionAlreadyActive = errors.New("an in_progress session already exists for this assessment")

	// ErrResponseAlreadyExists means a response was already recorded for the
	// (session, question) pair. Re-submission is not supported.
	ErrResponseAlreadyExists = errors.New("a response already exists for this question")
)
