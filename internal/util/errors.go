package util

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrStudentNotFound    = errors.New("student not found")
	ErrNoScores           = errors.New("no scores submitted")
	ErrInvalidWeek        = errors.New("week must be a positive number")
	ErrInvalidSubject     = errors.New("subject name must not be blank")
	ErrDuplicateSubject   = errors.New("duplicate subject")
)
