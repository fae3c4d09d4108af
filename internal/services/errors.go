package services

import "errors"

// Failures a caller is expected to handle; match with errors.Is.
var (
	ErrAccessDenied    = errors.New("access denied")
	ErrQuotaExhausted  = errors.New("daily attempt limit reached")
	ErrEmptyTest       = errors.New("test has no questions")
	ErrInvalidQuestion = errors.New("question does not belong to this test")
	ErrInvalidOption   = errors.New("option does not belong to this question")
	ErrSessionClosed   = errors.New("session is closed")
	ErrSessionNotFound = errors.New("session not found")
	ErrResultNotFound  = errors.New("result not found")
	ErrTestNotFound    = errors.New("test not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidMode     = errors.New("mode must be training or exam")
)
