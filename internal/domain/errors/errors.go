package errors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrPlanNotFound     = errors.New("plan not found")
	ErrTrialAlreadyUsed = errors.New("trial already used")
	ErrTrialDisabled    = errors.New("trial disabled")
	ErrInvalidDuration  = errors.New("invalid plan duration")
	ErrNoPendingOrder   = errors.New("no pending order in session")
)
