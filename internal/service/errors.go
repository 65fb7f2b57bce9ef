package service

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrDepositLimitExceeded = errors.New("deposit limit exceeded")
	ErrJobAlreadyPaid       = errors.New("job already paid")
	ErrInvalidPeriod        = errors.New("invalid report period")

	// ErrIntegrity marks a missing row that referential integrity guarantees
	// should exist. Handlers log it as severe instead of blaming the caller.
	ErrIntegrity = errors.New("data integrity violation")
)
