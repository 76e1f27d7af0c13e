package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAgentPolicyNotFound = errors.New("agent policy not found")
	ErrInvalidAmount       = errors.New("amount must be zero or positive")
	ErrInvalidCategory     = errors.New("unknown spending category")
	ErrInvalidPenaltyMode  = errors.New("penalty mode must be strict or relaxed")
	ErrMerchantTooLong     = errors.New("merchant exceeds maximum length")
	ErrExportUnavailable   = errors.New("history export storage is not configured")
	ErrEmptyHistory        = errors.New("spend history is empty")

	// ErrRejectedSpendExecuted is an ErrInvalidAmount for a rejected record
	// that still carries an executed amount
	ErrRejectedSpendExecuted = fmt.Errorf("%w: rejected spend cannot execute an amount", ErrInvalidAmount)
)

// Validation constants
const (
	MaxMerchantLength    = 255
	MaxDescriptionLength = 1024
)
