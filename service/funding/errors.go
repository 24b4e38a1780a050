package funding

import (
	"errors"

	"github.com/brojonat/validator-pda/service/gossip"
)

var (
	// ErrFundingCancelled marks a deliberate refusal by the liveness gate.
	// It is not an infrastructure failure.
	ErrFundingCancelled = errors.New("funding cancelled")
	ErrInvalidAmount    = errors.New("invalid funding amount")
	ErrClient           = errors.New("solana client error")
	ErrSubmissionFailed = errors.New("transaction submission failed")
)

// CancelledError carries the gate decision that stopped a funding attempt.
type CancelledError struct {
	Decision gossip.Decision
}

func (e *CancelledError) Error() string {
	return ErrFundingCancelled.Error() + ": " + e.Decision.Reason
}

func (e *CancelledError) Is(target error) bool {
	return target == ErrFundingCancelled
}

func (e *CancelledError) Unwrap() error {
	return e.Decision.Err
}

// outcome maps a Fund result to a metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "submitted"
	case errors.Is(err, ErrFundingCancelled):
		return "cancelled"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrClient):
		return "client_error"
	case errors.Is(err, ErrSubmissionFailed):
		return "submission_failed"
	default:
		return "error"
	}
}
