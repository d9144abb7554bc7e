package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest marks malformed input, rejected before any mutation.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrScoringFailed marks a collaborator failure inside the scoring
	// flow. Writes committed before the failure stand; the service does
	// not roll back.
	ErrScoringFailed = errors.New("scoring failed")

	// ErrEvaluationFailed is the achievement-evaluator counterpart of
	// ErrScoringFailed. Badges unlocked before the failure stay unlocked.
	ErrEvaluationFailed = errors.New("achievement evaluation failed")

	// ErrInsufficientFunds rejects a ledger spend larger than the
	// user's earned balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

func invalidRequest(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, reason)
}

func scoringError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrScoringFailed, err))
}

func evaluationError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrEvaluationFailed, err))
}
