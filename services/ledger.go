package services

import (
	"context"
	"log/slog"

	"github.com/focoapp/foco-backend/database/models"
	"github.com/focoapp/foco-backend/database/repositories"
)

// LedgerService answers balance questions from the append-only reward
// ledger and records spends against it. Earned entries are written by
// the scoring and achievement services; this service only ever appends
// spends.
type LedgerService struct {
	rewards repositories.RewardRepository
}

func NewLedgerService(rewards repositories.RewardRepository) *LedgerService {
	return &LedgerService{rewards: rewards}
}

// Spend debits the user's balance and returns the remainder. The
// balance is derived from the ledger itself, not the profile counters,
// so a spend can never exceed what the ledger actually records.
func (s *LedgerService) Spend(ctx context.Context, userID string, amount int, meta map[string]interface{}) (int64, error) {
	if userID == "" {
		return 0, invalidRequest("missing user_id")
	}
	if amount <= 0 {
		return 0, invalidRequest("amount must be positive")
	}

	earned, spent, err := s.rewards.Totals(ctx, userID)
	if err != nil {
		return 0, err
	}
	balance := earned - spent
	if balance < int64(amount) {
		return 0, ErrInsufficientFunds
	}

	if err := s.rewards.Insert(ctx, &models.Reward{
		UserID: userID,
		Type:   models.RewardTypeSpend,
		Amount: amount,
		Meta:   meta,
	}); err != nil {
		return 0, err
	}

	remaining := balance - int64(amount)
	slog.Info("Ledger spend recorded",
		slog.String("type", "svc"),
		slog.String("user_id", userID),
		slog.Int("amount", amount),
		slog.Int64("balance", remaining))
	return remaining, nil
}

// History returns the user's most recent ledger entries, newest first.
func (s *LedgerService) History(ctx context.Context, userID string, limit int) ([]*models.Reward, error) {
	if userID == "" {
		return nil, invalidRequest("missing user_id")
	}
	return s.rewards.GetAllByUserID(ctx, userID, limit)
}

// ReplayTotal re-derives the net balance purely from ledger entries.
// It exists as an audit hook: the figure should match what the profile
// counters imply, and a mismatch points at a missed or duplicated
// ledger write.
func (s *LedgerService) ReplayTotal(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, invalidRequest("missing user_id")
	}
	earned, spent, err := s.rewards.Totals(ctx, userID)
	if err != nil {
		return 0, err
	}
	return earned - spent, nil
}
