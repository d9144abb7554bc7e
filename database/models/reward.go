package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Reward is one append-only ledger entry. The profile's XP counters
// are authoritative; the ledger is the audit trail they can be
// re-derived from.
type Reward struct {
	bun.BaseModel `bun:"table:rewards,alias:r"`

	ID     int64                  `bun:"id,pk,autoincrement"`
	UserID string                 `bun:"user_id,notnull"`
	Type   string                 `bun:"type,notnull"`
	Amount int                    `bun:"amount,notnull"`
	Meta   map[string]interface{} `bun:"meta,type:jsonb"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Reward type constants
const (
	RewardTypeEarn  = "earn"
	RewardTypeSpend = "spend"
)
