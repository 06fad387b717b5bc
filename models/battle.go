package models

import "time"

// BattleStatus is the lifecycle state of a server-side battle.
type BattleStatus string

const (
	BattleQueued   BattleStatus = "queued"
	BattleRunning  BattleStatus = "running"
	BattleComplete BattleStatus = "complete"
	BattleError    BattleStatus = "error"
)

// Terminal reports whether no further transition can happen.
func (s BattleStatus) Terminal() bool {
	return s == BattleComplete || s == BattleError
}

// CanTransition enforces queued -> running -> complete|error.
func (s BattleStatus) CanTransition(to BattleStatus) bool {
	switch s {
	case BattleQueued:
		return to == BattleRunning || to == BattleError
	case BattleRunning:
		return to == BattleComplete || to == BattleError
	}
	return false
}

// BattleRecord tracks one simulated battle from match to result.
type BattleRecord struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	PlayerTeamID string       `gorm:"index" json:"player_team_id"`
	PlayerUserID string       `gorm:"index" json:"player_user_id"`
	OpponentID   string       `gorm:"index" json:"opponent_id"`
	Status       BattleStatus `gorm:"type:varchar(16);index;not null;default:queued" json:"status"`
	Round        int          `json:"round"`
	ShopTier     int          `json:"shop_tier"`

	// Seed is kept as decimal text: the full uint64 range does not fit a
	// signed BIGINT column.
	Seed     string `gorm:"type:varchar(20)" json:"seed,omitempty"`
	Checksum string `gorm:"type:varchar(16)" json:"checksum,omitempty"`
	Result   string `gorm:"type:text" json:"-"`
	Error    string `gorm:"type:text" json:"error,omitempty"`

	ReportURL   string     `json:"report_url,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Timestamps
}
