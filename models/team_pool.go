package models

import (
	"encoding/json"
	"fmt"
	"time"

	"dish-battle-server/engine"
)

// Pool entry sources.
const (
	PoolSourcePlayer   = "player"
	PoolSourceOpponent = "opponent_file"
)

// TeamPoolEntry is a team waiting in the matchmaking pool.
type TeamPoolEntry struct {
	TeamID   string    `gorm:"primaryKey;type:varchar(64)" json:"team_id"`
	UserID   string    `gorm:"index;not null" json:"user_id"`
	Round    int       `gorm:"index" json:"round"`
	ShopTier int       `json:"shop_tier"`
	Team     string    `gorm:"type:text;not null" json:"-"`
	Source   string    `gorm:"type:varchar(16);default:player" json:"source"`
	AddedAt  time.Time `gorm:"index" json:"added_at"`

	Timestamps
}

// Entries decodes the stored team payload.
func (p TeamPoolEntry) Entries() ([]engine.TeamEntry, error) {
	var team []engine.TeamEntry
	if err := json.Unmarshal([]byte(p.Team), &team); err != nil {
		return nil, fmt.Errorf("decode pool team %s: %w", p.TeamID, err)
	}
	return team, nil
}

// EncodeTeam serializes team entries for storage in a pool entry.
func EncodeTeam(team []engine.TeamEntry) (string, error) {
	b, err := json.Marshal(team)
	if err != nil {
		return "", fmt.Errorf("encode team: %w", err)
	}
	return string(b), nil
}
