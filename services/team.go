package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"dish-battle-server/engine"
)

// ErrInvalidTeam marks a team payload that failed validation.
var ErrInvalidTeam = errors.New("invalid team")

type rawTeamEntry struct {
	Slot     *int            `json:"slot"`
	DishType *string         `json:"dishType"`
	Level    *int            `json:"level"`
	Powerups json.RawMessage `json:"powerups"`
}

// ParseTeam decodes and validates a team array: size in [1, maxSize], each
// slot in [0, maxSize) and unique, level in [1, engine.MaxLevel] when present, powerups an
// array of integers when present, and dishType naming a catalog entry.
func ParseTeam(raw json.RawMessage, maxSize int, catalog *engine.Catalog) ([]engine.TeamEntry, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: missing team", ErrInvalidTeam)
	}
	var entries []rawTeamEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: team must be an array of dishes: %v", ErrInvalidTeam, err)
	}
	if len(entries) == 0 || len(entries) > maxSize {
		return nil, fmt.Errorf("%w: team size %d not in [1, %d]", ErrInvalidTeam, len(entries), maxSize)
	}

	seen := make(map[int]bool, len(entries))
	team := make([]engine.TeamEntry, 0, len(entries))
	for i, e := range entries {
		if e.Slot == nil || e.DishType == nil {
			return nil, fmt.Errorf("%w: dish %d needs slot and dishType", ErrInvalidTeam, i)
		}
		slot := *e.Slot
		if slot < 0 || slot >= maxSize {
			return nil, fmt.Errorf("%w: dish %d slot %d not in [0, %d)", ErrInvalidTeam, i, slot, maxSize)
		}
		if seen[slot] {
			return nil, fmt.Errorf("%w: duplicate slot %d", ErrInvalidTeam, slot)
		}
		seen[slot] = true

		level := 1
		if e.Level != nil {
			if *e.Level < 1 || *e.Level > engine.MaxLevel {
				return nil, fmt.Errorf("%w: dish %d level %d not in [1, %d]", ErrInvalidTeam, i, *e.Level, engine.MaxLevel)
			}
			level = *e.Level
		}

		var powerups []int
		if len(e.Powerups) > 0 && !bytes.Equal(bytes.TrimSpace(e.Powerups), []byte("null")) {
			if err := json.Unmarshal(e.Powerups, &powerups); err != nil {
				return nil, fmt.Errorf("%w: dish %d powerups must be an array of integers", ErrInvalidTeam, i)
			}
		}

		info, ok := catalog.Lookup(*e.DishType)
		if !ok {
			return nil, fmt.Errorf("%w: dish %d: %w %q", ErrInvalidTeam, i, engine.ErrUnknownDish, *e.DishType)
		}
		team = append(team, engine.TeamEntry{Slot: slot, DishType: info.Key, Level: level, Powerups: powerups})
	}
	return team, nil
}
