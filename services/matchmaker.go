package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"dish-battle-server/engine"
	"dish-battle-server/models"
)

// ErrNoOpponents means no pool entry or opponent file could be matched.
var ErrNoOpponents = errors.New("no opponents available")

const (
	maxRoundDiff = 2
	maxTierDiff  = 1
)

// Matchmaker pairs match requests with pool entries. Random picks go through
// its own seeded generator so a replayed pool gives the same pairings.
type Matchmaker struct {
	store BattleStore

	mu  sync.Mutex
	rng *engine.RNG
}

func NewMatchmaker(store BattleStore, seed uint64) *Matchmaker {
	return &Matchmaker{store: store, rng: engine.NewRNG(seed)}
}

// PickIndex draws a value in [0, n).
func (m *Matchmaker) PickIndex(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rng.Index(n)
}

// Eligible applies the two-stage filter to pool: other users first, then
// round difference <= 2 and tier difference <= 1. The result is ordered by
// (AddedAt, TeamID) so index picks do not depend on storage order.
func Eligible(pool []models.TeamPoolEntry, userID string, round, tier int) []models.TeamPoolEntry {
	var others []models.TeamPoolEntry
	for _, e := range pool {
		if e.UserID != userID {
			others = append(others, e)
		}
	}
	var out []models.TeamPoolEntry
	for _, e := range others {
		if abs(e.Round-round) <= maxRoundDiff && abs(e.ShopTier-tier) <= maxTierDiff {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].AddedAt.Equal(out[j].AddedAt) {
			return out[i].AddedAt.Before(out[j].AddedAt)
		}
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

// FindOpponent picks a random eligible pool entry for req.
func (m *Matchmaker) FindOpponent(req MatchRequestCmd) (models.TeamPoolEntry, error) {
	pool, err := m.store.ListPool()
	if err != nil {
		return models.TeamPoolEntry{}, fmt.Errorf("load pool: %w", err)
	}
	candidates := Eligible(pool, req.UserID, req.Round, req.ShopTier)
	if len(candidates) == 0 {
		log.Printf("[Matchmaker] No opponent for team %s (round %d, tier %d) in pool of %d", req.TeamID, req.Round, req.ShopTier, len(pool))
		return models.TeamPoolEntry{}, ErrNoOpponents
	}
	pick := candidates[m.PickIndex(len(candidates))]
	log.Printf("[Matchmaker] Team %s matched with %s (%d candidates)", req.TeamID, pick.TeamID, len(candidates))
	return pick, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
