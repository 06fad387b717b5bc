package services

import (
	"sort"
	"sync"
	"testing"
	"time"

	"dish-battle-server/engine"
	"dish-battle-server/models"
	"dish-battle-server/utils"
)

const testDishes = `
dishes:
  - key: Plain
    flavor: { spice: 1, satiety: 3 }
  - key: Biter
    flavor: { spice: 5, satiety: 10 }
  - key: Wall
    flavor: { spice: 10, satiety: 100 }
`

func testCatalog(t *testing.T) *engine.Catalog {
	t.Helper()
	c, err := engine.LoadCatalog([]byte(testDishes))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}

func team(types ...string) []engine.TeamEntry {
	out := make([]engine.TeamEntry, len(types))
	for i, ty := range types {
		out[i] = engine.TeamEntry{Slot: i, DishType: ty, Level: 1}
	}
	return out
}

// memStore is an in-memory BattleStore.
type memStore struct {
	mu      sync.Mutex
	battles map[string]models.BattleRecord
	pool    map[string]models.TeamPoolEntry

	prunedBefore []time.Time
}

func newMemStore() *memStore {
	return &memStore{
		battles: make(map[string]models.BattleRecord),
		pool:    make(map[string]models.TeamPoolEntry),
	}
}

func (m *memStore) CreateBattle(rec *models.BattleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.battles[rec.ID] = *rec
	return nil
}

func (m *memStore) SaveBattle(rec *models.BattleRecord) error {
	return m.CreateBattle(rec)
}

func (m *memStore) GetBattle(id string) (models.BattleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.battles[id]
	if !ok {
		return rec, ErrBattleNotFound
	}
	return rec, nil
}

func (m *memStore) UpsertPoolEntries(entries []models.TeamPoolEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.pool[e.TeamID] = e
	}
	return nil
}

func (m *memStore) ListPool() ([]models.TeamPoolEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.TeamPoolEntry, 0, len(m.pool))
	for _, e := range m.pool {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (m *memStore) PruneBattles(before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prunedBefore = append(m.prunedBefore, before)
	var n int64
	for id, rec := range m.battles {
		if rec.Status.Terminal() && rec.CompletedAt != nil && rec.CompletedAt.Before(before) {
			delete(m.battles, id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) PrunePool(before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.pool {
		if e.Source == models.PoolSourcePlayer && e.AddedAt.Before(before) {
			delete(m.pool, id)
			n++
		}
	}
	return n, nil
}

func poolEntry(t *testing.T, id, user string, round, tier int, added time.Time, types ...string) models.TeamPoolEntry {
	t.Helper()
	encoded, err := models.EncodeTeam(team(types...))
	if err != nil {
		t.Fatalf("encode team: %v", err)
	}
	return models.TeamPoolEntry{
		TeamID:   id,
		UserID:   user,
		Round:    round,
		ShopTier: tier,
		Team:     encoded,
		Source:   models.PoolSourceOpponent,
		AddedAt:  added,
	}
}

func testPaths(t *testing.T) RunnerPaths {
	t.Helper()
	base := t.TempDir()
	return RunnerPaths{
		Results:         base + "/results",
		Temp:            base,
		Debug:           base + "/debug",
		ResultRetention: 10,
		TempRetention:   50,
	}
}

func newTestRunner(t *testing.T, store BattleStore, maxIter int) (*BattleRunner, *CommandQueue) {
	t.Helper()
	queue := NewCommandQueue()
	mm := NewMatchmaker(store, 1)
	sim := &Simulator{Catalog: testCatalog(t), MaxIterations: maxIter}
	files := utils.FileStore{Retries: 1}
	r := NewBattleRunner(queue, store, mm, sim, files, testPaths(t))
	r.NewSeed = func() (uint64, error) { return 42, nil }
	r.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return r, queue
}
