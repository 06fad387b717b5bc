// workers/opponent_sync_worker.go
package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"dish-battle-server/models"
	"dish-battle-server/services"
)

// OpponentSyncWorker mirrors the opponent files on disk into the matchmaking
// pool so match requests can be paired against them.
type OpponentSyncWorker struct {
	store    services.BattleStore
	dir      services.OpponentDir
	interval time.Duration
	now      func() time.Time
}

func NewOpponentSyncWorker(store services.BattleStore, dir services.OpponentDir, interval time.Duration) *OpponentSyncWorker {
	return &OpponentSyncWorker{
		store:    store,
		dir:      dir,
		interval: interval,
		now:      time.Now,
	}
}

func (w *OpponentSyncWorker) Start(ctx context.Context) {
	log.Printf("[OpponentSync] Starting (every %s) from %s", w.interval, w.dir.Dir)
	go w.run(ctx)
}

func (w *OpponentSyncWorker) run(ctx context.Context) {
	if _, err := w.SyncOnce(); err != nil {
		log.Printf("[OpponentSync] Initial sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(); err != nil {
				log.Printf("[OpponentSync] Sync failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("[OpponentSync] Stopped")
			return
		}
	}
}

// SyncOnce upserts every readable opponent file into the pool and returns how
// many entries were written. Unreadable files are logged and skipped.
func (w *OpponentSyncWorker) SyncOnce() (int, error) {
	files, err := w.dir.List()
	if err != nil {
		return 0, fmt.Errorf("list opponents: %w", err)
	}

	entries := make([]models.TeamPoolEntry, 0, len(files))
	for _, path := range files {
		opp, err := w.dir.Load(path)
		if err != nil {
			log.Printf("[OpponentSync] Skipping %s: %v", path, err)
			continue
		}
		entry, err := poolEntryFromOpponent(opp, w.now().UTC())
		if err != nil {
			log.Printf("[OpponentSync] Skipping %s: %v", path, err)
			continue
		}
		entries = append(entries, entry)
	}

	if err := w.store.UpsertPoolEntries(entries); err != nil {
		return 0, err
	}
	if len(entries) > 0 {
		log.Printf("[OpponentSync] Synced %d opponent team(s)", len(entries))
	}
	return len(entries), nil
}

func poolEntryFromOpponent(opp services.Opponent, now time.Time) (models.TeamPoolEntry, error) {
	team, err := models.EncodeTeam(opp.File.Team)
	if err != nil {
		return models.TeamPoolEntry{}, err
	}
	userID := opp.File.UserID
	if userID == "" {
		userID = "opponent:" + opp.ID
	}
	return models.TeamPoolEntry{
		TeamID:   opp.ID,
		UserID:   userID,
		Round:    max(opp.File.Round, 1),
		ShopTier: max(opp.File.ShopTier, 1),
		Team:     team,
		Source:   models.PoolSourceOpponent,
		AddedAt:  now,
	}, nil
}
