package workers

import (
	"context"
	"log"
	"time"

	"dish-battle-server/services"
)

// PendingRunner drains queued battle commands.
type PendingRunner interface {
	RunPending(ctx context.Context) int
}

// RunBattleWorker is the single consumer of the command queue. It drains the
// queue when woken by an enqueue and on every poll tick, until ctx is done.
func RunBattleWorker(ctx context.Context, runner PendingRunner, queue *services.CommandQueue, pollInterval time.Duration) {
	log.Printf("[BattleWorker] Started (poll every %s)", pollInterval)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[BattleWorker] Stopped")
			return
		case <-queue.Wake():
		case <-ticker.C:
		}
		if n := runner.RunPending(ctx); n > 0 {
			log.Printf("[BattleWorker] Processed %d command(s)", n)
		}
	}
}
