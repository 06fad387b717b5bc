// services/scheduler.go
package services

import (
	"fmt"
	"log"
	"time"

	"dish-battle-server/utils"

	"github.com/go-co-op/gocron/v2"
)

// RetentionJob prunes output files and stale database rows.
type RetentionJob struct {
	Store     BattleStore
	Paths     RunnerPaths
	BattleTTL time.Duration
	PoolTTL   time.Duration
	Now       func() time.Time
}

// Run performs one retention pass. Failures are logged and the pass goes on.
func (j *RetentionJob) Run() {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}

	for _, dir := range []struct {
		path string
		keep int
	}{
		{j.Paths.Results, j.Paths.ResultRetention},
		{j.Paths.Temp, j.Paths.TempRetention},
		{j.Paths.Debug, j.Paths.TempRetention},
	} {
		removed, err := utils.CleanupOldFiles(dir.path, ".json", dir.keep)
		if err != nil {
			log.Printf("[Scheduler] Cleanup of %s failed: %v", dir.path, err)
			continue
		}
		if removed > 0 {
			log.Printf("[Scheduler] Removed %d old file(s) from %s", removed, dir.path)
		}
	}

	if j.Store == nil {
		return
	}
	if j.BattleTTL > 0 {
		n, err := j.Store.PruneBattles(now().Add(-j.BattleTTL))
		if err != nil {
			log.Printf("[Scheduler] %v", err)
		} else if n > 0 {
			log.Printf("[Scheduler] Pruned %d finished battle(s)", n)
		}
	}
	if j.PoolTTL > 0 {
		n, err := j.Store.PrunePool(now().Add(-j.PoolTTL))
		if err != nil {
			log.Printf("[Scheduler] %v", err)
		} else if n > 0 {
			log.Printf("[Scheduler] Pruned %d stale pool entr(ies)", n)
		}
	}
}

// StartRetentionScheduler runs job every interval. The caller shuts the
// returned scheduler down.
func StartRetentionScheduler(job *RetentionJob, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(job.Run),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule retention job: %w", err)
	}
	sched.Start()
	log.Printf("[Scheduler] Retention job every %s", interval)
	return sched, nil
}
