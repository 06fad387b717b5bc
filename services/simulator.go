package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dish-battle-server/engine"
)

// ErrSimulationTimeout is returned when a battle exceeds its iteration cap
// or wall-clock budget.
var ErrSimulationTimeout = errors.New("battle simulation timeout")

// progressEvery is how many steps pass between progress logs and deadline checks.
const progressEvery = 3600

// SimulationInput is one battle to run.
type SimulationInput struct {
	Seed       uint64
	Player     []engine.TeamEntry
	Opponent   []engine.TeamEntry
	OpponentID string
	Debug      bool
}

// SimulationStats describes how far a run got.
type SimulationStats struct {
	Iterations     int
	SimulationTime float64
	Elapsed        time.Duration
}

// Simulator drives battle sessions in fixed steps.
type Simulator struct {
	Catalog       *engine.Catalog
	MaxIterations int
	Timeout       time.Duration
	Timing        engine.Timing
	Logger        *log.Logger
}

// Run simulates in to completion and builds the report. Exceeding the step
// cap, the timeout or a cancelled ctx yields ErrSimulationTimeout.
func (s *Simulator) Run(ctx context.Context, in SimulationInput) (engine.Report, SimulationStats, error) {
	var stats SimulationStats
	sess, err := engine.NewSession(engine.Options{
		Seed:      in.Seed,
		Catalog:   s.Catalog,
		Player:    in.Player,
		Opponent:  in.Opponent,
		Timing:    s.Timing,
		Snapshots: in.Debug,
		Logger:    s.Logger,
	})
	if err != nil {
		return engine.Report{}, stats, fmt.Errorf("start battle: %w", err)
	}

	start := time.Now()
	var deadline time.Time
	if s.Timeout > 0 {
		deadline = start.Add(s.Timeout)
	}
	for !sess.Complete() {
		if stats.Iterations >= s.MaxIterations {
			return s.timeout(sess, stats, start, fmt.Sprintf("iteration cap %d", s.MaxIterations))
		}
		if stats.Iterations > 0 && stats.Iterations%progressEvery == 0 {
			log.Printf("[Simulator] seed %d: %d iterations, %.1fs simulated", in.Seed, stats.Iterations, sess.Time())
			if ctx.Err() != nil {
				return s.timeout(sess, stats, start, ctx.Err().Error())
			}
			if !deadline.IsZero() && time.Now().After(deadline) {
				return s.timeout(sess, stats, start, "wall clock budget")
			}
		}
		sess.Step()
		stats.Iterations++
	}

	stats.SimulationTime = sess.Time()
	stats.Elapsed = time.Since(start)
	return engine.BuildReport(sess, in.OpponentID, in.Debug), stats, nil
}

func (s *Simulator) timeout(sess *engine.Session, stats SimulationStats, start time.Time, why string) (engine.Report, SimulationStats, error) {
	stats.SimulationTime = sess.Time()
	stats.Elapsed = time.Since(start)
	return engine.Report{}, stats, fmt.Errorf("%w: %s after %d iterations", ErrSimulationTimeout, why, stats.Iterations)
}
