package engine

import (
	"errors"
	"fmt"
	"log"
	"sort"
)

const (
	// TeamSlots is the number of queue slots per team.
	TeamSlots = 7
	// MaxCourses caps the number of courses in one battle.
	MaxCourses = 7
)

// ErrIterationLimit is returned by Run when the battle did not finish within
// the allowed number of steps.
var ErrIterationLimit = errors.New("simulation iteration limit reached")

// Timing is the fixed-step cadence of a battle, in ticks.
type Timing struct {
	TickRate   int
	EnterTicks int
	BiteTicks  int
}

// DefaultTiming runs at 60 ticks per second with a 0.45s entrance and a bite
// every 0.35s pre-pause + 0.15s tick + 0.35s post-pause.
func DefaultTiming() Timing {
	return Timing{TickRate: 60, EnterTicks: 27, BiteTicks: 51}
}

// TeamEntry is one dish of a submitted team.
type TeamEntry struct {
	Slot     int    `json:"slot" yaml:"slot"`
	DishType string `json:"dishType" yaml:"dishType"`
	Level    int    `json:"level,omitempty" yaml:"level,omitempty"`
	Powerups []int  `json:"powerups,omitempty" yaml:"powerups,omitempty"`
}

// Options configures a new battle session.
type Options struct {
	Seed      uint64
	Catalog   *Catalog
	Player    []TeamEntry
	Opponent  []TeamEntry
	Timing    Timing
	Snapshots bool
	Logger    *log.Logger
}

// Session owns every piece of state of one battle. Nothing outside the
// session mutates it, and it is discarded once the result is collected.
type Session struct {
	rng     *RNG
	catalog *Catalog
	timing  Timing
	logger  *log.Logger

	dishes []*Dish
	nextID int
	queue  TriggerQueue

	tick        int
	started     bool
	complete    bool
	course      courseState
	courseIndex int
	result      BattleResult

	events          []TriggerEvent
	recordSnapshots bool
	snapshots       []CourseSnapshot

	synergy synergyState
}

// NewSession builds the dishes of both teams. Entries are placed in slot
// order and compacted to slots 0..n-1.
func NewSession(opts Options) (*Session, error) {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Timing.TickRate <= 0 {
		opts.Timing = DefaultTiming()
	}
	s := &Session{
		rng:             NewRNG(opts.Seed),
		catalog:         opts.Catalog,
		timing:          opts.Timing,
		logger:          opts.Logger,
		recordSnapshots: opts.Snapshots,
		synergy:         newSynergyState(),
	}
	for _, team := range []struct {
		side    TeamSide
		entries []TeamEntry
	}{{SidePlayer, opts.Player}, {SideOpponent, opts.Opponent}} {
		if err := s.addTeam(team.side, team.entries); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) addTeam(side TeamSide, entries []TeamEntry) error {
	if len(entries) > TeamSlots {
		return fmt.Errorf("%s team has %d dishes, max %d", side, len(entries), TeamSlots)
	}
	sorted := append([]TeamEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Slot < sorted[j].Slot })
	for i, entry := range sorted {
		info, ok := s.catalog.Lookup(entry.DishType)
		if !ok {
			return fmt.Errorf("%s slot %d: %w %q", side, entry.Slot, ErrUnknownDish, entry.DishType)
		}
		d := s.spawn(info, entry.Level, side, i)
		d.Powerups = append([]int(nil), entry.Powerups...)
	}
	return nil
}

func (s *Session) spawn(info DishInfo, level int, side TeamSide, slot int) *Dish {
	s.nextID++
	d := newDish(s.nextID, info, level, side, slot)
	s.dishes = append(s.dishes, d)
	return d
}

func (s *Session) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// Seed is the value the session RNG was seeded with.
func (s *Session) Seed() uint64 { return s.rng.Seed() }

// Complete reports whether the battle has finished.
func (s *Session) Complete() bool { return s.complete }

// Ticks is the number of simulation steps taken after setup.
func (s *Session) Ticks() int { return s.tick }

// Time is the simulated clock in seconds.
func (s *Session) Time() float64 { return float64(s.tick) / float64(s.timing.TickRate) }

// Result returns the aggregated battle result so far.
func (s *Session) Result() BattleResult {
	r := s.result
	r.Courses = append([]CourseOutcome(nil), s.result.Courses...)
	return r
}

// Events returns every emitted trigger event in emission order.
func (s *Session) Events() []TriggerEvent {
	return append([]TriggerEvent(nil), s.events...)
}

// Snapshots returns the per-course dish snapshots, if recording was enabled.
func (s *Session) Snapshots() []CourseSnapshot {
	return append([]CourseSnapshot(nil), s.snapshots...)
}

// Dishes returns the dishes of side in slot order; finished dishes are
// included after the active ones.
func (s *Session) Dishes(side TeamSide) []*Dish {
	var out []*Dish
	for _, d := range s.dishes {
		if d.Side == side {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Active() != out[j].Active() {
			return out[i].Active()
		}
		if out[i].Slot != out[j].Slot {
			return out[i].Slot < out[j].Slot
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Dish looks a dish up by id.
func (s *Session) Dish(id int) *Dish {
	for _, d := range s.dishes {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Step advances the battle by one fixed timestep. The first call performs
// battle setup: synergies, OnStartBattle and OnServe.
func (s *Session) Step() {
	if s.complete {
		return
	}
	if !s.started {
		s.begin()
	} else {
		s.tick++
		s.advanceCourse()
		s.resolveTriggers()
	}
	s.recomputeAll()
	s.checkComplete()
}

// Run steps the battle until it completes or maxIterations is reached.
func (s *Session) Run(maxIterations int) error {
	for i := 0; !s.complete; i++ {
		if i >= maxIterations {
			return fmt.Errorf("%w (%d)", ErrIterationLimit, maxIterations)
		}
		s.Step()
	}
	return nil
}

func (s *Session) begin() {
	s.started = true
	s.recomputeAll()
	s.applyPairings()
	s.recomputeAll()
	s.CountSynergies()
	s.ApplySetBonuses()
	s.recomputeAll()

	for _, d := range s.activeDishes() {
		s.emit(HookOnStartBattle, d, 0)
	}
	s.resolveTriggers()
	s.recomputeAll()

	for _, d := range s.activeDishes() {
		s.emit(HookOnServe, d, 0)
		d.OnServeFired = true
	}
	s.resolveTriggers()
}

func (s *Session) recomputeAll() {
	for _, d := range s.dishes {
		d.RecomputeStats()
	}
}

// emit records an event sourced from d and queues it for resolution.
func (s *Session) emit(hook TriggerHook, d *Dish, payload int) {
	ev := TriggerEvent{
		Hook:        hook,
		SourceID:    d.ID,
		Side:        d.Side,
		Slot:        d.Slot,
		Timestamp:   s.Time(),
		CourseIndex: s.courseIndex,
		PayloadInt:  payload,
	}
	s.queue.Add(ev)
	s.events = append(s.events, ev)
}

// activeDishes lists the non-finished dishes ordered by side, slot, id.
func (s *Session) activeDishes() []*Dish {
	var out []*Dish
	for _, d := range s.dishes {
		if d.Active() {
			out = append(out, d)
		}
	}
	sortDishes(out)
	return out
}

func sortDishes(ds []*Dish) {
	sort.SliceStable(ds, func(i, j int) bool {
		if ds[i].Side != ds[j].Side {
			return ds[i].Side < ds[j].Side
		}
		if ds[i].Slot != ds[j].Slot {
			return ds[i].Slot < ds[j].Slot
		}
		return ds[i].ID < ds[j].ID
	})
}

func (s *Session) activeCount(side TeamSide) int {
	n := 0
	for _, d := range s.dishes {
		if d.Side == side && d.Active() {
			n++
		}
	}
	return n
}

func (s *Session) allServed() bool {
	for _, d := range s.dishes {
		if d.Active() && !d.OnServeFired {
			return false
		}
	}
	return true
}

func (s *Session) checkComplete() {
	if s.complete || !s.started {
		return
	}
	players, opponents := s.activeCount(SidePlayer), s.activeCount(SideOpponent)
	capped := s.courseIndex >= MaxCourses && s.course.stage == stageIdle
	if players > 0 && opponents > 0 && !capped {
		return
	}

	s.complete = true
	switch {
	case players > 0 && opponents == 0:
		s.result.Outcome = OutcomePlayer
	case opponents > 0 && players == 0:
		s.result.Outcome = OutcomeOpponent
	case players == 0 && opponents == 0:
		s.result.Outcome = OutcomeTie
	case s.result.Wins > s.result.Losses:
		s.result.Outcome = OutcomePlayer
	case s.result.Losses > s.result.Wins:
		s.result.Outcome = OutcomeOpponent
	default:
		s.result.Outcome = OutcomeTie
	}
}
