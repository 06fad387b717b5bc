package engine

type courseStage int

const (
	stageIdle courseStage = iota
	stageEntering
	stageCombat
)

type courseState struct {
	stage       courseStage
	player      *Dish
	opponent    *Dish
	enterLeft   int
	combatTicks int
}

// front returns the dish a side sends into the next course.
func (s *Session) front(side TeamSide) *Dish {
	var best *Dish
	for _, d := range s.dishes {
		if d.Side != side || !d.Active() {
			continue
		}
		if best == nil || d.Slot < best.Slot || (d.Slot == best.Slot && d.ID < best.ID) {
			best = d
		}
	}
	return best
}

func (s *Session) advanceCourse() {
	c := &s.course
	switch c.stage {
	case stageIdle:
		if s.courseIndex >= MaxCourses || !s.allServed() {
			return
		}
		p, o := s.front(SidePlayer), s.front(SideOpponent)
		if p == nil || o == nil || p.Phase != PhaseInQueue || o.Phase != PhaseInQueue {
			return
		}
		p.Phase, o.Phase = PhaseEntering, PhaseEntering
		*c = courseState{stage: stageEntering, player: p, opponent: o, enterLeft: s.timing.EnterTicks}
		s.emit(HookOnCourseStart, p, s.courseIndex)
		s.emit(HookOnCourseStart, o, s.courseIndex)

	case stageEntering:
		c.enterLeft--
		if c.enterLeft > 0 {
			return
		}
		if c.player.Phase == PhaseEntering && c.opponent.Phase == PhaseEntering {
			c.player.Phase, c.opponent.Phase = PhaseInCombat, PhaseInCombat
			c.stage = stageCombat
			c.combatTicks = 0
		}

	case stageCombat:
		p, o := c.player, c.opponent
		if p.Phase != PhaseInCombat || o.Phase != PhaseInCombat {
			return
		}
		c.combatTicks++
		p.RecomputeStats()
		o.RecomputeStats()
		if c.combatTicks%s.timing.BiteTicks == 0 {
			s.exchangeBites(p, o)
		}
		if p.CurrentBody <= 0 || o.CurrentBody <= 0 {
			s.finishCourse(p, o)
		}
	}
}

// turnOrder puts the higher base zing first, then the higher base body, then
// the player side.
func turnOrder(p, o *Dish) (*Dish, *Dish) {
	switch {
	case p.BaseZing != o.BaseZing:
		if o.BaseZing > p.BaseZing {
			return o, p
		}
	case p.BaseBody != o.BaseBody:
		if o.BaseBody > p.BaseBody {
			return o, p
		}
	}
	return p, o
}

// exchangeBites deals simultaneous damage: both amounts are taken from the
// stats as they were before either bite landed.
func (s *Session) exchangeBites(p, o *Dish) {
	toOpponent := max(1, p.CurrentZing)
	toPlayer := max(1, o.CurrentZing)
	taken := map[int]int{
		o.ID: o.takeBite(toOpponent),
		p.ID: p.takeBite(toPlayer),
	}
	p.tickStatuses()
	o.tickStatuses()
	p.RecomputeStats()
	o.RecomputeStats()

	first, second := turnOrder(p, o)
	for _, attacker := range []*Dish{first, second} {
		defender := o
		if attacker == o {
			defender = p
		}
		s.emit(HookOnBiteTaken, defender, taken[defender.ID])
	}
}

func (s *Session) finishCourse(p, o *Dish) {
	c := &s.course
	pDown, oDown := p.CurrentBody <= 0, o.CurrentBody <= 0

	outcome := CourseOutcome{SlotIndex: s.courseIndex, Ticks: c.combatTicks}
	switch {
	case pDown && oDown:
		outcome.Winner = OutcomeTie
		s.result.Ties++
	case oDown:
		outcome.Winner = OutcomePlayer
		s.result.Wins++
	default:
		outcome.Winner = OutcomeOpponent
		s.result.Losses++
	}
	s.result.Courses = append(s.result.Courses, outcome)

	for _, d := range []*Dish{p, o} {
		if d.CurrentBody <= 0 {
			d.Phase = PhaseFinished
			s.emit(HookOnDishFinished, d, s.courseIndex)
		}
	}
	for _, d := range []*Dish{p, o} {
		if d.Active() {
			s.emit(HookOnCourseComplete, d, s.courseIndex)
		}
	}

	s.reorganizeQueues()
	if s.recordSnapshots {
		s.snapshots = append(s.snapshots, s.snapshot())
	}
	s.courseIndex++
	*c = courseState{}
}

// reorganizeQueues compacts each team's active dishes to slots 0..n-1 in
// their existing order and returns survivors of the course to the queue.
func (s *Session) reorganizeQueues() {
	for _, side := range []TeamSide{SidePlayer, SideOpponent} {
		var active []*Dish
		for _, d := range s.dishes {
			if d.Side == side && d.Active() {
				active = append(active, d)
			}
		}
		sortDishes(active)
		for i, d := range active {
			d.Slot = i
			if d.Phase == PhaseInCombat || d.Phase == PhaseEntering {
				d.Phase = PhaseInQueue
				d.Damage = 0
			}
		}
	}
}
