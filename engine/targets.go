package engine

// candidates returns the active dishes matching keep, ordered by side, slot
// and id so random draws index into a state-determined list.
func (s *Session) candidates(keep func(d *Dish) bool) []*Dish {
	var out []*Dish
	for _, d := range s.dishes {
		if d.Active() && keep(d) {
			out = append(out, d)
		}
	}
	sortDishes(out)
	return out
}

func (s *Session) atSlot(side TeamSide, slot int, phase *Phase) *Dish {
	for _, d := range s.dishes {
		if d.Side == side && d.Slot == slot && d.Active() && (phase == nil || d.Phase == *phase) {
			return d
		}
	}
	return nil
}

func (s *Session) pickOne(pool []*Dish) []*Dish {
	if len(pool) == 0 {
		return nil
	}
	return []*Dish{pool[s.rng.Index(len(pool))]}
}

// resolveTargets maps a scope to the dishes it selects for src. An empty
// result means the effect is skipped.
func (s *Session) resolveTargets(src *Dish, scope TargetScope) []*Dish {
	ally := func(d *Dish) bool { return d.Side == src.Side }
	enemy := func(d *Dish) bool { return d.Side != src.Side }
	notSelf := func(d *Dish) bool { return d.ID != src.ID }

	switch scope {
	case ScopeSelf:
		return []*Dish{src}
	case ScopeOpponent:
		if d := s.atSlot(src.Side.Other(), src.Slot, nil); d != nil {
			return []*Dish{d}
		}
		return nil
	case ScopeAllAllies:
		return s.candidates(func(d *Dish) bool { return ally(d) && notSelf(d) })
	case ScopeAllOpponents:
		return s.candidates(enemy)
	case ScopeDishesAfterSelf:
		return s.candidates(func(d *Dish) bool { return ally(d) && d.Slot > src.Slot })
	case ScopeFutureAllies:
		return s.candidates(func(d *Dish) bool { return ally(d) && d.Phase == PhaseInQueue })
	case ScopeFutureOpponents:
		return s.candidates(func(d *Dish) bool { return enemy(d) && d.Phase == PhaseInQueue })
	case ScopePrevious:
		if d := s.atSlot(src.Side, src.Slot-1, nil); d != nil {
			return []*Dish{d}
		}
		return nil
	case ScopeNext:
		if d := s.atSlot(src.Side, src.Slot+1, nil); d != nil {
			return []*Dish{d}
		}
		return nil
	case ScopeSelfAndAdjacent:
		out := []*Dish{}
		if d := s.atSlot(src.Side, src.Slot-1, nil); d != nil {
			out = append(out, d)
		}
		out = append(out, src)
		if d := s.atSlot(src.Side, src.Slot+1, nil); d != nil {
			out = append(out, d)
		}
		return out
	case ScopeRandomAlly:
		return s.pickOne(s.candidates(func(d *Dish) bool { return ally(d) && notSelf(d) }))
	case ScopeRandomOpponent:
		return s.pickOne(s.candidates(enemy))
	case ScopeRandomDish:
		return s.pickOne(s.candidates(notSelf))
	case ScopeRandomOtherAlly:
		return s.pickOne(s.candidates(func(d *Dish) bool { return ally(d) && notSelf(d) }))
	}
	s.logf("[Effects] unmapped target scope %s from dish %d", scope, src.ID)
	return nil
}

// adjacentHas reports whether the queued ally before or after src has a
// positive value in stat.
func (s *Session) adjacentHas(src *Dish, stat FlavorStat) bool {
	queued := PhaseInQueue
	for _, slot := range []int{src.Slot - 1, src.Slot + 1} {
		d := s.atSlot(src.Side, slot, &queued)
		if d != nil && d.Flavor.Plus(d.Deferred).Get(stat) > 0 {
			return true
		}
	}
	return false
}
