package engine

// resolveTriggers runs one resolution pass: the queue is drained, sorted
// into dispatch order and cleared, then every event is resolved.
func (s *Session) resolveTriggers() {
	if s.queue.Len() == 0 {
		return
	}
	events := s.queue.Drain()
	SortForDispatch(events, s.currentZing)
	for _, ev := range events {
		s.dispatch(ev)
	}
}

func (s *Session) currentZing(id int) (int, bool) {
	d := s.Dish(id)
	if d == nil {
		return 0, false
	}
	return d.CurrentZing, true
}

func (s *Session) dispatch(ev TriggerEvent) {
	src := s.Dish(ev.SourceID)
	if src == nil {
		s.logf("[Effects] %s: source dish %d not found, skipping", ev.Hook, ev.SourceID)
		return
	}
	// A dish finished by a bite still reacts to that bite.
	if !src.Active() && ev.Hook != HookOnDishFinished && ev.Hook != HookOnBiteTaken {
		return
	}
	for _, eff := range src.effectsFor(ev.Hook) {
		if eff.Conditional && !s.adjacentHas(src, eff.AdjacentStat) {
			continue
		}
		s.applyEffect(src, eff)
	}
}

func (s *Session) applyEffect(src *Dish, eff Effect) {
	targets := s.resolveTargets(src, eff.Scope)
	if len(targets) == 0 {
		return
	}

	switch eff.Operation {
	case OpAddFlavorStat:
		for _, t := range targets {
			t.Deferred.Add(eff.Stat, eff.Amount)
		}
	case OpAddCombatZing:
		for _, t := range targets {
			t.PendingZing += eff.Amount
		}
	case OpAddCombatBody:
		for _, t := range targets {
			t.PendingBody += eff.Amount
		}
	case OpSwapStats:
		for _, t := range targets {
			t.swapStats()
		}
	case OpMultiplyDamage:
		mult := eff.Amount
		if mult <= 0 {
			mult = 2
		}
		for _, t := range targets {
			t.NextDamage = &DamageModifier{Multiplier: mult, Remaining: 1}
		}
	case OpPreventAllDamage:
		uses := eff.Amount
		if uses <= 0 {
			uses = 1
		}
		for _, t := range targets {
			t.NextDamage = &DamageModifier{Multiplier: 0, Remaining: uses}
		}
	case OpCopyEffect:
		s.copyEffects(src, targets)
	case OpSummonDish:
		s.summon(src, eff.SummonType)
	case OpApplyStatus:
		for _, t := range targets {
			if !t.addStatus(StatusEffect{ZingDelta: eff.Amount, BodyDelta: eff.StatusBody, Duration: eff.Duration}) {
				s.logf("[Effects] dish %d status list full", t.ID)
			}
		}
	default:
		s.logf("[Effects] unmapped operation %s from dish %d", eff.Operation, src.ID)
	}
}

// copyEffects gives src the own effects of the single dish its scope chose.
// CopyEffect entries themselves are not copied.
func (s *Session) copyEffects(src *Dish, targets []*Dish) {
	if len(targets) != 1 {
		s.logf("[Effects] dish %d copy needs exactly one target, got %d", src.ID, len(targets))
		return
	}
	from := targets[0]
	if from.ID == src.ID {
		return
	}
	for _, e := range from.Effects {
		if e.Operation == OpCopyEffect {
			continue
		}
		e.Copied = true
		src.CopiedEffects = append(src.CopiedEffects, e)
	}
}

// summon adds a level 1 dish to src's team at the lowest free slot. It is
// skipped when the team is full.
func (s *Session) summon(src *Dish, dishType string) {
	info, ok := s.catalog.Lookup(dishType)
	if !ok {
		s.logf("[Effects] dish %d summons unknown type %q", src.ID, dishType)
		return
	}
	slot := s.activeCount(src.Side)
	if slot >= TeamSlots {
		s.logf("[Effects] %s team full, summon of %s skipped", src.Side, info.Key)
		return
	}
	d := s.spawn(info, 1, src.Side, slot)
	d.Summoned = true
	d.OnServeFired = true
}
