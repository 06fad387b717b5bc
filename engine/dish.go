package engine

// Dish is one combatant instance inside a battle session.
type Dish struct {
	ID       int
	Type     string
	Name     string
	Level    int
	Side     TeamSide
	Slot     int
	Phase    Phase
	Flavor   FlavorStats
	Cuisines CuisineSet
	Powerups []int
	Summoned bool

	Effects       []Effect
	CopiedEffects []Effect
	BonusEffects  []Effect

	// Deferred flavor mods are previewed while queued and folded into the
	// persistent deltas once the dish leaves the queue.
	Deferred FlavorStats

	// Pending combat mods are consumed by every recompute.
	PendingZing int
	PendingBody int

	PersistZing int
	PersistBody int
	PairingZing int
	PairingBody int

	Statuses   []StatusEffect
	NextDamage *DamageModifier
	Damage     int

	OnServeFired bool

	BaseZing    int
	BaseBody    int
	CurrentZing int
	CurrentBody int
}

// MaxLevel bounds dish levels; stats double per level above 1.
const MaxLevel = 10

func newDish(id int, info DishInfo, level int, side TeamSide, slot int) *Dish {
	d := &Dish{
		ID:       id,
		Type:     info.Key,
		Name:     info.Name,
		Level:    min(MaxLevel, max(1, level)),
		Side:     side,
		Slot:     slot,
		Phase:    PhaseInQueue,
		Flavor:   info.Flavor,
		Cuisines: info.Cuisines,
		Effects:  append([]Effect(nil), info.Effects...),
	}
	d.RecomputeStats()
	return d
}

// Active reports whether the dish is still in the battle.
func (d *Dish) Active() bool { return d.Phase != PhaseFinished }

func (d *Dish) levelMultiplier() int {
	if d.Level <= 1 {
		return 1
	}
	return 1 << (d.Level - 1)
}

// effectsFor returns a snapshot of every effect registered for hook: own
// effects first, then copied ones, then set-bonus grants.
func (d *Dish) effectsFor(hook TriggerHook) []Effect {
	var out []Effect
	for _, list := range [][]Effect{d.Effects, d.CopiedEffects, d.BonusEffects} {
		for _, e := range list {
			if e.Hook == hook {
				out = append(out, e)
			}
		}
	}
	return out
}

func (d *Dish) addStatus(st StatusEffect) bool {
	if len(d.Statuses) >= maxStatusEffects {
		return false
	}
	d.Statuses = append(d.Statuses, st)
	return true
}

// tickStatuses counts down timed statuses by one bite.
func (d *Dish) tickStatuses() {
	kept := d.Statuses[:0]
	for _, st := range d.Statuses {
		if st.Duration > 0 {
			st.Duration--
			if st.Duration == 0 {
				continue
			}
		}
		kept = append(kept, st)
	}
	d.Statuses = kept
}

// takeBite applies raw damage through the NextDamage modifier and returns
// what was actually taken.
func (d *Dish) takeBite(raw int) int {
	dmg := raw
	if d.NextDamage != nil && d.NextDamage.Remaining > 0 {
		dmg = raw * d.NextDamage.Multiplier
		d.NextDamage.Remaining--
		if d.NextDamage.Remaining == 0 {
			d.NextDamage = nil
		}
	}
	d.Damage += dmg
	return dmg
}
