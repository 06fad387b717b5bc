package engine

// Effect is one data-driven ability entry of a dish.
type Effect struct {
	Hook      TriggerHook
	Operation EffectOperation
	Scope     TargetScope
	Amount    int
	Stat      FlavorStat

	// Conditional effects only fire when an adjacent queued ally has a
	// positive AdjacentStat.
	Conditional  bool
	AdjacentStat FlavorStat

	SummonType string
	StatusBody int
	Duration   int

	// Copied marks entries duplicated by a CopyEffect.
	Copied bool
}

// DamageModifier scales the damage its holder takes for a limited number of
// bites. Multiplier 0 prevents all damage.
type DamageModifier struct {
	Multiplier int
	Remaining  int
}

// StatusEffect is a timed stat delta. Duration counts remaining bites; 0 is
// permanent.
type StatusEffect struct {
	ZingDelta int
	BodyDelta int
	Duration  int
}

const maxStatusEffects = 8
