package engine

import "fmt"

// TeamSide identifies which team a dish fights for.
type TeamSide int

const (
	SidePlayer TeamSide = iota
	SideOpponent
)

func (s TeamSide) String() string {
	switch s {
	case SidePlayer:
		return "Player"
	case SideOpponent:
		return "Opponent"
	}
	return fmt.Sprintf("TeamSide(%d)", int(s))
}

// Other returns the opposing side.
func (s TeamSide) Other() TeamSide {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

// Phase is the per-dish course state.
type Phase int

const (
	PhaseInQueue Phase = iota
	PhaseEntering
	PhaseInCombat
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseInQueue:
		return "InQueue"
	case PhaseEntering:
		return "Entering"
	case PhaseInCombat:
		return "InCombat"
	case PhaseFinished:
		return "Finished"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// TriggerHook is a point in the battle lifecycle that effects react to.
type TriggerHook int

const (
	HookOnStartBattle TriggerHook = iota
	HookOnServe
	HookOnCourseStart
	HookOnBiteTaken
	HookOnDishFinished
	HookOnCourseComplete
)

var hookNames = map[TriggerHook]string{
	HookOnStartBattle:    "OnStartBattle",
	HookOnServe:          "OnServe",
	HookOnCourseStart:    "OnCourseStart",
	HookOnBiteTaken:      "OnBiteTaken",
	HookOnDishFinished:   "OnDishFinished",
	HookOnCourseComplete: "OnCourseComplete",
}

func (h TriggerHook) String() string {
	if name, ok := hookNames[h]; ok {
		return name
	}
	return fmt.Sprintf("TriggerHook(%d)", int(h))
}

// EffectOperation is the mutation an effect applies to its targets.
type EffectOperation int

const (
	OpAddFlavorStat EffectOperation = iota
	OpAddCombatZing
	OpAddCombatBody
	OpSwapStats
	OpMultiplyDamage
	OpPreventAllDamage
	OpCopyEffect
	OpSummonDish
	OpApplyStatus
)

var operationNames = map[EffectOperation]string{
	OpAddFlavorStat:    "AddFlavorStat",
	OpAddCombatZing:    "AddCombatZing",
	OpAddCombatBody:    "AddCombatBody",
	OpSwapStats:        "SwapStats",
	OpMultiplyDamage:   "MultiplyDamage",
	OpPreventAllDamage: "PreventAllDamage",
	OpCopyEffect:       "CopyEffect",
	OpSummonDish:       "SummonDish",
	OpApplyStatus:      "ApplyStatus",
}

func (o EffectOperation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("EffectOperation(%d)", int(o))
}

// TargetScope selects which dishes an effect lands on.
type TargetScope int

const (
	ScopeSelf TargetScope = iota
	ScopeOpponent
	ScopeAllAllies
	ScopeAllOpponents
	ScopeDishesAfterSelf
	ScopeFutureAllies
	ScopeFutureOpponents
	ScopePrevious
	ScopeNext
	ScopeSelfAndAdjacent
	ScopeRandomAlly
	ScopeRandomOpponent
	ScopeRandomDish
	ScopeRandomOtherAlly
)

var scopeNames = map[TargetScope]string{
	ScopeSelf:            "Self",
	ScopeOpponent:        "Opponent",
	ScopeAllAllies:       "AllAllies",
	ScopeAllOpponents:    "AllOpponents",
	ScopeDishesAfterSelf: "DishesAfterSelf",
	ScopeFutureAllies:    "FutureAllies",
	ScopeFutureOpponents: "FutureOpponents",
	ScopePrevious:        "Previous",
	ScopeNext:            "Next",
	ScopeSelfAndAdjacent: "SelfAndAdjacent",
	ScopeRandomAlly:      "RandomAlly",
	ScopeRandomOpponent:  "RandomOpponent",
	ScopeRandomDish:      "RandomDish",
	ScopeRandomOtherAlly: "RandomOtherAlly",
}

func (s TargetScope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("TargetScope(%d)", int(s))
}

// FlavorStat names one of the seven flavor axes.
type FlavorStat int

const (
	StatSatiety FlavorStat = iota
	StatSweetness
	StatSpice
	StatAcidity
	StatUmami
	StatRichness
	StatFreshness
)

var flavorStatNames = map[FlavorStat]string{
	StatSatiety:   "Satiety",
	StatSweetness: "Sweetness",
	StatSpice:     "Spice",
	StatAcidity:   "Acidity",
	StatUmami:     "Umami",
	StatRichness:  "Richness",
	StatFreshness: "Freshness",
}

func (f FlavorStat) String() string {
	if name, ok := flavorStatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FlavorStat(%d)", int(f))
}

// lookupName is the reverse of the name tables above, used by the catalog
// decoder.
func lookupName[T comparable](names map[T]string, s string) (T, bool) {
	for k, v := range names {
		if v == s {
			return k, true
		}
	}
	var zero T
	return zero, false
}

// FlavorStats holds the seven flavor axes of a dish.
type FlavorStats struct {
	Satiety   int `yaml:"satiety" json:"satiety"`
	Sweetness int `yaml:"sweetness" json:"sweetness"`
	Spice     int `yaml:"spice" json:"spice"`
	Acidity   int `yaml:"acidity" json:"acidity"`
	Umami     int `yaml:"umami" json:"umami"`
	Richness  int `yaml:"richness" json:"richness"`
	Freshness int `yaml:"freshness" json:"freshness"`
}

// Zing is the offensive stat: spice + acidity + umami.
func (f FlavorStats) Zing() int { return f.Spice + f.Acidity + f.Umami }

// Body is the defensive stat: satiety + richness + sweetness + freshness.
func (f FlavorStats) Body() int { return f.Satiety + f.Richness + f.Sweetness + f.Freshness }

func (f FlavorStats) Get(stat FlavorStat) int {
	switch stat {
	case StatSatiety:
		return f.Satiety
	case StatSweetness:
		return f.Sweetness
	case StatSpice:
		return f.Spice
	case StatAcidity:
		return f.Acidity
	case StatUmami:
		return f.Umami
	case StatRichness:
		return f.Richness
	case StatFreshness:
		return f.Freshness
	}
	return 0
}

func (f *FlavorStats) Add(stat FlavorStat, amount int) {
	switch stat {
	case StatSatiety:
		f.Satiety += amount
	case StatSweetness:
		f.Sweetness += amount
	case StatSpice:
		f.Spice += amount
	case StatAcidity:
		f.Acidity += amount
	case StatUmami:
		f.Umami += amount
	case StatRichness:
		f.Richness += amount
	case StatFreshness:
		f.Freshness += amount
	}
}

// Plus returns the axis-wise sum of f and o.
func (f FlavorStats) Plus(o FlavorStats) FlavorStats {
	return FlavorStats{
		Satiety:   f.Satiety + o.Satiety,
		Sweetness: f.Sweetness + o.Sweetness,
		Spice:     f.Spice + o.Spice,
		Acidity:   f.Acidity + o.Acidity,
		Umami:     f.Umami + o.Umami,
		Richness:  f.Richness + o.Richness,
		Freshness: f.Freshness + o.Freshness,
	}
}

func (f FlavorStats) IsZero() bool { return f == FlavorStats{} }
