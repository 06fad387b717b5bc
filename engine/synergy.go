package engine

// SynergyThresholds are the cuisine counts that unlock set bonuses.
var SynergyThresholds = []int{2, 4, 6}

// SetBonus is the grant for reaching one cuisine threshold. Only AllAllies
// and AllOpponents scopes are honored.
type SetBonus struct {
	Zing    int
	Body    int
	Scope   TargetScope
	Effects []Effect
}

type bonusKey struct {
	side      TeamSide
	cuisine   Cuisine
	threshold int
}

type synergyState struct {
	calculated bool
	counts     [2][numCuisines]int
	applied    map[bonusKey]bool
}

func newSynergyState() synergyState {
	return synergyState{applied: make(map[bonusKey]bool)}
}

func allies(zing, body int) SetBonus {
	return SetBonus{Zing: zing, Body: body, Scope: ScopeAllAllies}
}

func opponents(zing, body int) SetBonus {
	return SetBonus{Zing: zing, Body: body, Scope: ScopeAllOpponents}
}

func biteBodyBonus(amount int) []Effect {
	return []Effect{{Hook: HookOnBiteTaken, Operation: OpAddCombatBody, Scope: ScopeSelf, Amount: amount}}
}

// SetBonusFor returns the bonus a cuisine grants at a threshold.
func SetBonusFor(c Cuisine, threshold int) (SetBonus, bool) {
	idx := -1
	for i, t := range SynergyThresholds {
		if t == threshold {
			idx = i
		}
	}
	if idx < 0 {
		return SetBonus{}, false
	}

	switch c {
	case CuisineThai, CuisineChinese, CuisineVietnamese:
		return allies(idx+1, 0), true
	case CuisineItalian:
		return [...]SetBonus{allies(0, 1), allies(1, 1), allies(2, 2)}[idx], true
	case CuisineJapanese, CuisineKorean:
		return [...]SetBonus{allies(1, 0), allies(1, 1), allies(2, 2)}[idx], true
	case CuisineMexican:
		return opponents(-(idx + 1), 0), true
	case CuisineFrench:
		return allies(0, idx+1), true
	case CuisineAmerican:
		b := allies(0, idx+1)
		if idx > 0 {
			b.Effects = biteBodyBonus(idx)
		}
		return b, true
	case CuisineIndian:
		return [...]SetBonus{allies(1, 0), opponents(-1, 0), opponents(-2, 0)}[idx], true
	}
	return SetBonus{}, false
}

// CountSynergies tallies queued and entering dishes per cuisine for both
// teams. It runs once per battle; later calls are no-ops until
// ResetSynergyCounting.
func (s *Session) CountSynergies() {
	if s.synergy.calculated {
		return
	}
	s.synergy.counts = [2][numCuisines]int{}
	for _, d := range s.dishes {
		if d.Phase != PhaseInQueue && d.Phase != PhaseEntering {
			continue
		}
		for _, c := range d.Cuisines.Members() {
			s.synergy.counts[d.Side][c]++
		}
	}
	s.synergy.calculated = true
}

// ResetSynergyCounting clears the counted flag. Bonuses already granted stay
// recorded.
func (s *Session) ResetSynergyCounting() {
	s.synergy.calculated = false
}

// SynergyCount reports the counted number of dishes of a cuisine on a side.
func (s *Session) SynergyCount(side TeamSide, c Cuisine) int {
	if c < 0 || c >= numCuisines {
		return 0
	}
	return s.synergy.counts[side][c]
}

// ApplySetBonuses grants every reached (cuisine, threshold) bonus that was
// not granted before in this battle, as persistent modifiers.
func (s *Session) ApplySetBonuses() {
	for _, side := range []TeamSide{SidePlayer, SideOpponent} {
		for _, c := range AllCuisines() {
			count := s.synergy.counts[side][c]
			for _, threshold := range SynergyThresholds {
				key := bonusKey{side: side, cuisine: c, threshold: threshold}
				if count < threshold || s.synergy.applied[key] {
					continue
				}
				bonus, ok := SetBonusFor(c, threshold)
				if !ok {
					continue
				}
				s.grantBonus(side, bonus)
				s.synergy.applied[key] = true
				s.logf("[Synergy] %s %s %d-piece applied", side, c, threshold)
			}
		}
	}
}

func (s *Session) grantBonus(side TeamSide, bonus SetBonus) {
	var targets []*Dish
	switch bonus.Scope {
	case ScopeAllAllies:
		targets = s.candidates(func(d *Dish) bool { return d.Side == side })
	case ScopeAllOpponents:
		targets = s.candidates(func(d *Dish) bool { return d.Side != side })
	default:
		s.logf("[Synergy] unsupported set bonus scope %s", bonus.Scope)
		return
	}
	for _, d := range targets {
		d.PersistZing += bonus.Zing
		d.PersistBody += bonus.Body
		d.BonusEffects = append(d.BonusEffects, bonus.Effects...)
	}
}
