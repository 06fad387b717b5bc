package engine

const maxPairingBonus = 3

// dominantStat picks the strongest taste axis of f. Sweetness wins a tie with
// nothing; the rest only take over on a strictly higher value, in order.
func dominantStat(f FlavorStats) FlavorStat {
	best, value := StatSweetness, f.Sweetness
	for _, stat := range []FlavorStat{StatSpice, StatUmami, StatRichness, StatFreshness, StatAcidity} {
		if v := f.Get(stat); v > value {
			best, value = stat, v
		}
	}
	return best
}

// pairingDeltas returns the body bonus for flavor variety and the zing
// penalty for repeated dish types across a lineup.
func pairingDeltas(lineup []*Dish) (zing, body int) {
	if len(lineup) < 2 {
		return 0, 0
	}
	stats := map[FlavorStat]bool{}
	types := map[string]int{}
	for _, d := range lineup {
		stats[dominantStat(d.Flavor)] = true
		types[d.Type]++
	}
	dupes := 0
	for _, n := range types {
		dupes += n - 1
	}
	return -min(dupes, maxPairingBonus), min(len(stats)-1, maxPairingBonus)
}

// applyPairings sets the pairing modifiers of every queued dish from its
// own team's queued lineup. Assigning rather than adding keeps it
// idempotent.
func (s *Session) applyPairings() {
	for _, side := range []TeamSide{SidePlayer, SideOpponent} {
		lineup := s.candidates(func(d *Dish) bool { return d.Side == side && d.Phase == PhaseInQueue })
		zing, body := pairingDeltas(lineup)
		for _, d := range lineup {
			d.PairingZing, d.PairingBody = zing, body
		}
		if zing != 0 || body != 0 {
			s.logf("[Pairing] %s: %d dishes, zing %+d body %+d", side, len(lineup), zing, body)
		}
	}
}
