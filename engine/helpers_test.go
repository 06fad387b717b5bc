package engine

import "testing"

const testCatalogYAML = `
dishes:
  - key: Plain
    flavor: { spice: 1, satiety: 3 }
  - key: Biter
    flavor: { spice: 5, satiety: 10 }
  - key: Tank
    flavor: { spice: 3, satiety: 15 }
  - key: Twin
    flavor: { spice: 2, satiety: 4 }
  - key: Crumb
    flavor: { spice: 1, satiety: 1 }
  - key: Wall
    flavor: { spice: 10, satiety: 100 }
  - key: Hydra
    flavor: { spice: 1, satiety: 1 }
    effects:
      - { hook: OnDishFinished, op: SummonDish, scope: Self, summon: Hydra }
  - key: Rallier
    flavor: { spice: 1, satiety: 3 }
    effects:
      - { hook: OnServe, op: AddCombatZing, scope: AllAllies, amount: 1 }
  - key: Lonely
    flavor: { spice: 1, satiety: 3 }
    effects:
      - { hook: OnServe, op: AddCombatBody, scope: RandomOtherAlly, amount: 2 }
  - key: Mimic
    flavor: { spice: 1, satiety: 3 }
    effects:
      - { hook: OnStartBattle, op: CopyEffect, scope: Previous }
  - key: Seasoner
    flavor: { spice: 1, satiety: 3 }
    effects:
      - { hook: OnServe, op: AddFlavorStat, scope: Next, stat: Spice, amount: 2 }
  - key: Picky
    flavor: { spice: 1, satiety: 3 }
    effects:
      - { hook: OnServe, op: AddCombatZing, scope: Self, amount: 3, if_adjacent_has: Umami }
  - key: Savory
    flavor: { umami: 1, satiety: 3 }
  - key: Sweet
    flavor: { sweetness: 2, satiety: 2 }
  - key: Sour
    flavor: { acidity: 2, satiety: 2 }
  - key: Fresh
    flavor: { freshness: 2, satiety: 2 }
  - key: Rich
    flavor: { richness: 2, satiety: 2 }
  - key: Martyr
    flavor: { spice: 1, satiety: 1 }
    effects:
      - { hook: OnBiteTaken, op: AddCombatZing, scope: FutureAllies, amount: 1 }
  - key: Shield
    flavor: { spice: 1, satiety: 3 }
    effects:
      - { hook: OnServe, op: PreventAllDamage, scope: Self, amount: 2 }
  - key: Summoner
    flavor: { spice: 1, satiety: 3 }
    effects:
      - { hook: OnServe, op: SummonDish, scope: Self, summon: Plain }
  - key: Gambler
    flavor: { spice: 1, satiety: 3 }
    effects:
      - { hook: OnServe, op: AddCombatBody, scope: RandomOpponent, amount: -1 }
  - key: Swapper
    flavor: { spice: 1, satiety: 5 }
    effects:
      - { hook: OnServe, op: SwapStats, scope: Self }
  - key: Hexer
    flavor: { spice: 1, satiety: 3 }
    effects:
      - { hook: OnServe, op: ApplyStatus, scope: Opponent, amount: -1, status_body: 2, duration: 1 }
  - key: Noodle
    cuisines: [Japanese]
    flavor: { umami: 1, satiety: 2 }
  - key: Pasta
    cuisines: [Italian]
    flavor: { umami: 1, satiety: 2 }
  - key: Taco
    cuisines: [Mexican]
    flavor: { spice: 1, satiety: 2 }
  - key: Diner
    cuisines: [American]
    flavor: { umami: 1, satiety: 2 }
`

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := LoadCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("load test catalog: %v", err)
	}
	return c
}

// team places the given dish types in slots 0..n-1.
func team(types ...string) []TeamEntry {
	out := make([]TeamEntry, len(types))
	for i, typ := range types {
		out[i] = TeamEntry{Slot: i, DishType: typ, Level: 1}
	}
	return out
}

func newTestSession(t *testing.T, seed uint64, player, opponent []TeamEntry) *Session {
	t.Helper()
	s, err := NewSession(Options{Seed: seed, Catalog: testCatalog(t), Player: player, Opponent: opponent})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func runToEnd(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Run(100000); err != nil {
		t.Fatalf("run: %v", err)
	}
}
