package engine

import "testing"

func TestResolveTargets_FutureAlliesIncludesQueuedSource(t *testing.T) {
	s := newTestSession(t, 1, team("Plain", "Plain"), team("Plain"))
	src := s.Dishes(SidePlayer)[0]

	got := s.resolveTargets(src, ScopeFutureAllies)
	if len(got) != 2 || got[0] != src {
		t.Fatalf("expected both queued allies including the source, got %d", len(got))
	}

	src.Phase = PhaseInCombat
	got = s.resolveTargets(src, ScopeFutureAllies)
	if len(got) != 1 || got[0] == src {
		t.Fatalf("expected only the queued ally once the source is in combat, got %d", len(got))
	}
}

func TestResolveTargets_RandomAllyNeverPicksSelf(t *testing.T) {
	solo := newTestSession(t, 1, team("Plain"), team("Plain"))
	if got := solo.resolveTargets(solo.Dishes(SidePlayer)[0], ScopeRandomAlly); len(got) != 0 {
		t.Fatalf("expected no target on a solo team, got %d", len(got))
	}

	for seed := uint64(1); seed <= 20; seed++ {
		s := newTestSession(t, seed, team("Plain", "Crumb", "Twin"), team("Plain"))
		src := s.Dishes(SidePlayer)[1]
		got := s.resolveTargets(src, ScopeRandomAlly)
		if len(got) != 1 {
			t.Fatalf("seed %d: expected one target, got %d", seed, len(got))
		}
		if got[0] == src || got[0].Side != SidePlayer {
			t.Fatalf("seed %d: expected another player dish, got id %d", seed, got[0].ID)
		}
	}
}

func TestResolveTargets_Scopes(t *testing.T) {
	s := newTestSession(t, 1, team("Plain", "Crumb", "Twin"), team("Biter", "Tank"))
	mine, theirs := s.Dishes(SidePlayer), s.Dishes(SideOpponent)
	mid := mine[1]

	cases := []struct {
		scope TargetScope
		want  []*Dish
	}{
		{ScopeSelf, []*Dish{mid}},
		{ScopeOpponent, []*Dish{theirs[1]}},
		{ScopeAllAllies, []*Dish{mine[0], mine[2]}},
		{ScopeAllOpponents, []*Dish{theirs[0], theirs[1]}},
		{ScopeDishesAfterSelf, []*Dish{mine[2]}},
		{ScopeFutureOpponents, []*Dish{theirs[0], theirs[1]}},
		{ScopePrevious, []*Dish{mine[0]}},
		{ScopeNext, []*Dish{mine[2]}},
		{ScopeSelfAndAdjacent, []*Dish{mine[0], mid, mine[2]}},
	}
	for _, tc := range cases {
		t.Run(tc.scope.String(), func(t *testing.T) {
			got := s.resolveTargets(mid, tc.scope)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d targets, got %d", len(tc.want), len(got))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("position %d: expected id %d, got %d", i, tc.want[i].ID, got[i].ID)
				}
			}
		})
	}
}
