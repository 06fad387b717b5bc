package engine

import "testing"

func setup(t *testing.T, player, opponent []TeamEntry) *Session {
	t.Helper()
	s := newTestSession(t, 42, player, opponent)
	s.Step()
	return s
}

func TestEffect_AllAlliesSkipsSelf(t *testing.T) {
	s := setup(t, team("Plain", "Rallier", "Crumb"), team("Plain"))
	got := []int{}
	for _, d := range s.Dishes(SidePlayer) {
		got = append(got, d.CurrentZing)
	}
	want := []int{2, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected zings %v, got %v", want, got)
		}
	}
	if z := s.Dishes(SideOpponent)[0].CurrentZing; z != 1 {
		t.Fatalf("expected opponent unbuffed, got %d", z)
	}
}

func TestEffect_EmptyTargetSetIsSkipped(t *testing.T) {
	s := setup(t, team("Lonely"), team("Plain"))
	d := s.Dishes(SidePlayer)[0]
	if d.CurrentBody != 3 || d.PersistBody != 0 {
		t.Fatalf("expected lonely dish untouched, got body %d persist %d", d.CurrentBody, d.PersistBody)
	}
}

func TestEffect_CopyEffectFromPrevious(t *testing.T) {
	s := setup(t, team("Rallier", "Mimic", "Plain"), team("Plain"))
	ds := s.Dishes(SidePlayer)
	rallier, mimic, plain := ds[0], ds[1], ds[2]

	if len(mimic.CopiedEffects) != 1 || !mimic.CopiedEffects[0].Copied {
		t.Fatalf("expected one copied effect, got %+v", mimic.CopiedEffects)
	}
	if len(mimic.Effects) != 1 || mimic.Effects[0].Operation != OpCopyEffect {
		t.Fatalf("expected own effects unchanged, got %+v", mimic.Effects)
	}
	// Both the rallier and the mimic buff their allies on serve.
	if rallier.CurrentZing != 2 || mimic.CurrentZing != 2 || plain.CurrentZing != 3 {
		t.Fatalf("expected 2/2/3, got %d/%d/%d", rallier.CurrentZing, mimic.CurrentZing, plain.CurrentZing)
	}
}

func TestEffect_CopyWithoutTargetDoesNothing(t *testing.T) {
	s := setup(t, team("Mimic"), team("Plain"))
	if n := len(s.Dishes(SidePlayer)[0].CopiedEffects); n != 0 {
		t.Fatalf("expected nothing copied, got %d", n)
	}
}

func TestEffect_FlavorStatPreviewedWhileQueued(t *testing.T) {
	s := setup(t, team("Seasoner", "Plain"), team("Plain"))
	next := s.Dishes(SidePlayer)[1]
	if next.Phase != PhaseInQueue {
		t.Fatalf("expected next dish still queued, got %s", next.Phase)
	}
	if next.Deferred.Spice != 2 || next.CurrentZing != 3 {
		t.Fatalf("expected deferred spice 2 previewed as zing 3, got deferred %d zing %d", next.Deferred.Spice, next.CurrentZing)
	}
}

func TestEffect_ConditionalOnAdjacentStat(t *testing.T) {
	cases := []struct {
		name     string
		neighbor string
		zing     int
	}{
		{"umami neighbor", "Savory", 4},
		{"plain neighbor", "Plain", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := setup(t, team(tc.neighbor, "Picky"), team("Plain"))
			if z := s.Dishes(SidePlayer)[1].CurrentZing; z != tc.zing {
				t.Fatalf("expected zing %d, got %d", tc.zing, z)
			}
		})
	}
}

func TestEffect_PreventAllDamage(t *testing.T) {
	s := newTestSession(t, 1, team("Shield"), team("Biter"))
	s.Step()
	nd := s.Dishes(SidePlayer)[0].NextDamage
	if nd == nil || nd.Multiplier != 0 || nd.Remaining != 2 {
		t.Fatalf("expected two prevented bites queued, got %+v", nd)
	}
	runToEnd(t, s)

	var taken []int
	for _, ev := range s.Events() {
		if ev.Hook == HookOnBiteTaken && ev.Side == SidePlayer {
			taken = append(taken, ev.PayloadInt)
		}
	}
	want := []int{0, 0, 5}
	if len(taken) != len(want) {
		t.Fatalf("expected bites %v, got %v", want, taken)
	}
	for i := range want {
		if taken[i] != want[i] {
			t.Fatalf("expected bites %v, got %v", want, taken)
		}
	}
}

func TestEffect_SummonJoinsLowestFreeSlot(t *testing.T) {
	s := setup(t, team("Summoner"), team("Plain"))
	ds := s.Dishes(SidePlayer)
	if len(ds) != 2 {
		t.Fatalf("expected summoned dish, got %d dishes", len(ds))
	}
	sum := ds[1]
	if sum.Slot != 1 || !sum.Summoned || !sum.OnServeFired || sum.Level != 1 {
		t.Fatalf("unexpected summoned dish %+v", sum)
	}
	if sum.Type != "plain" || sum.Phase != PhaseInQueue {
		t.Fatalf("expected queued plain, got %s %s", sum.Type, sum.Phase)
	}
}

func TestEffect_SummonSkippedWhenTeamFull(t *testing.T) {
	s := setup(t, team("Summoner", "Summoner", "Summoner", "Summoner", "Summoner", "Summoner"), team("Plain"))
	if n := s.activeCount(SidePlayer); n != TeamSlots {
		t.Fatalf("expected team capped at %d, got %d", TeamSlots, n)
	}
}

func TestEffect_RandomTargetIsSeedDeterministic(t *testing.T) {
	pick := func(seed uint64) int {
		s := newTestSession(t, seed, team("Gambler"), team("Plain", "Plain", "Plain"))
		s.Step()
		hit := -1
		for _, d := range s.Dishes(SideOpponent) {
			if d.PersistBody == -1 {
				if hit >= 0 {
					t.Fatalf("expected exactly one random target")
				}
				hit = d.ID
			}
		}
		if hit < 0 {
			t.Fatalf("expected a random target to be hit")
		}
		return hit
	}
	for seed := uint64(1); seed <= 5; seed++ {
		if a, b := pick(seed), pick(seed); a != b {
			t.Fatalf("seed %d: expected same target, got %d and %d", seed, a, b)
		}
	}
}

func TestEffect_ApplyStatusOnOpponent(t *testing.T) {
	s := setup(t, team("Hexer"), team("Biter"))
	b := s.Dishes(SideOpponent)[0]
	if len(b.Statuses) != 1 {
		t.Fatalf("expected one status, got %d", len(b.Statuses))
	}
	if b.CurrentZing != 4 || b.CurrentBody != 12 {
		t.Fatalf("expected 4/12 under status, got %d/%d", b.CurrentZing, b.CurrentBody)
	}
}

func TestEffect_FinishedSourceOnlyFiresFinishHook(t *testing.T) {
	s := newTestSession(t, 1, team("Rallier", "Plain"), team("Plain"))
	r := s.Dishes(SidePlayer)[0]
	r.Phase = PhaseFinished
	s.emit(HookOnServe, r, 0)
	s.resolveTriggers()
	s.recomputeAll()
	if z := s.Dishes(SidePlayer)[0].CurrentZing; z != 1 {
		t.Fatalf("expected finished rallier not to buff, got ally zing %d", z)
	}
}

func TestEffect_BiteReactionFiresWhenTheBiteFinishesTheDish(t *testing.T) {
	s := newTestSession(t, 1, team("Martyr", "Plain"), team("Biter"))
	for len(s.Result().Courses) == 0 {
		s.Step()
	}
	ds := s.Dishes(SidePlayer)
	if ds[0].Phase != PhaseFinished {
		t.Fatalf("expected martyr finished, got %s", ds[0].Phase)
	}
	if ds[1].CurrentZing != 2 {
		t.Fatalf("expected the queued ally buffed to 2 by the fatal bite, got %d", ds[1].CurrentZing)
	}
}
