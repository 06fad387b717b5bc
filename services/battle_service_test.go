package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dish-battle-server/config"
	"dish-battle-server/engine"
	"dish-battle-server/models"
	"dish-battle-server/utils"

	"github.com/gofiber/fiber/v2"
)

type serviceFixture struct {
	app   *fiber.App
	svc   *BattleService
	store *memStore
	cfg   config.Config
}

func newServiceFixture(t *testing.T, maxIter int) *serviceFixture {
	t.Helper()
	cfg := config.Config{
		BasePath:           t.TempDir(),
		TimeoutSeconds:     5,
		ErrorDetailLevel:   "warn",
		MaxRequestBodySize: 512,
		MaxTeamSize:        7,
	}
	store := newMemStore()
	runner, queue := newTestRunner(t, store, maxIter)
	runner.Paths = RunnerPaths{
		Results:         cfg.ResultsPath(),
		Temp:            cfg.TempPath(),
		Debug:           cfg.DebugPath(),
		ResultRetention: 10,
		TempRetention:   50,
	}
	for _, dir := range []string{cfg.OpponentsPath(), cfg.TempPath(), cfg.ResultsPath()} {
		if err := utils.EnsureDir(dir); err != nil {
			t.Fatal(err)
		}
	}
	opponents := OpponentDir{Dir: cfg.OpponentsPath(), Files: runner.Files}
	svc := NewBattleService(cfg, runner.Simulator.Catalog, queue, runner, store, opponents, runner.Matchmaker)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-queue.Wake():
				runner.RunPending(ctx)
			}
		}
	}()

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", c.Get("X-User-ID"))
		return c.Next()
	})
	app.Get("/health", svc.Health)
	app.Post("/battle", svc.RunBattle)
	app.Get("/battles/:id", svc.GetBattle)
	app.Post("/matchmaking/teams", svc.AddTeam)
	app.Post("/matchmaking/match", svc.RequestMatch)
	return &serviceFixture{app: app, svc: svc, store: store, cfg: cfg}
}

func (f *serviceFixture) writeOpponent(t *testing.T, id string, types ...string) {
	t.Helper()
	path := filepath.Join(f.cfg.OpponentsPath(), id+".json")
	if err := f.svc.Opponents.Files.SaveJSON(path, OpponentFile{Team: team(types...)}); err != nil {
		t.Fatal(err)
	}
}

func (f *serviceFixture) do(t *testing.T, method, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.app.Test(req, 10000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func TestRunBattle_Validation(t *testing.T) {
	f := newServiceFixture(t, 10000)
	f.writeOpponent(t, "opp", "Plain")

	cases := []struct {
		name string
		body string
		want int
		msg  string
	}{
		{"empty", "", http.StatusBadRequest, "Request body is empty"},
		{"too large", `{"team":[` + strings.Repeat(" ", 600) + `]}`, http.StatusRequestEntityTooLarge, "Request body too large"},
		{"bad json", `{"team":`, http.StatusBadRequest, "Invalid JSON"},
		{"bad team", `{"team":[{"slot":0}]}`, http.StatusBadRequest, "Invalid team JSON format"},
		{"unknown dish", `{"team":[{"slot":0,"dishType":"Lasagna"}]}`, http.StatusBadRequest, "Invalid team JSON format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := f.do(t, "POST", "/battle", tc.body)
			if status != tc.want || body["error"] != tc.msg {
				t.Fatalf("expected %d %q, got %d %v", tc.want, tc.msg, status, body)
			}
			if _, ok := body["details"]; ok {
				t.Fatalf("details must be hidden at warn level: %v", body)
			}
		})
	}
}

func TestRunBattle_NoOpponents(t *testing.T) {
	f := newServiceFixture(t, 10000)
	status, body := f.do(t, "POST", "/battle", `{"team":[{"slot":0,"dishType":"Biter"}]}`)
	if status != http.StatusInternalServerError || body["error"] != "Internal server error" {
		t.Fatalf("expected collapsed 500, got %d %v", status, body)
	}

	f.svc.Config.ErrorDetailLevel = "info"
	status, body = f.do(t, "POST", "/battle", `{"team":[{"slot":0,"dishType":"Biter"}]}`)
	if status != http.StatusInternalServerError || body["error"] != "No opponents available" || body["details"] == nil {
		t.Fatalf("expected detailed 500, got %d %v", status, body)
	}
}

func TestRunBattle_Success(t *testing.T) {
	f := newServiceFixture(t, 10000)
	f.writeOpponent(t, "spicy_team", "Plain")

	status, body := f.do(t, "POST", "/battle", `{"team":[{"slot":0,"dishType":"Biter"}],"debug":true}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}
	if body["outcome"] != "Player" || body["opponentId"] != "spicy_team" || body["seed"] != float64(42) {
		t.Fatalf("unexpected report %v", body)
	}
	if _, ok := body["snapshots"]; !ok {
		t.Fatalf("debug report should carry snapshots: %v", body)
	}
	results, _ := utils.ListFiles(f.cfg.ResultsPath(), ".json")
	if len(results) != 1 {
		t.Fatalf("expected one result file, got %v", results)
	}
}

func TestRunBattle_Timeout(t *testing.T) {
	f := newServiceFixture(t, 10)
	f.writeOpponent(t, "wall", "Wall")

	status, body := f.do(t, "POST", "/battle", `{"team":[{"slot":0,"dishType":"Wall"}]}`)
	if status != http.StatusRequestTimeout || body["error"] != TimeoutMessage {
		t.Fatalf("expected 408 timeout, got %d %v", status, body)
	}
	dumps, _ := utils.ListFiles(f.cfg.DebugPath(), ".json")
	if len(dumps) != 1 {
		t.Fatalf("expected a debug dump, got %v", dumps)
	}
}

func TestHealth(t *testing.T) {
	f := newServiceFixture(t, 10000)
	status, body := f.do(t, "GET", "/health", "")
	if status != http.StatusOK || body["status"] != "degraded" || body["opponent_count"] != float64(0) {
		t.Fatalf("expected degraded health, got %d %v", status, body)
	}

	f.writeOpponent(t, "opp", "Plain")
	_, body = f.do(t, "GET", "/health", "")
	if body["status"] != "ok" || body["opponent_count"] != float64(1) {
		t.Fatalf("expected ok health, got %v", body)
	}
	if _, ok := body["issues"]; ok {
		t.Fatalf("healthy response must not list issues: %v", body)
	}
}

func TestGetBattle(t *testing.T) {
	f := newServiceFixture(t, 10000)
	status, _ := f.do(t, "GET", "/battles/missing", "")
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}

	_ = f.store.CreateBattle(&models.BattleRecord{ID: "b1", Status: models.BattleComplete, Result: `{"outcome":"Tie"}`})
	status, body := f.do(t, "GET", "/battles/b1", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	result, _ := body["result"].(map[string]any)
	if result["outcome"] != "Tie" {
		t.Fatalf("expected embedded result, got %v", body)
	}
}

func TestMatchmakingEndpoints(t *testing.T) {
	f := newServiceFixture(t, 10000)

	status, body := f.do(t, "POST", "/matchmaking/teams",
		`{"teamId":"theirs","round":1,"shopTier":1,"team":[{"slot":0,"dishType":"Plain"}]}`, "X-User-ID", "u2")
	if status != http.StatusAccepted || body["team_id"] != "theirs" {
		t.Fatalf("expected 202 for add team, got %d %v", status, body)
	}

	status, body = f.do(t, "POST", "/matchmaking/match",
		`{"round":0,"shopTier":1,"team":[{"slot":0,"dishType":"Biter"}]}`, "X-User-ID", "u1")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for round 0, got %d %v", status, body)
	}

	status, body = f.do(t, "POST", "/matchmaking/match",
		`{"round":1,"shopTier":1,"team":[{"slot":0,"dishType":"Biter"}]}`, "X-User-ID", "u1")
	if status != http.StatusAccepted || body["status"] != string(models.BattleQueued) {
		t.Fatalf("expected 202 for match, got %d %v", status, body)
	}
	id, _ := body["battle_id"].(string)
	if id == "" {
		t.Fatalf("expected a battle id, got %v", body)
	}

	// The worker goroutine finishes the match in the background.
	var rec models.BattleRecord
	for i := 0; i < 200; i++ {
		rec, _ = f.store.GetBattle(id)
		if rec.Status.Terminal() {
			break
		}
		waitABit()
	}
	if rec.Status != models.BattleComplete || rec.OpponentID != "theirs" || rec.PlayerUserID != "u1" {
		t.Fatalf("expected completed match against theirs, got %+v", rec)
	}
}

func TestOpponentDir_PickSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	files := utils.FileStore{Retries: 1}
	if err := os.WriteFile(filepath.Join(dir, "a_broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := files.SaveJSON(filepath.Join(dir, "b_good.json"), OpponentFile{Team: []engine.TeamEntry{{Slot: 0, DishType: "Plain", Level: 1}}}); err != nil {
		t.Fatal(err)
	}
	opps := OpponentDir{Dir: dir, Files: files}
	if opps.Count() != 2 {
		t.Fatalf("expected 2 files, got %d", opps.Count())
	}
	got, err := opps.Pick(func(int) int { return 0 })
	if err != nil || got.ID != "b_good" {
		t.Fatalf("expected fallback to b_good, got %+v (%v)", got, err)
	}
}

func waitABit() { time.Sleep(10 * time.Millisecond) }
