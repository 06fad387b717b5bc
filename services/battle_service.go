package services

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"dish-battle-server/config"
	"dish-battle-server/engine"
	"dish-battle-server/models"
	"dish-battle-server/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// waitSlack is added to the simulation timeout while a request waits for
// the consumer to pick up its battle.
const waitSlack = 5 * time.Second

// BattleService serves the battle and matchmaking endpoints.
type BattleService struct {
	Config     config.Config
	Catalog    *engine.Catalog
	Queue      *CommandQueue
	Runner     *BattleRunner
	Store      BattleStore
	Opponents  OpponentDir
	Matchmaker *Matchmaker
}

func NewBattleService(cfg config.Config, catalog *engine.Catalog, queue *CommandQueue, runner *BattleRunner, store BattleStore, opponents OpponentDir, mm *Matchmaker) *BattleService {
	return &BattleService{
		Config:     cfg,
		Catalog:    catalog,
		Queue:      queue,
		Runner:     runner,
		Store:      store,
		Opponents:  opponents,
		Matchmaker: mm,
	}
}

type battleRequest struct {
	Team         json.RawMessage `json:"team"`
	Debug        bool            `json:"debug"`
	PlayerTeamID string          `json:"playerTeamId"`
}

type poolRequest struct {
	TeamID   string          `json:"teamId"`
	Round    int             `json:"round"`
	ShopTier int             `json:"shopTier"`
	Team     json.RawMessage `json:"team"`
}

// fail writes the {error, details?} envelope. Details and 5xx messages are
// only exposed at the trace and info detail levels.
func (s *BattleService) fail(c *fiber.Ctx, status int, msg string, err error) error {
	verbose := s.Config.IncludeErrorDetails()
	if err != nil {
		log.Printf("[BattleService] %s %s -> %d %s: %v", c.Method(), c.Path(), status, msg, err)
	}
	body := fiber.Map{"error": msg}
	if status >= 500 && !verbose {
		body["error"] = "Internal server error"
	}
	if err != nil && verbose {
		body["details"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// decodeBody applies the body rules shared by every POST: size limit,
// non-empty, valid JSON.
func (s *BattleService) decodeBody(c *fiber.Ctx, v any) (int, string, error) {
	body := c.Body()
	if len(body) > s.Config.MaxRequestBodySize {
		return fiber.StatusRequestEntityTooLarge, "Request body too large", nil
	}
	if len(body) == 0 {
		return fiber.StatusBadRequest, "Request body is empty", nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fiber.StatusBadRequest, "Invalid JSON", err
	}
	return 0, "", nil
}

// RunBattle validates a team, picks an opponent file and runs the battle
// synchronously on the battle worker.
func (s *BattleService) RunBattle(c *fiber.Ctx) error {
	var req battleRequest
	if status, msg, err := s.decodeBody(c, &req); status != 0 {
		return s.fail(c, status, msg, err)
	}
	player, err := ParseTeam(req.Team, s.Config.MaxTeamSize, s.Catalog)
	if err != nil {
		return s.fail(c, fiber.StatusBadRequest, "Invalid team JSON format", err)
	}

	opp, err := s.Opponents.Pick(s.Matchmaker.PickIndex)
	if err != nil {
		if errors.Is(err, ErrNoOpponents) {
			return s.fail(c, fiber.StatusInternalServerError, "No opponents available", err)
		}
		return s.fail(c, fiber.StatusInternalServerError, "Failed to load opponent team", err)
	}

	rec := models.BattleRecord{
		ID:           uuid.NewString(),
		PlayerTeamID: req.PlayerTeamID,
		PlayerUserID: userID(c),
		OpponentID:   opp.ID,
		Status:       models.BattleQueued,
		Round:        opp.File.Round,
		ShopTier:     opp.File.ShopTier,
	}
	if err := s.Store.CreateBattle(&rec); err != nil {
		return s.fail(c, fiber.StatusInternalServerError, "Failed to create battle", err)
	}

	done := s.Runner.Await(rec.ID)
	s.Queue.EnqueueSessionRequest(BattleSessionRequestCmd{
		BattleID:     rec.ID,
		PlayerTeam:   player,
		OpponentTeam: opp.File.Team,
		OpponentID:   opp.ID,
		Debug:        req.Debug || s.Config.Debug,
	})

	timer := time.NewTimer(s.Config.Timeout() + waitSlack)
	defer timer.Stop()
	select {
	case out := <-done:
		if errors.Is(out.Err, ErrSimulationTimeout) {
			return s.fail(c, fiber.StatusRequestTimeout, TimeoutMessage, out.Err)
		}
		if out.Err != nil || out.Report == nil {
			return s.fail(c, fiber.StatusInternalServerError, out.Record.Error, out.Err)
		}
		return c.JSON(out.Report)
	case <-timer.C:
		s.Runner.Forget(rec.ID)
		return s.fail(c, fiber.StatusRequestTimeout, TimeoutMessage, errors.New("battle worker did not answer in time"))
	}
}

// Health reports opponent availability and writable output directories.
func (s *BattleService) Health(c *fiber.Ctx) error {
	var issues []string
	if _, err := os.Stat(s.Opponents.Dir); err != nil {
		issues = append(issues, "Opponents directory does not exist")
	}
	count := s.Opponents.Count()
	if count == 0 {
		issues = append(issues, "No opponent files available")
	}
	if err := utils.DirWritable(s.Config.TempPath()); err != nil {
		issues = append(issues, "Cannot write temp directory")
	}
	if err := utils.DirWritable(s.Config.ResultsPath()); err != nil {
		issues = append(issues, "Cannot write results directory")
	}

	resp := fiber.Map{
		"status":         "ok",
		"opponent_count": count,
		"queue_depth":    s.Queue.Len(),
	}
	if len(issues) > 0 {
		resp["status"] = "degraded"
		resp["issues"] = issues
	}
	return c.JSON(resp)
}

// parsePoolRequest validates a pool or match body. When ok is false the
// error response has already been written and err is its write result.
func (s *BattleService) parsePoolRequest(c *fiber.Ctx) (req poolRequest, team []engine.TeamEntry, ok bool, err error) {
	if status, msg, derr := s.decodeBody(c, &req); status != 0 {
		return req, nil, false, s.fail(c, status, msg, derr)
	}
	if req.Round < 1 || req.ShopTier < 1 {
		return req, nil, false, s.fail(c, fiber.StatusBadRequest, "round and shopTier must be at least 1", nil)
	}
	team, perr := ParseTeam(req.Team, s.Config.MaxTeamSize, s.Catalog)
	if perr != nil {
		return req, nil, false, s.fail(c, fiber.StatusBadRequest, "Invalid team JSON format", perr)
	}
	if req.TeamID == "" {
		req.TeamID = uuid.NewString()
	}
	return req, team, true, nil
}

// AddTeam queues a team for the matchmaking pool.
func (s *BattleService) AddTeam(c *fiber.Ctx) error {
	req, team, ok, err := s.parsePoolRequest(c)
	if !ok {
		return err
	}
	s.Queue.EnqueueAddTeam(AddTeamCmd{
		TeamID:   req.TeamID,
		UserID:   userID(c),
		Round:    req.Round,
		ShopTier: req.ShopTier,
		Team:     team,
	})
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"team_id": req.TeamID, "status": "queued"})
}

// RequestMatch creates a queued battle and asks the worker to find an
// opponent for it.
func (s *BattleService) RequestMatch(c *fiber.Ctx) error {
	req, team, ok, err := s.parsePoolRequest(c)
	if !ok {
		return err
	}
	rec := models.BattleRecord{
		ID:           uuid.NewString(),
		PlayerTeamID: req.TeamID,
		PlayerUserID: userID(c),
		Status:       models.BattleQueued,
		Round:        req.Round,
		ShopTier:     req.ShopTier,
	}
	if err := s.Store.CreateBattle(&rec); err != nil {
		return s.fail(c, fiber.StatusInternalServerError, "Failed to create battle", err)
	}
	s.Queue.EnqueueMatchRequest(MatchRequestCmd{
		BattleID: rec.ID,
		TeamID:   req.TeamID,
		UserID:   rec.PlayerUserID,
		Round:    req.Round,
		ShopTier: req.ShopTier,
		Team:     team,
	})
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"battle_id": rec.ID,
		"team_id":   req.TeamID,
		"status":    rec.Status,
	})
}

// GetBattle returns a battle record and, once complete, its report.
func (s *BattleService) GetBattle(c *fiber.Ctx) error {
	rec, err := s.Store.GetBattle(c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrBattleNotFound) {
			return s.fail(c, fiber.StatusNotFound, "battle not found", nil)
		}
		return s.fail(c, fiber.StatusInternalServerError, "database error", err)
	}
	resp := fiber.Map{"battle": rec}
	if rec.Status == models.BattleComplete && rec.Result != "" {
		resp["result"] = json.RawMessage(rec.Result)
	}
	return c.JSON(resp)
}
