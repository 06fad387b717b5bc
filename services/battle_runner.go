package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"dish-battle-server/engine"
	"dish-battle-server/models"
	"dish-battle-server/utils"
)

// TimeoutMessage is the error recorded for battles that ran out of budget.
const TimeoutMessage = "Battle simulation timeout"

// BattleOutcome is delivered to whoever awaits a battle id.
type BattleOutcome struct {
	Record models.BattleRecord
	Report *engine.Report
	Err    error
}

// ReportUploader copies finished reports to remote storage.
type ReportUploader interface {
	UploadReport(ctx context.Context, opponentID string, seed uint64, body []byte) (string, error)
}

// RunnerPaths are the output directories of the runner.
type RunnerPaths struct {
	Results         string
	Temp            string
	Debug           string
	ResultRetention int
	TempRetention   int
}

// BattleRunner is the single consumer of the command queue. It owns the
// battle status machine: queued -> running -> complete | error.
type BattleRunner struct {
	Queue      *CommandQueue
	Store      BattleStore
	Matchmaker *Matchmaker
	Simulator  *Simulator
	Files      utils.FileStore
	Paths      RunnerPaths
	Uploader   ReportUploader
	NewSeed    func() (uint64, error)
	Now        func() time.Time

	mu      sync.Mutex
	waiters map[string]chan BattleOutcome
}

func NewBattleRunner(queue *CommandQueue, store BattleStore, mm *Matchmaker, sim *Simulator, files utils.FileStore, paths RunnerPaths) *BattleRunner {
	return &BattleRunner{
		Queue:      queue,
		Store:      store,
		Matchmaker: mm,
		Simulator:  sim,
		Files:      files,
		Paths:      paths,
		NewSeed:    engine.NewSeed,
		Now:        time.Now,
		waiters:    make(map[string]chan BattleOutcome),
	}
}

// Await registers interest in a battle. Call it before enqueueing the
// command so the outcome cannot be missed.
func (r *BattleRunner) Await(battleID string) <-chan BattleOutcome {
	ch := make(chan BattleOutcome, 1)
	r.mu.Lock()
	r.waiters[battleID] = ch
	r.mu.Unlock()
	return ch
}

// Forget drops a waiter that gave up.
func (r *BattleRunner) Forget(battleID string) {
	r.mu.Lock()
	delete(r.waiters, battleID)
	r.mu.Unlock()
}

func (r *BattleRunner) notify(out BattleOutcome) {
	r.mu.Lock()
	ch, ok := r.waiters[out.Record.ID]
	delete(r.waiters, out.Record.ID)
	r.mu.Unlock()
	if ok {
		ch <- out
	}
}

// RunPending drains every queued command and returns how many ran. Pool
// additions go first so a match request sees teams enqueued before it.
func (r *BattleRunner) RunPending(ctx context.Context) int {
	n := 0
	for {
		cmd, ok := r.Queue.TryPopAddTeam()
		if !ok {
			break
		}
		if err := r.addTeam(cmd); err != nil {
			log.Printf("[BattleRunner] Add team %s failed: %v", cmd.TeamID, err)
		}
		n++
	}
	for {
		cmd, ok := r.Queue.TryPopMatchRequest()
		if !ok {
			break
		}
		r.handleMatch(ctx, cmd)
		n++
	}
	for {
		cmd, ok := r.Queue.TryPopSessionRequest()
		if !ok {
			break
		}
		r.handleSession(ctx, cmd)
		n++
	}
	return n
}

func (r *BattleRunner) addTeam(cmd AddTeamCmd) error {
	team, err := models.EncodeTeam(cmd.Team)
	if err != nil {
		return err
	}
	return r.Store.UpsertPoolEntries([]models.TeamPoolEntry{{
		TeamID:   cmd.TeamID,
		UserID:   cmd.UserID,
		Round:    cmd.Round,
		ShopTier: cmd.ShopTier,
		Team:     team,
		Source:   models.PoolSourcePlayer,
		AddedAt:  r.Now().UTC(),
	}})
}

func (r *BattleRunner) handleMatch(ctx context.Context, cmd MatchRequestCmd) {
	rec, err := r.Store.GetBattle(cmd.BattleID)
	if err != nil {
		log.Printf("[BattleRunner] Match %s: %v", cmd.BattleID, err)
		return
	}
	opp, err := r.Matchmaker.FindOpponent(cmd)
	if err != nil {
		r.fail(&rec, err.Error(), err)
		return
	}
	oppTeam, err := opp.Entries()
	if err != nil {
		r.fail(&rec, "Failed to load opponent team", err)
		return
	}
	// The requester's team becomes available to later requests.
	if err := r.addTeam(AddTeamCmd{TeamID: cmd.TeamID, UserID: cmd.UserID, Round: cmd.Round, ShopTier: cmd.ShopTier, Team: cmd.Team}); err != nil {
		log.Printf("[BattleRunner] Pooling team %s failed: %v", cmd.TeamID, err)
	}
	rec.OpponentID = opp.TeamID
	r.runBattle(ctx, &rec, cmd.Team, oppTeam, false)
}

func (r *BattleRunner) handleSession(ctx context.Context, cmd BattleSessionRequestCmd) {
	rec, err := r.Store.GetBattle(cmd.BattleID)
	if err != nil {
		log.Printf("[BattleRunner] Session %s: %v", cmd.BattleID, err)
		return
	}
	rec.OpponentID = cmd.OpponentID
	r.runBattle(ctx, &rec, cmd.PlayerTeam, cmd.OpponentTeam, cmd.Debug)
}

func (r *BattleRunner) transition(rec *models.BattleRecord, to models.BattleStatus) error {
	if !rec.Status.CanTransition(to) {
		return fmt.Errorf("battle %s: illegal transition %s -> %s", rec.ID, rec.Status, to)
	}
	rec.Status = to
	if to.Terminal() {
		now := r.Now().UTC()
		rec.CompletedAt = &now
	}
	return nil
}

func (r *BattleRunner) save(rec *models.BattleRecord) {
	if err := r.Store.SaveBattle(rec); err != nil {
		log.Printf("[BattleRunner] %v", err)
	}
}

func (r *BattleRunner) fail(rec *models.BattleRecord, msg string, cause error) {
	if err := r.transition(rec, models.BattleError); err != nil {
		log.Printf("[BattleRunner] %v", err)
	}
	rec.Error = msg
	r.save(rec)
	log.Printf("[BattleRunner] Battle %s failed: %v", rec.ID, cause)
	r.notify(BattleOutcome{Record: *rec, Err: cause})
}

type battleInput struct {
	BattleID     string             `json:"battleId"`
	Seed         uint64             `json:"seed"`
	PlayerTeam   []engine.TeamEntry `json:"playerTeam"`
	OpponentTeam []engine.TeamEntry `json:"opponentTeam"`
}

type timeoutDump struct {
	Seed           uint64             `json:"seed"`
	SimulationTime float64            `json:"simulation_time"`
	Iterations     int                `json:"iterations"`
	PlayerTeam     []engine.TeamEntry `json:"player_team"`
	OpponentTeam   []engine.TeamEntry `json:"opponent_team"`
}

type storedResult struct {
	engine.Report
	BattleID       string `json:"battleId"`
	PlayerTeamID   string `json:"playerTeamId,omitempty"`
	OpponentTeamID string `json:"opponentTeamId"`
}

func (r *BattleRunner) runBattle(ctx context.Context, rec *models.BattleRecord, player, opponent []engine.TeamEntry, debug bool) {
	if err := r.transition(rec, models.BattleRunning); err != nil {
		log.Printf("[BattleRunner] %v", err)
		return
	}
	// The battle seed comes from the system entropy source, never from the
	// matchmaker's seeded generator.
	seed, err := r.NewSeed()
	if err != nil {
		r.fail(rec, "Failed to generate battle seed", err)
		return
	}
	rec.Seed = strconv.FormatUint(seed, 10)
	r.save(rec)

	tempFile := filepath.Join(r.Paths.Temp, "battle_"+rec.ID+".json")
	if err := r.Files.SaveJSON(tempFile, battleInput{rec.ID, seed, player, opponent}); err != nil {
		log.Printf("[BattleRunner] Temp file for %s not written: %v", rec.ID, err)
	}
	defer os.Remove(tempFile)

	report, stats, err := r.Simulator.Run(ctx, SimulationInput{
		Seed:       seed,
		Player:     player,
		Opponent:   opponent,
		OpponentID: rec.OpponentID,
		Debug:      debug,
	})
	if errors.Is(err, ErrSimulationTimeout) {
		dump := filepath.Join(r.Paths.Debug, utils.ReportFilename(r.Now(), seed))
		if derr := r.Files.SaveJSON(dump, timeoutDump{seed, stats.SimulationTime, stats.Iterations, player, opponent}); derr != nil {
			log.Printf("[BattleRunner] Timeout dump for %s not written: %v", rec.ID, derr)
		}
		r.fail(rec, TimeoutMessage, err)
		return
	}
	if err != nil {
		r.fail(rec, "Battle simulation failed", err)
		return
	}

	body, err := json.Marshal(report)
	if err != nil {
		r.fail(rec, "Failed to encode battle result", err)
		return
	}
	rec.Result = string(body)
	rec.Checksum = report.Checksum
	r.storeResult(ctx, rec, report, seed, body)

	if err := r.transition(rec, models.BattleComplete); err != nil {
		log.Printf("[BattleRunner] %v", err)
	}
	r.save(rec)
	log.Printf("[BattleRunner] Battle %s complete: %s in %d iterations (%s), checksum %s",
		rec.ID, report.Outcome, stats.Iterations, stats.Elapsed.Round(time.Millisecond), report.Checksum)
	r.notify(BattleOutcome{Record: *rec, Report: &report})
}

// storeResult writes the result file, prunes old files and uploads the
// report. Every step is best-effort.
func (r *BattleRunner) storeResult(ctx context.Context, rec *models.BattleRecord, report engine.Report, seed uint64, body []byte) {
	path := filepath.Join(r.Paths.Results, utils.ReportFilename(r.Now(), seed))
	stored := storedResult{Report: report, BattleID: rec.ID, PlayerTeamID: rec.PlayerTeamID, OpponentTeamID: rec.OpponentID}
	if err := r.Files.SaveJSON(path, stored); err != nil {
		log.Printf("[BattleRunner] Result file for %s not written: %v", rec.ID, err)
	}
	if _, err := utils.CleanupOldFiles(r.Paths.Results, ".json", r.Paths.ResultRetention); err != nil {
		log.Printf("[BattleRunner] Result cleanup failed: %v", err)
	}
	if _, err := utils.CleanupOldFiles(r.Paths.Temp, ".json", r.Paths.TempRetention); err != nil {
		log.Printf("[BattleRunner] Temp cleanup failed: %v", err)
	}

	if r.Uploader == nil {
		return
	}
	url, err := r.Uploader.UploadReport(ctx, rec.OpponentID, seed, body)
	if err != nil {
		log.Printf("[BattleRunner] Report upload for %s failed: %v", rec.ID, err)
		return
	}
	rec.ReportURL = url
}
