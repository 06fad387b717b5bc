package services

import (
	"fmt"
	"log"

	"dish-battle-server/engine"
	"dish-battle-server/utils"
)

// OpponentFile is the JSON layout of a stored opponent team.
type OpponentFile struct {
	Team     []engine.TeamEntry `json:"team"`
	UserID   string             `json:"userId,omitempty"`
	Round    int                `json:"round,omitempty"`
	ShopTier int                `json:"shopTier,omitempty"`
}

// Opponent is a loaded opponent team with its id.
type Opponent struct {
	ID   string
	File OpponentFile
}

// OpponentDir serves opponent teams stored as *.json files.
type OpponentDir struct {
	Dir   string
	Files utils.FileStore
}

func (o OpponentDir) List() ([]string, error) {
	return utils.ListFiles(o.Dir, ".json")
}

// Count is the number of opponent files; a listing error counts as none.
func (o OpponentDir) Count() int {
	files, err := o.List()
	if err != nil {
		log.Printf("[Opponents] %v", err)
		return 0
	}
	return len(files)
}

// Load reads one opponent file.
func (o OpponentDir) Load(path string) (Opponent, error) {
	var f OpponentFile
	if err := o.Files.LoadJSON(path, &f); err != nil {
		return Opponent{}, err
	}
	if len(f.Team) == 0 {
		return Opponent{}, fmt.Errorf("opponent %s has an empty team", path)
	}
	return Opponent{ID: utils.TeamIDFromPath(path), File: f}, nil
}

// Pick loads the file at a random index chosen by pick. If that file cannot
// be read, the remaining files are tried in order.
func (o OpponentDir) Pick(pick func(n int) int) (Opponent, error) {
	files, err := o.List()
	if err != nil {
		return Opponent{}, err
	}
	if len(files) == 0 {
		log.Printf("[Opponents] No opponent files found in %s", o.Dir)
		return Opponent{}, ErrNoOpponents
	}
	start := pick(len(files))
	var lastErr error
	for i := range files {
		path := files[(start+i)%len(files)]
		opp, err := o.Load(path)
		if err == nil {
			return opp, nil
		}
		log.Printf("[Opponents] Skipping %s: %v", path, err)
		lastErr = err
	}
	return Opponent{}, fmt.Errorf("%w: %v", ErrNoOpponents, lastErr)
}
