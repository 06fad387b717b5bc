package engine

import (
	"encoding/json"
	"fmt"
)

// Outcome is the winner of a course or of a whole battle.
type Outcome int

const (
	OutcomePlayer Outcome = iota
	OutcomeOpponent
	OutcomeTie
)

func (o Outcome) String() string {
	switch o {
	case OutcomePlayer:
		return "Player"
	case OutcomeOpponent:
		return "Opponent"
	case OutcomeTie:
		return "Tie"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "Player":
		return OutcomePlayer, nil
	case "Opponent":
		return OutcomeOpponent, nil
	case "Tie":
		return OutcomeTie, nil
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseOutcome(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// CourseOutcome records how one course ended.
type CourseOutcome struct {
	SlotIndex int     `json:"slotIndex"`
	Ticks     int     `json:"ticks"`
	Winner    Outcome `json:"winner"`
}

// BattleResult aggregates every course of a battle.
type BattleResult struct {
	Outcome Outcome         `json:"outcome"`
	Wins    int             `json:"wins"`
	Losses  int             `json:"losses"`
	Ties    int             `json:"ties"`
	Courses []CourseOutcome `json:"courses"`
}
