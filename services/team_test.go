package services

import (
	"encoding/json"
	"errors"
	"testing"

	"dish-battle-server/engine"
)

func TestParseTeam(t *testing.T) {
	catalog := testCatalog(t)
	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `[{"slot":0,"dishType":"Plain"},{"slot":1,"dishType":"biter","level":2,"powerups":[1,2]}]`, false},
		{"null powerups", `[{"slot":0,"dishType":"Plain","powerups":null}]`, false},
		{"missing", ``, true},
		{"not an array", `{"slot":0}`, true},
		{"empty", `[]`, true},
		{"too many", `[{"slot":0,"dishType":"Plain"},{"slot":1,"dishType":"Plain"},{"slot":2,"dishType":"Plain"}]`, true},
		{"no slot", `[{"dishType":"Plain"}]`, true},
		{"no dish type", `[{"slot":0}]`, true},
		{"slot out of range", `[{"slot":2,"dishType":"Plain"}]`, true},
		{"negative slot", `[{"slot":-1,"dishType":"Plain"}]`, true},
		{"duplicate slot", `[{"slot":0,"dishType":"Plain"},{"slot":0,"dishType":"Biter"}]`, true},
		{"level zero", `[{"slot":0,"dishType":"Plain","level":0}]`, true},
		{"max level", `[{"slot":0,"dishType":"Plain","level":10}]`, false},
		{"level above max", `[{"slot":0,"dishType":"Plain","level":11}]`, true},
		{"huge level", `[{"slot":0,"dishType":"Plain","level":64}]`, true},
		{"bad powerups", `[{"slot":0,"dishType":"Plain","powerups":["x"]}]`, true},
		{"unknown dish", `[{"slot":0,"dishType":"Lasagna"}]`, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTeam(json.RawMessage(tc.body), 2, catalog)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidTeam) {
					t.Fatalf("expected ErrInvalidTeam, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseTeam_NormalizesAndDefaults(t *testing.T) {
	got, err := ParseTeam(json.RawMessage(`[{"slot":1,"dishType":"BITER","powerups":[3]}]`), 7, testCatalog(t))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := engine.TeamEntry{Slot: 1, DishType: "biter", Level: 1, Powerups: []int{3}}
	if len(got) != 1 || got[0].DishType != want.DishType || got[0].Level != 1 || got[0].Slot != 1 || len(got[0].Powerups) != 1 {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestParseTeam_UnknownDishWrapsEngineError(t *testing.T) {
	_, err := ParseTeam(json.RawMessage(`[{"slot":0,"dishType":"Lasagna"}]`), 7, testCatalog(t))
	if !errors.Is(err, engine.ErrUnknownDish) {
		t.Fatalf("expected engine.ErrUnknownDish, got %v", err)
	}
}
