package engine

import "sort"

// EventRecord is the serialized form of a trigger event.
type EventRecord struct {
	Hook           string  `json:"hook"`
	SourceEntityID int     `json:"sourceEntityId"`
	SlotIndex      int     `json:"slotIndex"`
	TeamSide       string  `json:"teamSide"`
	Timestamp      float64 `json:"timestamp"`
	CourseIndex    int     `json:"courseIndex"`
	PayloadInt     int     `json:"payloadInt"`
	PayloadFloat   float64 `json:"payloadFloat"`
}

// DishSnapshot is a debug view of one dish at the end of a course.
type DishSnapshot struct {
	ID          int    `json:"id"`
	DishType    string `json:"dishType"`
	Level       int    `json:"level"`
	TeamSide    string `json:"teamSide"`
	Slot        int    `json:"slot"`
	Phase       string `json:"phase"`
	BaseZing    int    `json:"baseZing"`
	BaseBody    int    `json:"baseBody"`
	CurrentZing int    `json:"currentZing"`
	CurrentBody int    `json:"currentBody"`
	Powerups    []int  `json:"powerups,omitempty"`
	Summoned    bool   `json:"summoned,omitempty"`
}

// CourseSnapshot lists every dish right after a course resolved.
type CourseSnapshot struct {
	CourseIndex int            `json:"courseIndex"`
	Timestamp   float64        `json:"timestamp"`
	Dishes      []DishSnapshot `json:"dishes"`
}

// Report is the canonical battle result payload.
type Report struct {
	Seed       uint64           `json:"seed"`
	OpponentID string           `json:"opponentId"`
	Outcome    Outcome          `json:"outcome"`
	Wins       int              `json:"wins"`
	Losses     int              `json:"losses"`
	Ties       int              `json:"ties"`
	Outcomes   []CourseOutcome  `json:"outcomes"`
	Events     []EventRecord    `json:"events"`
	Checksum   string           `json:"checksum"`
	Debug      bool             `json:"debug,omitempty"`
	Snapshots  []CourseSnapshot `json:"snapshots,omitempty"`
}

func (s *Session) snapshot() CourseSnapshot {
	snap := CourseSnapshot{CourseIndex: s.courseIndex, Timestamp: s.Time()}
	all := append([]*Dish(nil), s.dishes...)
	sortDishes(all)
	for _, d := range all {
		snap.Dishes = append(snap.Dishes, DishSnapshot{
			ID:          d.ID,
			DishType:    d.Type,
			Level:       d.Level,
			TeamSide:    d.Side.String(),
			Slot:        d.Slot,
			Phase:       d.Phase.String(),
			BaseZing:    d.BaseZing,
			BaseBody:    d.BaseBody,
			CurrentZing: d.CurrentZing,
			CurrentBody: d.CurrentBody,
			Powerups:    d.Powerups,
			Summoned:    d.Summoned,
		})
	}
	return snap
}

// BuildReport collects outcomes, events and checksum of a finished session.
// Events are ordered by timestamp; events sharing a timestamp keep their
// emission order.
func BuildReport(s *Session, opponentID string, debug bool) Report {
	result := s.Result()
	r := Report{
		Seed:       s.Seed(),
		OpponentID: opponentID,
		Outcome:    result.Outcome,
		Wins:       result.Wins,
		Losses:     result.Losses,
		Ties:       result.Ties,
		Outcomes:   result.Courses,
		Checksum:   s.Checksum(),
		Debug:      debug,
	}
	if r.Outcomes == nil {
		r.Outcomes = []CourseOutcome{}
	}

	events := s.Events()
	sort.SliceStable(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })
	r.Events = make([]EventRecord, 0, len(events))
	for _, ev := range events {
		r.Events = append(r.Events, EventRecord{
			Hook:           ev.Hook.String(),
			SourceEntityID: ev.SourceID,
			SlotIndex:      ev.Slot,
			TeamSide:       ev.Side.String(),
			Timestamp:      ev.Timestamp,
			CourseIndex:    ev.CourseIndex,
			PayloadInt:     ev.PayloadInt,
			PayloadFloat:   ev.PayloadFloat,
		})
	}
	if debug {
		r.Snapshots = s.Snapshots()
	}
	return r
}
