package services

import (
	"sync"

	"dish-battle-server/engine"
)

// AddTeamCmd puts a team into the matchmaking pool.
type AddTeamCmd struct {
	TeamID   string
	UserID   string
	Round    int
	ShopTier int
	Team     []engine.TeamEntry
}

// MatchRequestCmd asks for an opponent from the pool and a battle against it.
type MatchRequestCmd struct {
	BattleID string
	TeamID   string
	UserID   string
	Round    int
	ShopTier int
	Team     []engine.TeamEntry
}

// BattleSessionRequestCmd runs a battle against an already chosen opponent.
type BattleSessionRequestCmd struct {
	BattleID     string
	PlayerTeam   []engine.TeamEntry
	OpponentTeam []engine.TeamEntry
	OpponentID   string
	Debug        bool
}

// CommandQueue holds the three command kinds behind one mutex. Producers
// enqueue from any goroutine; a single consumer pops.
type CommandQueue struct {
	mu       sync.Mutex
	addTeam  []AddTeamCmd
	matches  []MatchRequestCmd
	sessions []BattleSessionRequestCmd
	wake     chan struct{}
}

func NewCommandQueue() *CommandQueue {
	return &CommandQueue{wake: make(chan struct{}, 1)}
}

// Wake fires after an enqueue so the consumer does not wait for its next poll.
func (q *CommandQueue) Wake() <-chan struct{} { return q.wake }

func (q *CommandQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *CommandQueue) EnqueueAddTeam(cmd AddTeamCmd) {
	q.mu.Lock()
	q.addTeam = append(q.addTeam, cmd)
	q.mu.Unlock()
	q.signal()
}

func (q *CommandQueue) TryPopAddTeam() (AddTeamCmd, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return popFront(&q.addTeam)
}

func (q *CommandQueue) EnqueueMatchRequest(cmd MatchRequestCmd) {
	q.mu.Lock()
	q.matches = append(q.matches, cmd)
	q.mu.Unlock()
	q.signal()
}

func (q *CommandQueue) TryPopMatchRequest() (MatchRequestCmd, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return popFront(&q.matches)
}

func (q *CommandQueue) EnqueueSessionRequest(cmd BattleSessionRequestCmd) {
	q.mu.Lock()
	q.sessions = append(q.sessions, cmd)
	q.mu.Unlock()
	q.signal()
}

func (q *CommandQueue) TryPopSessionRequest() (BattleSessionRequestCmd, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return popFront(&q.sessions)
}

// Len is the total number of pending commands.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.addTeam) + len(q.matches) + len(q.sessions)
}

func popFront[T any](q *[]T) (T, bool) {
	var zero T
	if len(*q) == 0 {
		return zero, false
	}
	v := (*q)[0]
	(*q)[0] = zero
	*q = (*q)[1:]
	return v, true
}
