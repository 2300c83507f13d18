package domain

import "math"

// Phase represents the lifecycle stage of a match.
type Phase string

const (
	// PhaseLobby indicates the match is waiting for players.
	PhaseLobby Phase = "lobby"
	// PhasePlaying indicates rounds are being played.
	PhasePlaying Phase = "playing"
	// PhaseEnded indicates the match has finished.
	PhaseEnded Phase = "ended"
)

// MaxDistance is the distance assigned to a side with no scorable
// expression for a round (forfeit, invalid, or failed evaluation).
var MaxDistance = math.Inf(1)

// RoundResult records one side's outcome for the current round.
type RoundResult struct {
	Submitted  bool
	Valid      bool
	Value      float64
	Distance   float64
	Expression *Expression
}

// Player holds the domain state for one side of a match.
type Player struct {
	UserID    string
	Seat      int // 1-based
	Hand      *Hand
	Result    *RoundResult
	RoundsWon int
}

// Game captures the authoritative state for a single match.
type Game struct {
	Phase       Phase
	Players     map[string]*Player
	Round       int
	Target      int
	BaseBet     int64
	RoundsToWin int
	FinishOrder []string // userIDs, winner first
}

// PlayerBySeat returns the player occupying the 1-based seat, or nil.
func (g *Game) PlayerBySeat(seat int) *Player {
	for _, p := range g.Players {
		if p.Seat == seat {
			return p
		}
	}
	return nil
}

// RoundComplete reports whether every player has a recorded result for
// the current round.
func (g *Game) RoundComplete() bool {
	for _, p := range g.Players {
		if p.Result == nil {
			return false
		}
	}
	return true
}

// ClearRound drops per-round state ahead of the next deal.
func (g *Game) ClearRound() {
	for _, p := range g.Players {
		p.Result = nil
		if p.Hand != nil {
			p.Hand.Clear()
		}
	}
}
