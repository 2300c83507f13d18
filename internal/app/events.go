package app

import "numclash/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted         EventKind = "game_started"
	EventRoundStarted        EventKind = "round_started"
	EventHandDealt           EventKind = "hand_dealt"
	EventExpressionSubmitted EventKind = "expression_submitted"
	EventRoundForfeited      EventKind = "round_forfeited"
	EventRoundResolved       EventKind = "round_resolved"
	EventGameEnded           EventKind = "game_ended"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	Phase       domain.Phase
	RoundsToWin int
	BaseBet     int64
}

type RoundStartedPayload struct {
	Round  int
	Target int
}

// HandDealtPayload is sent privately to each player; hands stay hidden
// until the round resolves.
type HandDealtPayload struct {
	UserID string
	Seat   int
	Round  int
	Target int
	Hand   *domain.Hand
}

type ExpressionSubmittedPayload struct {
	Seat  int
	Round int
}

type RoundForfeitedPayload struct {
	Seat  int
	Round int
}

// SeatOutcome reveals one side's round result.
type SeatOutcome struct {
	UserID     string
	Seat       int
	Submitted  bool
	Valid      bool
	Value      float64
	Distance   float64
	Expression *domain.Expression
}

type RoundResolvedPayload struct {
	Round      int
	Target     int
	WinnerSeat int // -1 when the round is a push
	Outcomes   []SeatOutcome
	RoundsWon  map[string]int
}

type GameEndedPayload struct {
	FinishOrder    []string // userIDs, winner first
	BalanceChanges map[string]int64
}
