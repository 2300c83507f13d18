package nakama

// Server -> client event payloads, sent as JSON match data.

type WireMatchLabel struct {
	Open  int    `json:"open"`
	State string `json:"state"`
	Game  string `json:"game"`
}

type WirePlayerState struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	IsOwner     bool   `json:"is_owner"`
	DisplayName string `json:"display_name"`
	RoundsWon   int    `json:"rounds_won"`
	Balance     int64  `json:"balance"`
}

type WireMatchSnapshot struct {
	Seats     []string          `json:"seats"`
	OwnerSeat int               `json:"owner_seat"`
	Tick      int64             `json:"tick"`
	Phase     string            `json:"phase"`
	Round     int               `json:"round"`
	Target    int               `json:"target"`
	Players   []WirePlayerState `json:"players"`
}

type WireGameStarted struct {
	Phase       string `json:"phase"`
	RoundsToWin int    `json:"rounds_to_win"`
	BaseBet     int64  `json:"base_bet"`
}

type WireRoundStarted struct {
	Round            int   `json:"round"`
	Target           int   `json:"target"`
	SecondsRemaining int64 `json:"seconds_remaining"`
}

type WireHandDealt struct {
	Seat   int      `json:"seat"`
	Round  int      `json:"round"`
	Target int      `json:"target"`
	Hand   WireHand `json:"hand"`
}

type WireExpressionSubmitted struct {
	Seat  int `json:"seat"`
	Round int `json:"round"`
}

type WireRoundForfeited struct {
	Seat  int `json:"seat"`
	Round int `json:"round"`
}

// WireSeatOutcome reveals one side's result when a round resolves.
// Distance is -1 for forfeits and unevaluable submissions, since JSON
// cannot carry infinity.
type WireSeatOutcome struct {
	UserID     string         `json:"user_id"`
	Seat       int            `json:"seat"`
	Submitted  bool           `json:"submitted"`
	Valid      bool           `json:"valid"`
	Value      float64        `json:"value"`
	Distance   float64        `json:"distance"`
	Expression WireExpression `json:"expression"`
	Display    string         `json:"display"`
}

type WireRoundResolved struct {
	Round      int               `json:"round"`
	Target     int               `json:"target"`
	WinnerSeat int               `json:"winner_seat"`
	Outcomes   []WireSeatOutcome `json:"outcomes"`
	RoundsWon  map[string]int    `json:"rounds_won"`
}

type WireGameEnded struct {
	FinishOrder    []string         `json:"finish_order"`
	BalanceChanges map[string]int64 `json:"balance_changes"`
}

type WireGameError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// MatchResultRecord is persisted per human player when a match ends so
// the result receipt RPC can serve it later.
type MatchResultRecord struct {
	MatchID   string `json:"match_id"`
	UserID    string `json:"user_id"`
	Won       bool   `json:"won"`
	Net       int64  `json:"net"`
	RoundsWon int    `json:"rounds_won"`
	EndedAt   string `json:"ended_at"`
}
