package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// RpcResultReceipt returns a signed receipt for the caller's result in a finished match.
	RpcResultReceipt = "result_receipt"

	// RpcPracticeSolve runs the expression search against a caller-supplied hand, for practice mode.
	RpcPracticeSolve = "practice_solve"

	// MatchNameNumClash is the authoritative match handler name registered with Nakama.
	MatchNameNumClash = "numclash_match"
)

const (
	MatchLabelKey_OpenSeats = "open" // Key for the open seats in the match label
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame        int64 = 1
	OpSubmitExpression int64 = 2
	OpForfeitRound     int64 = 3

	// Server -> Client events
	OpMatchSnapshot       int64 = 101
	OpGameStarted         int64 = 102
	OpRoundStarted        int64 = 103
	OpHandDealt           int64 = 104 // send privately
	OpExpressionSubmitted int64 = 105
	OpRoundForfeited      int64 = 106
	OpRoundResolved       int64 = 107
	OpGameEnded           int64 = 108
	OpGameError           int64 = 110
)
