package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"

	"numclash/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// PracticeSolveRequest carries a caller-described hand for practice
// mode, using the same wire vocabulary as match data.
type PracticeSolveRequest struct {
	Numbers   []int    `json:"numbers"`
	Operators []string `json:"operators"`
	Specials  []string `json:"specials"`
	Disabled  []string `json:"disabled"`
	Target    int      `json:"target"`
}

type PracticeSolveResponse struct {
	Expression WireExpression `json:"expression"`
	Display    string         `json:"display"`
	Value      float64        `json:"value"`
	Distance   float64        `json:"distance"` // -1 when no expression exists
}

// rpcPracticeSolve runs the expression search for a supplied hand so
// clients can show the best answer after a practice round.
func rpcPracticeSolve(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	var req PracticeSolveRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}
	if len(req.Numbers) == 0 {
		return "", runtime.NewError("At least one number card is required", 3)
	}
	if len(req.Numbers) > 6 {
		return "", runtime.NewError("Too many number cards", 3)
	}

	hand := domain.NewHand()
	for _, n := range req.Numbers {
		hand.AddCard(domain.NumberCard(n))
	}
	for _, s := range req.Operators {
		op, err := opFromWire(s)
		if err != nil {
			return "", runtime.NewError(err.Error(), 3)
		}
		hand.AddCard(domain.OperatorCard(op))
	}
	for _, s := range req.Specials {
		kind, err := specialFromWire(s)
		if err != nil {
			return "", runtime.NewError(err.Error(), 3)
		}
		hand.AddCard(domain.SpecialCard(kind))
	}
	for _, s := range req.Disabled {
		op, err := opFromWire(s)
		if err != nil {
			return "", runtime.NewError(err.Error(), 3)
		}
		hand.DisableOperator(op)
	}

	expr := domain.FindBestExpression(hand, req.Target)

	resp := PracticeSolveResponse{Distance: -1}
	if !expr.IsEmpty() {
		resp.Expression = expressionToWire(expr)
		resp.Display = expr.String()
		if res := domain.Evaluate(expr); res.OK {
			resp.Value = res.Value
			resp.Distance = math.Abs(res.Value - float64(req.Target))
		}
	}

	b, _ := json.Marshal(resp)
	return string(b), nil
}
