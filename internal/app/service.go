package app

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"numclash/internal/domain"
)

var (
	ErrNotPlaying        = errors.New("match not in playing phase")
	ErrTooFewPlayers     = errors.New("not enough players to start")
	ErrUnknownPlayer     = errors.New("player not found")
	ErrAlreadySubmitted  = errors.New("expression already submitted this round")
	ErrInvalidExpression = errors.New("invalid expression")
)

// Service contains NumClash use-cases operating on domain state.
type Service struct {
	rng     *rand.Rand
	deal    domain.DealConfig
	taxRate float64
}

// NewService constructs a Service with the provided rng (or a
// time-seeded default) and deal configuration.
func NewService(rng *rand.Rand, deal domain.DealConfig, taxRate float64) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, deal: deal, taxRate: taxRate}
}

// StartGame initializes a new Game with the provided players and deals
// the first round. playerIDs is in seat order; empty strings are empty
// seats.
func (s *Service) StartGame(playerIDs []string, baseBet int64, roundsToWin int) (*domain.Game, []Event, error) {
	players := make(map[string]*domain.Player)
	for i, userID := range playerIDs {
		if userID == "" {
			continue
		}
		players[userID] = &domain.Player{
			UserID: userID,
			Seat:   i + 1,
			Hand:   domain.NewHand(),
		}
	}
	if len(players) < MinPlayersToStartGame {
		return nil, nil, ErrTooFewPlayers
	}
	if roundsToWin <= 0 {
		roundsToWin = DefaultRoundsToWin
	}

	game := &domain.Game{
		Phase:       domain.PhasePlaying,
		Players:     players,
		BaseBet:     baseBet,
		RoundsToWin: roundsToWin,
	}

	events := []Event{{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Phase:       game.Phase,
			RoundsToWin: roundsToWin,
			BaseBet:     baseBet,
		},
	}}
	events = append(events, s.dealRound(game)...)

	return game, events, nil
}

// SubmitExpression validates, evaluates, and records one side's
// expression for the current round. A validation failure is returned
// to the caller for rejection; an evaluation failure (e.g. division by
// zero) is accepted and scored as maximal distance.
func (s *Service) SubmitExpression(game *domain.Game, userID string, expr *domain.Expression) ([]Event, error) {
	if game.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	pl, ok := game.Players[userID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if pl.Result != nil {
		return nil, ErrAlreadySubmitted
	}

	if v := domain.Validate(expr, pl.Hand); !v.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidExpression, v.Detail)
	}

	result := &domain.RoundResult{
		Submitted:  true,
		Expression: expr.Clone(),
		Distance:   domain.MaxDistance,
	}
	if res := domain.Evaluate(expr); res.OK {
		result.Valid = true
		result.Value = res.Value
		result.Distance = math.Abs(res.Value - float64(game.Target))
	}
	pl.Result = result

	events := []Event{{
		Kind:    EventExpressionSubmitted,
		Payload: ExpressionSubmittedPayload{Seat: pl.Seat, Round: game.Round},
	}}
	if game.RoundComplete() {
		events = append(events, s.resolveRound(game)...)
	}
	return events, nil
}

// ForfeitRound records a concede (explicit or deadline expiry) for the
// current round, scored as maximal distance.
func (s *Service) ForfeitRound(game *domain.Game, userID string) ([]Event, error) {
	if game.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	pl, ok := game.Players[userID]
	if !ok {
		return nil, ErrUnknownPlayer
	}
	if pl.Result != nil {
		return nil, ErrAlreadySubmitted
	}

	pl.Result = &domain.RoundResult{Distance: domain.MaxDistance}

	events := []Event{{
		Kind:    EventRoundForfeited,
		Payload: RoundForfeitedPayload{Seat: pl.Seat, Round: game.Round},
	}}
	if game.RoundComplete() {
		events = append(events, s.resolveRound(game)...)
	}
	return events, nil
}

// dealRound advances to the next round, deals fresh hands, and emits
// the round events (target broadcast, hands private).
func (s *Service) dealRound(game *domain.Game) []Event {
	game.Round++
	game.ClearRound()
	game.Target = domain.DrawTarget(s.rng, s.deal)

	events := []Event{{
		Kind:    EventRoundStarted,
		Payload: RoundStartedPayload{Round: game.Round, Target: game.Target},
	}}

	for _, pl := range s.playersBySeat(game) {
		pl.Hand = domain.DealHand(s.rng, s.deal)
		events = append(events, Event{
			Kind: EventHandDealt,
			Payload: HandDealtPayload{
				UserID: pl.UserID,
				Seat:   pl.Seat,
				Round:  game.Round,
				Target: game.Target,
				Hand:   pl.Hand,
			},
			Recipients: []string{pl.UserID},
		})
	}
	return events
}

// resolveRound reveals both results, awards the round, and either
// deals the next round or ends the match with settlement deltas.
func (s *Service) resolveRound(game *domain.Game) []Event {
	players := s.playersBySeat(game)

	outcomes := make([]SeatOutcome, 0, len(players))
	winnerSeat := -1
	bestDistance := domain.MaxDistance
	var winner *domain.Player
	tied := false

	for _, pl := range players {
		r := pl.Result
		outcomes = append(outcomes, SeatOutcome{
			UserID:     pl.UserID,
			Seat:       pl.Seat,
			Submitted:  r.Submitted,
			Valid:      r.Valid,
			Value:      r.Value,
			Distance:   r.Distance,
			Expression: r.Expression,
		})
		switch {
		case r.Distance < bestDistance:
			bestDistance = r.Distance
			winner = pl
			tied = false
		case r.Distance == bestDistance:
			tied = true
		}
	}

	// Both sides failing, or equal distances, pushes the round.
	if winner != nil && !tied && bestDistance != domain.MaxDistance {
		winner.RoundsWon++
		winnerSeat = winner.Seat
	} else {
		winner = nil
	}

	roundsWon := make(map[string]int, len(players))
	for _, pl := range players {
		roundsWon[pl.UserID] = pl.RoundsWon
	}

	events := []Event{{
		Kind: EventRoundResolved,
		Payload: RoundResolvedPayload{
			Round:      game.Round,
			Target:     game.Target,
			WinnerSeat: winnerSeat,
			Outcomes:   outcomes,
			RoundsWon:  roundsWon,
		},
	}}

	if winner != nil && winner.RoundsWon >= game.RoundsToWin {
		return append(events, s.endGame(game, winner)...)
	}
	return append(events, s.dealRound(game)...)
}

// endGame settles the pot: the loser pays the base bet, the winner
// receives it minus the house tax.
func (s *Service) endGame(game *domain.Game, winner *domain.Player) []Event {
	game.Phase = domain.PhaseEnded
	game.FinishOrder = []string{winner.UserID}

	changes := make(map[string]int64)
	payout := game.BaseBet - int64(float64(game.BaseBet)*s.taxRate)
	changes[winner.UserID] = payout
	for _, pl := range s.playersBySeat(game) {
		if pl.UserID == winner.UserID {
			continue
		}
		game.FinishOrder = append(game.FinishOrder, pl.UserID)
		changes[pl.UserID] = -game.BaseBet
	}

	return []Event{{
		Kind: EventGameEnded,
		Payload: GameEndedPayload{
			FinishOrder:    game.FinishOrder,
			BalanceChanges: changes,
		},
	}}
}

// playersBySeat returns the players in ascending seat order so event
// and settlement ordering stays deterministic.
func (s *Service) playersBySeat(game *domain.Game) []*domain.Player {
	players := make([]*domain.Player, 0, len(game.Players))
	for _, pl := range game.Players {
		players = append(players, pl)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Seat < players[j].Seat })
	return players
}
