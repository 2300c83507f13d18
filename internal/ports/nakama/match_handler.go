package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"math/rand"
	"strconv"
	"time"

	"numclash/internal/app"
	"numclash/internal/bot"
	"numclash/internal/config"
	"numclash/internal/domain"
	"numclash/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	matchSeats = 2

	matchResultsCollection = "match_results"

	defaultRoundDurationSeconds = 45
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats     [matchSeats]string          `json:"seats"`      // Array of user IDs, empty string means seat is empty
	OwnerSeat int                         `json:"owner_seat"` // Seat index of the match owner
	Tick      int64                       `json:"tick"`       // Current tick of the match
	Presences map[string]runtime.Presence `json:"-"`          // Map UserId -> Presence for targeted messaging
	App       *app.Service                `json:"-"`          // NumClash app service with game logic
	Game      *domain.Game                `json:"-"`          // Current active game state (nil if in lobby)

	RoundDuration     int   `json:"round_duration"`      // Seconds each round stays open for submissions
	RoundDeadlineTick int64 `json:"round_deadline_tick"` // Tick at which open submissions forfeit
	DeadlineRound     int   `json:"deadline_round"`      // Round the deadline was armed for

	BotsEnabled          bool                  `json:"bots_enabled"`            // Whether AI players are allowed
	BotMinDelay          int                   `json:"bot_min_delay"`           // Min seconds a bot waits
	BotMaxDelay          int                   `json:"bot_max_delay"`           // Max seconds a bot waits
	BotAutoFillDelay     int                   `json:"bot_auto_fill_delay"`     // Seconds to wait before adding a bot opponent
	BotWaitUntil         int64                 `json:"bot_wait_until"`          // Tick when the bot should act
	LastSinglePlayerTick int64                 `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent `json:"-"`                       // Active bot agents
	Economy              ports.EconomyPort     `json:"-"`                       // Interface to Nakama wallet
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	// Load bot identities from data folder
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}

	// Load game configuration
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	state := &MatchState{
		Tick:      time.Now().Unix(),
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil, config.GetDealConfig(), config.GetTaxRate()),
		OwnerSeat: -1,
		Bots:      make(map[string]*bot.Agent),
		Economy:   NewNakamaEconomyAdapter(nk),
	}

	if cfg := config.GetGameConfig(); cfg != nil {
		state.RoundDuration = cfg.RoundDurationSeconds
		state.BotAutoFillDelay = cfg.BotAutoFillDelaySeconds
	}

	// Environment variables override bot and timing configuration
	env := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if val, ok := env["numclash_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["numclash_bot_min_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMinDelay = i
		}
	}
	if val, ok := env["numclash_bot_max_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotMaxDelay = i
		}
	}
	if val, ok := env["numclash_bot_auto_fill_delay_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.BotAutoFillDelay = i
		}
	}
	if val, ok := env["numclash_round_duration_sec"]; ok {
		if i, err := strconv.Atoi(val); err == nil {
			state.RoundDuration = i
		}
	}

	// Defaults if not set
	if state.BotMinDelay == 0 {
		state.BotMinDelay = 1
	}
	if state.BotMaxDelay == 0 {
		state.BotMaxDelay = 5
	}
	if state.BotAutoFillDelay == 0 {
		state.BotAutoFillDelay = 5
	}
	if state.RoundDuration == 0 {
		state.RoundDuration = defaultRoundDurationSeconds
	}

	labelBytes, err := json.Marshal(WireMatchLabel{
		Open:  state.GetOpenSeatsCount(),
		State: "lobby",
		Game:  "numclash",
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // 1 tick per second, submissions are not twitch-paced
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Allow join if there is an empty seat OR a bot to replace (if game hasn't started)
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		if matchState.Game == nil {
			for _, seat := range matchState.Seats {
				if isBotUserId(seat) {
					hasBot = true
					break
				}
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p

		// Assign seat: Try empty seats first, then bots (if lobby)
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = p.GetUserId()
				assigned = true
				break
			}
		}

		if !assigned && matchState.Game == nil {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, p.GetUserId(), i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = p.GetUserId()
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", p.GetUserId())
			continue
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats[:], matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats[:])
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(ctx, matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		for i, seatUserId := range matchState.Seats {
			if seatUserId == p.GetUserId() {
				// Leaving mid-game forfeits the current round first.
				if matchState.Game != nil && matchState.Game.Phase == domain.PhasePlaying {
					if events, err := matchState.App.ForfeitRound(matchState.Game, p.GetUserId()); err == nil {
						for _, ev := range events {
							mh.broadcastEvent(ctx, matchState, dispatcher, logger, nk, ev)
						}
					}
				}
				matchState.Seats[i] = ""
				logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
				break
			}
		}
	}

	newOwnerSeat := findFirstHumanSeat(matchState.Seats[:])
	if newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		if newOwnerSeat >= 0 {
			logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
		}
	}

	if shouldTerminateNoHumans(matchState.Seats[:]) {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(ctx, matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, nk, msg)
		case OpSubmitExpression:
			mh.handleSubmitExpression(ctx, matchState, dispatcher, logger, nk, msg)
		case OpForfeitRound:
			mh.handleForfeitRound(ctx, matchState, dispatcher, logger, nk, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.enforceRoundDeadline(ctx, matchState, dispatcher, logger, nk)

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger, nk)
	}

	return matchState
}

// enforceRoundDeadline forfeits every seat that has not submitted once
// the round timer expires.
func (mh *matchHandler) enforceRoundDeadline(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, nk runtime.NakamaModule) {
	if state.Game == nil || state.Game.Phase != domain.PhasePlaying {
		return
	}
	if state.RoundDeadlineTick == 0 || state.Tick < state.RoundDeadlineTick {
		return
	}

	round := state.Game.Round
	for _, userID := range state.Seats {
		// Resolving the first forfeit can end the game or advance the round.
		if state.Game == nil || state.Game.Phase != domain.PhasePlaying || state.Game.Round != round {
			break
		}
		if userID == "" {
			continue
		}
		pl, ok := state.Game.Players[userID]
		if !ok || pl.Result != nil {
			continue
		}
		logger.Info("enforceRoundDeadline: Forfeiting %s in round %d.", userID, round)
		events, err := state.App.ForfeitRound(state.Game, userID)
		if err != nil {
			logger.Error("enforceRoundDeadline: Forfeit failed for %s: %v", userID, err)
			continue
		}
		for _, ev := range events {
			mh.broadcastEvent(ctx, state, dispatcher, logger, nk, ev)
		}
	}
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, nk runtime.NakamaModule) {
	// 1. Auto-fill the lobby with a bot opponent when one human waits alone.
	if state.Game == nil {
		humanCount := state.GetHumanPlayerCount()
		if humanCount == 1 && state.GetOpenSeatsCount() > 0 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= int64(state.BotAutoFillDelay) {
				added := false
				for i, seat := range state.Seats {
					if seat == "" {
						identity := bot.GetBotIdentity(i)
						botID := identity.UserID
						state.Seats[i] = botID

						agent, err := bot.NewAgent(botID)
						if err != nil {
							logger.Error("Failed to create bot agent for %s: %v", botID, err)
						} else {
							state.Bots[botID] = agent
						}

						logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Username, botID, i)
						added = true
					}
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastMatchState(ctx, state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
	}

	// 2. Submit bot expressions after a human-feeling delay.
	if state.Game != nil && state.Game.Phase == domain.PhasePlaying {
		pending := mh.pendingBot(state)
		if pending == "" {
			state.BotWaitUntil = 0
			return
		}

		if state.BotWaitUntil == 0 {
			delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
			state.BotWaitUntil = state.Tick + int64(delay)
			logger.Debug("processBots: Bot %s will act at tick %d (current %d)", pending, state.BotWaitUntil, state.Tick)
			return
		}

		if state.Tick < state.BotWaitUntil {
			return
		}
		state.BotWaitUntil = 0

		agent, exists := state.Bots[pending]
		if !exists {
			var err error
			agent, err = bot.NewAgent(pending)
			if err != nil {
				logger.Error("processBots: Failed to create fallback agent: %v", err)
				return
			}
			state.Bots[pending] = agent
		}

		move, err := agent.Play(state.Game)
		if err != nil {
			logger.Error("processBots: Bot %s failed to calculate move: %v", pending, err)
			return
		}

		var events []app.Event
		if move.Forfeit {
			events, err = state.App.ForfeitRound(state.Game, pending)
		} else {
			events, err = state.App.SubmitExpression(state.Game, pending, move.Expression)
		}
		if err != nil {
			logger.Error("processBots: Bot %s move rejected: %v", pending, err)
			return
		}
		for _, ev := range events {
			mh.broadcastEvent(ctx, state, dispatcher, logger, nk, ev)
		}
	}
}

// pendingBot returns the first bot seat that still owes a submission
// this round, or "" if none.
func (mh *matchHandler) pendingBot(state *MatchState) string {
	for _, userID := range state.Seats {
		if userID == "" || !isBotUserId(userID) {
			continue
		}
		pl, ok := state.Game.Players[userID]
		if ok && pl.Result == nil {
			return userID
		}
	}
	return ""
}

func (mh *matchHandler) broadcastMatchState(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var playerStates []WirePlayerState
	for i, userId := range state.Seats {
		if userId == "" {
			continue
		}

		displayName := userId
		if p, exists := state.Presences[userId]; exists {
			displayName = p.GetUsername()
		} else if name := bot.GetBotDisplayName(userId); name != "" {
			displayName = name
		}

		roundsWon := 0
		if state.Game != nil {
			if pl, ok := state.Game.Players[userId]; ok {
				roundsWon = pl.RoundsWon
			}
		}

		balance := int64(0)
		if state.Economy != nil {
			if b, err := state.Economy.GetBalance(ctx, userId); err == nil {
				balance = b
			}
		}

		playerStates = append(playerStates, WirePlayerState{
			UserID:      userId,
			Seat:        i,
			IsOwner:     i == state.OwnerSeat,
			DisplayName: displayName,
			RoundsWon:   roundsWon,
			Balance:     balance,
		})
	}

	snapshot := WireMatchSnapshot{
		Seats:     state.Seats[:],
		OwnerSeat: state.OwnerSeat,
		Tick:      state.Tick,
		Phase:     "lobby",
		Players:   playerStates,
	}
	if state.Game != nil {
		snapshot.Phase = string(state.Game.Phase)
		snapshot.Round = state.Game.Round
		snapshot.Target = state.Game.Target
	}

	bytes, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal snapshot: %v", err)
		return
	}
	dispatcher.BroadcastMessage(OpMatchSnapshot, bytes, nil, nil, true)
}

func (mh *matchHandler) seatOf(state *MatchState, userID string) int {
	for i, seatUserId := range state.Seats {
		if seatUserId == userID {
			return i
		}
	}
	return -1
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, nk runtime.NakamaModule, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := mh.seatOf(state, senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Game != nil {
		logger.Warn("StartGame: Game already in progress.")
		return
	}
	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}

	activeCount := state.GetOccupiedSeatCount()
	if activeCount < app.MinPlayersToStartGame {
		logger.Warn("StartGame: Cannot start with %d players. Need at least %d.", activeCount, app.MinPlayersToStartGame)
		return
	}

	baseBet := config.GetBaseBet("") // Uses default tier

	game, events, err := state.App.StartGame(state.Seats[:], baseBet, config.GetRoundsToWin())
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		return
	}

	state.Game = game
	state.DeadlineRound = 0
	state.BotWaitUntil = 0

	mh.updateLabel(state, dispatcher, logger)

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, nk, ev)
	}

	logger.Info("StartGame: Game started with %d players.", activeCount)
}

func (mh *matchHandler) handleSubmitExpression(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, nk runtime.NakamaModule, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	if state.Game == nil {
		logger.Warn("handleSubmitExpression: Game not started.")
		return
	}

	var wire WireExpression
	if err := json.Unmarshal(msg.GetData(), &wire); err != nil {
		logger.Error("handleSubmitExpression: Failed to unmarshal expression: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "malformed expression payload")
		return
	}

	expr, err := expressionFromWire(wire)
	if err != nil {
		logger.Warn("handleSubmitExpression: User %s sent bad operator: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	events, err := state.App.SubmitExpression(state.Game, senderID, expr)
	if err != nil {
		logger.Warn("handleSubmitExpression: User %s submission rejected: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, nk, ev)
	}
}

func (mh *matchHandler) handleForfeitRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, nk runtime.NakamaModule, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	if state.Game == nil {
		logger.Warn("handleForfeitRound: Game not started.")
		return
	}

	events, err := state.App.ForfeitRound(state.Game, senderID)
	if err != nil {
		logger.Warn("handleForfeitRound: User %s failed to forfeit: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, nk, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, nk runtime.NakamaModule, ev app.Event) {
	var opCode int64
	var payload interface{}

	switch ev.Kind {
	case app.EventGameStarted:
		opCode = OpGameStarted
		p := ev.Payload.(app.GameStartedPayload)
		payload = WireGameStarted{
			Phase:       string(p.Phase),
			RoundsToWin: p.RoundsToWin,
			BaseBet:     p.BaseBet,
		}
	case app.EventRoundStarted:
		opCode = OpRoundStarted
		p := ev.Payload.(app.RoundStartedPayload)
		// Arm the submission deadline for the new round.
		state.DeadlineRound = p.Round
		state.RoundDeadlineTick = state.Tick + int64(state.RoundDuration)
		state.BotWaitUntil = 0
		payload = WireRoundStarted{
			Round:            p.Round,
			Target:           p.Target,
			SecondsRemaining: int64(state.RoundDuration),
		}
	case app.EventHandDealt:
		opCode = OpHandDealt
		p := ev.Payload.(app.HandDealtPayload)
		payload = WireHandDealt{
			Seat:   p.Seat,
			Round:  p.Round,
			Target: p.Target,
			Hand:   handToWire(p.Hand),
		}
	case app.EventExpressionSubmitted:
		opCode = OpExpressionSubmitted
		p := ev.Payload.(app.ExpressionSubmittedPayload)
		payload = WireExpressionSubmitted{Seat: p.Seat, Round: p.Round}
	case app.EventRoundForfeited:
		opCode = OpRoundForfeited
		p := ev.Payload.(app.RoundForfeitedPayload)
		payload = WireRoundForfeited{Seat: p.Seat, Round: p.Round}
	case app.EventRoundResolved:
		opCode = OpRoundResolved
		p := ev.Payload.(app.RoundResolvedPayload)
		outcomes := make([]WireSeatOutcome, 0, len(p.Outcomes))
		for _, o := range p.Outcomes {
			distance := o.Distance
			if math.IsInf(distance, 1) {
				distance = -1
			}
			wireOutcome := WireSeatOutcome{
				UserID:    o.UserID,
				Seat:      o.Seat,
				Submitted: o.Submitted,
				Valid:     o.Valid,
				Value:     o.Value,
				Distance:  distance,
			}
			if o.Expression != nil {
				wireOutcome.Expression = expressionToWire(o.Expression)
				wireOutcome.Display = o.Expression.String()
			}
			outcomes = append(outcomes, wireOutcome)
		}
		payload = WireRoundResolved{
			Round:      p.Round,
			Target:     p.Target,
			WinnerSeat: p.WinnerSeat,
			Outcomes:   outcomes,
			RoundsWon:  p.RoundsWon,
		}
	case app.EventGameEnded:
		opCode = OpGameEnded
		p := ev.Payload.(app.GameEndedPayload)
		payload = WireGameEnded{
			FinishOrder:    p.FinishOrder,
			BalanceChanges: p.BalanceChanges,
		}

		mh.settleMatch(ctx, state, logger, nk, p)

		// Game ended, clear game state and update label back to lobby
		state.Game = nil
		state.RoundDeadlineTick = 0
		state.DeadlineRound = 0
		mh.updateLabel(state, dispatcher, logger)
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. they are bots),
		// we MUST NOT broadcast to everyone else.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// settleMatch applies wallet deltas and records results for the
// receipt RPC. Bots carry no wallet and get no record.
func (mh *matchHandler) settleMatch(ctx context.Context, state *MatchState, logger runtime.Logger, nk runtime.NakamaModule, p app.GameEndedPayload) {
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	if state.Economy != nil {
		updates := make([]ports.WalletUpdate, 0, len(p.BalanceChanges))
		for userID, amount := range p.BalanceChanges {
			if isBotUserId(userID) {
				continue
			}
			updates = append(updates, ports.WalletUpdate{
				UserID: userID,
				Amount: amount,
				Metadata: map[string]interface{}{
					"match_id": matchID,
					"reason":   "match_settlement",
				},
			})
		}
		if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
			logger.Error("Failed to update balances: %v", err)
		}
	}

	if nk == nil || state.Game == nil {
		return
	}

	winnerID := ""
	if len(p.FinishOrder) > 0 {
		winnerID = p.FinishOrder[0]
	}

	writes := make([]*runtime.StorageWrite, 0, len(p.FinishOrder))
	for _, userID := range p.FinishOrder {
		if isBotUserId(userID) {
			continue
		}
		roundsWon := 0
		if pl, ok := state.Game.Players[userID]; ok {
			roundsWon = pl.RoundsWon
		}
		record := MatchResultRecord{
			MatchID:   matchID,
			UserID:    userID,
			Won:       userID == winnerID,
			Net:       p.BalanceChanges[userID],
			RoundsWon: roundsWon,
			EndedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		value, err := json.Marshal(record)
		if err != nil {
			logger.Error("settleMatch: Failed to marshal result record: %v", err)
			continue
		}
		writes = append(writes, &runtime.StorageWrite{
			Collection:      matchResultsCollection,
			Key:             matchID,
			UserID:          userID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		})
	}
	if len(writes) > 0 {
		if _, err := nk.StorageWrite(ctx, writes); err != nil {
			logger.Error("settleMatch: Failed to write match results: %v", err)
		}
	}
}

// sendError sends an error payload to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(WireGameError{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal error payload: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	matchState := "lobby"
	if state.Game != nil {
		matchState = "playing"
	}

	labelBytes, err := json.Marshal(WireMatchLabel{
		Open:  state.GetOpenSeatsCount(),
		State: matchState,
		Game:  "numclash",
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
