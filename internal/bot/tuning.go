package bot

// BotTuning controls how far a strategy is allowed to drift from the
// exhaustive-search result.
type BotTuning struct {
	// MistakeChance is the probability of discarding the search result
	// and playing the plain left-to-right layout instead.
	MistakeChance float64
	// AcceptableDistance keeps the mid tier from looking unnaturally
	// sharp: when the plain layout already lands this close to the
	// target, the bot settles for it without searching.
	AcceptableDistance float64
}

// smartBotTuning makes the mid tier beatable without being useless.
var smartBotTuning = BotTuning{
	MistakeChance:      0.25,
	AcceptableDistance: 2.0,
}
