package app

// MinPlayersToStartGame defines the minimum number of occupied seats
// required to start a game. Centralized so tests or local runs can
// adjust the rule without touching multiple call sites.
const MinPlayersToStartGame = 2

// DefaultRoundsToWin is the match length when config does not say
// otherwise: first side to three round wins takes the pot.
const DefaultRoundsToWin = 3
