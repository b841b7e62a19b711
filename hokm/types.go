package hokm

import "hokm-lite/card"

// Mode is the player count for a match (2, 3 or 4).
type Mode int

const (
	ModeTwoPlayer   Mode = 2
	ModeThreePlayer Mode = 3
	ModeFourPlayer  Mode = 4
)

func (m Mode) Valid() bool {
	return m == ModeTwoPlayer || m == ModeThreePlayer || m == ModeFourPlayer
}

// Phase is the room state machine phase.
type Phase byte

const (
	PhaseWaiting Phase = iota
	PhaseTrumpSelection
	PhasePlaying
	PhaseHandComplete
	PhaseMatchComplete
)

var PhaseDictionary = map[Phase]string{
	PhaseWaiting:        "waiting",
	PhaseTrumpSelection: "trump_selection",
	PhasePlaying:        "playing",
	PhaseHandComplete:   "hand_complete",
	PhaseMatchComplete:  "match_complete",
}

func (p Phase) String() string { return PhaseDictionary[p] }

// DealPatterns maps each mode to its per-round dealing counts.
// The first round is dealt before trump selection, the rest after.
var DealPatterns = map[Mode][]int{
	ModeTwoPlayer:   {5, 4, 4, 5, 4, 4}, // 26 cards each
	ModeThreePlayer: {5, 4, 4, 4},       // 17 cards each (51-card deck)
	ModeFourPlayer:  {5, 4, 4},          // 13 cards each
}

// TricksToWin is the per-hand win threshold for each mode.
var TricksToWin = map[Mode]int{
	ModeTwoPlayer:   13,
	ModeThreePlayer: 7,
	ModeFourPlayer:  7,
}

const (
	DefaultTurnTimer   = 15 // seconds
	DefaultKotBonus    = 1  // extra hands for a clean-sweep victory
	DefaultTargetHands = 3
)

// RemovedCard3P is excluded from the deck in 3-player mode so 51 cards
// split evenly.
var RemovedCard3P = card.Make(card.Diamonds, 2)

// TeamKey returns the synthetic scoring key for a team index ("team_0"/"team_1").
func TeamKey(team int) string {
	if team == 0 {
		return "team_0"
	}
	return "team_1"
}
