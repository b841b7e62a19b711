package hokm

import "sort"

// HandResult is the settlement of one completed hand.
type HandResult struct {
	WinnerKey    string // player id, or team key in 4-player
	TricksTaken  int
	Kot          bool // shutout: losers took zero tricks
	HandsAwarded int  // 1 plus the Kot bonus
}

// EvaluateHand inspects a trick tally and returns the settlement once some
// entity has reached the winning trick count, nil while the hand is still
// open. Kot requires every other entity to sit at zero.
func EvaluateHand(scores map[string]int, mode Mode, kotBonus int) *HandResult {
	threshold := TricksToWin[mode]
	winner := ""
	for key, n := range scores {
		if n >= threshold {
			winner = key
			break
		}
	}
	if winner == "" {
		return nil
	}

	kot := true
	for key, n := range scores {
		if key != winner && n > 0 {
			kot = false
			break
		}
	}
	result := &HandResult{
		WinnerKey:    winner,
		TricksTaken:  scores[winner],
		Kot:          kot,
		HandsAwarded: 1,
	}
	if kot {
		result.HandsAwarded += kotBonus
	}
	return result
}

// EvaluateExhaustedHand settles a hand whose cards ran out with nobody at
// the threshold, which a 3-player hand can do by splitting 6-6-5. The top
// scorer takes the hand, earliest seat on ties. No Kot is possible here.
func EvaluateExhaustedHand(scores map[string]int, order []string) *HandResult {
	winner := ""
	best := -1
	for _, key := range order {
		if n, ok := scores[key]; ok && n > best {
			winner = key
			best = n
		}
	}
	if winner == "" {
		return nil
	}
	return &HandResult{
		WinnerKey:    winner,
		TricksTaken:  best,
		HandsAwarded: 1,
	}
}

// ApplyHandResult returns a new match score with the hand award credited.
// The input map is never mutated.
func ApplyHandResult(matchScore map[string]int, result *HandResult) map[string]int {
	next := make(map[string]int, len(matchScore))
	for k, v := range matchScore {
		next[k] = v
	}
	next[result.WinnerKey] += result.HandsAwarded
	return next
}

// MatchComplete reports whether any entity has reached the target hand count.
func MatchComplete(matchScore map[string]int, targetHands int) (string, bool) {
	for key, hands := range matchScore {
		if hands >= targetHands {
			return key, true
		}
	}
	return "", false
}

// Standing is one leaderboard row.
type Standing struct {
	Key   string `json:"key"`
	Hands int    `json:"hands"`
}

// Leaderboard orders entities by hands won, descending. Ties keep the given
// seating order.
func Leaderboard(matchScore map[string]int, order []string) []Standing {
	rows := make([]Standing, 0, len(order))
	for _, key := range order {
		if hands, ok := matchScore[key]; ok {
			rows = append(rows, Standing{Key: key, Hands: hands})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Hands > rows[j].Hands
	})
	return rows
}

// PlayerStats aggregates a player's record across finished matches.
type PlayerStats struct {
	PlayerID      string `json:"playerId"`
	MatchesPlayed int    `json:"matchesPlayed"`
	MatchesWon    int    `json:"matchesWon"`
	HandsWon      int    `json:"handsWon"`
	TricksWon     int    `json:"tricksWon"`
}

// AddMatch folds one finished match into the aggregate.
func (ps *PlayerStats) AddMatch(won bool, handsWon, tricksWon int) {
	ps.MatchesPlayed++
	if won {
		ps.MatchesWon++
	}
	ps.HandsWon += handsWon
	ps.TricksWon += tricksWon
}
