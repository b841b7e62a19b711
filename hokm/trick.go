package hokm

import "hokm-lite/card"

// trumpNone marks "no trump involved" in comparisons. A play can be validated
// before trump selection only as the first card of a trick.
const trumpNone = card.Suit(0xF)

// ValidatePlay checks the legality of playing c from hand given the trick's
// lead suit. leadSet is false for the first card of a trick, trumpSet is false
// before trump selection.
func ValidatePlay(c card.Card, hand []card.Card, leadSuit card.Suit, leadSet bool) PlayResult {
	if !contains(hand, c) {
		return rejected(ReasonCardNotInHand)
	}
	if !leadSet {
		return accepted()
	}
	if hasSuit(hand, leadSuit) && c.Suit() != leadSuit {
		return rejected(ReasonMustFollowSuit)
	}
	return accepted()
}

// DetermineWinner resolves a complete trick: the highest trump wins if any
// trump was played, otherwise the highest card of the lead suit. Empty input
// is a caller contract violation.
func DetermineWinner(played []PlayedCard, leadSuit, trumpSuit card.Suit) (string, error) {
	if len(played) == 0 {
		return "", ErrEmptyTrick
	}

	winner := ""
	var best card.Card
	for _, pc := range played {
		if pc.Card.Suit() != trumpSuit {
			continue
		}
		if winner == "" || pc.Card.Rank() > best.Rank() {
			winner, best = pc.PlayerID, pc.Card
		}
	}
	if winner != "" {
		return winner, nil
	}

	for _, pc := range played {
		if pc.Card.Suit() != leadSuit {
			continue
		}
		if winner == "" || pc.Card.Rank() > best.Rank() {
			winner, best = pc.PlayerID, pc.Card
		}
	}
	return winner, nil
}

// AutoPlay is the deterministic fallback selection made when a turn times out.
type AutoPlay struct {
	Card   card.Card
	Reason string
}

// SelectAutoPlay picks the timeout card: lowest of the lead suit if the hand
// can follow, else the lowest non-trump card, else the lowest card (all trump).
// The hand must be non-empty.
func SelectAutoPlay(hand []card.Card, leadSuit card.Suit, leadSet bool, trumpSuit card.Suit) AutoPlay {
	if leadSet && hasSuit(hand, leadSuit) {
		return AutoPlay{Card: lowestOfSuit(hand, leadSuit), Reason: "lowest_of_lead_suit"}
	}

	lowestNonTrump := card.CardInvalid
	for _, c := range hand {
		if c.Suit() == trumpSuit {
			continue
		}
		if lowestNonTrump == card.CardInvalid || c.Rank() < lowestNonTrump.Rank() {
			lowestNonTrump = c
		}
	}
	if lowestNonTrump != card.CardInvalid {
		return AutoPlay{Card: lowestNonTrump, Reason: "lowest_non_trump"}
	}

	return AutoPlay{Card: lowest(hand), Reason: "lowest_trump"}
}

// DetectRevoke reports whether the played card broke the follow-suit rule
// given the pre-play hand. ValidatePlay already blocks the illegal case at
// submission time; this is an audit check against state-manipulation bugs.
func DetectRevoke(played card.Card, handBeforePlay []card.Card, leadSuit card.Suit, leadSet bool) bool {
	if !leadSet || played.Suit() == leadSuit {
		return false
	}
	return hasSuit(handBeforePlay, leadSuit)
}

func contains(hand []card.Card, c card.Card) bool {
	for _, h := range hand {
		if h == c {
			return true
		}
	}
	return false
}

func hasSuit(hand []card.Card, suit card.Suit) bool {
	for _, c := range hand {
		if c.Suit() == suit {
			return true
		}
	}
	return false
}

func lowest(cards []card.Card) card.Card {
	low := cards[0]
	for _, c := range cards[1:] {
		if c.Rank() < low.Rank() {
			low = c
		}
	}
	return low
}

func lowestOfSuit(hand []card.Card, suit card.Suit) card.Card {
	low := card.CardInvalid
	for _, c := range hand {
		if c.Suit() != suit {
			continue
		}
		if low == card.CardInvalid || c.Rank() < low.Rank() {
			low = c
		}
	}
	return low
}
