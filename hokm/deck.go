package hokm

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"hokm-lite/card"
)

// Commitment is the fairness proof for a shuffled deck: the hash is published
// before any card is revealed, the salt after the hand, so clients can check
// the dealt deck matches what was committed.
type Commitment struct {
	Hash string
	Salt string
}

// BuildDeck returns the mode-specific deck in deterministic pre-shuffle order:
// the full 52 cards for 2- and 4-player, 51 (diamond 2 removed) for 3-player.
func BuildDeck(mode Mode) []card.Card {
	full := card.FullDeck()
	if mode != ModeThreePlayer {
		return full
	}
	deck := make([]card.Card, 0, len(full)-1)
	for _, c := range full {
		if c == RemovedCard3P {
			continue
		}
		deck = append(deck, c)
	}
	return deck
}

// Shuffle performs a Fisher-Yates shuffle drawing each swap index from
// crypto/rand. The input is not mutated. It fails only if the system
// randomness source is unavailable, which aborts match start entirely.
func Shuffle(deck []card.Card) ([]card.Card, error) {
	shuffled := make([]card.Card, len(deck))
	copy(shuffled, deck)

	for i := len(shuffled) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("randomness source unavailable: %w", err)
		}
		j := n.Int64()
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled, nil
}

// Commit generates a fresh 32-byte salt and hashes the ordered card ids with it.
func Commit(deck []card.Card) (Commitment, error) {
	saltBytes := make([]byte, 32)
	if _, err := rand.Read(saltBytes); err != nil {
		return Commitment{}, fmt.Errorf("randomness source unavailable: %w", err)
	}
	salt := hex.EncodeToString(saltBytes)
	return Commitment{Hash: deckDigest(deck, salt), Salt: salt}, nil
}

// Verify recomputes the commitment hash for deck+salt and compares.
func Verify(deck []card.Card, hash, salt string) bool {
	computed := deckDigest(deck, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

func deckDigest(deck []card.Card, salt string) string {
	ids := make([]string, len(deck))
	for i, c := range deck {
		ids[i] = c.ID()
	}
	sum := sha256.Sum256([]byte(strings.Join(ids, ",") + salt))
	return hex.EncodeToString(sum[:])
}

// Deal consumes the deck front-to-back in rounds. pattern holds the per-round
// card counts; the result maps player index to the cards drawn that round.
// A pattern that needs more cards than the deck holds is a caller contract
// violation.
func Deal(deck []card.Card, playerCount int, pattern []int) ([]map[int][]card.Card, error) {
	need := 0
	for _, n := range pattern {
		need += n * playerCount
	}
	if need > len(deck) {
		return nil, ErrPatternOverflow
	}

	rounds := make([]map[int][]card.Card, 0, len(pattern))
	idx := 0
	for _, perPlayer := range pattern {
		round := make(map[int][]card.Card, playerCount)
		for player := 0; player < playerCount; player++ {
			cards := make([]card.Card, perPlayer)
			copy(cards, deck[idx:idx+perPlayer])
			idx += perPlayer
			round[player] = cards
		}
		rounds = append(rounds, round)
	}
	return rounds, nil
}

// CombineRounds flattens dealt rounds into final per-player hands.
func CombineRounds(rounds []map[int][]card.Card, playerCount int) map[int][]card.Card {
	hands := make(map[int][]card.Card, playerCount)
	for player := 0; player < playerCount; player++ {
		for _, round := range rounds {
			hands[player] = append(hands[player], round[player]...)
		}
	}
	return hands
}
