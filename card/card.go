package card

import (
	"fmt"
	"strings"
)

// Card is a packed card value.
//
// Encoding:
// - high 4 bits: suit (0:Spades, 1:Hearts, 2:Clubs, 3:Diamonds)
// - low 4 bits: rank (2..10, 11:J, 12:Q, 13:K, 14:A)
//
// Rank values carry the trick-comparison order directly: 2 < 3 < ... < K < A.
type Card byte

const CardInvalid Card = 0

// Rank returns the comparison value 2-14 (A high).
func (c Card) Rank() byte {
	return byte(c & 0x0F)
}

// Suit returns the card's suit (high 4 bits).
func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

// ID returns the stable addressing key, e.g. "hearts_A" or "clubs_10".
// It is the only card identity exchanged with clients and stored in history.
func (c Card) ID() string {
	return fmt.Sprintf("%s_%s", c.Suit(), rankLabel(c.Rank()))
}

func (c Card) String() string {
	if c == CardInvalid {
		return "invalid"
	}
	return c.ID()
}

// Make builds a card from a suit and a rank value (2-14).
func Make(s Suit, rank byte) Card {
	return Card(byte(s)<<4 | rank)
}

// FromID parses an addressing key produced by Card.ID.
func FromID(id string) (Card, error) {
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 {
		return CardInvalid, fmt.Errorf("invalid card id: %s", id)
	}
	suit, err := ParseSuit(parts[0])
	if err != nil {
		return CardInvalid, err
	}
	rank, err := parseRank(parts[1])
	if err != nil {
		return CardInvalid, err
	}
	return Make(suit, rank), nil
}

func rankLabel(rank byte) string {
	switch rank {
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	case 14:
		return "A"
	default:
		return fmt.Sprintf("%d", rank)
	}
}

func parseRank(label string) (byte, error) {
	switch strings.ToUpper(label) {
	case "J":
		return 11, nil
	case "Q":
		return 12, nil
	case "K":
		return 13, nil
	case "A":
		return 14, nil
	case "10":
		return 10, nil
	case "2", "3", "4", "5", "6", "7", "8", "9":
		return label[0] - '0', nil
	default:
		return 0, fmt.Errorf("invalid rank: %s", label)
	}
}
