package card

import "fmt"

type Suit byte

const (
	Spades Suit = iota
	Hearts
	Clubs
	Diamonds
)

// Suits lists all suits in deck-construction order.
var Suits = []Suit{Spades, Hearts, Clubs, Diamonds}

func (s Suit) String() string {
	switch s {
	case Spades:
		return "spades"
	case Hearts:
		return "hearts"
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	}
	return "?"
}

// ParseSuit parses a suit name as produced by Suit.String.
func ParseSuit(name string) (Suit, error) {
	switch name {
	case "spades":
		return Spades, nil
	case "hearts":
		return Hearts, nil
	case "clubs":
		return Clubs, nil
	case "diamonds":
		return Diamonds, nil
	}
	return 0, fmt.Errorf("invalid suit: %s", name)
}
