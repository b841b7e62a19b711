package card

// FullDeck returns all 52 cards in suit-major, rank-minor order.
// This is the deterministic pre-shuffle ordering every deck starts from.
func FullDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, s := range Suits {
		for rank := byte(2); rank <= 14; rank++ {
			deck = append(deck, Make(s, rank))
		}
	}
	return deck
}
