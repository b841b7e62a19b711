package card

import "testing"

func TestCardIDRoundTrip(t *testing.T) {
	for _, c := range FullDeck() {
		parsed, err := FromID(c.ID())
		if err != nil {
			t.Fatalf("FromID(%q) err: %v", c.ID(), err)
		}
		if parsed != c {
			t.Fatalf("round trip mismatch: %v -> %q -> %v", c, c.ID(), parsed)
		}
	}
}

func TestCardIDFormat(t *testing.T) {
	cases := []struct {
		card Card
		id   string
	}{
		{Make(Hearts, 14), "hearts_A"},
		{Make(Spades, 2), "spades_2"},
		{Make(Clubs, 10), "clubs_10"},
		{Make(Diamonds, 12), "diamonds_Q"},
	}
	for _, tc := range cases {
		if got := tc.card.ID(); got != tc.id {
			t.Errorf("ID() = %q, want %q", got, tc.id)
		}
	}
}

func TestFromIDRejectsGarbage(t *testing.T) {
	for _, id := range []string{"", "hearts", "hearts_1", "hearts_15", "stars_A", "hearts_A_extra_x"} {
		if _, err := FromID(id); err == nil {
			t.Errorf("FromID(%q) expected error", id)
		}
	}
}

func TestFullDeckUniqueAndOrdered(t *testing.T) {
	deck := FullDeck()
	if len(deck) != 52 {
		t.Fatalf("expected 52 cards, got %d", len(deck))
	}
	seen := make(map[Card]bool, 52)
	for _, c := range deck {
		if seen[c] {
			t.Fatalf("duplicate card %v", c)
		}
		seen[c] = true
	}
	// Rank order within each suit is strictly ascending.
	for i := 1; i < len(deck); i++ {
		if deck[i].Suit() == deck[i-1].Suit() && deck[i].Rank() <= deck[i-1].Rank() {
			t.Fatalf("rank order broken at %d: %v after %v", i, deck[i], deck[i-1])
		}
	}
}
