package hokm

import (
	"testing"

	"hokm-lite/card"
)

func TestBuildDeckSizes(t *testing.T) {
	cases := []struct {
		mode Mode
		want int
	}{
		{ModeTwoPlayer, 52},
		{ModeThreePlayer, 51},
		{ModeFourPlayer, 52},
	}
	for _, tc := range cases {
		deck := BuildDeck(tc.mode)
		if len(deck) != tc.want {
			t.Errorf("mode %d: deck size %d, want %d", tc.mode, len(deck), tc.want)
		}
		seen := make(map[card.Card]bool)
		for _, c := range deck {
			if seen[c] {
				t.Fatalf("mode %d: duplicate card %s", tc.mode, c.ID())
			}
			seen[c] = true
		}
	}
}

func TestBuildDeck3PRemovesDiamondsTwo(t *testing.T) {
	for _, c := range BuildDeck(ModeThreePlayer) {
		if c == RemovedCard3P {
			t.Fatalf("3-player deck contains %s", c.ID())
		}
	}
}

func TestShuffleIsBijection(t *testing.T) {
	original := BuildDeck(ModeTwoPlayer)
	for trial := 0; trial < 1000; trial++ {
		shuffled, err := Shuffle(original)
		if err != nil {
			t.Fatalf("shuffle: %v", err)
		}
		if len(shuffled) != len(original) {
			t.Fatalf("shuffle changed size: %d", len(shuffled))
		}
		seen := make(map[card.Card]bool, len(shuffled))
		for _, c := range shuffled {
			seen[c] = true
		}
		for _, c := range original {
			if !seen[c] {
				t.Fatalf("trial %d: card %s lost in shuffle", trial, c.ID())
			}
		}
	}
}

func TestShuffleDoesNotMutateInput(t *testing.T) {
	original := BuildDeck(ModeTwoPlayer)
	before := append([]card.Card(nil), original...)
	if _, err := Shuffle(original); err != nil {
		t.Fatalf("shuffle: %v", err)
	}
	for i := range original {
		if original[i] != before[i] {
			t.Fatalf("input mutated at index %d", i)
		}
	}
}

func TestCommitVerify(t *testing.T) {
	deck, err := Shuffle(BuildDeck(ModeFourPlayer))
	if err != nil {
		t.Fatalf("shuffle: %v", err)
	}
	com, err := Commit(deck)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if com.Hash == "" || com.Salt == "" {
		t.Fatal("empty commitment")
	}
	if !Verify(deck, com.Hash, com.Salt) {
		t.Fatal("verify rejected the committed deck")
	}

	// Any tampering must break verification.
	tampered := append([]card.Card(nil), deck...)
	tampered[0], tampered[1] = tampered[1], tampered[0]
	if Verify(tampered, com.Hash, com.Salt) {
		t.Fatal("verify accepted a reordered deck")
	}
	if Verify(deck, com.Hash, "00") {
		t.Fatal("verify accepted a wrong salt")
	}
}

func TestCommitSaltsDiffer(t *testing.T) {
	deck := BuildDeck(ModeTwoPlayer)
	a, err := Commit(deck)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	b, err := Commit(deck)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if a.Salt == b.Salt {
		t.Fatal("two commitments reused a salt")
	}
	if a.Hash == b.Hash {
		t.Fatal("distinct salts produced identical hashes")
	}
}

func TestDealPatterns(t *testing.T) {
	for mode, pattern := range DealPatterns {
		deck := BuildDeck(mode)
		rounds, err := Deal(deck, int(mode), pattern)
		if err != nil {
			t.Fatalf("mode %d: deal: %v", mode, err)
		}
		if len(rounds) != len(pattern) {
			t.Fatalf("mode %d: %d rounds, want %d", mode, len(rounds), len(pattern))
		}
		total := 0
		for r, round := range rounds {
			for seat := 0; seat < int(mode); seat++ {
				if len(round[seat]) != pattern[r] {
					t.Fatalf("mode %d round %d seat %d: got %d cards, want %d",
						mode, r, seat, len(round[seat]), pattern[r])
				}
				total += len(round[seat])
			}
		}
		if total != len(deck) {
			t.Fatalf("mode %d: dealt %d of %d cards", mode, total, len(deck))
		}

		// Every card lands with exactly one player.
		seen := make(map[card.Card]bool)
		for seat, cards := range CombineRounds(rounds, int(mode)) {
			for _, c := range cards {
				if seen[c] {
					t.Fatalf("mode %d: card %s dealt twice (seat %d)", mode, c.ID(), seat)
				}
				seen[c] = true
			}
		}
	}
}

func TestDealOverflow(t *testing.T) {
	deck := BuildDeck(ModeTwoPlayer)
	if _, err := Deal(deck, 2, []int{14, 14}); err != ErrPatternOverflow {
		t.Fatalf("got %v, want ErrPatternOverflow", err)
	}
}
