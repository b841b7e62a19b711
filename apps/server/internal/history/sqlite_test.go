package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "hokm_test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleMatch(id string) MatchRecord {
	return MatchRecord{
		ID:          id,
		RoomID:      "room-1",
		Mode:        4,
		TargetHands: 3,
		KotBonus:    1,
		Players: []PlayerRef{
			{ID: "amir", Name: "amir", Team: 0},
			{ID: "bita", Name: "bita", Team: 1},
			{ID: "cyrus", Name: "cyrus", Team: 0},
			{ID: "dara", Name: "dara", Team: 1},
		},
		StartedAt: time.Now(),
	}
}

func TestMatchLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.RecordMatchStart(sampleMatch("m1"))

	got, err := s.GetMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if got.RoomID != "room-1" || got.Mode != 4 || len(got.Players) != 4 {
		t.Fatalf("match round trip mismatch: %+v", got)
	}
	if got.WinnerKey != "" || got.FinishedAt != nil {
		t.Fatalf("unfinished match has terminal fields: %+v", got)
	}

	finished := time.Now()
	s.RecordMatchEnd("m1", "team_0", finished, map[string]int{"team_0": 3, "team_1": 1})

	got, err = s.GetMatch(ctx, "m1")
	if err != nil {
		t.Fatalf("get finished match: %v", err)
	}
	if got.WinnerKey != "team_0" {
		t.Fatalf("winner %q, want team_0", got.WinnerKey)
	}
	if got.FinishedAt == nil {
		t.Fatal("finished match missing finish time")
	}
	if got.FinalScore["team_0"] != 3 || got.FinalScore["team_1"] != 1 {
		t.Fatalf("final score %v", got.FinalScore)
	}
}

func TestGetMatchNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetMatch(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestHandsAndTricks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	s.RecordMatchStart(sampleMatch("m1"))

	started := time.Now().Add(-time.Minute)
	s.RecordHand(HandRecord{
		ID:              "h1",
		MatchID:         "m1",
		HandNumber:      1,
		TrumpSuit:       "spades",
		TrumpSelectedBy: "amir",
		LeaderID:        "amir",
		DealPattern:     []int{5, 4, 4},
		DeckHash:        "abc123",
		DeckSalt:        "salt",
		WinnerKey:       "team_0",
		Kot:             true,
		HandsAwarded:    2,
		Scores:          map[string]int{"team_0": 7, "team_1": 0},
		InitialHands:    map[string][]string{"amir": {"AS", "KS"}},
		StartedAt:       started,
		CompletedAt:     time.Now(),
	})
	s.RecordHand(HandRecord{
		ID: "h2", MatchID: "m1", HandNumber: 2, TrumpSuit: "hearts",
		LeaderID: "amir", WinnerKey: "team_1", HandsAwarded: 1,
		Scores:    map[string]int{"team_0": 3, "team_1": 7},
		StartedAt: time.Now(), CompletedAt: time.Now(),
	})

	hands, err := s.ListHands(ctx, "m1")
	if err != nil {
		t.Fatalf("list hands: %v", err)
	}
	if len(hands) != 2 {
		t.Fatalf("got %d hands, want 2", len(hands))
	}
	if hands[0].HandNumber != 1 || hands[1].HandNumber != 2 {
		t.Fatalf("hands out of order: %d, %d", hands[0].HandNumber, hands[1].HandNumber)
	}
	h := hands[0]
	if !h.Kot || h.HandsAwarded != 2 || h.TrumpSuit != "spades" {
		t.Fatalf("hand round trip mismatch: %+v", h)
	}
	if h.TrumpSelectedBy != "amir" || len(h.DealPattern) != 3 || h.DealPattern[0] != 5 {
		t.Fatalf("hand round trip mismatch: %+v", h)
	}
	if h.Scores["team_0"] != 7 {
		t.Fatalf("scores %v", h.Scores)
	}
	if len(h.InitialHands["amir"]) != 2 {
		t.Fatalf("initial hands %v", h.InitialHands)
	}

	s.RecordTrick(TrickRecord{
		ID: "t1", HandID: "h1", TrickNumber: 1,
		LeadPlayerID: "amir", LeadSuit: "spades",
		WinnerID: "amir", WinningCardID: "AS",
		Played: []PlayedCard{
			{CardID: "AS", PlayerID: "amir", PlayedAtMs: 1000},
			{CardID: "2S", PlayerID: "bita", AutoPlayed: true, PlayedAtMs: 2000},
		},
		StartedAt: started, CompletedAt: time.Now(),
	})

	tricks, err := s.ListTricks(ctx, "h1")
	if err != nil {
		t.Fatalf("list tricks: %v", err)
	}
	if len(tricks) != 1 {
		t.Fatalf("got %d tricks, want 1", len(tricks))
	}
	tr := tricks[0]
	if tr.WinnerID != "amir" || tr.WinningCardID != "AS" || len(tr.Played) != 2 {
		t.Fatalf("trick round trip mismatch: %+v", tr)
	}
	if !tr.Played[1].AutoPlayed {
		t.Fatal("auto play flag lost")
	}
}

func TestListPlayerMatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"m1", "m2", "m3"} {
		s.RecordMatchStart(sampleMatch(id))
	}
	other := sampleMatch("m4")
	other.Players = []PlayerRef{{ID: "eve", Name: "eve"}, {ID: "farid", Name: "farid"}}
	other.Mode = 2
	s.RecordMatchStart(other)

	matches, err := s.ListPlayerMatches(ctx, "amir", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches for amir, want 3", len(matches))
	}
	for _, m := range matches {
		if m.ID == "m4" {
			t.Fatal("listed a match amir did not play")
		}
	}

	matches, err = s.ListPlayerMatches(ctx, "amir", 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("limit ignored: got %d", len(matches))
	}

	matches, err = s.ListPlayerMatches(ctx, "nobody", 10)
	if err != nil {
		t.Fatalf("list empty: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("got %d matches for unknown player", len(matches))
	}
}

func TestNoopStoreIsSilent(t *testing.T) {
	s := NewNoopStore()
	s.RecordMatchStart(sampleMatch("m1"))
	if _, err := s.GetMatch(context.Background(), "m1"); err != ErrNotFound {
		t.Fatalf("noop get: %v, want ErrNotFound", err)
	}
	hands, err := s.ListHands(context.Background(), "m1")
	if err != nil || len(hands) != 0 {
		t.Fatalf("noop hands: %v %v", hands, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("noop close: %v", err)
	}
}
