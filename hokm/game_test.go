package hokm

import (
	"sort"
	"testing"

	"hokm-lite/card"
)

func newTestGame(t *testing.T, mode Mode) *Game {
	t.Helper()
	players := make([]PlayerInfo, 0, int(mode))
	names := []string{"amir", "bita", "cyrus", "dara"}
	for i := 0; i < int(mode); i++ {
		players = append(players, PlayerInfo{ID: names[i], Name: names[i]})
	}
	g, err := NewGame("room-1", DefaultConfig(mode), players)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	return g
}

func TestNewGamePlayerCount(t *testing.T) {
	_, err := NewGame("r", DefaultConfig(ModeFourPlayer), []PlayerInfo{{ID: "a"}, {ID: "b"}})
	if err == nil {
		t.Fatal("seat count mismatch accepted")
	}
}

func TestNewGameTeamsByParity(t *testing.T) {
	g := newTestGame(t, ModeFourPlayer)
	teams := g.Teams()
	if teams["amir"] != 0 || teams["bita"] != 1 || teams["cyrus"] != 0 || teams["dara"] != 1 {
		t.Fatalf("bad team assignment: %v", teams)
	}
	score := g.MatchScore()
	if _, ok := score[TeamKey(0)]; !ok {
		t.Fatalf("match score not team-keyed: %v", score)
	}
	if len(score) != 2 {
		t.Fatalf("match score has %d entities, want 2", len(score))
	}
}

func TestNewGameTwoPlayerScoreKeys(t *testing.T) {
	g := newTestGame(t, ModeTwoPlayer)
	score := g.MatchScore()
	if len(score) != 2 {
		t.Fatalf("score entities %d, want 2", len(score))
	}
	if _, ok := score["amir"]; !ok {
		t.Fatalf("match score not player-keyed: %v", score)
	}
}

func TestStartHandDealsFirstRound(t *testing.T) {
	for _, mode := range []Mode{ModeTwoPlayer, ModeThreePlayer, ModeFourPlayer} {
		g := newTestGame(t, mode)
		info, err := g.StartHand("amir")
		if err != nil {
			t.Fatalf("mode %d: start hand: %v", mode, err)
		}
		if info.DeckHash == "" {
			t.Fatalf("mode %d: no deck commitment", mode)
		}
		if g.Phase() != PhaseTrumpSelection {
			t.Fatalf("mode %d: phase %s after deal", mode, g.Phase())
		}
		if g.CurrentTurnID() != "amir" {
			t.Fatalf("mode %d: turn %q, want leader", mode, g.CurrentTurnID())
		}
		first := DealPatterns[mode][0]
		for id, cards := range info.FirstRound {
			if len(cards) != first {
				t.Fatalf("mode %d: %s got %d cards before trump, want %d", mode, id, len(cards), first)
			}
		}
	}
}

func TestStartHandGuards(t *testing.T) {
	g := newTestGame(t, ModeFourPlayer)
	if _, err := g.StartHand("nobody"); err == nil {
		t.Fatal("unknown leader accepted")
	}
	if _, err := g.StartHand("amir"); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	if _, err := g.StartHand("amir"); err != ErrHandInProgress {
		t.Fatalf("got %v, want ErrHandInProgress", err)
	}
}

func TestSelectTrumpLeaderOnly(t *testing.T) {
	g := newTestGame(t, ModeFourPlayer)

	res, err := g.SelectTrump("amir", card.Hearts)
	if err != nil {
		t.Fatalf("select trump: %v", err)
	}
	if res.Valid || res.Reason != ReasonGameNotReady {
		t.Fatalf("trump before deal: %+v", res)
	}

	if _, err := g.StartHand("amir"); err != nil {
		t.Fatalf("start hand: %v", err)
	}

	res, err = g.SelectTrump("bita", card.Hearts)
	if err != nil {
		t.Fatalf("select trump: %v", err)
	}
	if res.Valid || res.Reason != ReasonNotLeader {
		t.Fatalf("non-leader trump: %+v", res)
	}

	res, err = g.SelectTrump("amir", card.Hearts)
	if err != nil || !res.Valid {
		t.Fatalf("leader trump rejected: %+v err=%v", res, err)
	}
	if g.Phase() != PhasePlaying {
		t.Fatalf("phase %s after trump", g.Phase())
	}
	if g.CurrentTurnID() != "amir" {
		t.Fatalf("trick 1 turn %q, want leader", g.CurrentTurnID())
	}
	for _, id := range g.PlayerIDs() {
		if n := len(g.HandOf(id)); n != 13 {
			t.Fatalf("%s holds %d cards after trump, want 13", id, n)
		}
	}

	res, err = g.SelectTrump("amir", card.Spades)
	if err != nil {
		t.Fatalf("select trump: %v", err)
	}
	if res.Valid || res.Reason != ReasonTrumpAlreadySet {
		t.Fatalf("second trump selection: %+v", res)
	}
}

func TestDealtHandsMatchRecordedInitialHands(t *testing.T) {
	g := newTestGame(t, ModeThreePlayer)
	if _, err := g.StartHand("amir"); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	if res, err := g.SelectTrump("amir", card.Spades); err != nil || !res.Valid {
		t.Fatalf("select trump: %+v err=%v", res, err)
	}
	snap := g.SnapshotFor("amir")
	if snap.CurrentHand == nil {
		t.Fatal("no current hand in snapshot")
	}
	for _, id := range g.PlayerIDs() {
		got := make([]string, 0, 17)
		for _, c := range g.HandOf(id) {
			got = append(got, c.ID())
		}
		want := append([]string(nil), g.initialHandIDs(id)...)
		sort.Strings(got)
		sort.Strings(want)
		if len(got) != len(want) {
			t.Fatalf("%s holds %d cards, recorded %d", id, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("%s hand diverges from record at %d: %s vs %s", id, i, got[i], want[i])
			}
		}
	}
}

// initialHandIDs is a test hook into the audit record.
func (g *Game) initialHandIDs(playerID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hand == nil {
		return nil
	}
	return append([]string(nil), g.hand.InitialHands[playerID]...)
}

func TestPlayCardTurnOrder(t *testing.T) {
	g := newTestGame(t, ModeFourPlayer)
	if _, err := g.StartHand("amir"); err != nil {
		t.Fatalf("start hand: %v", err)
	}

	// Wrong phase.
	_, res, err := g.PlayCard("amir", "hearts_5", false)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Valid || res.Reason != ReasonGameNotReady {
		t.Fatalf("play during trump selection: %+v", res)
	}

	if pr, err := g.SelectTrump("amir", card.Hearts); err != nil || !pr.Valid {
		t.Fatalf("select trump: %+v err=%v", pr, err)
	}

	// Out of turn.
	other := g.HandOf("bita")[0]
	_, res, err = g.PlayCard("bita", other.ID(), false)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if res.Valid || res.Reason != ReasonNotYourTurn {
		t.Fatalf("out-of-turn play: %+v", res)
	}

	// Leader plays, turn advances clockwise.
	lead := g.HandOf("amir")[0]
	outcome, res, err := g.PlayCard("amir", lead.ID(), false)
	if err != nil || !res.Valid {
		t.Fatalf("leader play rejected: %+v err=%v", res, err)
	}
	if outcome.NextTurnID != "bita" || g.CurrentTurnID() != "bita" {
		t.Fatalf("turn after leader: %q / %q, want bita", outcome.NextTurnID, g.CurrentTurnID())
	}
	if n := len(g.HandOf("amir")); n != 12 {
		t.Fatalf("leader holds %d cards after playing, want 12", n)
	}
}

// playLegal finds the current player's first card that passes validation and
// plays it, tracking the lead suit the way a client would.
func playLegal(t *testing.T, g *Game, leadSuit card.Suit, leadSet bool) (*PlayOutcome, card.Card) {
	t.Helper()
	turn := g.CurrentTurnID()
	if turn == "" {
		t.Fatal("no current turn")
	}
	h := g.HandOf(turn)
	for _, c := range h {
		if !ValidatePlay(c, h, leadSuit, leadSet).Valid {
			continue
		}
		outcome, res, err := g.PlayCard(turn, c.ID(), false)
		if err != nil {
			t.Fatalf("play %s by %s: %v", c.ID(), turn, err)
		}
		if !res.Valid {
			t.Fatalf("validated play rejected: %s by %s: %+v", c.ID(), turn, res)
		}
		return outcome, c
	}
	t.Fatalf("%s has no legal play from %d cards", turn, len(h))
	return nil, 0
}

// TestFullMatchWalkthrough drives complete random hands until the match ends,
// checking trick counts, entity scoring and phase transitions along the way.
func TestFullMatchWalkthrough(t *testing.T) {
	g := newTestGame(t, ModeFourPlayer)
	leader := "amir"

	for hand := 0; hand < 50; hand++ {
		if g.Phase() == PhaseMatchComplete {
			break
		}
		if _, err := g.StartHand(leader); err != nil {
			t.Fatalf("hand %d: start: %v", hand, err)
		}
		if pr, err := g.SelectTrump(leader, card.Spades); err != nil || !pr.Valid {
			t.Fatalf("hand %d: trump: %+v err=%v", hand, pr, err)
		}

		var leadSuit card.Suit
		leadSet := false
		tricks := 0
		for g.Phase() == PhasePlaying {
			outcome, played := playLegal(t, g, leadSuit, leadSet)
			if !leadSet {
				leadSuit = played.Suit()
				leadSet = true
			}
			if outcome.TrickComplete {
				tricks++
				leadSet = false
				if outcome.Trick == nil || outcome.Trick.WinnerID == "" {
					t.Fatalf("hand %d trick %d: no winner recorded", hand, tricks)
				}
				if !outcome.HandComplete && g.CurrentTurnID() != outcome.Trick.WinnerID {
					t.Fatalf("hand %d: trick winner does not lead next trick", hand)
				}
			}
			if outcome.HandComplete {
				if outcome.HandResult == nil || outcome.FinishedHand == nil {
					t.Fatalf("hand %d: completion without settlement", hand)
				}
				if outcome.HandResult.TricksTaken < TricksToWin[ModeFourPlayer] {
					t.Fatalf("hand %d: settled at %d tricks", hand, outcome.HandResult.TricksTaken)
				}
				total := 0
				for _, n := range outcome.FinishedHand.Scores {
					total += n
				}
				if total != len(outcome.FinishedHand.Tricks) {
					t.Fatalf("hand %d: score sum %d != tricks %d", hand, total, len(outcome.FinishedHand.Tricks))
				}
			}
		}
		if tricks < TricksToWin[ModeFourPlayer] {
			t.Fatalf("hand %d ended after %d tricks", hand, tricks)
		}
	}

	if g.Phase() != PhaseMatchComplete {
		t.Fatal("match never completed")
	}
	winner := g.MatchWinnerID()
	if winner == "" {
		t.Fatal("no match winner recorded")
	}
	if g.MatchScore()[winner] < DefaultConfig(ModeFourPlayer).TargetHands {
		t.Fatalf("winner %s below target: %v", winner, g.MatchScore())
	}
	if _, err := g.StartHand("amir"); err != ErrMatchOver {
		t.Fatalf("got %v after match end, want ErrMatchOver", err)
	}
}

func TestAutoPlayGoesThroughNormalPath(t *testing.T) {
	g := newTestGame(t, ModeTwoPlayer)
	if _, err := g.StartHand("amir"); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	if pr, err := g.SelectTrump("amir", card.Hearts); err != nil || !pr.Valid {
		t.Fatalf("select trump: %+v err=%v", pr, err)
	}
	before := len(g.HandOf("amir"))
	auto, outcome, res, err := g.AutoPlayCard("amir")
	if err != nil || !res.Valid {
		t.Fatalf("auto-play failed: %+v err=%v", res, err)
	}
	if auto.Reason == "" {
		t.Fatal("auto-play without a reason")
	}
	if !outcome.Played.AutoPlayed {
		t.Fatal("auto-play not flagged on the played card")
	}
	if outcome.Played.Card != auto.Card {
		t.Fatalf("played %s, selected %s", outcome.Played.Card.ID(), auto.Card.ID())
	}
	if len(g.HandOf("amir")) != before-1 {
		t.Fatal("auto-play did not consume a card")
	}
}

func TestSnapshotSanitization(t *testing.T) {
	g := newTestGame(t, ModeFourPlayer)
	if _, err := g.StartHand("amir"); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	if pr, err := g.SelectTrump("amir", card.Hearts); err != nil || !pr.Valid {
		t.Fatalf("select trump: %+v err=%v", pr, err)
	}

	snap := g.SnapshotFor("bita")
	for _, pv := range snap.Players {
		if pv.HandCount != len(pv.Hand) {
			t.Fatalf("%s: hand count %d vs %d entries", pv.ID, pv.HandCount, len(pv.Hand))
		}
		if pv.ID == "bita" {
			for _, id := range pv.Hand {
				if id == HiddenCardID {
					t.Fatal("viewer's own hand hidden")
				}
			}
			continue
		}
		for _, id := range pv.Hand {
			if id != HiddenCardID {
				t.Fatalf("%s's card %s visible to bita", pv.ID, id)
			}
		}
	}
	if snap.CurrentHand == nil || snap.CurrentHand.TrumpSuit != "hearts" {
		t.Fatalf("trump missing from snapshot: %+v", snap.CurrentHand)
	}
	if snap.DeckHash == "" {
		t.Fatal("deck commitment missing from snapshot")
	}
}

func TestNextHandAfterCompletion(t *testing.T) {
	g := newTestGame(t, ModeFourPlayer)
	// Run one full hand.
	if _, err := g.StartHand("amir"); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	if pr, err := g.SelectTrump("amir", card.Clubs); err != nil || !pr.Valid {
		t.Fatalf("select trump: %+v err=%v", pr, err)
	}
	var leadSuit card.Suit
	leadSet := false
	for g.Phase() == PhasePlaying {
		outcome, played := playLegal(t, g, leadSuit, leadSet)
		if !leadSet {
			leadSuit = played.Suit()
			leadSet = true
		}
		if outcome.TrickComplete {
			leadSet = false
		}
	}
	if g.Phase() != PhaseHandComplete && g.Phase() != PhaseMatchComplete {
		t.Fatalf("phase %s after hand", g.Phase())
	}
	if g.Phase() == PhaseHandComplete {
		if _, err := g.StartHand("bita"); err != nil {
			t.Fatalf("second hand: %v", err)
		}
		if g.Phase() != PhaseTrumpSelection {
			t.Fatalf("phase %s at second hand", g.Phase())
		}
	}
}

func TestScoreKeysSeatOrder(t *testing.T) {
	g := newTestGame(t, ModeFourPlayer)
	keys := g.ScoreKeys()
	if len(keys) != 2 || keys[0] != TeamKey(0) || keys[1] != TeamKey(1) {
		t.Fatalf("4-player score keys %v", keys)
	}

	g = newTestGame(t, ModeThreePlayer)
	keys = g.ScoreKeys()
	if len(keys) != 3 || keys[0] != "amir" || keys[1] != "bita" || keys[2] != "cyrus" {
		t.Fatalf("3-player score keys %v", keys)
	}
}

func TestExhaustedHandGoesToTopScorer(t *testing.T) {
	g := newTestGame(t, ModeThreePlayer)
	if _, err := g.StartHand("amir"); err != nil {
		t.Fatalf("start hand: %v", err)
	}
	if pr, err := g.SelectTrump("amir", card.Spades); err != nil || !pr.Valid {
		t.Fatalf("select trump: %+v err=%v", pr, err)
	}

	// Force the final trick with a 6-5-5 tally. Whoever takes it, nobody
	// reaches the 7-trick threshold and the cards are gone.
	last := map[string]string{"amir": "hearts_2", "bita": "hearts_3", "cyrus": "hearts_4"}
	g.mu.Lock()
	g.hand.Scores = map[string]int{"amir": 6, "bita": 5, "cyrus": 5}
	for _, p := range g.players {
		p.Hand = []card.Card{mustCard(t, last[p.ID])}
	}
	g.startTrickLocked(17, "amir")
	g.mu.Unlock()

	var outcome *PlayOutcome
	for _, id := range []string{"amir", "bita", "cyrus"} {
		var pr PlayResult
		var err error
		outcome, pr, err = g.PlayCard(id, last[id], false)
		if err != nil || !pr.Valid {
			t.Fatalf("play %s by %s: %+v err=%v", last[id], id, pr, err)
		}
	}

	if !outcome.HandComplete {
		t.Fatal("hand is still open with every hand empty")
	}
	result := outcome.HandResult
	// Cyrus took the trick (highest heart), so the tally ends 6-5-6 and
	// amir wins the seat-order tie.
	if result.WinnerKey != "amir" {
		t.Fatalf("winner %q, want amir", result.WinnerKey)
	}
	if result.Kot || result.HandsAwarded != 1 || result.TricksTaken != 6 {
		t.Fatalf("exhausted hand settled as %+v", result)
	}
	if g.Phase() != PhaseHandComplete {
		t.Fatalf("phase %s after exhausted hand", g.Phase())
	}
}
