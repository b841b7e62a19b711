package hokm

import (
	"fmt"
	"sync"
	"time"

	"hokm-lite/card"
)

// PlayerInfo is what the room/lobby collaborator supplies per seat.
type PlayerInfo struct {
	ID   string
	Name string
}

// Game is the authoritative state of one room's match. All mutation goes
// through its methods under the mutex; the room actor is the only caller
// during live play, so per-room actions are serialized twice over.
type Game struct {
	cfg    Config
	roomID string

	mu          sync.Mutex
	phase       Phase
	players     []*PlayerState // seating order
	hand        *HandState
	deck        []card.Card           // committed shuffled deck of the active hand
	rounds      []map[int][]card.Card // dealt rounds of the active hand
	matchScore  map[string]int
	handCount   int
	matchWinner string
}

// PlayOutcome tells the orchestrator what a successful card play triggered.
type PlayOutcome struct {
	Played        PlayedCard
	Revoke        bool
	TrickComplete bool
	Trick         *TrickState // completed trick, when TrickComplete
	HandComplete  bool
	HandResult    *HandResult
	FinishedHand  *HandState // deep copy for persistence, when HandComplete
	MatchComplete bool
	MatchWinnerID string
	NextTurnID    string // next player to act, when the hand continues
}

// HandStartInfo describes a freshly started hand: only the first dealing
// round is distributed before trump selection.
type HandStartInfo struct {
	HandNumber int
	LeaderID   string
	DeckHash   string
	FirstRound map[string][]card.Card
}

// NewGame builds the match state: zeroed entity-keyed score, team parity
// assignment for 4-player, phase Waiting.
func NewGame(roomID string, cfg Config, players []PlayerInfo) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(players) != int(cfg.Mode) {
		return nil, fmt.Errorf("mode %d requires %d players, got %d", cfg.Mode, cfg.Mode, len(players))
	}

	g := &Game{
		cfg:        cfg,
		roomID:     roomID,
		phase:      PhaseWaiting,
		matchScore: make(map[string]int),
	}
	for i, p := range players {
		ps := &PlayerState{
			ID:            p.ID,
			Name:          p.Name,
			Connected:     true,
			TimeRemaining: cfg.TurnTimer,
			Team:          -1,
		}
		if cfg.Mode == ModeFourPlayer {
			ps.Team = i % 2 // alternate seating parity: 0, 1, 0, 1
		}
		g.players = append(g.players, ps)
	}
	if cfg.Mode == ModeFourPlayer {
		g.matchScore[TeamKey(0)] = 0
		g.matchScore[TeamKey(1)] = 0
	} else {
		for _, p := range players {
			g.matchScore[p.ID] = 0
		}
	}
	return g, nil
}

func (g *Game) RoomID() string { return g.roomID }

func (g *Game) Config() Config { return g.cfg }

// MatchWinnerID returns the winning entity key once the match is over.
func (g *Game) MatchWinnerID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.matchWinner
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// PlayerIDs returns seat order.
func (g *Game) PlayerIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, len(g.players))
	for i, p := range g.players {
		ids[i] = p.ID
	}
	return ids
}

// Teams returns player id -> team index for 4-player matches, nil otherwise.
func (g *Game) Teams() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cfg.Mode != ModeFourPlayer {
		return nil
	}
	teams := make(map[string]int, len(g.players))
	for _, p := range g.players {
		teams[p.ID] = p.Team
	}
	return teams
}

// MatchScore returns a copy of the current entity-keyed match score.
func (g *Game) MatchScore() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return copyScore(g.matchScore)
}

// CurrentTurnID returns the id of the player flagged as current turn, or "".
func (g *Game) CurrentTurnID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.players {
		if p.IsCurrentTurn {
			return p.ID
		}
	}
	return ""
}

// ScoreKey maps a player to the entity their tricks count for: the team key
// in 4-player, the player id otherwise.
func (g *Game) ScoreKey(playerID string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scoreKeyLocked(playerID)
}

// ScoreKeys returns the score entity keys in seating order: the two team
// keys in 4-player, the player ids otherwise.
func (g *Game) ScoreKeys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scoreKeysLocked()
}

// HandOf returns a copy of the given player's hand.
func (g *Game) HandOf(playerID string) []card.Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.playerLocked(playerID)
	if p == nil {
		return nil
	}
	return append([]card.Card(nil), p.Hand...)
}

// SetConnected flips a player's connection flag.
func (g *Game) SetConnected(playerID string, connected bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.playerLocked(playerID); p != nil {
		p.Connected = connected
	}
}

// SetTimeRemaining mirrors the turn timer into the snapshot state.
func (g *Game) SetTimeRemaining(playerID string, seconds int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if p := g.playerLocked(playerID); p != nil {
		p.TimeRemaining = seconds
	}
}

// StartHand shuffles and commits a fresh deck, deals the first round to every
// player and opens trump selection. The committed deck is retained for the
// post-trump rounds: one shuffle-commit-deal sequence per hand, so the
// published hash always matches what is actually dealt.
func (g *Game) StartHand(leaderID string) (*HandStartInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.phase {
	case PhaseMatchComplete:
		return nil, ErrMatchOver
	case PhaseTrumpSelection, PhasePlaying:
		return nil, ErrHandInProgress
	}
	leader := g.playerLocked(leaderID)
	if leader == nil {
		return nil, ErrInvalidState("leader not seated: " + leaderID)
	}

	deck := BuildDeck(g.cfg.Mode)
	shuffled, err := Shuffle(deck)
	if err != nil {
		return nil, err
	}
	commitment, err := Commit(shuffled)
	if err != nil {
		return nil, err
	}

	pattern := DealPatterns[g.cfg.Mode]
	rounds, err := Deal(shuffled, len(g.players), pattern)
	if err != nil {
		return nil, err
	}

	g.deck = shuffled
	g.rounds = rounds
	g.handCount++

	initial := make(map[string][]string, len(g.players))
	final := CombineRounds(rounds, len(g.players))
	for i, p := range g.players {
		ids := make([]string, 0, len(final[i]))
		for _, c := range final[i] {
			ids = append(ids, c.ID())
		}
		initial[p.ID] = ids
	}

	g.hand = &HandState{
		HandNumber:   g.handCount,
		LeaderID:     leaderID,
		DealPattern:  append([]int(nil), pattern...),
		InitialHands: initial,
		Scores:       g.zeroHandScoreLocked(),
		DeckHash:     commitment.Hash,
		DeckSalt:     commitment.Salt,
		StartedAt:    time.Now().UTC(),
		CurrentTrick: TrickState{TrickNumber: 1},
	}

	firstRound := make(map[string][]card.Card, len(g.players))
	for i, p := range g.players {
		p.Hand = nil
		p.TricksWon = 0
		p.IsLeader = p.ID == leaderID
		p.Hand = append(p.Hand, rounds[0][i]...)
		firstRound[p.ID] = append([]card.Card(nil), rounds[0][i]...)
	}
	g.setCurrentTurnLocked(leaderID)
	g.phase = PhaseTrumpSelection

	return &HandStartInfo{
		HandNumber: g.handCount,
		LeaderID:   leaderID,
		DeckHash:   commitment.Hash,
		FirstRound: firstRound,
	}, nil
}

// SelectTrump accepts the leader's trump choice, deals the remaining rounds
// from the retained deck and starts trick 1 with the leader to act.
func (g *Game) SelectTrump(playerID string, suit card.Suit) (PlayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hand == nil || g.phase != PhaseTrumpSelection {
		if g.hand != nil && g.hand.TrumpSet {
			return rejected(ReasonTrumpAlreadySet), nil
		}
		return rejected(ReasonGameNotReady), nil
	}
	p := g.playerLocked(playerID)
	if p == nil || !p.IsLeader {
		return rejected(ReasonNotLeader), nil
	}

	g.hand.TrumpSuit = suit
	g.hand.TrumpSet = true
	g.hand.TrumpSelectedBy = playerID

	// Remaining rounds come from the same committed deck.
	for _, round := range g.rounds[1:] {
		for i, player := range g.players {
			player.Hand = append(player.Hand, round[i]...)
		}
	}

	g.startTrickLocked(1, playerID)
	g.phase = PhasePlaying
	return accepted(), nil
}

// PlayCard runs the full card-play path: validation, hand/trick mutation,
// trick resolution, hand and match completion. Rejections leave state
// untouched; a non-nil error is an engine invariant violation and the room
// cannot be trusted to continue.
func (g *Game) PlayCard(playerID, cardID string, autoPlayed bool) (*PlayOutcome, PlayResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hand == nil || g.phase != PhasePlaying {
		return nil, rejected(ReasonGameNotReady), nil
	}
	p := g.playerLocked(playerID)
	if p == nil || !p.IsCurrentTurn {
		return nil, rejected(ReasonNotYourTurn), nil
	}
	c, err := card.FromID(cardID)
	if err != nil {
		return nil, rejected(ReasonCardNotInHand), nil
	}

	trick := &g.hand.CurrentTrick
	if result := ValidatePlay(c, p.Hand, trick.LeadSuit, trick.LeadSet); !result.Valid {
		return nil, result, nil
	}

	// Audit check: revoke should be impossible past ValidatePlay.
	revoke := DetectRevoke(c, p.Hand, trick.LeadSuit, trick.LeadSet)

	g.removeFromHandLocked(p, c)
	played := PlayedCard{
		Card:       c,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		AutoPlayed: autoPlayed,
		PlayedAt:   time.Now().UTC(),
	}
	trick.Played = append(trick.Played, played)
	if len(trick.Played) == 1 {
		trick.LeadSuit = c.Suit()
		trick.LeadSet = true
		trick.LeadPlayerID = p.ID
		trick.StartedAt = played.PlayedAt
	}

	outcome := &PlayOutcome{Played: played, Revoke: revoke}

	if len(trick.Played) < len(g.players) {
		next := g.nextSeatLocked(p.ID)
		g.setCurrentTurnLocked(next)
		outcome.NextTurnID = next
		return outcome, accepted(), nil
	}

	if err := g.completeTrickLocked(outcome); err != nil {
		return nil, PlayResult{}, err
	}
	return outcome, accepted(), nil
}

// AutoPlayCard applies the deterministic timeout selection through the same
// card-play path as a normal play.
func (g *Game) AutoPlayCard(playerID string) (AutoPlay, *PlayOutcome, PlayResult, error) {
	g.mu.Lock()
	hand := g.hand
	p := g.playerLocked(playerID)
	if hand == nil || g.phase != PhasePlaying || p == nil || len(p.Hand) == 0 {
		g.mu.Unlock()
		return AutoPlay{}, nil, rejected(ReasonGameNotReady), nil
	}
	trick := hand.CurrentTrick
	auto := SelectAutoPlay(p.Hand, trick.LeadSuit, trick.LeadSet, g.trumpOrNoneLocked())
	g.mu.Unlock()

	outcome, result, err := g.PlayCard(playerID, auto.Card.ID(), true)
	return auto, outcome, result, err
}

// AutoSelectTrump picks a trump for a leader who ran out the selection clock:
// the suit the leader holds the most of, earliest suit on a tie. It goes
// through the normal selection path.
func (g *Game) AutoSelectTrump(playerID string) (card.Suit, PlayResult, error) {
	g.mu.Lock()
	p := g.playerLocked(playerID)
	if g.phase != PhaseTrumpSelection || p == nil || !p.IsLeader {
		g.mu.Unlock()
		return 0, rejected(ReasonNotLeader), nil
	}
	counts := make(map[card.Suit]int)
	for _, c := range p.Hand {
		counts[c.Suit()]++
	}
	best := card.Suits[0]
	for _, s := range card.Suits {
		if counts[s] > counts[best] {
			best = s
		}
	}
	g.mu.Unlock()

	res, err := g.SelectTrump(playerID, best)
	return best, res, err
}

// RevealDeck returns the committed deck order once the hand is settled, so
// clients can verify the published hash. It stays nil while cards from the
// deck are still hidden.
func (g *Game) RevealDeck() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phase == PhaseTrumpSelection || g.phase == PhasePlaying {
		return nil
	}
	ids := make([]string, 0, len(g.deck))
	for _, c := range g.deck {
		ids = append(ids, c.ID())
	}
	return ids
}

// SnapshotFor builds the sanitized view for one player: every other player's
// hand collapses to opaque placeholders, the viewer's own hand stays intact.
func (g *Game) SnapshotFor(viewerID string) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		RoomID:      g.roomID,
		Mode:        g.cfg.Mode,
		Phase:       g.phase.String(),
		MatchScore:  copyScore(g.matchScore),
		TargetHands: g.cfg.TargetHands,
		TurnTimer:   g.cfg.TurnTimer,
		KotBonus:    g.cfg.KotBonus,
	}
	for _, p := range g.players {
		view := PlayerView{
			ID:            p.ID,
			Name:          p.Name,
			HandCount:     len(p.Hand),
			TricksWon:     p.TricksWon,
			IsLeader:      p.IsLeader,
			IsCurrentTurn: p.IsCurrentTurn,
			Connected:     p.Connected,
			TimeRemaining: p.TimeRemaining,
			Team:          p.Team,
		}
		view.Hand = make([]string, 0, len(p.Hand))
		for _, c := range p.Hand {
			if p.ID == viewerID {
				view.Hand = append(view.Hand, c.ID())
			} else {
				view.Hand = append(view.Hand, HiddenCardID)
			}
		}
		snap.Players = append(snap.Players, view)
	}
	if g.hand != nil {
		hv := HandView{
			HandNumber:      g.hand.HandNumber,
			TrumpSelectedBy: g.hand.TrumpSelectedBy,
			LeaderID:        g.hand.LeaderID,
			DealPattern:     append([]int(nil), g.hand.DealPattern...),
			TricksComplete:  len(g.hand.Tricks),
			CurrentTrick:    trickView(g.hand.CurrentTrick),
			Scores:          copyScore(g.hand.Scores),
			DeckHash:        g.hand.DeckHash,
		}
		if g.hand.TrumpSet {
			hv.TrumpSuit = g.hand.TrumpSuit.String()
		}
		snap.CurrentHand = &hv
		snap.DeckHash = g.hand.DeckHash
	}
	return snap
}

// --- internals (callers hold g.mu) ---

func (g *Game) playerLocked(id string) *PlayerState {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) setCurrentTurnLocked(playerID string) {
	for _, p := range g.players {
		p.IsCurrentTurn = p.ID == playerID
	}
}

func (g *Game) nextSeatLocked(playerID string) string {
	for i, p := range g.players {
		if p.ID == playerID {
			return g.players[(i+1)%len(g.players)].ID
		}
	}
	return g.players[0].ID
}

func (g *Game) removeFromHandLocked(p *PlayerState, c card.Card) {
	for i, h := range p.Hand {
		if h == c {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return
		}
	}
}

func (g *Game) startTrickLocked(number int, leadPlayerID string) {
	g.hand.CurrentTrick = TrickState{TrickNumber: number}
	g.setCurrentTurnLocked(leadPlayerID)
}

func (g *Game) trumpOrNoneLocked() card.Suit {
	if g.hand != nil && g.hand.TrumpSet {
		return g.hand.TrumpSuit
	}
	return trumpNone
}

func (g *Game) scoreKeyLocked(playerID string) string {
	if g.cfg.Mode == ModeFourPlayer {
		if p := g.playerLocked(playerID); p != nil {
			return TeamKey(p.Team)
		}
	}
	return playerID
}

func (g *Game) scoreKeysLocked() []string {
	keys := make([]string, 0, len(g.players))
	seen := make(map[string]bool, len(g.players))
	for _, p := range g.players {
		key := g.scoreKeyLocked(p.ID)
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

func (g *Game) handsEmptyLocked() bool {
	for _, p := range g.players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

func (g *Game) zeroHandScoreLocked() map[string]int {
	score := make(map[string]int)
	if g.cfg.Mode == ModeFourPlayer {
		score[TeamKey(0)] = 0
		score[TeamKey(1)] = 0
	} else {
		for _, p := range g.players {
			score[p.ID] = 0
		}
	}
	return score
}

func (g *Game) completeTrickLocked(outcome *PlayOutcome) error {
	trick := &g.hand.CurrentTrick
	winnerID, err := DetermineWinner(trick.Played, trick.LeadSuit, g.trumpOrNoneLocked())
	if err != nil {
		return err
	}
	trick.WinnerID = winnerID
	trick.CompletedAt = time.Now().UTC()

	done := *trick
	done.Played = append([]PlayedCard(nil), trick.Played...)
	g.hand.Tricks = append(g.hand.Tricks, done)

	key := g.scoreKeyLocked(winnerID)
	g.hand.Scores[key]++
	if winner := g.playerLocked(winnerID); winner != nil {
		winner.TricksWon++
	}

	outcome.TrickComplete = true
	outcome.Trick = &done

	result := EvaluateHand(g.hand.Scores, g.cfg.Mode, g.cfg.KotBonus)
	if result == nil && g.handsEmptyLocked() {
		result = EvaluateExhaustedHand(g.hand.Scores, g.scoreKeysLocked())
	}
	if result == nil {
		next := len(g.hand.Tricks) + 1
		g.startTrickLocked(next, winnerID)
		outcome.NextTurnID = winnerID
		return nil
	}

	// Hand is over.
	outcome.HandComplete = true
	outcome.HandResult = result
	g.matchScore = ApplyHandResult(g.matchScore, result)
	g.phase = PhaseHandComplete
	g.setCurrentTurnLocked("")

	finished := g.copyHandLocked()
	outcome.FinishedHand = finished

	if winnerEntity, complete := MatchComplete(g.matchScore, g.cfg.TargetHands); complete {
		g.phase = PhaseMatchComplete
		g.matchWinner = winnerEntity
		outcome.MatchComplete = true
		outcome.MatchWinnerID = winnerEntity
	}
	return nil
}

func (g *Game) copyHandLocked() *HandState {
	h := *g.hand
	h.DealPattern = append([]int(nil), g.hand.DealPattern...)
	h.Scores = copyScore(g.hand.Scores)
	h.Tricks = make([]TrickState, len(g.hand.Tricks))
	for i, t := range g.hand.Tricks {
		h.Tricks[i] = t
		h.Tricks[i].Played = append([]PlayedCard(nil), t.Played...)
	}
	h.InitialHands = make(map[string][]string, len(g.hand.InitialHands))
	for k, v := range g.hand.InitialHands {
		h.InitialHands[k] = append([]string(nil), v...)
	}
	return &h
}

func copyScore(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
