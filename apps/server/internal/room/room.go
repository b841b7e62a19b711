// Package room hosts one Hokm match per room behind an actor goroutine.
// Every gameplay mutation flows through the event queue, so the engine only
// ever sees one writer; timers and persistence hang off the same loop.
package room

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"hokm-lite/apps/server/internal/codec"
	"hokm-lite/apps/server/internal/history"
	"hokm-lite/card"
	"hokm-lite/hokm"
	"hokm-lite/timer"

	"github.com/google/uuid"
)

const (
	trickDisplayDelay = 2 * time.Second
	nextHandDelay     = 5 * time.Second
)

var (
	ErrRoomClosed = errors.New("room closed")
	ErrRoomFull   = errors.New("room is full")
	ErrNotHost    = errors.New("only the host can start the match")
	ErrNotMember  = errors.New("not a member of this room")
	ErrBadInvite  = errors.New("invalid invite code")
)

// Member is one connected (or temporarily offline) participant.
type Member struct {
	ID       string
	Name     string
	Online   bool
	LastSeen time.Time
}

// Room is the actor owning one match lifecycle.
type Room struct {
	ID  string
	cfg hokm.Config

	mu       sync.RWMutex
	game     *hokm.Game
	members  map[string]*Member
	order    []string // join order doubles as seat order
	hostID   string
	closed   bool
	stopOnce sync.Once

	serverSeq uint64
	matchID   string
	handID    string

	// Bumped on every timer start and clear; timer events carry the
	// generation they were armed under so a timeout already queued when
	// its player's play lands is discarded as stale.
	turnGen uint64

	// Deferred scheduling handled by the actor tick.
	pendingTurnID  string
	turnResumeAt   time.Time
	nextHandAt     time.Time
	nextHandLeader string
	emptySince     time.Time

	events chan Event
	done   chan struct{}

	broadcast func(userID string, data []byte)
	store     history.Store
	timers    *timer.Manager
}

// Event types for the actor message queue.
type EventType int

const (
	EventJoin EventType = iota
	EventLeave
	EventStartMatch
	EventSelectTrump
	EventPlayCard
	EventStateSync
	EventTimerTick
	EventTimerExpired
	EventConnLost
	EventConnResume
	EventClose
)

// Event is a message to the room actor.
type Event struct {
	Type      EventType
	UserID    string
	Name      string
	Suit      string
	CardID    string
	Remaining int
	Gen       uint64 // timer events only
	Response  chan error
}

// New creates a room and starts its actor.
func New(
	id string,
	cfg hokm.Config,
	hostID string,
	broadcastFn func(userID string, data []byte),
	store history.Store,
) *Room {
	if store == nil {
		store = history.NewNoopStore()
	}
	r := &Room{
		ID:         id,
		cfg:        cfg,
		hostID:     hostID,
		members:    make(map[string]*Member),
		events:     make(chan Event, 256),
		done:       make(chan struct{}),
		broadcast:  broadcastFn,
		store:      store,
		timers:     timer.NewManager(),
		emptySince: time.Now(),
	}

	go r.run()

	log.Printf("[Room %s] Created (mode=%d, turnTimer=%ds, target=%d)", id, cfg.Mode, cfg.TurnTimer, cfg.TargetHands)
	return r
}

func (r *Room) Config() hokm.Config { return r.cfg }

// run is the main actor loop.
func (r *Room) run() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case event := <-r.events:
			err := r.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			} else if err != nil {
				log.Printf("[Room %s] Event %d failed: %v", r.ID, event.Type, err)
			}
		case <-ticker.C:
			r.tick()
		case <-r.done:
			r.timers.StopAll()
			log.Printf("[Room %s] Actor stopped", r.ID)
			return
		}
	}
}

func (r *Room) handleEvent(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed && e.Type != EventClose {
		return ErrRoomClosed
	}

	switch e.Type {
	case EventJoin:
		return r.handleJoin(e.UserID, e.Name)
	case EventLeave:
		return r.handleLeave(e.UserID)
	case EventStartMatch:
		return r.handleStartMatch(e.UserID)
	case EventSelectTrump:
		return r.handleSelectTrump(e.UserID, e.Suit)
	case EventPlayCard:
		return r.handlePlayCard(e.UserID, e.CardID)
	case EventStateSync:
		r.sendStateSync(e.UserID)
		return nil
	case EventTimerTick:
		r.handleTimerTick(e.UserID, e.Remaining, e.Gen)
		return nil
	case EventTimerExpired:
		return r.handleTimerExpired(e.UserID, e.Gen)
	case EventConnLost:
		r.handleConnLost(e.UserID)
		return nil
	case EventConnResume:
		r.handleConnResume(e.UserID, e.Name)
		return nil
	case EventClose:
		r.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (r *Room) handleJoin(userID, name string) error {
	now := time.Now()
	if member, exists := r.members[userID]; exists {
		member.Online = true
		member.LastSeen = now
		if r.game != nil {
			r.game.SetConnected(userID, true)
		}
		r.sendStateSync(userID)
		return nil
	}
	if r.game != nil {
		return ErrNotMember
	}
	if len(r.members) >= int(r.cfg.Mode) {
		return ErrRoomFull
	}

	r.members[userID] = &Member{ID: userID, Name: name, Online: true, LastSeen: now}
	r.order = append(r.order, userID)
	r.emptySince = time.Time{}
	log.Printf("[Room %s] Player %s joined (%d/%d)", r.ID, userID, len(r.members), r.cfg.Mode)

	r.broadcastToAll(codec.ServerPlayerJoined, codec.PlayerJoined{
		Player: codec.RoomPlayer{ID: userID, Name: name},
		Seats:  len(r.members),
	})
	r.sendStateSync(userID)
	return nil
}

func (r *Room) handleLeave(userID string) error {
	member := r.members[userID]
	if member == nil {
		return nil
	}

	if r.game == nil {
		// Pre-match: the seat frees up.
		delete(r.members, userID)
		for i, id := range r.order {
			if id == userID {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
		if userID == r.hostID && len(r.order) > 0 {
			r.hostID = r.order[0]
		}
		if len(r.members) == 0 {
			r.emptySince = time.Now()
		}
	} else {
		// Mid-match the seat stays; timeouts keep the game moving.
		member.Online = false
		member.LastSeen = time.Now()
		r.game.SetConnected(userID, false)
	}

	log.Printf("[Room %s] Player %s left", r.ID, userID)
	r.broadcastToAll(codec.ServerPlayerLeft, codec.PlayerLeft{
		PlayerID: userID,
		Seats:    len(r.members),
	})
	return nil
}

func (r *Room) handleStartMatch(userID string) error {
	if userID != r.hostID {
		return ErrNotHost
	}
	if r.game != nil {
		return fmt.Errorf("match already started")
	}
	if len(r.members) != int(r.cfg.Mode) {
		return fmt.Errorf("need %d players, have %d", r.cfg.Mode, len(r.members))
	}

	players := make([]hokm.PlayerInfo, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, hokm.PlayerInfo{ID: id, Name: r.members[id].Name})
	}
	game, err := hokm.NewGame(r.ID, r.cfg, players)
	if err != nil {
		return err
	}
	r.game = game
	r.matchID = uuid.NewString()

	rec := history.MatchRecord{
		ID:          r.matchID,
		RoomID:      r.ID,
		Mode:        int(r.cfg.Mode),
		TargetHands: r.cfg.TargetHands,
		KotBonus:    r.cfg.KotBonus,
		StartedAt:   time.Now().UTC(),
	}
	teams := game.Teams()
	for _, id := range r.order {
		ref := history.PlayerRef{ID: id, Name: r.members[id].Name, Team: -1}
		if teams != nil {
			ref.Team = teams[id]
		}
		rec.Players = append(rec.Players, ref)
	}
	go r.store.RecordMatchStart(rec)

	roster := make([]codec.RoomPlayer, 0, len(r.order))
	for _, id := range r.order {
		roster = append(roster, codec.RoomPlayer{ID: id, Name: r.members[id].Name})
	}
	r.broadcastToAll(codec.ServerMatchStarted, codec.MatchStarted{
		MatchID:  r.matchID,
		Mode:     int(r.cfg.Mode),
		Players:  roster,
		Teams:    teams,
		LeaderID: r.order[0],
	})
	log.Printf("[Room %s] Match %s started", r.ID, r.matchID)

	return r.startHandLocked(r.order[0])
}

func (r *Room) startHandLocked(leaderID string) error {
	info, err := r.game.StartHand(leaderID)
	if err != nil {
		return err
	}
	r.handID = uuid.NewString()
	r.nextHandAt = time.Time{}
	r.nextHandLeader = ""

	for userID := range r.members {
		hand := make([]string, 0, len(info.FirstRound[userID]))
		for _, c := range info.FirstRound[userID] {
			hand = append(hand, c.ID())
		}
		r.sendToUser(userID, codec.ServerHandStarted, codec.HandStarted{
			HandNumber: info.HandNumber,
			LeaderID:   info.LeaderID,
			DeckHash:   info.DeckHash,
			Hand:       hand,
		})
	}
	log.Printf("[Room %s] Hand %d started, leader %s, deck %s", r.ID, info.HandNumber, leaderID, info.DeckHash[:12])

	// Leader's trump selection runs on the same clock as a turn.
	r.startTurnTimerLocked(leaderID)
	return nil
}

func (r *Room) handleSelectTrump(userID, suitName string) error {
	if r.game == nil {
		return ErrNotMember
	}
	suit, err := card.ParseSuit(suitName)
	if err != nil {
		r.sendToUser(userID, codec.ServerInvalidMove, codec.InvalidMove{Reason: "unknown_suit"})
		return nil
	}
	result, err := r.game.SelectTrump(userID, suit)
	if err != nil {
		return err
	}
	if !result.Valid {
		r.sendToUser(userID, codec.ServerInvalidMove, codec.InvalidMove{Reason: string(result.Reason)})
		return nil
	}
	r.finishTrumpSelectionLocked(userID, suit)
	return nil
}

func (r *Room) finishTrumpSelectionLocked(selectedBy string, suit card.Suit) {
	r.clearTurnTimerLocked(selectedBy)

	for userID := range r.members {
		hand := make([]string, 0, 13)
		for _, c := range r.game.HandOf(userID) {
			hand = append(hand, c.ID())
		}
		r.sendToUser(userID, codec.ServerTrumpSelected, codec.TrumpSelected{
			Suit:       suit.String(),
			SelectedBy: selectedBy,
			Hand:       hand,
			TurnID:     selectedBy,
		})
	}
	log.Printf("[Room %s] Trump selected: %s by %s", r.ID, suit, selectedBy)
	r.startTurnTimerLocked(selectedBy)
	r.syncAllLocked()
}

func (r *Room) handlePlayCard(userID, cardID string) error {
	if r.game == nil {
		return ErrNotMember
	}
	outcome, result, err := r.game.PlayCard(userID, cardID, false)
	if err != nil {
		return err
	}
	if !result.Valid {
		r.sendToUser(userID, codec.ServerInvalidMove, codec.InvalidMove{
			Reason: string(result.Reason),
			CardID: cardID,
		})
		return nil
	}
	r.applyPlayOutcomeLocked(outcome)
	return nil
}

// applyPlayOutcomeLocked drives everything that follows an accepted play:
// broadcasts, timers, trick pauses, hand settlement and persistence.
func (r *Room) applyPlayOutcomeLocked(outcome *hokm.PlayOutcome) {
	r.clearTurnTimerLocked(outcome.Played.PlayerID)

	r.broadcastToAll(codec.ServerCardPlayed, codec.CardPlayed{
		PlayerID:   outcome.Played.PlayerID,
		CardID:     outcome.Played.Card.ID(),
		AutoPlayed: outcome.Played.AutoPlayed,
		NextTurnID: outcome.NextTurnID,
	})

	if !outcome.TrickComplete {
		r.startTurnTimerLocked(outcome.NextTurnID)
		return
	}

	trick := outcome.Trick
	r.broadcastToAll(codec.ServerTrickComplete, codec.TrickComplete{
		TrickNumber: trick.TrickNumber,
		WinnerID:    trick.WinnerID,
		Scores:      r.currentHandScores(),
		NextLeadID:  outcome.NextTurnID,
	})

	if !outcome.HandComplete {
		// Give clients a moment to show the completed trick before the
		// winner's turn clock starts.
		r.pendingTurnID = outcome.NextTurnID
		r.turnResumeAt = time.Now().Add(trickDisplayDelay)
		r.syncAllLocked()
		return
	}

	r.settleHandLocked(outcome)
}

func (r *Room) settleHandLocked(outcome *hokm.PlayOutcome) {
	finished := outcome.FinishedHand
	result := outcome.HandResult
	r.persistHandLocked(finished, result)

	r.broadcastToAll(codec.ServerHandComplete, codec.HandComplete{
		HandNumber:   finished.HandNumber,
		WinnerKey:    result.WinnerKey,
		Kot:          result.Kot,
		HandsAwarded: result.HandsAwarded,
		MatchScore:   r.game.MatchScore(),
		Standings:    r.standingsLocked(),
		DeckHash:     finished.DeckHash,
		DeckSalt:     finished.DeckSalt,
		DeckOrder:    r.game.RevealDeck(),
	})
	log.Printf("[Room %s] Hand %d won by %s (kot=%v, awarded=%d)",
		r.ID, finished.HandNumber, result.WinnerKey, result.Kot, result.HandsAwarded)

	if outcome.MatchComplete {
		r.broadcastToAll(codec.ServerMatchComplete, codec.MatchComplete{
			WinnerKey:  outcome.MatchWinnerID,
			MatchScore: r.game.MatchScore(),
			Standings:  r.standingsLocked(),
		})
		finishedAt := time.Now().UTC()
		matchID := r.matchID
		winner := outcome.MatchWinnerID
		score := r.game.MatchScore()
		go r.store.RecordMatchEnd(matchID, winner, finishedAt, score)
		log.Printf("[Room %s] Match %s won by %s", r.ID, matchID, winner)
		r.syncAllLocked()
		return
	}

	r.nextHandLeader = r.nextLeaderLocked(finished.LeaderID, result.WinnerKey)
	r.nextHandAt = time.Now().Add(nextHandDelay)
	r.syncAllLocked()
}

func (r *Room) standingsLocked() []codec.Standing {
	rows := hokm.Leaderboard(r.game.MatchScore(), r.game.ScoreKeys())
	out := make([]codec.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, codec.Standing{Key: row.Key, Hands: row.Hands})
	}
	return out
}

// nextLeaderLocked keeps the leader when their entity won the hand and
// rotates one seat clockwise otherwise.
func (r *Room) nextLeaderLocked(leaderID, winnerKey string) string {
	if r.game.ScoreKey(leaderID) == winnerKey {
		return leaderID
	}
	for i, id := range r.order {
		if id == leaderID {
			return r.order[(i+1)%len(r.order)]
		}
	}
	return r.order[0]
}

func (r *Room) persistHandLocked(finished *hokm.HandState, result *hokm.HandResult) {
	trump := ""
	if finished.TrumpSet {
		trump = finished.TrumpSuit.String()
	}
	handRec := history.HandRecord{
		ID:              r.handID,
		MatchID:         r.matchID,
		HandNumber:      finished.HandNumber,
		TrumpSuit:       trump,
		TrumpSelectedBy: finished.TrumpSelectedBy,
		LeaderID:        finished.LeaderID,
		DealPattern:     finished.DealPattern,
		DeckHash:        finished.DeckHash,
		DeckSalt:        finished.DeckSalt,
		WinnerKey:       result.WinnerKey,
		Kot:             result.Kot,
		HandsAwarded:    result.HandsAwarded,
		Scores:          finished.Scores,
		InitialHands:    finished.InitialHands,
		StartedAt:       finished.StartedAt,
		CompletedAt:     time.Now().UTC(),
	}

	trickRecs := make([]history.TrickRecord, 0, len(finished.Tricks))
	for _, t := range finished.Tricks {
		rec := history.TrickRecord{
			ID:           uuid.NewString(),
			HandID:       r.handID,
			TrickNumber:  t.TrickNumber,
			LeadPlayerID: t.LeadPlayerID,
			LeadSuit:     t.LeadSuit.String(),
			WinnerID:     t.WinnerID,
			StartedAt:    t.StartedAt,
			CompletedAt:  t.CompletedAt,
		}
		for _, pc := range t.Played {
			if pc.PlayerID == t.WinnerID {
				rec.WinningCardID = pc.Card.ID()
			}
			rec.Played = append(rec.Played, history.PlayedCard{
				CardID:     pc.Card.ID(),
				PlayerID:   pc.PlayerID,
				AutoPlayed: pc.AutoPlayed,
				PlayedAtMs: pc.PlayedAt.UnixMilli(),
			})
		}
		trickRecs = append(trickRecs, rec)
	}

	store := r.store
	go func() {
		store.RecordHand(handRec)
		for _, rec := range trickRecs {
			store.RecordTrick(rec)
		}
	}()
}

func (r *Room) handleTimerTick(userID string, remaining int, gen uint64) {
	if r.game == nil || gen != r.turnGen {
		return
	}
	r.game.SetTimeRemaining(userID, remaining)
	r.broadcastToAll(codec.ServerTimerTick, codec.TimerTick{
		PlayerID:  userID,
		Remaining: remaining,
	})
}

func (r *Room) handleTimerExpired(userID string, gen uint64) error {
	if r.game == nil || gen != r.turnGen || r.game.CurrentTurnID() != userID {
		return nil
	}

	r.broadcastToAll(codec.ServerPlayerTimeout, codec.PlayerTimeout{PlayerID: userID})
	log.Printf("[Room %s] Player %s timed out", r.ID, userID)

	if r.game.Phase() == hokm.PhaseTrumpSelection {
		suit, result, err := r.game.AutoSelectTrump(userID)
		if err != nil {
			return err
		}
		if result.Valid {
			r.finishTrumpSelectionLocked(userID, suit)
		}
		return nil
	}

	auto, outcome, result, err := r.game.AutoPlayCard(userID)
	if err != nil {
		return err
	}
	if !result.Valid {
		return nil
	}
	r.broadcastToAll(codec.ServerAutoPlay, codec.AutoPlayed{
		PlayerID: userID,
		CardID:   auto.Card.ID(),
		Reason:   auto.Reason,
	})
	r.applyPlayOutcomeLocked(outcome)
	return nil
}

func (r *Room) handleConnLost(userID string) {
	member := r.members[userID]
	if member == nil {
		return
	}
	member.Online = false
	member.LastSeen = time.Now()
	if r.game != nil {
		r.game.SetConnected(userID, false)
	}
	log.Printf("[Room %s] Player %s connection lost", r.ID, userID)
}

func (r *Room) handleConnResume(userID, name string) {
	member := r.members[userID]
	if member == nil {
		return
	}
	if name != "" {
		member.Name = name
	}
	member.Online = true
	member.LastSeen = time.Now()
	if r.game != nil {
		r.game.SetConnected(userID, true)
	}
	r.sendStateSync(userID)
	log.Printf("[Room %s] Player %s connection resumed", r.ID, userID)
}

func (r *Room) tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	now := time.Now()

	if r.pendingTurnID != "" && !now.Before(r.turnResumeAt) {
		next := r.pendingTurnID
		r.pendingTurnID = ""
		r.turnResumeAt = time.Time{}
		r.startTurnTimerLocked(next)
	}
	if !r.nextHandAt.IsZero() && !now.Before(r.nextHandAt) {
		leader := r.nextHandLeader
		r.nextHandAt = time.Time{}
		r.nextHandLeader = ""
		if err := r.startHandLocked(leader); err != nil {
			log.Printf("[Room %s] delayed hand start failed: %v", r.ID, err)
		}
	}
}

// --- timers ---

func (r *Room) timerKey(userID string) string {
	return r.ID + "_" + userID
}

func (r *Room) startTurnTimerLocked(userID string) {
	if userID == "" {
		return
	}
	r.game.SetTimeRemaining(userID, r.cfg.TurnTimer)
	r.turnGen++
	gen := r.turnGen
	id := userID
	r.timers.Start(r.timerKey(userID), r.cfg.TurnTimer,
		func(remaining int) {
			r.submitAsync(Event{Type: EventTimerTick, UserID: id, Remaining: remaining, Gen: gen})
		},
		func() {
			r.submitAsync(Event{Type: EventTimerExpired, UserID: id, Gen: gen})
		})
}

func (r *Room) clearTurnTimerLocked(userID string) {
	r.turnGen++
	r.timers.Clear(r.timerKey(userID))
}

// --- wire helpers ---

func (r *Room) nextSeq() uint64 {
	r.serverSeq++
	return r.serverSeq
}

func (r *Room) sendToUser(userID, msgType string, payload any) {
	data, err := codec.Encode(msgType, r.ID, r.nextSeq(), payload)
	if err != nil {
		log.Printf("[Room %s] Failed to encode %s: %v", r.ID, msgType, err)
		return
	}
	r.broadcast(userID, data)
}

func (r *Room) broadcastToAll(msgType string, payload any) {
	data, err := codec.Encode(msgType, r.ID, r.nextSeq(), payload)
	if err != nil {
		log.Printf("[Room %s] Failed to encode %s: %v", r.ID, msgType, err)
		return
	}
	for userID := range r.members {
		r.broadcast(userID, data)
	}
}

func (r *Room) currentHandScores() map[string]int {
	snap := r.game.SnapshotFor("")
	if snap.CurrentHand == nil {
		return map[string]int{}
	}
	return snap.CurrentHand.Scores
}

// syncAllLocked pushes a sanitized snapshot to every member. Called after
// each game transition so clients never depend on replaying the event stream.
func (r *Room) syncAllLocked() {
	for userID := range r.members {
		r.sendStateSync(userID)
	}
}

func (r *Room) sendStateSync(userID string) {
	if r.game != nil {
		r.sendToUser(userID, codec.ServerStateSync, r.game.SnapshotFor(userID))
		return
	}
	roster := make([]codec.RoomPlayer, 0, len(r.order))
	for _, id := range r.order {
		roster = append(roster, codec.RoomPlayer{ID: id, Name: r.members[id].Name})
	}
	r.sendToUser(userID, codec.ServerStateSync, codec.RoomInfo{
		RoomID:     r.ID,
		Mode:       int(r.cfg.Mode),
		HostID:     r.hostID,
		IsPrivate:  r.cfg.IsPrivate,
		InviteCode: r.cfg.InviteCode,
		Players:    roster,
	})
}

// --- public API (called from gateway/lobby goroutines) ---

// SubmitEvent sends an event to the actor and waits for the result.
func (r *Room) SubmitEvent(e Event) error {
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return ErrRoomClosed
	}

	select {
	case r.events <- e:
	case <-r.done:
		return ErrRoomClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// submitAsync enqueues without waiting, used from timer callbacks. Events
// are dropped when the room shuts down or the queue is saturated.
func (r *Room) submitAsync(e Event) {
	select {
	case r.events <- e:
	case <-r.done:
	default:
	}
}

// CheckInvite validates the invite code for private rooms.
func (r *Room) CheckInvite(code string) error {
	if !r.cfg.IsPrivate {
		return nil
	}
	if code == "" || code != r.cfg.InviteCode {
		return ErrBadInvite
	}
	return nil
}

// HasMember reports whether userID has a seat in this room.
func (r *Room) HasMember(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[userID]
	return ok
}

// IsIdleFor reports whether the room has been empty at least ttl.
func (r *Room) IsIdleFor(ttl time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return true
	}
	if len(r.members) > 0 {
		allOffline := true
		for _, m := range r.members {
			if m.Online {
				allOffline = false
				break
			}
		}
		if !allOffline {
			return false
		}
		for _, m := range r.members {
			if time.Since(m.LastSeen) < ttl {
				return false
			}
		}
		return true
	}
	if r.emptySince.IsZero() {
		return false
	}
	return time.Since(r.emptySince) >= ttl
}

func (r *Room) IsClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Stop shuts down the room actor.
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Room) stopLocked() {
	r.closed = true
	r.nextHandAt = time.Time{}
	r.pendingTurnID = ""
	r.stopOnce.Do(func() {
		close(r.done)
	})
}
