// Package codec defines the JSON wire envelopes exchanged over the
// websocket. Client messages carry a type tag and a raw payload decoded by
// type; server messages carry a per-room sequence and timestamp so clients
// can order events and detect gaps.
package codec

import (
	"encoding/json"
	"fmt"
	"time"
)

// Client message types.
const (
	ClientAuth        = "auth"
	ClientCreateRoom  = "create_room"
	ClientJoinRoom    = "join_room"
	ClientLeaveRoom   = "leave_room"
	ClientStartMatch  = "start_match"
	ClientSelectTrump = "select_trump"
	ClientPlayCard    = "play_card"
	ClientStateSync   = "state_sync"
)

// Server message types.
const (
	ServerAuthOK        = "auth_ok"
	ServerRoomCreated   = "room_created"
	ServerRoomJoined    = "room_joined"
	ServerPlayerJoined  = "player_joined"
	ServerPlayerLeft    = "player_left"
	ServerMatchStarted  = "match_started"
	ServerHandStarted   = "hand_started"
	ServerTrumpSelected = "trump_selected"
	ServerCardPlayed    = "card_played"
	ServerTrickComplete = "trick_complete"
	ServerHandComplete  = "hand_complete"
	ServerMatchComplete = "match_complete"
	ServerTimerTick     = "timer_tick"
	ServerPlayerTimeout = "player_timeout"
	ServerAutoPlay      = "player_auto_play"
	ServerInvalidMove   = "invalid_move"
	ServerStateSync     = "state_sync"
	ServerError         = "error"
)

// ClientEnvelope is one inbound websocket message.
type ClientEnvelope struct {
	Type    string          `json:"type"`
	RoomID  string          `json:"roomId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerEnvelope is one outbound websocket message.
type ServerEnvelope struct {
	Type       string `json:"type"`
	RoomID     string `json:"roomId,omitempty"`
	ServerSeq  uint64 `json:"serverSeq"`
	ServerTsMs int64  `json:"serverTsMs"`
	Payload    any    `json:"payload,omitempty"`
}

// --- client payloads ---

type AuthRequest struct {
	Token string `json:"token"`
}

type CreateRoomRequest struct {
	Mode        int  `json:"mode"`
	TurnTimer   int  `json:"turnTimer,omitempty"`
	KotBonus    int  `json:"kotBonus,omitempty"`
	TargetHands int  `json:"targetHands,omitempty"`
	IsPrivate   bool `json:"isPrivate,omitempty"`
}

type JoinRoomRequest struct {
	RoomID     string `json:"roomId"`
	InviteCode string `json:"inviteCode,omitempty"`
}

type SelectTrumpRequest struct {
	Suit string `json:"suit"`
}

type PlayCardRequest struct {
	CardID string `json:"cardId"`
}

// --- server payloads ---

type AuthOK struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type RoomInfo struct {
	RoomID     string       `json:"roomId"`
	Mode       int          `json:"mode"`
	HostID     string       `json:"hostId"`
	IsPrivate  bool         `json:"isPrivate"`
	InviteCode string       `json:"inviteCode,omitempty"`
	Players    []RoomPlayer `json:"players"`
}

type RoomPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PlayerJoined struct {
	Player RoomPlayer `json:"player"`
	Seats  int        `json:"seats"`
}

type PlayerLeft struct {
	PlayerID string `json:"playerId"`
	Seats    int    `json:"seats"`
}

type MatchStarted struct {
	MatchID  string         `json:"matchId"`
	Mode     int            `json:"mode"`
	Players  []RoomPlayer   `json:"players"`
	Teams    map[string]int `json:"teams,omitempty"`
	LeaderID string         `json:"leaderId"`
}

type HandStarted struct {
	HandNumber int      `json:"handNumber"`
	LeaderID   string   `json:"leaderId"`
	DeckHash   string   `json:"deckHash"`
	Hand       []string `json:"hand"` // per-recipient first dealing round
}

type TrumpSelected struct {
	Suit       string   `json:"suit"`
	SelectedBy string   `json:"selectedBy"`
	Hand       []string `json:"hand"` // per-recipient full hand
	TurnID     string   `json:"turnId"`
}

type CardPlayed struct {
	PlayerID   string `json:"playerId"`
	CardID     string `json:"cardId"`
	AutoPlayed bool   `json:"autoPlayed,omitempty"`
	NextTurnID string `json:"nextTurnId,omitempty"`
}

type TrickComplete struct {
	TrickNumber int            `json:"trickNumber"`
	WinnerID    string         `json:"winnerId"`
	Scores      map[string]int `json:"scores"`
	NextLeadID  string         `json:"nextLeadId,omitempty"`
}

// Standing is one leaderboard row, best first.
type Standing struct {
	Key   string `json:"key"`
	Hands int    `json:"hands"`
}

type HandComplete struct {
	HandNumber   int            `json:"handNumber"`
	WinnerKey    string         `json:"winnerKey"`
	Kot          bool           `json:"kot"`
	HandsAwarded int            `json:"handsAwarded"`
	MatchScore   map[string]int `json:"matchScore"`
	Standings    []Standing     `json:"standings"`
	DeckHash     string         `json:"deckHash"`
	DeckSalt     string         `json:"deckSalt"`
	DeckOrder    []string       `json:"deckOrder"`
}

type MatchComplete struct {
	WinnerKey  string         `json:"winnerKey"`
	MatchScore map[string]int `json:"matchScore"`
	Standings  []Standing     `json:"standings"`
}

type TimerTick struct {
	PlayerID  string `json:"playerId"`
	Remaining int    `json:"remaining"`
}

type PlayerTimeout struct {
	PlayerID string `json:"playerId"`
}

type AutoPlayed struct {
	PlayerID string `json:"playerId"`
	CardID   string `json:"cardId"`
	Reason   string `json:"reason"`
}

type InvalidMove struct {
	Reason string `json:"reason"`
	CardID string `json:"cardId,omitempty"`
}

type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DecodePayload unmarshals a client payload into dst.
func DecodePayload(env *ClientEnvelope, dst any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("missing payload for %q", env.Type)
	}
	return json.Unmarshal(env.Payload, dst)
}

// Encode builds the wire bytes for a server envelope.
func Encode(msgType, roomID string, seq uint64, payload any) ([]byte, error) {
	return json.Marshal(ServerEnvelope{
		Type:       msgType,
		RoomID:     roomID,
		ServerSeq:  seq,
		ServerTsMs: time.Now().UnixMilli(),
		Payload:    payload,
	})
}
