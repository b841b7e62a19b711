package hokm

import (
	"time"

	"hokm-lite/card"
)

// HiddenCardID is the opaque placeholder a sanitized view substitutes for
// every card in another player's hand.
const HiddenCardID = "hidden"

// PlayedCard tags a card with who played it and when.
type PlayedCard struct {
	Card       card.Card
	PlayerID   string
	PlayerName string
	AutoPlayed bool
	PlayedAt   time.Time
}

// TrickState is the in-progress (or completed) trick.
type TrickState struct {
	TrickNumber  int
	LeadPlayerID string
	LeadSuit     card.Suit
	LeadSet      bool
	Played       []PlayedCard
	WinnerID     string
	StartedAt    time.Time
	CompletedAt  time.Time
}

// HandState is one hand of the match: deal, trump, tricks and per-entity score.
type HandState struct {
	HandNumber      int
	TrumpSuit       card.Suit
	TrumpSet        bool
	TrumpSelectedBy string
	LeaderID        string
	DealPattern     []int
	InitialHands    map[string][]string // player id -> card ids, for audit/replay
	Tricks          []TrickState
	CurrentTrick    TrickState
	Scores          map[string]int // entity key -> tricks won this hand
	DeckHash        string
	DeckSalt        string
	StartedAt       time.Time
}

// PlayerState is one seat's authoritative state.
type PlayerState struct {
	ID            string
	Name          string
	Hand          []card.Card
	TricksWon     int
	IsLeader      bool
	IsCurrentTurn bool
	Connected     bool
	TimeRemaining int
	Team          int // 4-player only; -1 otherwise
}

// PlayerView is a player as seen in a sanitized snapshot. Other players'
// cards collapse to opaque placeholders; only the count survives.
type PlayerView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Hand          []string `json:"hand"`
	HandCount     int      `json:"handCount"`
	TricksWon     int      `json:"tricksWon"`
	IsLeader      bool     `json:"isLeader"`
	IsCurrentTurn bool     `json:"isCurrentTurn"`
	Connected     bool     `json:"connected"`
	TimeRemaining int      `json:"timeRemaining"`
	Team          int      `json:"team"`
}

// PlayedCardView is a played card as exposed to clients.
type PlayedCardView struct {
	CardID     string `json:"cardId"`
	Suit       string `json:"suit"`
	Rank       string `json:"rank"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	AutoPlayed bool   `json:"autoPlayed,omitempty"`
	PlayedAtMs int64  `json:"playedAtMs"`
}

// TrickView is the wire form of a trick.
type TrickView struct {
	TrickNumber  int              `json:"trickNumber"`
	LeadPlayerID string           `json:"leadPlayerId"`
	LeadSuit     string           `json:"leadSuit,omitempty"`
	Played       []PlayedCardView `json:"played"`
	WinnerID     string           `json:"winnerId,omitempty"`
}

// HandView is the wire form of the current hand.
type HandView struct {
	HandNumber      int            `json:"handNumber"`
	TrumpSuit       string         `json:"trumpSuit,omitempty"`
	TrumpSelectedBy string         `json:"trumpSelectedBy,omitempty"`
	LeaderID        string         `json:"leaderId"`
	DealPattern     []int          `json:"dealPattern"`
	TricksComplete  int            `json:"tricksComplete"`
	CurrentTrick    TrickView      `json:"currentTrick"`
	Scores          map[string]int `json:"scores"`
	DeckHash        string         `json:"deckHash"`
}

// Snapshot is the full sanitized view of a room for one player. It is built
// field by field (never by serialize/deserialize cloning) so the hidden-hand
// contract stays explicit.
type Snapshot struct {
	RoomID      string         `json:"roomId"`
	Mode        Mode           `json:"mode"`
	Phase       string         `json:"phase"`
	Players     []PlayerView   `json:"players"`
	CurrentHand *HandView      `json:"currentHand,omitempty"`
	MatchScore  map[string]int `json:"matchScore"`
	TargetHands int            `json:"targetHands"`
	TurnTimer   int            `json:"turnTimer"`
	KotBonus    int            `json:"kotBonus"`
	DeckHash    string         `json:"deckHash,omitempty"`
}

func playedCardView(pc PlayedCard) PlayedCardView {
	return PlayedCardView{
		CardID:     pc.Card.ID(),
		Suit:       pc.Card.Suit().String(),
		Rank:       rankString(pc.Card),
		PlayerID:   pc.PlayerID,
		PlayerName: pc.PlayerName,
		AutoPlayed: pc.AutoPlayed,
		PlayedAtMs: pc.PlayedAt.UnixMilli(),
	}
}

func trickView(t TrickState) TrickView {
	v := TrickView{
		TrickNumber:  t.TrickNumber,
		LeadPlayerID: t.LeadPlayerID,
		WinnerID:     t.WinnerID,
		Played:       make([]PlayedCardView, 0, len(t.Played)),
	}
	if t.LeadSet {
		v.LeadSuit = t.LeadSuit.String()
	}
	for _, pc := range t.Played {
		v.Played = append(v.Played, playedCardView(pc))
	}
	return v
}

func rankString(c card.Card) string {
	id := c.ID()
	for i := 0; i < len(id); i++ {
		if id[i] == '_' {
			return id[i+1:]
		}
	}
	return id
}
