// Package history persists finished matches, hands and tricks for the
// match-history and player-stats endpoints. Writes are fire-and-forget from
// the room actor's point of view: the store logs failures instead of
// propagating them into live play.
package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Team int    `json:"team"`
}

type MatchRecord struct {
	ID          string         `json:"match_id"`
	RoomID      string         `json:"room_id"`
	Mode        int            `json:"mode"`
	TargetHands int            `json:"target_hands"`
	KotBonus    int            `json:"kot_bonus"`
	Players     []PlayerRef    `json:"players"`
	WinnerKey   string         `json:"winner_key,omitempty"`
	FinalScore  map[string]int `json:"final_score,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
}

type HandRecord struct {
	ID              string              `json:"hand_id"`
	MatchID         string              `json:"match_id"`
	HandNumber      int                 `json:"hand_number"`
	TrumpSuit       string              `json:"trump_suit"`
	TrumpSelectedBy string              `json:"trump_selected_by"`
	LeaderID        string              `json:"leader_id"`
	DealPattern     []int               `json:"deal_pattern"`
	DeckHash        string              `json:"deck_hash"`
	DeckSalt        string              `json:"deck_salt"`
	WinnerKey       string              `json:"winner_key"`
	Kot             bool                `json:"kot"`
	HandsAwarded    int                 `json:"hands_awarded"`
	Scores          map[string]int      `json:"scores"`
	InitialHands    map[string][]string `json:"initial_hands"`
	StartedAt       time.Time           `json:"started_at"`
	CompletedAt     time.Time           `json:"completed_at"`
}

type TrickRecord struct {
	ID            string       `json:"trick_id"`
	HandID        string       `json:"hand_id"`
	TrickNumber   int          `json:"trick_number"`
	LeadPlayerID  string       `json:"lead_player_id"`
	LeadSuit      string       `json:"lead_suit"`
	WinnerID      string       `json:"winner_id"`
	WinningCardID string       `json:"winning_card_id"`
	Played        []PlayedCard `json:"played"`
	StartedAt     time.Time    `json:"started_at"`
	CompletedAt   time.Time    `json:"completed_at"`
}

type PlayedCard struct {
	CardID     string `json:"card_id"`
	PlayerID   string `json:"player_id"`
	AutoPlayed bool   `json:"auto_played,omitempty"`
	PlayedAtMs int64  `json:"played_at_ms"`
}

// Store is the persistence contract consumed by rooms and HTTP handlers.
// Record* methods run their own timeouts and never block gameplay.
type Store interface {
	Close() error

	RecordMatchStart(rec MatchRecord)
	RecordHand(rec HandRecord)
	RecordTrick(rec TrickRecord)
	RecordMatchEnd(matchID, winnerKey string, finishedAt time.Time, finalScore map[string]int)

	GetMatch(ctx context.Context, matchID string) (*MatchRecord, error)
	ListHands(ctx context.Context, matchID string) ([]HandRecord, error)
	ListTricks(ctx context.Context, handID string) ([]TrickRecord, error)
	ListPlayerMatches(ctx context.Context, playerID string, limit int) ([]MatchRecord, error)
}

type noopStore struct{}

func (n *noopStore) Close() error { return nil }

func (n *noopStore) RecordMatchStart(_ MatchRecord) {}

func (n *noopStore) RecordHand(_ HandRecord) {}

func (n *noopStore) RecordTrick(_ TrickRecord) {}

func (n *noopStore) RecordMatchEnd(_, _ string, _ time.Time, _ map[string]int) {}

func (n *noopStore) GetMatch(_ context.Context, _ string) (*MatchRecord, error) {
	return nil, ErrNotFound
}

func (n *noopStore) ListHands(_ context.Context, _ string) ([]HandRecord, error) {
	return []HandRecord{}, nil
}

func (n *noopStore) ListTricks(_ context.Context, _ string) ([]TrickRecord, error) {
	return []TrickRecord{}, nil
}

func (n *noopStore) ListPlayerMatches(_ context.Context, _ string, _ int) ([]MatchRecord, error) {
	return []MatchRecord{}, nil
}

// NewNoopStore returns a store that drops everything, for rooms that run
// without persistence.
func NewNoopStore() Store { return &noopStore{} }

// NewStoreFromEnv selects the backend from HISTORY_MODE: "memory" (noop),
// "sqlite" (local file, HOKM_LOCAL_DB), or "postgres" (HISTORY_DATABASE_DSN).
func NewStoreFromEnv() (Store, string, error) {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("HISTORY_MODE")))
	switch mode {
	case "", "sqlite", "local":
		store, err := NewSQLiteStoreFromEnv()
		if err != nil {
			return nil, "sqlite", err
		}
		return store, "sqlite", nil
	case "memory", "noop":
		return NewNoopStore(), "memory-noop", nil
	case "postgres", "postgresql", "db":
		store, err := NewPostgresStoreFromEnv()
		if err != nil {
			return nil, "postgres", err
		}
		return store, "postgres", nil
	default:
		return nil, mode, fmt.Errorf("invalid HISTORY_MODE %q (supported: memory, sqlite, postgres)", mode)
	}
}

func scanTimeMs(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
