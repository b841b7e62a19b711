package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultLocalDBName = "hokm_local.db"

type SQLiteStore struct {
	db *sql.DB
}

func localDatabasePathFromEnv() (string, error) {
	if raw := strings.TrimSpace(os.Getenv("HOKM_LOCAL_DB")); raw != "" {
		return raw, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, defaultLocalDBName), nil
}

func NewSQLiteStoreFromEnv() (*SQLiteStore, error) {
	dbPath, err := localDatabasePathFromEnv()
	if err != nil {
		return nil, err
	}
	return NewSQLiteStore(dbPath)
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func ensureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS hokm_matches (
    match_id        TEXT PRIMARY KEY,
    room_id         TEXT NOT NULL,
    mode            INTEGER NOT NULL,
    target_hands    INTEGER NOT NULL,
    kot_bonus       INTEGER NOT NULL,
    players_json    TEXT NOT NULL,
    winner_key      TEXT NOT NULL DEFAULT '',
    final_score_json TEXT NOT NULL DEFAULT '{}',
    started_at_ms   INTEGER NOT NULL,
    finished_at_ms  INTEGER
)`,
		`CREATE TABLE IF NOT EXISTS hokm_hands (
    hand_id         TEXT PRIMARY KEY,
    match_id        TEXT NOT NULL REFERENCES hokm_matches(match_id),
    hand_number     INTEGER NOT NULL,
    trump_suit      TEXT NOT NULL,
    trump_selected_by TEXT NOT NULL DEFAULT '',
    leader_id       TEXT NOT NULL,
    deal_pattern_json TEXT NOT NULL DEFAULT '[]',
    deck_hash       TEXT NOT NULL,
    deck_salt       TEXT NOT NULL,
    winner_key      TEXT NOT NULL,
    kot             INTEGER NOT NULL DEFAULT 0,
    hands_awarded   INTEGER NOT NULL,
    scores_json     TEXT NOT NULL,
    initial_hands_json TEXT NOT NULL,
    started_at_ms   INTEGER NOT NULL,
    completed_at_ms INTEGER NOT NULL,
    UNIQUE (match_id, hand_number)
)`,
		`CREATE TABLE IF NOT EXISTS hokm_tricks (
    trick_id        TEXT PRIMARY KEY,
    hand_id         TEXT NOT NULL REFERENCES hokm_hands(hand_id),
    trick_number    INTEGER NOT NULL,
    lead_player_id  TEXT NOT NULL,
    lead_suit       TEXT NOT NULL,
    winner_id       TEXT NOT NULL,
    winning_card_id TEXT NOT NULL DEFAULT '',
    played_json     TEXT NOT NULL,
    started_at_ms   INTEGER NOT NULL,
    completed_at_ms INTEGER NOT NULL,
    UNIQUE (hand_id, trick_number)
)`,
		`CREATE INDEX IF NOT EXISTS idx_hokm_hands_match ON hokm_hands (match_id, hand_number)`,
		`CREATE INDEX IF NOT EXISTS idx_hokm_tricks_hand ON hokm_tricks (hand_id, trick_number)`,
		`CREATE INDEX IF NOT EXISTS idx_hokm_matches_started ON hokm_matches (started_at_ms DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) RecordMatchStart(rec MatchRecord) {
	players, err := json.Marshal(rec.Players)
	if err != nil {
		log.Printf("[History] marshal match players failed: match=%s err=%v", rec.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO hokm_matches (match_id, room_id, mode, target_hands, kot_bonus, players_json, started_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (match_id) DO NOTHING
`, rec.ID, rec.RoomID, rec.Mode, rec.TargetHands, rec.KotBonus, string(players), rec.StartedAt.UnixMilli())
	if err != nil {
		log.Printf("[History] record match start failed: match=%s err=%v", rec.ID, err)
	}
}

func (s *SQLiteStore) RecordHand(rec HandRecord) {
	scores, err := json.Marshal(rec.Scores)
	if err != nil {
		log.Printf("[History] marshal hand scores failed: hand=%s err=%v", rec.ID, err)
		return
	}
	initial, err := json.Marshal(rec.InitialHands)
	if err != nil {
		log.Printf("[History] marshal initial hands failed: hand=%s err=%v", rec.ID, err)
		return
	}
	pattern, err := json.Marshal(rec.DealPattern)
	if err != nil {
		log.Printf("[History] marshal deal pattern failed: hand=%s err=%v", rec.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO hokm_hands (
    hand_id, match_id, hand_number, trump_suit, trump_selected_by, leader_id,
    deal_pattern_json, deck_hash, deck_salt, winner_key, kot, hands_awarded,
    scores_json, initial_hands_json, started_at_ms, completed_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (match_id, hand_number) DO NOTHING
`, rec.ID, rec.MatchID, rec.HandNumber, rec.TrumpSuit, rec.TrumpSelectedBy, rec.LeaderID,
		string(pattern), rec.DeckHash, rec.DeckSalt, rec.WinnerKey, boolToInt(rec.Kot), rec.HandsAwarded,
		string(scores), string(initial), rec.StartedAt.UnixMilli(), rec.CompletedAt.UnixMilli())
	if err != nil {
		log.Printf("[History] record hand failed: hand=%s err=%v", rec.ID, err)
	}
}

func (s *SQLiteStore) RecordTrick(rec TrickRecord) {
	played, err := json.Marshal(rec.Played)
	if err != nil {
		log.Printf("[History] marshal trick cards failed: trick=%s err=%v", rec.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, `
INSERT INTO hokm_tricks (
    trick_id, hand_id, trick_number, lead_player_id, lead_suit,
    winner_id, winning_card_id, played_json, started_at_ms, completed_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (hand_id, trick_number) DO NOTHING
`, rec.ID, rec.HandID, rec.TrickNumber, rec.LeadPlayerID, rec.LeadSuit,
		rec.WinnerID, rec.WinningCardID, string(played), rec.StartedAt.UnixMilli(), rec.CompletedAt.UnixMilli())
	if err != nil {
		log.Printf("[History] record trick failed: trick=%s err=%v", rec.ID, err)
	}
}

func (s *SQLiteStore) RecordMatchEnd(matchID, winnerKey string, finishedAt time.Time, finalScore map[string]int) {
	score, err := json.Marshal(finalScore)
	if err != nil {
		log.Printf("[History] marshal final score failed: match=%s err=%v", matchID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, `
UPDATE hokm_matches
SET winner_key = ?, final_score_json = ?, finished_at_ms = ?
WHERE match_id = ?
`, winnerKey, string(score), finishedAt.UnixMilli(), matchID)
	if err != nil {
		log.Printf("[History] record match end failed: match=%s err=%v", matchID, err)
	}
}

func (s *SQLiteStore) GetMatch(ctx context.Context, matchID string) (*MatchRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT match_id, room_id, mode, target_hands, kot_bonus, players_json,
       winner_key, final_score_json, started_at_ms, finished_at_ms
FROM hokm_matches
WHERE match_id = ?
`, matchID)
	rec, err := scanMatchRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStore) ListHands(ctx context.Context, matchID string) ([]HandRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT hand_id, match_id, hand_number, trump_suit, trump_selected_by, leader_id,
       deal_pattern_json, deck_hash, deck_salt, winner_key, kot, hands_awarded,
       scores_json, initial_hands_json, started_at_ms, completed_at_ms
FROM hokm_hands
WHERE match_id = ?
ORDER BY hand_number ASC
`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHandRows(rows)
}

func (s *SQLiteStore) ListTricks(ctx context.Context, handID string) ([]TrickRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT trick_id, hand_id, trick_number, lead_player_id, lead_suit,
       winner_id, winning_card_id, played_json, started_at_ms, completed_at_ms
FROM hokm_tricks
WHERE hand_id = ?
ORDER BY trick_number ASC
`, handID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrickRows(rows)
}

func (s *SQLiteStore) ListPlayerMatches(ctx context.Context, playerID string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	// players_json is a small array; LIKE on the quoted id keeps the schema
	// free of a join table for this query volume.
	rows, err := s.db.QueryContext(ctx, `
SELECT match_id, room_id, mode, target_hands, kot_bonus, players_json,
       winner_key, final_score_json, started_at_ms, finished_at_ms
FROM hokm_matches
WHERE players_json LIKE '%' || ? || '%'
ORDER BY started_at_ms DESC
LIMIT ?
`, `"id":"`+playerID+`"`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchRecord
	for rows.Next() {
		rec, err := scanMatchRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatchRow(row rowScanner) (*MatchRecord, error) {
	var rec MatchRecord
	var playersJSON, scoreJSON string
	var startedMs int64
	var finishedMs sql.NullInt64
	if err := row.Scan(&rec.ID, &rec.RoomID, &rec.Mode, &rec.TargetHands, &rec.KotBonus,
		&playersJSON, &rec.WinnerKey, &scoreJSON, &startedMs, &finishedMs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(playersJSON), &rec.Players); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(scoreJSON), &rec.FinalScore); err != nil {
		return nil, err
	}
	rec.StartedAt = scanTimeMs(startedMs)
	if finishedMs.Valid {
		t := scanTimeMs(finishedMs.Int64)
		rec.FinishedAt = &t
	}
	return &rec, nil
}

func collectHandRows(rows *sql.Rows) ([]HandRecord, error) {
	var out []HandRecord
	for rows.Next() {
		var rec HandRecord
		var kot int
		var scoresJSON, initialJSON, patternJSON string
		var startedMs, completedMs int64
		if err := rows.Scan(&rec.ID, &rec.MatchID, &rec.HandNumber, &rec.TrumpSuit, &rec.TrumpSelectedBy, &rec.LeaderID,
			&patternJSON, &rec.DeckHash, &rec.DeckSalt, &rec.WinnerKey, &kot, &rec.HandsAwarded,
			&scoresJSON, &initialJSON, &startedMs, &completedMs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(patternJSON), &rec.DealPattern); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(scoresJSON), &rec.Scores); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(initialJSON), &rec.InitialHands); err != nil {
			return nil, err
		}
		rec.Kot = kot != 0
		rec.StartedAt = scanTimeMs(startedMs)
		rec.CompletedAt = scanTimeMs(completedMs)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func collectTrickRows(rows *sql.Rows) ([]TrickRecord, error) {
	var out []TrickRecord
	for rows.Next() {
		var rec TrickRecord
		var playedJSON string
		var startedMs, completedMs int64
		if err := rows.Scan(&rec.ID, &rec.HandID, &rec.TrickNumber, &rec.LeadPlayerID, &rec.LeadSuit,
			&rec.WinnerID, &rec.WinningCardID, &playedJSON, &startedMs, &completedMs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(playedJSON), &rec.Played); err != nil {
			return nil, err
		}
		rec.StartedAt = scanTimeMs(startedMs)
		rec.CompletedAt = scanTimeMs(completedMs)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
