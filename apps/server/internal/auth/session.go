package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL = 30 * 24 * time.Hour
	tokenBytes        = 32
)

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_.-]{2,31}$`)

// Manager provides in-memory account/session management for single-binary
// deployment. It can be swapped to persistent storage later without changing
// gateway contracts.
type Manager struct {
	mu sync.Mutex

	sessionTTL    time.Duration
	sessions      map[string]sessionRecord // token -> account
	accountsByID  map[string]accountRecord // account -> profile
	accountsByKey map[string]string        // normalized username -> account
	guestCount    uint64
}

type sessionRecord struct {
	UserID    string
	ExpiresAt time.Time
}

type accountRecord struct {
	UserID        string
	Username      string
	PasswordHash  []byte
	Registered    bool
	LastLoginTime time.Time
}

func NewManager() *Manager {
	return &Manager{
		sessionTTL:    defaultSessionTTL,
		sessions:      make(map[string]sessionRecord),
		accountsByID:  make(map[string]accountRecord),
		accountsByKey: make(map[string]string),
	}
}

func (m *Manager) Close() error { return nil }

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	trimmed := strings.TrimSpace(username)
	if !usernamePattern.MatchString(trimmed) {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

func (m *Manager) issueSessionLocked(userID string, now time.Time) string {
	sessionToken := mustToken()
	m.sessions[sessionToken] = sessionRecord{
		UserID:    userID,
		ExpiresAt: now.Add(m.sessionTTL),
	}
	return sessionToken
}

func (m *Manager) resolveSessionLocked(token string, now time.Time) (userID, username string, ok bool) {
	if token == "" {
		return "", "", false
	}
	rec, exists := m.sessions[token]
	if !exists {
		return "", "", false
	}
	if !now.Before(rec.ExpiresAt) {
		delete(m.sessions, token)
		return "", "", false
	}
	rec.ExpiresAt = now.Add(m.sessionTTL)
	m.sessions[token] = rec

	profile := m.accountsByID[rec.UserID]
	return rec.UserID, profile.Username, true
}

// Register creates a new account and returns an authenticated session token.
func (m *Manager) Register(username, password string) (userID, sessionToken string, err error) {
	if err = validateUsername(username); err != nil {
		return "", "", err
	}
	if err = validatePassword(password); err != nil {
		return "", "", err
	}

	normalized := normalizeUsername(username)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accountsByKey[normalized]; exists {
		return "", "", ErrUsernameTaken
	}

	userID = uuid.NewString()
	now := time.Now()
	m.accountsByID[userID] = accountRecord{
		UserID:        userID,
		Username:      normalized,
		PasswordHash:  passwordHash,
		Registered:    true,
		LastLoginTime: now,
	}
	m.accountsByKey[normalized] = userID

	sessionToken = m.issueSessionLocked(userID, now)
	return userID, sessionToken, nil
}

// Login validates account credentials and returns a fresh authenticated session.
func (m *Manager) Login(username, password string) (userID, sessionToken string, err error) {
	normalized := normalizeUsername(username)
	if normalized == "" || password == "" {
		return "", "", ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	userID, exists := m.accountsByKey[normalized]
	if !exists {
		return "", "", ErrInvalidCredentials
	}

	profile := m.accountsByID[userID]
	if !profile.Registered || len(profile.PasswordHash) == 0 {
		return "", "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(profile.PasswordHash, []byte(password)) != nil {
		return "", "", ErrInvalidCredentials
	}

	now := time.Now()
	profile.LastLoginTime = now
	m.accountsByID[userID] = profile
	sessionToken = m.issueSessionLocked(userID, now)
	return userID, sessionToken, nil
}

// ResolveSession validates and refreshes a session token.
func (m *Manager) ResolveSession(token string) (userID, username string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveSessionLocked(token, time.Now())
}

// GuestSession creates an unregistered account bound to a fresh token.
// Guests never collide with registered usernames.
func (m *Manager) GuestSession(displayName string) (userID, sessionToken string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	userID = uuid.NewString()
	m.guestCount++
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = fmt.Sprintf("guest_%d", m.guestCount)
	}
	m.accountsByID[userID] = accountRecord{
		UserID:        userID,
		Username:      name,
		LastLoginTime: now,
	}
	sessionToken = m.issueSessionLocked(userID, now)
	return userID, sessionToken
}

// Logout invalidates a session token.
func (m *Manager) Logout(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

func mustToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
