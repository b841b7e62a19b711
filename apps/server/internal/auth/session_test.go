package auth

import (
	"testing"
	"time"
)

func TestRegisterAndLogin(t *testing.T) {
	m := NewManager()

	userID, token, err := m.Register("player_one", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if userID == "" || token == "" {
		t.Fatal("empty account or token")
	}

	gotID, username, ok := m.ResolveSession(token)
	if !ok || gotID != userID {
		t.Fatalf("resolve after register: ok=%v id=%q", ok, gotID)
	}
	if username != "player_one" {
		t.Fatalf("username %q", username)
	}

	loginID, loginToken, err := m.Login("Player_One", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginID != userID {
		t.Fatal("login resolved a different account")
	}
	if loginToken == token {
		t.Fatal("login reused the registration token")
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	m := NewManager()
	if _, _, err := m.Register("x", "secret123"); err != ErrInvalidUsername {
		t.Fatalf("short username: %v", err)
	}
	if _, _, err := m.Register("player", "123"); err != ErrInvalidPassword {
		t.Fatalf("short password: %v", err)
	}
	if _, _, err := m.Register("player", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := m.Register("PLAYER", "secret123"); err != ErrUsernameTaken {
		t.Fatalf("case-insensitive duplicate: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	m := NewManager()
	if _, _, err := m.Register("player", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := m.Login("player", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("wrong password: %v", err)
	}
	if _, _, err := m.Login("nobody", "secret123"); err != ErrInvalidCredentials {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	m := NewManager()
	_, token, err := m.Register("player", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	m.Logout(token)
	if _, _, ok := m.ResolveSession(token); ok {
		t.Fatal("session survived logout")
	}
}

func TestSessionExpiry(t *testing.T) {
	m := NewManager()
	m.sessionTTL = time.Millisecond
	_, token, err := m.Register("player", "secret123")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, _, ok := m.ResolveSession(token); ok {
		t.Fatal("expired session resolved")
	}
}

func TestGuestSession(t *testing.T) {
	m := NewManager()
	id1, tok1 := m.GuestSession("Reza")
	id2, tok2 := m.GuestSession("")
	if id1 == id2 || tok1 == tok2 {
		t.Fatal("guest sessions collide")
	}
	gotID, name, ok := m.ResolveSession(tok1)
	if !ok || gotID != id1 || name != "Reza" {
		t.Fatalf("guest resolve: ok=%v id=%q name=%q", ok, gotID, name)
	}
	if _, name, _ := m.ResolveSession(tok2); name == "" {
		t.Fatal("anonymous guest got no display name")
	}
}
