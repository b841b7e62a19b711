package hokm

import "fmt"

// Config carries the room settings the lobby collaborator supplies.
type Config struct {
	Mode Mode

	// Seconds each player has to act before auto-play kicks in.
	TurnTimer int

	// Extra hands awarded for a clean-sweep (Kot) hand victory.
	KotBonus int

	// Hands needed to win the match.
	TargetHands int

	IsPrivate  bool
	InviteCode string
}

func (c Config) validate() error {
	if !c.Mode.Valid() {
		return fmt.Errorf("invalid mode: %d", c.Mode)
	}
	if c.TurnTimer <= 0 {
		return fmt.Errorf("TurnTimer must be > 0")
	}
	if c.KotBonus < 0 {
		return fmt.Errorf("KotBonus must be >= 0")
	}
	if c.TargetHands <= 0 {
		return fmt.Errorf("TargetHands must be > 0")
	}
	return nil
}

// DefaultConfig returns the standard settings for a mode.
func DefaultConfig(mode Mode) Config {
	return Config{
		Mode:        mode,
		TurnTimer:   DefaultTurnTimer,
		KotBonus:    DefaultKotBonus,
		TargetHands: DefaultTargetHands,
	}
}
