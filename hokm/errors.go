package hokm

import "errors"

// Engine invariant violations. These are fatal to the room: they indicate a
// bug in the orchestration layer, not a player mistake.
var (
	ErrEmptyTrick      = errors.New("cannot determine winner of an empty trick")
	ErrPatternOverflow = errors.New("deal pattern exceeds deck size")
	ErrMatchOver       = errors.New("match already complete")
	ErrHandInProgress  = errors.New("hand already in progress")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }

// Reason codes for rejected player actions. These travel to the originating
// client only; state is left unchanged.
type Reason string

const (
	ReasonGameNotReady    Reason = "game_not_ready"
	ReasonNotYourTurn     Reason = "not_your_turn"
	ReasonNotLeader       Reason = "not_leader"
	ReasonCardNotInHand   Reason = "card_not_in_hand"
	ReasonMustFollowSuit  Reason = "must_follow_suit"
	ReasonTrumpAlreadySet Reason = "trump_already_set"
)

// PlayResult reports whether a player action was accepted, and why not.
type PlayResult struct {
	Valid  bool
	Reason Reason
}

func accepted() PlayResult              { return PlayResult{Valid: true} }
func rejected(reason Reason) PlayResult { return PlayResult{Valid: false, Reason: reason} }
