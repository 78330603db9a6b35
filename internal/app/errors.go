package app

import "errors"

// Action resolution failures. All are non-fatal: a rejected action leaves
// the game state untouched and the orchestration loop keeps running.
var (
	// ErrInvalidTarget means the named room or participant does not exist
	// or is not reachable from the actor's position.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrIllegalState means the action is not valid in the current phase,
	// or a conversation is holding the turn loop.
	ErrIllegalState = errors.New("illegal state")
	// ErrAbilityUnavailable means the actor lacks the ability, is dead, or
	// has no uses left.
	ErrAbilityUnavailable = errors.New("ability unavailable")
	// ErrConflictResolved means the contested resource was already settled,
	// e.g. a task already complete.
	ErrConflictResolved = errors.New("already resolved")
)
