package statemachine

import (
	"errors"
	"strings"

	"booktable-api/models"
)

// Transition defines a valid approval change and the role allowed to make it
type Transition struct {
	From  models.ApprovalStatus
	To    models.ApprovalStatus
	Actor models.UserRole
}

var (
	ErrTerminal     = errors.New("approval already decided")
	ErrNotPermitted = errors.New("transition not permitted")
)

// validTransitions is the authoritative approval gate definition. Both
// decisions are terminal: nothing leads back to pending.
var validTransitions = []Transition{
	{From: models.ApprovalPending, To: models.ApprovalApproved, Actor: models.RoleAdmin},
	{From: models.ApprovalPending, To: models.ApprovalRejected, Actor: models.RoleAdmin},
}

type transitionKey struct {
	From  models.ApprovalStatus
	To    models.ApprovalStatus
	Actor models.UserRole
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.ApprovalStatus) []models.ApprovalStatus {
	var nexts []models.ApprovalStatus
	seen := map[models.ApprovalStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status models.ApprovalStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if actor can move an approval from one state to
// another. A decided approval yields ErrTerminal so callers can tell a stale
// decision apart from a forbidden one.
func CanTransition(from, to models.ApprovalStatus, actor models.UserRole) error {
	if transitionMap[transitionKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	if IsTerminal(from) {
		return ErrTerminal
	}
	return errors.Join(ErrNotPermitted, errors.New(
		"invalid transition: "+string(from)+" -> "+string(to)+
			" for role '"+string(actor)+"'. Valid transitions from "+string(from)+
			" are: "+describeValidFrom(from),
	))
}

func describeValidFrom(status models.ApprovalStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	names := make([]string, len(nexts))
	for i, s := range nexts {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
