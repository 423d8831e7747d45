package moderation

import (
	"fmt"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/safevoice-app/safevoice-api/models"
)

// Action is an operator-triggered status transition on a community member
type Action string

// Valid moderation actions
const (
	ActionWarn     Action = "warn"
	ActionSuspend  Action = "suspend"
	ActionBan      Action = "ban"
	ActionActivate Action = "activate"
)

// Reason length bounds, enforced before any transition is attempted
const (
	ReasonMinLen = 5
	ReasonMaxLen = 500
)

// transition maps each punitive action to the status it sets and the
// violation type it records. Activate is absent: it restores status
// without touching the violation log.
type transition struct {
	status    models.MemberStatus
	violation models.ViolationType
}

var transitions = map[Action]transition{
	ActionWarn:    {status: models.MemberStatusWarned, violation: models.ViolationHarassment},
	ActionSuspend: {status: models.MemberStatusSuspended, violation: models.ViolationInappropriateContent},
	ActionBan:     {status: models.MemberStatusBanned, violation: models.ViolationHateSpeech},
}

// ParseAction validates the wire form of a moderation action
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionWarn, ActionSuspend, ActionBan, ActionActivate:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown moderation action %q", s)
}

// ValidateReason checks the operator reason text against the length bounds
func ValidateReason(reason string) error {
	n := utf8.RuneCountInString(reason)
	if n < ReasonMinLen || n > ReasonMaxLen {
		return fmt.Errorf("reason must be between %d and %d characters, got %d", ReasonMinLen, ReasonMaxLen, n)
	}
	return nil
}

// Apply computes the member state after a moderation action. Warn, suspend
// and ban each append exactly one violation and bump reportsCount by one;
// activate restores active status and leaves the violation log and counter
// untouched. No transition is blocked by the current status: re-warning an
// already banned member is accepted and records another violation.
func Apply(m models.CommunityMember, action Action, reason string, now time.Time) (models.CommunityMember, error) {
	if err := ValidateReason(reason); err != nil {
		return m, err
	}
	m.UpdatedAt = primitive.NewDateTimeFromTime(now)

	if action == ActionActivate {
		m.Status = models.MemberStatusActive
		return m, nil
	}

	t, ok := transitions[action]
	if !ok {
		return m, fmt.Errorf("unknown moderation action %q", action)
	}
	m.Status = t.status
	m.Violations = append(m.Violations, models.Violation{
		Type:        t.violation,
		Date:        primitive.NewDateTimeFromTime(now),
		Description: reason,
	})
	m.ReportsCount++
	return m, nil
}
