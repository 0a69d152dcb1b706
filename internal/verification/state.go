// Package verification models the lifecycle of a coding profile link.
package verification

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/codetrack/scraper-service/internal/models"
)

// ErrInvalidTransition is returned when an event does not apply to a status
var ErrInvalidTransition = errors.New("invalid verification transition")

// Event drives a status change
type Event string

const (
	EventAccept   Event = "accept"
	EventReject   Event = "reject"
	EventDemote   Event = "demote"
	EventResubmit Event = "resubmit"
	EventSuspend  Event = "suspend"
)

// ParseEvent maps a faculty action name onto an event
func ParseEvent(action string) (Event, error) {
	switch Event(action) {
	case EventAccept, EventReject, EventDemote, EventResubmit, EventSuspend:
		return Event(action), nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
}

var transitions = map[models.ProfileStatus]map[Event]models.ProfileStatus{
	models.StatusPending: {
		EventAccept: models.StatusAccepted,
		EventReject: models.StatusRejected,
		// the acceptance path may demote before the accept write lands
		EventDemote: models.StatusRejected,
	},
	models.StatusAccepted: {
		EventDemote:  models.StatusRejected,
		EventSuspend: models.StatusSuspended,
	},
}

// Transition returns the status reached by applying event to from.
// Resubmitting a username resets any status to pending; rejected and
// suspended links accept nothing else.
func Transition(from models.ProfileStatus, event Event) (models.ProfileStatus, error) {
	if event == EventResubmit {
		return models.StatusPending, nil
	}
	if to, ok := transitions[from][event]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, from)
}

// PlatformDemoted records an automatic demotion after repeated scrape failures
type PlatformDemoted struct {
	StudentID string
	Platform  models.Platform
	Reason    string
	Attempts  int
	At        time.Time
}

// Mutation is the set of profile link fields a transition writes
type Mutation struct {
	Status         models.ProfileStatus
	Verified       bool
	ClearUsername  bool
	Username       *string
	VerifiedBy     *string
	DemotionReason string
}

// Columns renders the mutation as a column map for a partial update
func (m Mutation) Columns() map[string]interface{} {
	cols := map[string]interface{}{
		"status":          m.Status,
		"verified":        m.Verified,
		"demotion_reason": m.DemotionReason,
	}
	if m.ClearUsername {
		cols["username"] = nil
	} else if m.Username != nil {
		cols["username"] = *m.Username
	}
	if m.VerifiedBy != nil {
		cols["verified_by"] = *m.VerifiedBy
	}
	return cols
}

// Apply computes the mutation for a demotion from the given status
func (e PlatformDemoted) Apply(from models.ProfileStatus) (Mutation, error) {
	to, err := Transition(from, EventDemote)
	if err != nil {
		return Mutation{}, err
	}
	return Mutation{
		Status:         to,
		Verified:       false,
		ClearUsername:  true,
		DemotionReason: e.Reason,
	}, nil
}

// Review computes the mutation for a faculty accept or reject
func Review(from models.ProfileStatus, event Event, verifier string) (Mutation, error) {
	if event != EventAccept && event != EventReject && event != EventSuspend {
		return Mutation{}, fmt.Errorf("%w: %s is not a review action", ErrInvalidTransition, event)
	}
	to, err := Transition(from, event)
	if err != nil {
		return Mutation{}, err
	}
	return Mutation{
		Status:     to,
		Verified:   to == models.StatusAccepted,
		VerifiedBy: &verifier,
	}, nil
}

// Resubmit computes the mutation for a new username submission
func Resubmit(username string) Mutation {
	return Mutation{
		Status:   models.StatusPending,
		Verified: false,
		Username: &username,
	}
}
