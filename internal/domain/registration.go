package domain

import (
	"strings"
	"time"
)

type RegistrationStatus string

const (
	RegistrationStatusPending   RegistrationStatus = "PENDING"
	RegistrationStatusApproved  RegistrationStatus = "APPROVED"
	RegistrationStatusRejected  RegistrationStatus = "REJECTED"
	RegistrationStatusCancelled RegistrationStatus = "CANCELLED"
	RegistrationStatusCompleted RegistrationStatus = "COMPLETED"
)

var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	RegistrationStatusPending:  {RegistrationStatusApproved, RegistrationStatusRejected, RegistrationStatusCancelled},
	RegistrationStatusApproved: {RegistrationStatusCancelled, RegistrationStatusCompleted},
}

// CanTransitionTo reports whether the graph allows moving from s to next.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	for _, allowed := range registrationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s RegistrationStatus) Terminal() bool {
	return len(registrationTransitions[s]) == 0
}

// ParseRegistrationStatus validates a status tag read from storage.
func ParseRegistrationStatus(s string) (RegistrationStatus, bool) {
	switch st := RegistrationStatus(strings.ToUpper(s)); st {
	case RegistrationStatusPending, RegistrationStatusApproved,
		RegistrationStatusRejected, RegistrationStatusCancelled,
		RegistrationStatusCompleted:
		return st, true
	}
	return "", false
}

// EventRegistration is one volunteer's relationship to one event. At most one
// row exists per (user, event) pair across all historical statuses.
type EventRegistration struct {
	ID               int32              `json:"id"`
	UserID           int32              `json:"user_id"`
	EventID          int32              `json:"event_id"`
	Status           RegistrationStatus `json:"status"`
	RegistrationDate time.Time          `json:"registration_date"`
	CancelAt         *time.Time         `json:"cancel_at,omitempty"`
	ApprovedBy       *int32             `json:"approved_by,omitempty"`
}

// OwnedBy reports whether userID is the registering volunteer.
func (r *EventRegistration) OwnedBy(userID int32) bool {
	return r.UserID == userID
}

// CancelCutoff is how close to an event's start an approved registration may
// no longer be withdrawn.
const CancelCutoff = 24 * time.Hour

// CheckCancellable enforces the cancellation window: a PENDING registration
// may always be withdrawn, an APPROVED one only while the event start is at
// least cutoff away. Exactly at the cutoff cancellation still succeeds.
func (r *EventRegistration) CheckCancellable(eventStart, now time.Time, cutoff time.Duration) *Error {
	if r.Status == RegistrationStatusPending {
		return nil
	}
	if r.Status != RegistrationStatusApproved {
		return InvalidState("REGISTRATION_NOT_CANCELLABLE", "registration can no longer be cancelled")
	}
	if eventStart.Before(now.Add(cutoff)) {
		return InvalidState("CANCELLATION_TOO_LATE", "registrations cannot be cancelled within 24 hours of the event start")
	}
	return nil
}
