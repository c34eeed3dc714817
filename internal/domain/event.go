package domain

import (
	"strings"
	"time"
)

type EventStatus string

const (
	EventStatusPending   EventStatus = "PENDING"
	EventStatusApproved  EventStatus = "APPROVED"
	EventStatusRejected  EventStatus = "REJECTED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusCompleted EventStatus = "COMPLETED"
)

// eventTransitions is the full transition graph for events. Statuses with no
// entry are terminal.
var eventTransitions = map[EventStatus][]EventStatus{
	EventStatusPending:  {EventStatusApproved, EventStatusRejected, EventStatusCancelled},
	EventStatusApproved: {EventStatusCancelled, EventStatusCompleted},
}

// CanTransitionTo reports whether the graph allows moving from s to next.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	for _, allowed := range eventTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s EventStatus) Terminal() bool {
	return len(eventTransitions[s]) == 0
}

// ParseEventStatus validates a status tag read from storage or a filter
// parameter.
func ParseEventStatus(s string) (EventStatus, bool) {
	switch st := EventStatus(strings.ToUpper(s)); st {
	case EventStatusPending, EventStatusApproved, EventStatusRejected,
		EventStatusCancelled, EventStatusCompleted:
		return st, true
	}
	return "", false
}

type Event struct {
	ID          int32       `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	CategoryID  int32       `json:"category_id"`
	Address     string      `json:"address"`
	City        string      `json:"city"`
	District    string      `json:"district"`
	Ward        string      `json:"ward"`
	StartAt     time.Time   `json:"start_at"`
	EndAt       time.Time   `json:"end_at"`
	CreatedBy   int32       `json:"created_by"`
	Status      EventStatus `json:"status"`
	CreatedOn   time.Time   `json:"created_on"`
	UpdatedOn   time.Time   `json:"updated_on"`
}

// OwnedBy reports whether userID is the creating manager.
func (e *Event) OwnedBy(userID int32) bool {
	return e.CreatedBy == userID
}

// ValidateEventWindow enforces the creation-time schedule rules: both instants
// strictly in the future and endAt strictly after startAt. It is checked once
// at creation; an event does not become invalid by the clock passing.
func ValidateEventWindow(startAt, endAt, now time.Time) *Error {
	if !startAt.After(now) {
		return Validation("EVENT_START_IN_PAST", "event start time must be in the future")
	}
	if !endAt.After(now) {
		return Validation("EVENT_END_IN_PAST", "event end time must be in the future")
	}
	if !endAt.After(startAt) {
		return Validation("EVENT_END_BEFORE_START", "event end time must be after its start time")
	}
	return nil
}

// ReviewAction is an admin's verdict on a pending event.
type ReviewAction string

const (
	ReviewApprove ReviewAction = "APPROVE"
	ReviewReject  ReviewAction = "REJECT"
)

// ParseReviewAction accepts the review vocabulary case-insensitively.
func ParseReviewAction(s string) (ReviewAction, bool) {
	switch a := ReviewAction(strings.ToUpper(s)); a {
	case ReviewApprove, ReviewReject:
		return a, true
	}
	return "", false
}

// Status returns the event status a review verdict resolves to.
func (a ReviewAction) Status() EventStatus {
	if a == ReviewApprove {
		return EventStatusApproved
	}
	return EventStatusRejected
}

// CloseAction is a manager's way of retiring their own event.
type CloseAction string

const (
	CloseCancel   CloseAction = "CANCEL"
	CloseComplete CloseAction = "COMPLETE"
)

// ParseCloseAction accepts the close vocabulary case-insensitively.
func ParseCloseAction(s string) (CloseAction, bool) {
	switch a := CloseAction(strings.ToUpper(s)); a {
	case CloseCancel, CloseComplete:
		return a, true
	}
	return "", false
}

// Status returns the event status a close action resolves to.
func (a CloseAction) Status() EventStatus {
	if a == CloseCancel {
		return EventStatusCancelled
	}
	return EventStatusCompleted
}
