package events

import (
	"time"

	"github.com/spec-kit/member-registry/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMemberRegistered    EventType = "member_registered"
	EventMemberStatusChanged EventType = "member_status_changed"
	EventMemberDeleted       EventType = "member_deleted"
	EventUserRegistered      EventType = "user_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MemberRegisteredPayload payload.
type MemberRegisteredPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MemberStatusChangedPayload payload.
type MemberStatusChangedPayload struct {
	OldStatus domain.MemberStatus `json:"old_status"`
	NewStatus domain.MemberStatus `json:"new_status"`
}

// MemberDeletedPayload payload.
type MemberDeletedPayload struct {
	Email string `json:"email"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email string `json:"email"`
}
