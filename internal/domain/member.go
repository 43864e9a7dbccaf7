package domain

import "time"

// MemberStatus represents the directory visibility of a member.
type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "ACTIVE"
	MemberStatusInactive MemberStatus = "INACTIVE"
)

// Member is the domain model for directory members.
type Member struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Active      bool      `json:"is_active"`
	Deleted     bool      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Status derives the member status from the active flag.
func (m *Member) Status() MemberStatus {
	if m.Active {
		return MemberStatusActive
	}
	return MemberStatusInactive
}

// SetStatus updates the active flag from a status value.
func (m *Member) SetStatus(status MemberStatus) {
	m.Active = status == MemberStatusActive
}

// Visible reports whether the member should appear in directory reads.
func (m *Member) Visible() bool {
	return !m.Deleted && m.Active
}
