package appointment

import "strings"

// ===============================
// Appointment Status
// ===============================

// Status vocabulary differs slightly per backing service: vet uses
// approved, grooming and daycare use accepted.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// NormalizeStatus lower-cases and trims a raw status. Empty means pending.
func NormalizeStatus(raw string) Status {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "":
		return StatusPending
	case "canceled":
		return StatusCancelled
	}
	return Status(s)
}

// ===============================
// Rules
// ===============================

// IsActiveForCalendar is false for anything the owner cancelled or the
// doctor/caretaker rejected; those never render on the calendar.
func (s Status) IsActiveForCalendar() bool {
	return s != StatusCancelled && s != StatusRejected
}

// IsLocked marks appointments whose edit, pay and delete actions are closed.
func (s Status) IsLocked() bool {
	return !s.IsActiveForCalendar()
}
