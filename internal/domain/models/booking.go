package models

import "time"

type BookingStatus string

const (
	BookingPending     BookingStatus = "pending"
	BookingConfirmed   BookingStatus = "confirmed"
	BookingCompleted   BookingStatus = "completed"
	BookingCancelled   BookingStatus = "cancelled"
	BookingRescheduled BookingStatus = "rescheduled"
)

// BookingStatuses lists every valid status.
var BookingStatuses = []BookingStatus{
	BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled, BookingRescheduled,
}

// Terminal reports whether self-service cancel/reschedule is no longer allowed.
func (s BookingStatus) Terminal() bool {
	return s == BookingCancelled || s == BookingRescheduled
}

// Booking is a consultation request for a date/time slot.
type Booking struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Email              string        `json:"email"`
	Company            *string       `json:"company,omitempty"`
	Phone              *string       `json:"phone,omitempty"`
	Message            *string       `json:"message,omitempty"`
	SelectedDate       string        `json:"selected_date"`
	SelectedTime       string        `json:"selected_time"`
	Timezone           *string       `json:"timezone,omitempty"`
	Status             BookingStatus `json:"status"`
	Token              string        `json:"token"`
	CancellationReason *string       `json:"cancellation_reason,omitempty"`
	OriginalBookingID  *string       `json:"original_booking_id,omitempty"`
	Notes              *string       `json:"notes,omitempty"`
	ConfirmationSent   bool          `json:"confirmation_sent"`
	ConfirmationSentAt *time.Time    `json:"confirmation_sent_at,omitempty"`
	ReminderSent       bool          `json:"reminder_sent"`
	ReminderSentAt     *time.Time    `json:"reminder_sent_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`
	RescheduledAt      *time.Time    `json:"rescheduled_at,omitempty"`
}

// BookingUpdate supports PATCH-style updates via key presence.
type BookingUpdate struct {
	Status             *BookingStatus
	SelectedDate       *string
	SelectedTime       *string
	Notes              *string
	CancellationReason *string
	ConfirmationSent   *bool
	ConfirmationSentAt *time.Time
	ReminderSent       *bool
	ReminderSentAt     *time.Time
	CancelledAt        *time.Time
	RescheduledAt      *time.Time
	UpdatedAt          time.Time
}

// Empty reports whether the update carries no field changes.
func (u BookingUpdate) Empty() bool {
	return u.Status == nil && u.SelectedDate == nil && u.SelectedTime == nil &&
		u.Notes == nil && u.CancellationReason == nil &&
		u.ConfirmationSent == nil && u.ConfirmationSentAt == nil &&
		u.ReminderSent == nil && u.ReminderSentAt == nil &&
		u.CancelledAt == nil && u.RescheduledAt == nil
}

// BookingFilter narrows admin listings.
type BookingFilter struct {
	Status string
	From   string
	To     string
	Search string
	Limit  int
	Offset int
}
