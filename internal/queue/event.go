// Package queue defines the booking events exchanged over the message
// broker and the background consumer that records them.  Downstream
// consumers (the Telegram notifier lives in a separate service) subscribe
// to the same queue.
package queue

// Booking event actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// BookingEvent is published whenever a booking is created, updated or
// deleted.  It carries enough information for consumers to log or notify
// without querying the primary database.
type BookingEvent struct {
	Action       string `json:"action"` // created | updated | deleted
	BookingID    uint64 `json:"booking_id"`
	AuditoriumID uint64 `json:"auditorium_id"`
	Auditorium   string `json:"auditorium"`
	BrokerID     uint64 `json:"broker_id"`
	StartsAt     string `json:"starts_at"`
	EndsAt       string `json:"ends_at"`
	Title        string `json:"title,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}
