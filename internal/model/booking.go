package model

import "time"

// Booking is a concrete, dated reservation of one auditorium by one user
// (the "broker").  Rows live in the `bookings` table.  Start and end form
// a half-open interval [StartTime, EndTime); two bookings for the same
// auditorium may touch but never overlap.  All timestamps are UTC.
//
// Fields:
//  ID           – primary key identifier.
//  AuditoriumID – auditorium being reserved.
//  BrokerID     – user who requested and owns the booking.
//  StartTime    – start of the reserved interval (inclusive).
//  EndTime      – end of the reserved interval (exclusive).
//  Title        – optional short purpose of the booking.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Booking struct {
	ID           uint64    // bookings.id
	AuditoriumID uint64    // bookings.auditorium_id
	BrokerID     uint64    // bookings.broker_id
	StartTime    time.Time // bookings.start_time
	EndTime      time.Time // bookings.end_time
	Title        *string   // bookings.title (nullable)
	CreatedAt    time.Time // bookings.created_at
	UpdatedAt    time.Time // bookings.updated_at
}
