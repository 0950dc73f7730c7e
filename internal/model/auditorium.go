package model

// Auditorium is a bookable room.  Rows live in the `auditoriums` table;
// the equipment set is resolved through the auditorium_equipment join
// table and attached by the repository on demand.
//
// Fields:
//  ID          – primary key identifier.
//  Identifier  – human-readable unique room code (e.g. "Room 101").
//  Capacity    – number of seats.
//  Description – optional free-form description.
//  Equipment   – equipment installed in the room (may be nil when not loaded).
type Auditorium struct {
	ID          uint64      // auditoriums.id
	Identifier  string      // auditoriums.identifier
	Capacity    uint32      // auditoriums.capacity
	Description *string     // auditoriums.description (nullable)
	Equipment   []Equipment // via auditorium_equipment
}

// Equipment is a piece of hardware that can be installed in auditoriums
// (projector, whiteboard, ...).  Names are unique.
type Equipment struct {
	ID          uint64  // equipment.id
	Name        string  // equipment.name
	Description *string // equipment.description (nullable)
}
