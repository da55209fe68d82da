package appointment

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Appointment struct {
	ID             uuid.UUID
	DoctorID       uuid.UUID
	PatientID      uuid.UUID
	DoctorName     string
	PatientName    string
	PatientAadhaar string
	Time           time.Time
	Status         Status
	CreatedAt      time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// The daily slot grid: half-hour boundaries from 09:00 inclusive to 17:00
// exclusive, 16 candidates per day. Global for every doctor.
const (
	slotDayStartHour = 9
	slotDayEndHour   = 17
	slotInterval     = 30 * time.Minute
)

// SlotGrid returns every candidate instant for the given day, ascending.
// Slots are computed values only and are never stored.
func SlotGrid(date time.Time) []time.Time {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(),
		slotDayStartHour, 0, 0, 0, date.Location())
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(),
		slotDayEndHour, 0, 0, 0, date.Location())

	var grid []time.Time
	for t := dayStart; t.Before(dayEnd); t = t.Add(slotInterval) {
		grid = append(grid, t)
	}
	return grid
}

// DayBounds returns the inclusive bounds of the local day containing date.
func DayBounds(date time.Time) (from, to time.Time) {
	from = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	to = time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, date.Location())
	return from, to
}
