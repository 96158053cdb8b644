package schedule

import (
	"github.com/Keta808/backendTesis/internal/model"
	"github.com/Keta808/backendTesis/internal/timeslot"
)

// Slot is one bookable interval in a day view.
type Slot struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

// FreeSlots walks a day schedule in durationMinutes steps and marks each
// slot unavailable when it clips an exception or an already-reserved range.
// Used purely for the calendar view; booking validation never consults it.
func FreeSlots(ds *model.DaySchedule, reserved []timeslot.Range, durationMinutes int) []Slot {
	if ds == nil || durationMinutes <= 0 {
		return nil
	}

	var slots []Slot
	for _, b := range ds.Blocks {
		for start := b.StartMinute; start+durationMinutes <= b.EndMinute; start += durationMinutes {
			candidate := timeslot.Range{Start: start, End: start + durationMinutes}
			slots = append(slots, Slot{
				Start:     timeslot.FormatClock(candidate.Start),
				End:       timeslot.FormatClock(candidate.End),
				Available: slotFree(ds, reserved, candidate),
			})
		}
	}
	return slots
}

func slotFree(ds *model.DaySchedule, reserved []timeslot.Range, candidate timeslot.Range) bool {
	for _, ex := range ds.Exceptions {
		if (timeslot.Range{Start: ex.StartMinute, End: ex.EndMinute}).Overlaps(candidate) {
			return false
		}
	}
	for _, r := range reserved {
		if r.Overlaps(candidate) {
			return false
		}
	}
	return true
}
