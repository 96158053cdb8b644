package booking

import (
	"github.com/Keta808/backendTesis/internal/model"
	"github.com/Keta808/backendTesis/internal/timeslot"
)

// FindConflict scans a worker's reservations for one that overlaps the
// candidate range. Only active reservations count; each range is rebuilt
// from the stored start time and duration. The first conflict found is
// returned — any conflict rejects the booking, so no ordering guarantee is
// needed.
func FindConflict(candidate timeslot.Range, existing []model.Reservation) *model.Reservation {
	for i := range existing {
		r := &existing[i]
		if r.Status != model.StatusActiva {
			continue
		}
		start := timeslot.MinuteOfDay(r.StartTime)
		taken := timeslot.Range{Start: start, End: start + r.DurationMinutes}
		if taken.Overlaps(candidate) {
			return r
		}
	}
	return nil
}
