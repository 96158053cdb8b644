package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Keta808/backendTesis/internal/model"
	"github.com/Keta808/backendTesis/internal/timeslot"
)

func reservationAt(id string, status model.Status, startMinute, duration int) model.Reservation {
	day := time.Date(2025, 3, 5, 0, 0, 0, 0, time.Local)
	return model.Reservation{
		ID:              id,
		Status:          status,
		Date:            day,
		StartTime:       timeslot.AtMinute(day, startMinute),
		DurationMinutes: duration,
	}
}

func TestFindConflict(t *testing.T) {
	existing := []model.Reservation{
		reservationAt("r1", model.StatusActiva, 600, 30),     // 10:00-10:30
		reservationAt("r2", model.StatusCancelada, 660, 30),  // 11:00-11:30, released
		reservationAt("r3", model.StatusFinalizada, 720, 30), // 12:00-12:30, over
	}

	cases := []struct {
		name       string
		start, end int
		wantID     string
	}{
		{"partial overlap from the left", 585, 615, "r1"},
		{"partial overlap from the right", 615, 645, "r1"},
		{"identical range", 600, 630, "r1"},
		{"candidate swallows existing", 570, 660, "r1"},
		{"touching end is free", 630, 660, ""},
		{"touching start is free", 570, 600, ""},
		{"over a cancelled reservation", 660, 690, ""},
		{"over a finalized reservation", 720, 750, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FindConflict(timeslot.Range{Start: tc.start, End: tc.end}, existing)
			if tc.wantID == "" {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tc.wantID, got.ID)
			}
		})
	}
}

func TestFindConflictEmpty(t *testing.T) {
	assert.Nil(t, FindConflict(timeslot.Range{Start: 600, End: 630}, nil))
}
