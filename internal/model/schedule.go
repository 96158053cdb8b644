package model

import "time"

// ScheduleMode selects how a day's availability is represented.
type ScheduleMode string

const (
	// ModeWindows models continuous open windows with exception carve-outs.
	ModeWindows ScheduleMode = "windows"
	// ModeSlots models a list of discrete fixed-size bookable blocks.
	ModeSlots ScheduleMode = "slots"
)

// DaySchedule holds a worker's availability for one weekday: an ordered set
// of open time blocks plus blackout exceptions. Exactly one row exists per
// (worker, weekday); a missing row means the worker does not work that day.
type DaySchedule struct {
	ID        int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	WorkerID  string       `gorm:"size:36;not null;uniqueIndex:idx_schedule_worker_day" json:"workerId"`
	Weekday   time.Weekday `gorm:"not null;uniqueIndex:idx_schedule_worker_day" json:"weekday"`
	Mode      ScheduleMode `gorm:"size:16;not null;default:windows" json:"mode"`
	CreatedAt time.Time    `json:"-"`
	UpdatedAt time.Time    `json:"-"`

	// Associations
	Blocks     []TimeBlock         `gorm:"foreignKey:DayScheduleID;constraint:OnDelete:CASCADE" json:"blocks"`
	Exceptions []ScheduleException `gorm:"foreignKey:DayScheduleID;constraint:OnDelete:CASCADE" json:"exceptions"`
}

// TimeBlock is an open availability window within one weekday, stored as
// half-open [StartMinute, EndMinute) minutes of day.
type TimeBlock struct {
	ID            int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DayScheduleID int64 `gorm:"index;not null" json:"-"`
	StartMinute   int   `gorm:"not null" json:"startMinute"`
	EndMinute     int   `gorm:"not null" json:"endMinute"`
}

// ScheduleException is a blackout sub-range carved out of a day. Exceptions
// apply to the whole day, independent of any particular block.
type ScheduleException struct {
	ID            int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	DayScheduleID int64 `gorm:"index;not null" json:"-"`
	StartMinute   int   `gorm:"not null" json:"startMinute"`
	EndMinute     int   `gorm:"not null" json:"endMinute"`
}
