// Package schedule answers whether a candidate time range is open in a
// worker's weekly availability. Two representations are supported behind
// one Calendar: continuous windows with exception carve-outs, and discrete
// fixed-size bookable blocks.
package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/Keta808/backendTesis/internal/model"
	"github.com/Keta808/backendTesis/internal/store"
	"github.com/Keta808/backendTesis/internal/timeslot"
)

// Verdict is the outcome of an availability check. Everything except Open
// rejects the booking, but callers surface the distinction.
type Verdict int

const (
	Open Verdict = iota
	NoSchedule
	OutsideBlocks
	InsideException
)

func (v Verdict) String() string {
	switch v {
	case Open:
		return "open"
	case NoSchedule:
		return "no schedule"
	case OutsideBlocks:
		return "outside blocks"
	case InsideException:
		return "inside exception"
	}
	return "unknown"
}

// Source provides the stored weekly schedules. store.Store satisfies it.
type Source interface {
	GetDaySchedule(ctx context.Context, workerID string, weekday time.Weekday) (*model.DaySchedule, error)
}

// Calendar evaluates candidate ranges against stored day schedules,
// dispatching on each schedule's configured representation.
type Calendar struct {
	src Source
}

// NewCalendar creates a Calendar reading schedules from src.
func NewCalendar(src Source) *Calendar {
	return &Calendar{src: src}
}

// BlocksFor returns the ordered open blocks for a worker's weekday, or
// store.ErrNotFound when no schedule is configured for that day.
func (c *Calendar) BlocksFor(ctx context.Context, workerID string, weekday time.Weekday) ([]model.TimeBlock, error) {
	ds, err := c.src.GetDaySchedule(ctx, workerID, weekday)
	if err != nil {
		return nil, err
	}
	return ds.Blocks, nil
}

// Check evaluates the candidate using the representation the worker's
// schedule is configured with.
func (c *Calendar) Check(ctx context.Context, workerID string, weekday time.Weekday, candidate timeslot.Range) (Verdict, error) {
	return c.check(ctx, workerID, weekday, candidate, "")
}

// CheckMode evaluates the candidate forcing a specific representation,
// regardless of the schedule's configured mode.
func (c *Calendar) CheckMode(ctx context.Context, workerID string, weekday time.Weekday, candidate timeslot.Range, mode model.ScheduleMode) (Verdict, error) {
	return c.check(ctx, workerID, weekday, candidate, mode)
}

func (c *Calendar) check(ctx context.Context, workerID string, weekday time.Weekday, candidate timeslot.Range, mode model.ScheduleMode) (Verdict, error) {
	ds, err := c.src.GetDaySchedule(ctx, workerID, weekday)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NoSchedule, nil
		}
		return NoSchedule, err
	}
	if mode == "" {
		mode = ds.Mode
	}
	switch mode {
	case model.ModeSlots:
		return evaluateSlots(ds, candidate), nil
	default:
		return evaluateWindows(ds, candidate), nil
	}
}

// evaluateWindows requires the candidate to fit fully inside a single open
// block and to miss every exception. A candidate spanning two adjacent
// blocks is rejected even when the blocks are contiguous.
func evaluateWindows(ds *model.DaySchedule, candidate timeslot.Range) Verdict {
	if len(ds.Blocks) == 0 {
		return NoSchedule
	}
	contained := false
	for _, b := range ds.Blocks {
		block := timeslot.Range{Start: b.StartMinute, End: b.EndMinute}
		if block.Contains(candidate) {
			contained = true
			break
		}
	}
	if !contained {
		return OutsideBlocks
	}
	for _, ex := range ds.Exceptions {
		blackout := timeslot.Range{Start: ex.StartMinute, End: ex.EndMinute}
		if blackout.Overlaps(candidate) {
			return InsideException
		}
	}
	return Open
}

// evaluateSlots treats the blocks as the discrete bookable units: the
// candidate must fit inside one of them. This representation carries no
// exceptions.
func evaluateSlots(ds *model.DaySchedule, candidate timeslot.Range) Verdict {
	if len(ds.Blocks) == 0 {
		return NoSchedule
	}
	for _, b := range ds.Blocks {
		block := timeslot.Range{Start: b.StartMinute, End: b.EndMinute}
		if block.Contains(candidate) {
			return Open
		}
	}
	return OutsideBlocks
}
