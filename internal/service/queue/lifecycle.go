package queue

import (
	"time"

	"github.com/ifuryst/postq/internal/models"
)

// ParseDateRange parses an inclusive YYYY-MM-DD range and rejects an inverted one
func ParseDateRange(from, to string) (time.Time, time.Time, error) {
	fromDate, err := time.Parse(models.DateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, &models.ArgumentError{Argument: "from", Message: "expected YYYY-MM-DD, got " + from}
	}
	toDate, err := time.Parse(models.DateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, &models.ArgumentError{Argument: "to", Message: "expected YYYY-MM-DD, got " + to}
	}
	if fromDate.After(toDate) {
		return time.Time{}, time.Time{}, &models.ArgumentError{Argument: "from", Message: "must be on or before to"}
	}
	return fromDate, toDate, nil
}

// Approve moves every draft dated within [from, to] to approved and returns
// the indices it touched (or would touch, in preview). Records with a
// malformed date are out of range.
func Approve(records []models.PostRecord, from, to time.Time, preview bool) ([]int, error) {
	if from.After(to) {
		return nil, &models.ArgumentError{Argument: "from", Message: "must be on or before to"}
	}

	var matched []int
	for i := range records {
		rec := &records[i]
		if rec.Status != models.StatusDraft {
			continue
		}
		date, ok := rec.ParseDate()
		if !ok || date.Before(from) || date.After(to) {
			continue
		}

		matched = append(matched, i)
		if preview {
			continue
		}
		if err := rec.Transition(models.StatusApproved); err != nil {
			return nil, err
		}
	}
	return matched, nil
}

// FindDispatchTarget returns the index of the first approved record for the
// date and slot, or -1
func FindDispatchTarget(records []models.PostRecord, date string, slot models.Slot) int {
	for i := range records {
		rec := &records[i]
		if rec.Date == date && rec.Slot == slot && rec.Status == models.StatusApproved {
			return i
		}
	}
	return -1
}

type slotKey struct {
	date string
	slot models.Slot
}

// PendingSlots indexes the (date, slot) pairs held by draft or approved records
type PendingSlots map[slotKey]struct{}

func NewPendingSlots(records []models.PostRecord) PendingSlots {
	pending := make(PendingSlots)
	for i := range records {
		if records[i].Status.Pending() {
			pending.Add(records[i].Date, records[i].Slot)
		}
	}
	return pending
}

func (p PendingSlots) Add(date string, slot models.Slot) {
	p[slotKey{date: date, slot: slot}] = struct{}{}
}

func (p PendingSlots) Has(date string, slot models.Slot) bool {
	_, ok := p[slotKey{date: date, slot: slot}]
	return ok
}
