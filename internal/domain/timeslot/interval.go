package timeslot

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrInvalidInterval = errors.New("interval start must be before end")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

func (i Interval) IsZero() bool {
	return i.Start.IsZero() && i.End.IsZero()
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

func (i Interval) Contains(o Interval) bool {
	return !o.Start.Before(i.Start) && !o.End.After(i.End)
}

// Expand widens the interval by before/after. Negative arguments are clamped
// to zero so a caller can never shrink an interval by accident.
func (i Interval) Expand(before, after time.Duration) Interval {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}
	return Interval{Start: i.Start.Add(-before), End: i.End.Add(after)}
}

// Clamp intersects the interval with bounds. ok is false when they are disjoint.
func (i Interval) Clamp(bounds Interval) (Interval, bool) {
	start := i.Start
	if start.Before(bounds.Start) {
		start = bounds.Start
	}
	end := i.End
	if end.After(bounds.End) {
		end = bounds.End
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s,%s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// Merge sorts and coalesces overlapping or touching intervals.
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Start.Before(sorted[b].Start) })

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Subtract removes blocks from each window, returning the remaining free
// intervals in chronological order.
func Subtract(windows, blocks []Interval) []Interval {
	if len(blocks) == 0 {
		return Merge(windows)
	}
	merged := Merge(blocks)

	var free []Interval
	for _, w := range Merge(windows) {
		cursor := w.Start
		for _, b := range merged {
			if !b.Overlaps(w) {
				continue
			}
			if b.Start.After(cursor) {
				free = append(free, Interval{Start: cursor, End: b.Start})
			}
			if b.End.After(cursor) {
				cursor = b.End
			}
		}
		if cursor.Before(w.End) {
			free = append(free, Interval{Start: cursor, End: w.End})
		}
	}
	return free
}

// Slots cuts a window into consecutive slots of the given length, aligned to
// the window start. A remainder shorter than the slot length is dropped.
func Slots(window Interval, length time.Duration) []Interval {
	if length <= 0 {
		return nil
	}
	var out []Interval
	for s := window.Start; !s.Add(length).After(window.End); s = s.Add(length) {
		out = append(out, Interval{Start: s, End: s.Add(length)})
	}
	return out
}

// TotalDuration sums the durations of the (merged) intervals.
func TotalDuration(intervals []Interval) time.Duration {
	var total time.Duration
	for _, iv := range Merge(intervals) {
		total += iv.Duration()
	}
	return total
}
