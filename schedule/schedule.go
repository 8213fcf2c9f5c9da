// Package schedule models the weekly activation calendar of a detection rule:
// per-day lists of wall-clock time ranges, edited through an hour-granularity
// toggle grid.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Day is one of the seven fixed day keys used on the wire.
type Day string

const (
	Monday    Day = "mon"
	Tuesday   Day = "tue"
	Wednesday Day = "wed"
	Thursday  Day = "thu"
	Friday    Day = "fri"
	Saturday  Day = "sat"
	Sunday    Day = "sun"
)

// Days lists the day keys in calendar order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// DayOf maps a timestamp to its day key.
func DayOf(t time.Time) Day {
	switch t.Weekday() {
	case time.Monday:
		return Monday
	case time.Tuesday:
		return Tuesday
	case time.Wednesday:
		return Wednesday
	case time.Thursday:
		return Thursday
	case time.Friday:
		return Friday
	case time.Saturday:
		return Saturday
	default:
		return Sunday
	}
}

// TimeRange is a same-day wall-clock window in "HH:MM" 24h notation.
// Start must be strictly before End; ranges never wrap past midnight. A
// window crossing midnight is expressed as two ranges on the adjacent days.
// "24:00" is allowed as an End only.
type TimeRange struct {
	Start string `json:"start" bson:"start"`
	End   string `json:"end" bson:"end"`
}

// Validate checks the clock syntax and the Start < End invariant.
func (r TimeRange) Validate() error {
	startMin, err := clockToMinutes(r.Start)
	if err != nil {
		return fmt.Errorf("invalid start %q: %w", r.Start, err)
	}
	if startMin >= 24*60 {
		return fmt.Errorf("invalid start %q: 24:00 is allowed as an end only", r.Start)
	}
	endMin, err := clockToMinutes(r.End)
	if err != nil {
		return fmt.Errorf("invalid end %q: %w", r.End, err)
	}
	if startMin >= endMin {
		return fmt.Errorf("range %s-%s: start must be before end", r.Start, r.End)
	}
	return nil
}

// StartHour returns the hour component of Start, or -1 if unparseable.
func (r TimeRange) StartHour() int { return hourOf(r.Start) }

// EndHour returns the hour component of End, or -1 if unparseable.
func (r TimeRange) EndHour() int { return hourOf(r.End) }

func clockToMinutes(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("expected HH:MM")
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("bad hour %q", hh)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute %q", mm)
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("hours past 24:00 do not exist")
	}
	return h*60 + m, nil
}

func hourOf(s string) int {
	hh, _, ok := strings.Cut(s, ":")
	if !ok {
		return -1
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return -1
	}
	return h
}

// Weekly maps each day to its sorted, non-overlapping, minimal range list.
// A missing or empty day means never active that day.
type Weekly map[Day][]TimeRange

// Nightly is the factory-default activation calendar: 22:00 through 06:00
// every night, stored as two same-day ranges because ranges do not wrap
// past midnight.
func Nightly() Weekly {
	w := make(Weekly, len(Days))
	for _, d := range Days {
		w[d] = []TimeRange{
			{Start: "00:00", End: "06:00"},
			{Start: "22:00", End: "24:00"},
		}
	}
	return w
}

// IsHourActive reports whether the given whole hour falls inside any of the
// day's ranges. Only the hour components of Start and End take part; minutes
// are stored but deliberately ignored here, matching the hour-grid editor.
func (w Weekly) IsHourActive(day Day, hour int) bool {
	for _, r := range w[day] {
		start, end := r.StartHour(), r.EndHour()
		if start < 0 || end < 0 {
			continue
		}
		if hour >= start && hour < end {
			return true
		}
	}
	return false
}

// ActiveHours re-derives the day's active-hour set from its ranges.
func (w Weekly) ActiveHours(day Day) map[int]bool {
	active := make(map[int]bool)
	for h := 0; h < 24; h++ {
		if w.IsHourActive(day, h) {
			active[h] = true
		}
	}
	return active
}

// ToggleHour flips one hour's membership for a day. The day's ranges are
// rebuilt from the full 24-hour set rather than spliced in place, so the
// minimality invariant cannot be violated by an edit.
func (w Weekly) ToggleHour(day Day, hour int) {
	if hour < 0 || hour > 23 {
		return
	}
	active := w.ActiveHours(day)
	if active[hour] {
		delete(active, hour)
	} else {
		active[hour] = true
	}
	w[day] = HoursToRanges(active)
}

// HoursToRanges converts an active-hour set to its unique minimal list of
// contiguous ranges, sorted by start. An empty set yields an empty list.
func HoursToRanges(active map[int]bool) []TimeRange {
	hours := make([]int, 0, len(active))
	for h, on := range active {
		if on && h >= 0 && h <= 23 {
			hours = append(hours, h)
		}
	}
	sort.Ints(hours)

	ranges := []TimeRange{}
	if len(hours) == 0 {
		return ranges
	}
	start, prev := hours[0], hours[0]
	for _, h := range hours[1:] {
		if h != prev+1 {
			ranges = append(ranges, TimeRange{Start: clock(start), End: clock(prev + 1)})
			start = h
		}
		prev = h
	}
	return append(ranges, TimeRange{Start: clock(start), End: clock(prev + 1)})
}

// RangesToHours is the inverse of HoursToRanges at hour granularity; minutes
// inside the ranges are truncated.
func RangesToHours(ranges []TimeRange) map[int]bool {
	active := make(map[int]bool)
	for _, r := range ranges {
		start, end := r.StartHour(), r.EndHour()
		for h := start; h >= 0 && h < end && h < 24; h++ {
			active[h] = true
		}
	}
	return active
}

func clock(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// Validate checks every day key and the per-day sorted/non-overlapping/
// non-adjacent invariants.
func (w Weekly) Validate() error {
	known := make(map[Day]bool, len(Days))
	for _, d := range Days {
		known[d] = true
	}
	for day, ranges := range w {
		if !known[day] {
			return fmt.Errorf("unknown day key %q", day)
		}
		prevEnd := -1
		for _, r := range ranges {
			if err := r.Validate(); err != nil {
				return fmt.Errorf("%s: %w", day, err)
			}
			startMin, _ := clockToMinutes(r.Start)
			endMin, _ := clockToMinutes(r.End)
			if startMin < prevEnd {
				return fmt.Errorf("%s: ranges overlap at %s", day, r.Start)
			}
			if startMin == prevEnd {
				return fmt.Errorf("%s: adjacent ranges at %s must be merged", day, r.Start)
			}
			prevEnd = endMin
		}
	}
	return nil
}
