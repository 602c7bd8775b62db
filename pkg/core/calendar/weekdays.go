package calendar

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Weekday indices, Monday first
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayLabels = [7]string{"M", "T", "W", "Th", "F", "S", "Su"}

var weekdayNames = map[string]int{
	"mon": Monday, "monday": Monday, "m": Monday,
	"tue": Tuesday, "tuesday": Tuesday, "t": Tuesday,
	"wed": Wednesday, "wednesday": Wednesday, "w": Wednesday,
	"thu": Thursday, "thursday": Thursday, "th": Thursday,
	"fri": Friday, "friday": Friday, "f": Friday,
}

// Weekdays is an immutable set of selectable weekday indices (Monday=0 to Friday=4).
// Saturday and Sunday are never members: adding them is ignored.
type Weekdays uint8

// DefaultWeekdays is Monday to Friday
const DefaultWeekdays Weekdays = 0b11111

// NewWeekdays builds a set from indices, dropping disabled or out-of-range ones
func NewWeekdays(indices ...int) Weekdays {
	var w Weekdays
	for _, i := range indices {
		w = w.With(i)
	}
	return w
}

// IsEnabled reports whether the slot at index can be toggled
func IsEnabled(index int) bool {
	return index >= Monday && index <= Friday
}

func (w Weekdays) Len() int {
	return bits.OnesCount8(uint8(w))
}

func (w Weekdays) Contains(index int) bool {
	return IsEnabled(index) && w&(1<<index) != 0
}

func (w Weekdays) With(index int) Weekdays {
	if !IsEnabled(index) {
		return w
	}
	return w | 1<<index
}

func (w Weekdays) Without(index int) Weekdays {
	if !IsEnabled(index) {
		return w
	}
	return w &^ (1 << index)
}

// Sorted returns the member indices in ascending order
func (w Weekdays) Sorted() []int {
	indices := make([]int, 0, w.Len())
	for i := Monday; i <= Friday; i++ {
		if w.Contains(i) {
			indices = append(indices, i)
		}
	}
	return indices
}

func (w Weekdays) String() string {
	labels := make([]string, 0, w.Len())
	for _, i := range w.Sorted() {
		labels = append(labels, weekdayLabels[i])
	}
	return strings.Join(labels, ",")
}

// ParseWeekdays parses a comma separated list of weekdays. Each entry may be an
// index ("0"), a slot label ("Th") or a day name ("thu", "thursday").
func ParseWeekdays(s string) (Weekdays, error) {
	var w Weekdays
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		index, ok := weekdayNames[part]
		if !ok {
			n, err := strconv.Atoi(part)
			if err != nil {
				return 0, fmt.Errorf("unknown weekday %q", part)
			}
			index = n
		}
		if !IsEnabled(index) {
			return 0, fmt.Errorf("weekday %q is not selectable", part)
		}
		w = w.With(index)
	}
	return w, nil
}

// WeekdaySlot is one of the seven weekday toggles shown above the calendar
type WeekdaySlot struct {
	Label    string `json:"label"`
	Index    int    `json:"index"`
	Selected bool   `json:"isSelected"`
	Enabled  bool   `json:"isEnabled"`
}

// NewWeekdaySlots returns all seven slots, Monday first
func NewWeekdaySlots(selected Weekdays) []WeekdaySlot {
	slots := make([]WeekdaySlot, len(weekdayLabels))
	for i, label := range weekdayLabels {
		slots[i] = WeekdaySlot{
			Label:    label,
			Index:    i,
			Selected: selected.Contains(i),
			Enabled:  IsEnabled(i),
		}
	}
	return slots
}
