package analytics

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/vladimiradmaev/health-records/internal/domain"
)

// DefaultWindow is the number of days shown when none is chosen
const DefaultWindow = 7

// Windows lists the selectable day ranges
var Windows = []int{5, 7, 14, 30}

// Lane is the horizontal band a marker is drawn in
type Lane int

const (
	LaneFood Lane = iota
	LaneMedicine
	LaneSymptom
)

func (l Lane) String() string {
	switch l {
	case LaneFood:
		return "food"
	case LaneMedicine:
		return "medicine"
	default:
		return "symptom"
	}
}

func (l Lane) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Lane) UnmarshalText(text []byte) error {
	switch string(text) {
	case "food":
		*l = LaneFood
	case "medicine":
		*l = LaneMedicine
	case "symptom":
		*l = LaneSymptom
	default:
		return fmt.Errorf("unknown lane %q", text)
	}
	return nil
}

// LaneOf places food on top, medicine in the middle and symptoms at the bottom
func LaneOf(t domain.DietEntryType) Lane {
	switch t {
	case domain.DietFood:
		return LaneFood
	case domain.DietMedicine:
		return LaneMedicine
	default:
		return LaneSymptom
	}
}

// Marker is one entry placed on a day row
type Marker struct {
	EntryID  string               `json:"entryId"`
	Type     domain.DietEntryType `json:"type"`
	Name     string               `json:"name"`
	Lane     Lane                 `json:"lane"`
	Position float64              `json:"position"`
	Emphasis float64              `json:"emphasis"`
	Clock    string               `json:"clock"`
}

// Day is one row of the timeline
type Day struct {
	Key     string    `json:"key"`
	Date    time.Time `json:"date"`
	Markers []Marker  `json:"markers"`
}

// Count returns how many markers of type t the day holds
func (d Day) Count(t domain.DietEntryType) int {
	n := 0
	for _, m := range d.Markers {
		if m.Type == t {
			n++
		}
	}
	return n
}

// Timeline is the correlation map of the last Window days, most recent first
type Timeline struct {
	Window int   `json:"window"`
	Days   []Day `json:"days"`
}

// ParseWindow reads a window size; empty means the default
func ParseWindow(raw string) (int, error) {
	if raw == "" {
		return DefaultWindow, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidWindow, raw)
	}
	for _, w := range Windows {
		if w == n {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: %d", domain.ErrInvalidWindow, n)
}

// DayKey labels a local calendar day, e.g. "Mon, Jan 2"
func DayKey(t time.Time) string {
	return t.Format("Mon, Jan 2")
}

// MinutesSinceMidnight converts the wall clock of t to minutes since midnight
func MinutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Position is the horizontal offset of t within its day, in percent
func Position(t time.Time) float64 {
	hours := float64(t.Hour()) + float64(t.Minute())/60
	return hours / 24 * 100
}

// IntensityEmphasis maps a symptom intensity to marker opacity; a missing
// intensity counts as 1
func IntensityEmphasis(intensity int) float64 {
	if intensity < 1 {
		intensity = 1
	}
	if intensity > 5 {
		intensity = 5
	}
	return float64(intensity) / 5
}

func marker(e domain.DietEntry, local time.Time) Marker {
	m := Marker{
		EntryID:  e.ID,
		Type:     e.Type,
		Name:     e.Name,
		Lane:     LaneOf(e.Type),
		Position: Position(local),
		Emphasis: 1,
		Clock:    local.Format("15:04"),
	}
	if e.Type == domain.DietSymptom {
		m.Emphasis = IntensityEmphasis(e.Intensity)
	}
	return m
}

// Build buckets entries into the window ending today in now's location.
// Entries outside the window are left out.
func Build(entries []domain.DietEntry, now time.Time, window int) Timeline {
	if window <= 0 {
		window = DefaultWindow
	}
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	days := make([]Day, window)
	index := make(map[time.Time]int, window)
	for i := 0; i < window; i++ {
		date := today.AddDate(0, 0, -i)
		days[i] = Day{Key: DayKey(date), Date: date, Markers: []Marker{}}
		index[date] = i
	}

	for _, e := range entries {
		local := e.Timestamp.In(loc)
		date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		i, ok := index[date]
		if !ok {
			continue
		}
		days[i].Markers = append(days[i].Markers, marker(e, local))
	}

	for i := range days {
		sort.SliceStable(days[i].Markers, func(a, b int) bool {
			return days[i].Markers[a].Position < days[i].Markers[b].Position
		})
	}
	return Timeline{Window: window, Days: days}
}
