package sleep

import (
	"errors"
	"slices"
	"time"
)

// DefaultThreshold is the raw pressure above which the bed counts as occupied.
const DefaultThreshold = 2250

// ErrInvalidDays is returned when the window is not a positive number of days.
var ErrInvalidDays = errors.New("sleep: days must be a positive integer")

// Options controls Analyze.
type Options struct {
	// Days is the window length, ending at local midnight today.
	Days int

	// Threshold is compared with each sample's pressure. Samples strictly
	// above it count as in bed.
	Threshold int64

	// Now anchors the window. Defaults to time.Now. Its location decides
	// where midnight falls.
	Now time.Time
}

// Day is the sleep total for one calendar date.
type Day struct {
	Date         string `json:"date"`
	SleepSeconds int64  `json:"sleep_seconds"`
}

// Hours returns the day's sleep in hours.
func (d Day) Hours() float64 {
	return float64(d.SleepSeconds) / 3600
}

// Report is the outcome of Analyze.
type Report struct {
	Start     time.Time
	End       time.Time
	Days      int
	Threshold int64

	// Daily is sorted by date and only holds dates that had samples.
	Daily []Day

	TotalSeconds int64
	Samples      int
}

// TotalHours returns the sleep total in hours.
func (r Report) TotalHours() float64 {
	return float64(r.TotalSeconds) / 3600
}

// Ratio returns the share of the window spent in bed.
func (r Report) Ratio() float64 {
	if r.Days <= 0 {
		return 0
	}
	return r.TotalHours() / float64(r.Days*24)
}

// Analyze computes per-day sleep over [midnight-Days, midnight).
//
// Samples are sorted first. Each sample is credited with the gap since the
// previous sample in the window (the first gets nothing) and that gap is
// booked to the sample's own date, even when it started the day before.
func Analyze(samples []Sample, opts Options) (Report, error) {
	if opts.Days <= 0 {
		return Report{}, ErrInvalidDays
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start := end.AddDate(0, 0, -opts.Days)

	window := make([]Sample, 0, len(samples))
	for _, s := range samples {
		t := s.Time.In(now.Location())
		if !t.Before(start) && t.Before(end) {
			window = append(window, Sample{Time: t, Pressure: s.Pressure})
		}
	}
	slices.SortStableFunc(window, func(a, b Sample) int {
		return a.Time.Compare(b.Time)
	})

	report := Report{
		Start:     start,
		End:       end,
		Days:      opts.Days,
		Threshold: opts.Threshold,
		Samples:   len(window),
	}

	byDate := make(map[string]int64)
	var dates []string
	for i, s := range window {
		date := s.Time.Format(time.DateOnly)
		if _, seen := byDate[date]; !seen {
			byDate[date] = 0
			dates = append(dates, date)
		}
		if i == 0 || s.Pressure <= opts.Threshold {
			continue
		}
		gap := int64(s.Time.Sub(window[i-1].Time) / time.Second)
		byDate[date] += gap
		report.TotalSeconds += gap
	}

	for _, date := range dates {
		report.Daily = append(report.Daily, Day{Date: date, SleepSeconds: byDate[date]})
	}
	return report, nil
}
