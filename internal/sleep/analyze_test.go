package sleep

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

// now is mid-morning on 2026-10-19, so the 2-day window is
// [2026-10-17 00:00, 2026-10-19 00:00).
var now = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func at(day, hour, minute int, pressure int64) Sample {
	return Sample{Time: time.Date(2026, 10, day, hour, minute, 0, 0, time.UTC), Pressure: pressure}
}

func TestAnalyze(t *testing.T) {
	samples := []Sample{
		// Out of window on both sides.
		at(16, 23, 0, 3000),
		at(19, 1, 0, 3000),

		// Night of the 17th into the 18th. Deliberately unsorted.
		at(17, 23, 0, 2400),
		at(17, 22, 0, 100),
		at(18, 1, 0, 2400),
		at(18, 7, 0, 100),
		at(18, 7, 30, 100),

		// Exactly at the threshold is not in bed.
		at(18, 22, 0, 2250),
		at(18, 23, 0, 2251),
	}

	report, err := Analyze(samples, Options{Days: 2, Threshold: DefaultThreshold, Now: now})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if !report.Start.Equal(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v", report.Start)
	}
	if !report.End.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("End = %v", report.End)
	}
	if report.Samples != 7 {
		t.Errorf("Samples = %d, want 7", report.Samples)
	}

	// 17th: 22:00 first sample (0), 23:00 in bed credits 1h.
	// 18th: 01:00 in bed credits 2h, 07:00 and 07:30 out of bed,
	//       22:00 at threshold, 23:00 in bed credits 1h.
	want := []Day{
		{Date: "2026-10-17", SleepSeconds: 3600},
		{Date: "2026-10-18", SleepSeconds: 3 * 3600},
	}
	if len(report.Daily) != len(want) {
		t.Fatalf("Daily = %+v, want %+v", report.Daily, want)
	}
	for i := range want {
		if report.Daily[i] != want[i] {
			t.Errorf("Daily[%d] = %+v, want %+v", i, report.Daily[i], want[i])
		}
	}

	if report.TotalSeconds != 4*3600 {
		t.Errorf("TotalSeconds = %d, want %d", report.TotalSeconds, 4*3600)
	}
	if got := report.Ratio(); math.Abs(got-4.0/48.0) > 1e-9 {
		t.Errorf("Ratio() = %v, want %v", got, 4.0/48.0)
	}
}

func TestAnalyze_DayWithoutSleepIsListed(t *testing.T) {
	samples := []Sample{at(18, 10, 0, 10), at(18, 11, 0, 10)}

	report, err := Analyze(samples, Options{Days: 1, Threshold: DefaultThreshold, Now: now})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(report.Daily) != 1 || report.Daily[0] != (Day{Date: "2026-10-18"}) {
		t.Errorf("Daily = %+v", report.Daily)
	}
}

func TestAnalyze_Empty(t *testing.T) {
	report, err := Analyze(nil, Options{Days: 7, Threshold: DefaultThreshold, Now: now})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(report.Daily) != 0 || report.TotalSeconds != 0 || report.Ratio() != 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestAnalyze_InvalidDays(t *testing.T) {
	for _, days := range []int{0, -1} {
		if _, err := Analyze(nil, Options{Days: days, Now: now}); !errors.Is(err, ErrInvalidDays) {
			t.Errorf("Analyze(days=%d) error = %v, want ErrInvalidDays", days, err)
		}
	}
}

func TestAnalyze_MidnightUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	localNow := time.Date(2026, 10, 19, 1, 0, 0, 0, loc)

	// 2026-10-18 23:30 local is 21:30 UTC; it belongs to the 18th locally.
	samples := []Sample{
		{Time: time.Date(2026, 10, 18, 20, 30, 0, 0, time.UTC), Pressure: 10},
		{Time: time.Date(2026, 10, 18, 21, 30, 0, 0, time.UTC), Pressure: 3000},
	}

	report, err := Analyze(samples, Options{Days: 1, Threshold: DefaultThreshold, Now: localNow})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(report.Daily) != 1 || report.Daily[0].Date != "2026-10-18" || report.Daily[0].SleepSeconds != 3600 {
		t.Errorf("Daily = %+v", report.Daily)
	}
}

func TestReportFormat(t *testing.T) {
	report := Report{
		Days: 2,
		Daily: []Day{
			{Date: "2026-10-17", SleepSeconds: 3600},
			{Date: "2026-10-18", SleepSeconds: 27000},
		},
		TotalSeconds: 30600,
	}

	var b strings.Builder
	if err := report.Format(&b); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "Sleep hours each day:\n" +
		"Date: 2026-10-17, Sleep Hours: 1.00 hours\n" +
		"Date: 2026-10-18, Sleep Hours: 7.50 hours\n" +
		"\n" +
		"Total sleep hours in the last 2 days starting from yesterday: 8.50 hours\n" +
		"Ratio of sleep hours to total hours in the period considered: 0.18\n"
	if b.String() != want {
		t.Errorf("Format() =\n%s\nwant\n%s", b.String(), want)
	}
}
