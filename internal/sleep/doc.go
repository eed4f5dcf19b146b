// Package sleep estimates time spent in bed from the pressure journal.
//
// A bed-mounted sensor reads high while someone lies on it. Each journal
// row is credited with the time elapsed since the previous row, and that
// time counts as sleep when the row's pressure is above the threshold.
// Totals are reported per calendar day over a window ending at today's
// local midnight, so the current (incomplete) day is never counted.
//
//	samples, err := sleep.LoadFile("ESP32_data.csv", time.Local)
//	report, err := sleep.Analyze(samples, sleep.Options{Days: 7, Threshold: 2250})
//	report.Format(os.Stdout)
package sleep
