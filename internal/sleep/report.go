package sleep

import (
	"fmt"
	"io"
	"strings"
)

// Format writes the human-readable report.
func (r Report) Format(w io.Writer) error {
	var b strings.Builder

	b.WriteString("Sleep hours each day:\n")
	for _, d := range r.Daily {
		fmt.Fprintf(&b, "Date: %s, Sleep Hours: %.2f hours\n", d.Date, d.Hours())
	}
	fmt.Fprintf(&b, "\nTotal sleep hours in the last %d days starting from yesterday: %.2f hours\n", r.Days, r.TotalHours())
	fmt.Fprintf(&b, "Ratio of sleep hours to total hours in the period considered: %.2f\n", r.Ratio())

	_, err := io.WriteString(w, b.String())
	return err
}
