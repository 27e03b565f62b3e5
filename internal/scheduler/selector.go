package scheduler

import (
	"time"

	"github.com/sitepulse/sitepulse/internal/domain/monitor"
)

// SelectDue returns the monitors whose elapsed time since their last
// check strictly exceeds their interval. A monitor that has never been
// checked (zero LastChecked) is always due. Pure function: no I/O, no
// mutation, same inputs same output.
//
// A non-positive interval makes the monitor due on every cycle; the
// CRUD API rejects such intervals at creation, so this only matters
// for records written by older tooling.
func SelectDue(monitors []*monitor.Monitor, now time.Time) []*monitor.Monitor {
	var due []*monitor.Monitor
	for _, m := range monitors {
		if m.LastChecked.IsZero() {
			due = append(due, m)
			continue
		}
		if now.Sub(m.LastChecked) > m.Interval {
			due = append(due, m)
		}
	}
	return due
}
