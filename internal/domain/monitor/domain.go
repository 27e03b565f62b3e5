package monitor

import "time"

// Status is the last known liveness of a monitor.
type Status string

const (
	StatusPending Status = "pending"
	StatusUp      Status = "up"
	StatusDown    Status = "down"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUp, StatusDown:
		return true
	}
	return false
}

// Monitor is a user-configured target URL plus its check interval and
// last known status. LastChecked is the zero time when the monitor has
// never been probed.
type Monitor struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	Interval    time.Duration `json:"interval"`
	Status      Status        `json:"status"`
	LastChecked time.Time     `json:"last_checked"`
	CreatedAt   time.Time     `json:"created_at"`
}
