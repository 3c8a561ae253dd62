package joblymodels

import "time"

type JobEventType string

const (
	JobEventCreated JobEventType = "created"
	JobEventUpdated JobEventType = "updated"
	JobEventRemoved JobEventType = "removed"
)

// JobEvent is published after a job change has been stored.
type JobEvent struct {
	Type JobEventType `json:"type"`
	Job  Job          `json:"job"`
	At   time.Time    `json:"at"`
}
