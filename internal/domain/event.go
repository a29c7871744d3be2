package domain

import "time"

type EventName string

const (
	EventFileQueued   EventName = "file_queued"
	EventJobStarted   EventName = "job_started"
	EventJobProgress  EventName = "job_progress"
	EventJobCompleted EventName = "job_completed"
	EventJobFailed    EventName = "job_failed"
	EventJobCancelled EventName = "job_cancelled"
)

var EventNames = []EventName{
	EventFileQueued,
	EventJobStarted,
	EventJobProgress,
	EventJobCompleted,
	EventJobFailed,
	EventJobCancelled,
}

type Event struct {
	Name    EventName      `json:"event"`
	JobID   string         `json:"job_id"`
	At      time.Time      `json:"at"`
	Payload map[string]any `json:"payload,omitempty"`
}
