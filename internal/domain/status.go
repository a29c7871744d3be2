package domain

type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// transitions lists the statuses a job may move to from each status.
// processing -> processing is a lease reclaim by another worker.
var transitions = map[JobStatus][]JobStatus{
	StatusQueued:     {StatusProcessing},
	StatusProcessing: {StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled},
}

func (s JobStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// Predecessors returns the statuses from which a job may enter s.
func (s JobStatus) Predecessors() []JobStatus {
	var from []JobStatus
	for status, targets := range transitions {
		for _, target := range targets {
			if target == s {
				from = append(from, status)
			}
		}
	}

	return from
}
