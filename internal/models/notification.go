package models

import "time"

// ScheduledNotification is one concrete future firing persisted by the
// fallback backend. The JSON shape is the durable store's on-disk format,
// keyed by "<habitId>_<scheduledTimeMillis>".
type ScheduledNotification struct {
	HabitID       string `json:"habitId"`
	HabitName     string `json:"habitName"`
	ScheduledTime int64  `json:"scheduledTime"` // epoch millis
	Created       int64  `json:"created"`       // epoch millis
}

// ScheduledAt returns the firing instant as a time.Time.
func (n ScheduledNotification) ScheduledAt() time.Time {
	return time.UnixMilli(n.ScheduledTime)
}

// ScheduleResult is the per-habit outcome of a scheduling operation.
type ScheduleResult struct {
	HabitID   string
	Success   bool
	Scheduled int    // number of backend entries created
	Error     string // set when Success is false
}

// FailedHabit records one habit that could not be scheduled or cancelled
// during a batch pass.
type FailedHabit struct {
	HabitID string `json:"habitId"`
	Error   string `json:"error"`
}

// BatchResult aggregates per-habit outcomes of a bulk reconcile or cancel.
// One habit's failure never aborts the rest of the batch.
type BatchResult struct {
	Successful []string      `json:"successful"`
	Failed     []FailedHabit `json:"failed"`
}

// OK reports whether every habit in the batch succeeded.
func (r BatchResult) OK() bool {
	return len(r.Failed) == 0
}
