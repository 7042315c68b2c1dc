package queue

import "time"

// Observer receives job lifecycle notifications. Implementations must be
// safe for concurrent use.
type Observer interface {
	JobEnqueued(kind string)
	JobClaimed(kind string)
	JobSucceeded(kind string, elapsed time.Duration)
	JobRetried(kind string, elapsed time.Duration)
	JobAbandoned(kind string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) JobEnqueued(string) {}
func (nopObserver) JobClaimed(string) {}
func (nopObserver) JobSucceeded(string, time.Duration) {}
func (nopObserver) JobRetried(string, time.Duration) {}
func (nopObserver) JobAbandoned(string, time.Duration) {}

// NopObserver discards all notifications.
func NopObserver() Observer { return nopObserver{} }
