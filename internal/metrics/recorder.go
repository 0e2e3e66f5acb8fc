// Package metrics holds the conversion metrics hooks and the rolling latency window.
package metrics

import "time"

// Outcome enumerates conversion results for counters.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
)

// Recorder defines the observability hooks of a conversion. Implementations
// must be safe for concurrent use.
type Recorder interface {
	ObserveConversion(pageType string, d time.Duration, outcome Outcome)
	ObserveTransform(name string, d time.Duration)
	IncBlocks(name string)
	IncDegraded(name string)
	AddFragments(n int)
	IncJobOutcome(outcome string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveConversion(string, time.Duration, Outcome) {}
func (NoopRecorder) ObserveTransform(string, time.Duration)           {}
func (NoopRecorder) IncBlocks(string)                                 {}
func (NoopRecorder) IncDegraded(string)                               {}
func (NoopRecorder) AddFragments(int)                                 {}
func (NoopRecorder) IncJobOutcome(string)                             {}
