// Package trajectory stores and loads per-trial pointer trajectories.
package trajectory

import "github.com/verte-zerg/pursuit/internal/model"

// Record is the ordered sample sequence for one trial.
type Record struct {
	Samples []model.Sample
}

// Append adds a sample to the end of the record.
func (r *Record) Append(s model.Sample) {
	r.Samples = append(r.Samples, s)
}

// Len returns the number of samples.
func (r Record) Len() int {
	return len(r.Samples)
}

// Empty reports whether the record has no samples.
func (r Record) Empty() bool {
	return len(r.Samples) == 0
}

// Reset drops all samples.
func (r *Record) Reset() {
	r.Samples = nil
}

// EventCount returns the number of flagged samples.
func (r Record) EventCount() int {
	n := 0
	for _, s := range r.Samples {
		if s.Flagged() {
			n++
		}
	}
	return n
}

// Duration returns the time between the first and last sample in seconds.
func (r Record) Duration() float64 {
	if len(r.Samples) == 0 {
		return 0
	}
	return r.Samples[len(r.Samples)-1].Timestamp - r.Samples[0].Timestamp
}
