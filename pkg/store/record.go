// Package store persists the per-frame detection log: one structured
// record per announced or selected detection. Two backends are
// provided: newline-delimited JSON for the rendering/logging
// collaborator, and SQLite for on-device session review.
package store

import (
	"time"

	"github.com/guidewalk/go-guidewalk/pkg/threat"
)

// Record is the persisted detection-log schema.
type Record struct {
	Timestamp        time.Time `json:"timestamp"`
	FrameIndex       uint64    `json:"frame_index"`
	Class            string    `json:"class"`
	Confidence       float64   `json:"confidence"`
	DistanceCategory string    `json:"distance_category"`
	Direction        string    `json:"direction"`
	ThreatScore      int       `json:"threat_score"`
}

// FromAssessment builds a record from a selected assessment.
func FromAssessment(a *threat.Assessment, frameIndex uint64, ts time.Time) Record {
	return Record{
		Timestamp:        ts,
		FrameIndex:       frameIndex,
		Class:            a.Detection.Class,
		Confidence:       a.Detection.Confidence,
		DistanceCategory: string(a.Estimate.Category),
		Direction:        string(a.Estimate.Direction),
		ThreatScore:      a.Score,
	}
}

// Store persists detection records.
type Store interface {
	// Append adds one record. Implementations may buffer; Flush
	// forces a write.
	Append(rec Record) error

	// Flush writes any buffered records.
	Flush() error

	// Close flushes and releases the backend.
	Close() error
}
