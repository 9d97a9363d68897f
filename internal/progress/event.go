// Package progress defines the events emitted by the verification engine and
// fans them out to observability sinks.
package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone an Event represents.
type Stage string

// Supported progress stages.
const (
	StageRunStart     Stage = "RUN_START"
	StageBusinessDone Stage = "BUSINESS_DONE"
	StageRunDone      Stage = "RUN_DONE"
	StageRunError     Stage = "RUN_ERROR"
)

// Event captures one milestone of a verification run. A run corresponds to
// one input file (one zone).
type Event struct {
	// RunID identifies the verification run this event belongs to.
	RunID uuid.UUID
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage is the milestone kind.
	Stage Stage
	// Zone labels the industrial zone being processed.
	Zone string
	// Business optionally names the business for BUSINESS_DONE events.
	Business string
	// EmailVerified / PhoneVerified report the reconciliation result for
	// BUSINESS_DONE events.
	EmailVerified bool
	PhoneVerified bool
	// EmailAdopted is true when the business gained an email it did not have.
	EmailAdopted bool
	// Processed is the running processed-business count at emit time.
	Processed int64
	// Dur carries run wall time for RUN_DONE / RUN_ERROR events.
	Dur time.Duration
	// Note attaches low-volume context, such as a per-business error.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == uuid.Nil {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone, StageRunError, StageBusinessDone:
		if e.Zone == "" {
			return errors.New("zone is required")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
