package models

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeStatus classifies how a single peer fared during a run.
type OutcomeStatus string

// OutcomeStatus constants. Permission denial is kept distinct from a
// resolution failure so operators can tell "wrong peer" from "not an
// admin" at a glance.
const (
	OutcomeCollected        OutcomeStatus = "COLLECTED"
	OutcomeUnresolved       OutcomeStatus = "UNRESOLVED"
	OutcomePermissionDenied OutcomeStatus = "PERMISSION_DENIED"
	OutcomeUnsupportedKind  OutcomeStatus = "UNSUPPORTED_KIND"
	OutcomeFailed           OutcomeStatus = "FAILED"
)

// PeerOutcome is the per-peer result of one collection pass.
// It is reported to the invoking scheduler and published as an event;
// it is never persisted by this subsystem.
type PeerOutcome struct {
	RunID     uuid.UUID     `json:"run_id"`
	Peer      string        `json:"peer"`
	ChannelID int64         `json:"channel_id,omitempty"`
	Status    OutcomeStatus `json:"status"`
	Metrics   []string      `json:"metrics,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Succeeded reports whether the peer produced stored data.
func (o PeerOutcome) Succeeded() bool {
	return o.Status == OutcomeCollected
}

// RunReport summarizes one collection pass for the scheduler.
type RunReport struct {
	RunID      uuid.UUID     `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Peers      int           `json:"peers"`
	Collected  int           `json:"collected"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	Outcomes   []PeerOutcome `json:"outcomes"`
}

// Add folds a peer outcome into the report counters.
func (r *RunReport) Add(o PeerOutcome) {
	r.Peers++
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case OutcomeCollected:
		r.Collected++
	case OutcomeFailed:
		r.Failed++
	default:
		r.Skipped++
	}
}
