// Package publisher emits collection outcomes as NATS events, so the
// invoking scheduler and downstream consumers observe results without
// coupling to the collector's database.
package publisher

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/chanpulse/chanpulse/internal/models"
)

// Subjects for collector events.
const (
	SubjectPeerOutcome = "stats.peer.outcome"
	SubjectRunReport   = "stats.run.report"
)

// NATSClient interface to allow mocking.
type NATSClient interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes collection outcomes to NATS.
type NATSPublisher struct {
	conn NATSClient
}

// NewNATSPublisher creates a new publisher.
func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

// PublishPeerOutcome publishes the result of one peer's collection.
func (p *NATSPublisher) PublishPeerOutcome(outcome models.PeerOutcome) error {
	return p.publish(SubjectPeerOutcome, outcome)
}

// PublishRunReport publishes the summary of a whole collection pass.
func (p *NATSPublisher) PublishRunReport(report *models.RunReport) error {
	return p.publish(SubjectRunReport, report)
}

func (p *NATSPublisher) publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}

	return nil
}
