package publisher

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanpulse/chanpulse/internal/models"
)

type fakeNATS struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (f *fakeNATS) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func TestPublishPeerOutcome(t *testing.T) {
	fake := &fakeNATS{}
	p := &NATSPublisher{conn: fake}

	outcome := models.PeerOutcome{
		RunID:   uuid.New(),
		Peer:    "@demo_channel",
		Status:  models.OutcomeCollected,
		Metrics: []string{"growth", "followers"},
	}
	require.NoError(t, p.PublishPeerOutcome(outcome))

	require.Len(t, fake.subjects, 1)
	assert.Equal(t, SubjectPeerOutcome, fake.subjects[0])

	var got models.PeerOutcome
	require.NoError(t, json.Unmarshal(fake.payloads[0], &got))
	assert.Equal(t, outcome, got)
}

func TestPublishRunReport_Error(t *testing.T) {
	fake := &fakeNATS{err: errors.New("nats down")}
	p := &NATSPublisher{conn: fake}

	err := p.PublishRunReport(&models.RunReport{RunID: uuid.New()})
	assert.Error(t, err)
}
