package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gotd/td/tg"

	"github.com/chanpulse/chanpulse/internal/config"
	"github.com/chanpulse/chanpulse/internal/logger"
	"github.com/chanpulse/chanpulse/internal/models"
	"github.com/chanpulse/chanpulse/internal/telegram"
)

// TelegramAPI is the wire-protocol surface the collector needs.
type TelegramAPI interface {
	ResolvePeer(ctx context.Context, username string) (*telegram.Peer, error)
	BroadcastStats(ctx context.Context, peer *telegram.Peer) (*tg.StatsBroadcastStats, error)
	MegagroupStats(ctx context.Context, peer *telegram.Peer) (*tg.StatsMegagroupStats, error)
	AsyncGraphLoader
}

// SnapshotStore appends raw graph payloads for audit.
type SnapshotStore interface {
	Save(ctx context.Context, channelID int64, metricKey string, payload map[string]any) error
}

// MetricStore upserts materialized daily values.
type MetricStore interface {
	Upsert(ctx context.Context, channelID int64, day time.Time, metricKey string, value int64) error
}

// OutcomePublisher emits per-peer outcomes and the run report.
type OutcomePublisher interface {
	PublishPeerOutcome(outcome models.PeerOutcome) error
	PublishRunReport(report *models.RunReport) error
}

// Service orchestrates one collection pass: for every configured peer
// it resolves full info, enforces the can-view-stats invariant, picks
// the stats method matching the entity kind, decodes every graph field
// and writes both stores. All failures below the gate degrade to
// skip-and-continue.
type Service struct {
	gate      *Gate
	api       TelegramAPI
	snapshots SnapshotStore
	metrics   MetricStore
	publisher OutcomePublisher // optional
	governor  *Governor

	peers      []config.Peer
	windowDays int

	log *logger.Logger
}

// NewService creates a collector service. publisher may be nil when
// NATS is unavailable; outcomes are then only logged.
func NewService(
	gate *Gate,
	api TelegramAPI,
	snapshots SnapshotStore,
	metrics MetricStore,
	publisher OutcomePublisher,
	peers []config.Peer,
	windowDays int,
	maxConcurrent int,
	log *logger.Logger,
) *Service {
	return &Service{
		gate:       gate,
		api:        api,
		snapshots:  snapshots,
		metrics:    metrics,
		publisher:  publisher,
		governor:   NewGovernor(maxConcurrent),
		peers:      peers,
		windowDays: windowDays,
		log:        log,
	}
}

// Run executes one collection pass over the configured peers.
// It returns ErrDisabled or ErrTelegramUnavailable straight from the
// gate; past the gate it always returns a report and a nil error, no
// matter how many peers failed.
func (s *Service) Run(ctx context.Context) (*models.RunReport, error) {
	if err := s.gate.Check(); err != nil {
		return nil, err
	}

	report := &models.RunReport{
		RunID:     uuid.New(),
		StartedAt: time.Now().UTC(),
	}

	s.log.Info().
		Str("run_id", report.RunID.String()).
		Int("peers", len(s.peers)).
		Int("window_days", s.windowDays).
		Msg("stats: starting collection pass")

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, peer := range s.peers {
		wg.Add(1)
		go func(p config.Peer) {
			defer wg.Done()

			outcome := s.collectPeerGuarded(ctx, report.RunID, p)

			mu.Lock()
			report.Add(outcome)
			mu.Unlock()

			if s.publisher != nil {
				if err := s.publisher.PublishPeerOutcome(outcome); err != nil {
					s.log.Warn().Err(err).Str("peer", p.Ref).Msg("stats: failed to publish peer outcome")
				}
			}
		}(peer)
	}
	wg.Wait()

	report.FinishedAt = time.Now().UTC()

	if s.publisher != nil {
		if err := s.publisher.PublishRunReport(report); err != nil {
			s.log.Warn().Err(err).Msg("stats: failed to publish run report")
		}
	}

	s.log.Info().
		Str("run_id", report.RunID.String()).
		Int("collected", report.Collected).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("stats: collection pass completed")

	return report, nil
}

// collectPeerGuarded runs one peer's pipeline inside a governor slot
// and converts anything that goes wrong, including panics, into a
// failure outcome. Sibling peers are never affected.
func (s *Service) collectPeerGuarded(ctx context.Context, runID uuid.UUID, p config.Peer) models.PeerOutcome {
	outcome := models.PeerOutcome{
		RunID:  runID,
		Peer:   p.Ref,
		Status: models.OutcomeFailed,
	}

	err := s.governor.Do(ctx, func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().Str("peer", p.Ref).Any("panic", r).Msg("stats: peer pipeline panicked")
				outcome.Status = models.OutcomeFailed
				outcome.Error = fmt.Sprintf("panic: %v", r)
			}
		}()
		outcome = s.collectPeer(ctx, runID, p)
	})
	if err != nil {
		outcome.Error = err.Error()
	}

	return outcome
}

// collectPeer runs the sequential per-peer pipeline:
// resolve -> rights check -> kind dispatch -> graphs -> stores.
func (s *Service) collectPeer(ctx context.Context, runID uuid.UUID, p config.Peer) models.PeerOutcome {
	outcome := models.PeerOutcome{RunID: runID, Peer: p.Ref}

	peer, err := s.api.ResolvePeer(ctx, p.Username())
	if err != nil {
		s.log.Warn().Err(err).Str("peer", p.Ref).Msg("stats: failed to resolve peer, skipping")
		outcome.Status = models.OutcomeUnresolved
		outcome.Error = err.Error()
		return outcome
	}
	outcome.ChannelID = peer.ID

	if !peer.CanViewStats {
		s.log.Warn().Str("peer", p.Ref).Int64("channel_id", peer.ID).Msg("stats: permission denied for stats, skipping")
		outcome.Status = models.OutcomePermissionDenied
		return outcome
	}

	var written []string
	switch peer.Kind {
	case telegram.PeerBroadcast:
		written, err = s.collectBroadcast(ctx, peer, p.Column)
	case telegram.PeerMegagroup:
		written, err = s.collectMegagroup(ctx, peer, p.Column)
	default:
		s.log.Warn().Str("peer", p.Ref).Str("kind", string(peer.Kind)).Msg("stats: entity kind has no stats method, skipping")
		outcome.Status = models.OutcomeUnsupportedKind
		return outcome
	}
	if err != nil {
		s.log.Error().Err(err).Str("peer", p.Ref).Int64("channel_id", peer.ID).Msg("stats: stats call failed")
		outcome.Status = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Status = models.OutcomeCollected
	outcome.Metrics = written
	return outcome
}

// collectBroadcast fetches channel stats and processes every graph
// field the response carries.
func (s *Service) collectBroadcast(ctx context.Context, peer *telegram.Peer, column string) ([]string, error) {
	resp, err := s.api.BroadcastStats(ctx, peer)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, field := range broadcastGraphFields {
		graph := field.Graph(resp)
		if graph == nil {
			continue
		}
		if s.processGraph(ctx, peer, metricKey(field.Name), column, graph) {
			written = append(written, metricKey(field.Name))
		}
	}
	return written, nil
}

// collectMegagroup fetches supergroup stats and processes every graph
// field the response carries.
func (s *Service) collectMegagroup(ctx context.Context, peer *telegram.Peer, column string) ([]string, error) {
	resp, err := s.api.MegagroupStats(ctx, peer)
	if err != nil {
		return nil, err
	}

	var written []string
	for _, field := range megagroupGraphFields {
		graph := field.Graph(resp)
		if graph == nil {
			continue
		}
		if s.processGraph(ctx, peer, metricKey(field.Name), column, graph) {
			written = append(written, metricKey(field.Name))
		}
	}
	return written, nil
}

// processGraph decodes one graph, appends the raw snapshot and upserts
// the in-window daily values. The raw save happens before any upsert;
// a failed save skips the metric entirely so audit and materialized
// data cannot diverge. Returns whether the metric was written.
func (s *Service) processGraph(ctx context.Context, peer *telegram.Peer, metric, column string, g tg.StatsGraphClass) bool {
	graph, payload, err := DecodeGraph(ctx, s.api, peer.StatsDC, g)
	if err != nil {
		s.log.Warn().Err(err).Str("peer", peer.Username).Str("metric", metric).Msg("stats: skipping undecodable graph")
		return false
	}

	if err := s.snapshots.Save(ctx, peer.ID, metric, payload); err != nil {
		s.log.Warn().Err(err).Int64("channel_id", peer.ID).Str("metric", metric).Msg("stats: failed to save raw snapshot, skipping metric")
		return false
	}

	series, err := DailySeries(graph, column)
	if err != nil {
		s.log.Warn().Err(err).Str("peer", peer.Username).Str("metric", metric).Msg("stats: failed to extract daily series")
		return false
	}

	cutoff := s.windowCutoff()
	for _, pt := range series {
		if !cutoff.IsZero() && pt.Day.Before(cutoff) {
			continue
		}
		if err := s.metrics.Upsert(ctx, peer.ID, pt.Day, metric, pt.Value); err != nil {
			s.log.Warn().Err(err).Int64("channel_id", peer.ID).Str("metric", metric).Time("day", pt.Day).Msg("stats: failed to upsert daily metric")
			continue
		}
	}

	return true
}

// windowCutoff returns the oldest day to materialize, or the zero time
// when no window is configured. The stats methods themselves take no
// range parameter, so the window is applied here.
func (s *Service) windowCutoff() time.Time {
	if s.windowDays <= 0 {
		return time.Time{}
	}
	return time.Now().UTC().AddDate(0, 0, -s.windowDays).Truncate(24 * time.Hour)
}
