// Package telegram provides the MTProto client wrapper used by the
// stats collector: peer resolution with capability flags, the three
// stats call shapes, and single-retry handling of data-center
// redirects.
package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/chanpulse/chanpulse/internal/logger"
)

// Client wraps the gotgproto client and exposes the high-level
// operations the collector needs. Safe for concurrent use: all state
// lives in the manager, the rate limiter and the underlying
// connection pool.
type Client struct {
	manager     *Manager
	rateLimiter *RateLimiter
	log         *logger.Logger
}

// NewClient creates a new telegram client wrapper using the Manager.
func NewClient(manager *Manager) *Client {
	return &Client{
		manager:     manager,
		rateLimiter: DefaultRateLimiter(),
		log:         logger.Get(),
	}
}

// Close stops the client via the manager.
func (c *Client) Close() {
	if c.manager != nil {
		c.manager.Stop()
	}
}

// Status returns the current status of the telegram client.
func (c *Client) Status() Status {
	return c.manager.GetStatus()
}

// API returns the raw tg.Client for the home data center.
func (c *Client) API() (*tg.Client, error) {
	proto := c.manager.GetClient()
	if proto == nil {
		return nil, fmt.Errorf("telegram client not authorized")
	}
	return proto.API(), nil
}

// statsAPI returns an RPC client bound to the given data center.
// dc 0 means the home connection; any other value dials a fresh
// connection to that DC, released by the returned close function.
func (c *Client) statsAPI(ctx context.Context, dc int) (*tg.Client, func(), error) {
	if dc == 0 {
		api, err := c.API()
		if err != nil {
			return nil, nil, err
		}
		return api, func() {}, nil
	}

	proto := c.manager.GetClient()
	if proto == nil {
		return nil, nil, fmt.Errorf("telegram client not authorized")
	}

	invoker, err := proto.Client.DC(ctx, dc, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("dial dc %d: %w", dc, err)
	}

	return tg.NewClient(invoker), func() { _ = invoker.Close() }, nil
}

// ResolvePeer resolves a username to full peer info, including the
// can-view-stats capability and the entity kind. The flag is read
// fresh on every call; it is deliberately never cached.
func (c *Client) ResolvePeer(ctx context.Context, username string) (*Peer, error) {
	username = strings.TrimPrefix(username, "@")

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	api, err := c.API()
	if err != nil {
		return nil, err
	}

	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		c.noteFloodWait(err)
		return nil, fmt.Errorf("resolve username %s: %w", username, err)
	}

	if len(resolved.Chats) == 0 {
		return nil, fmt.Errorf("peer not found: %s", username)
	}

	ch, ok := resolved.Chats[0].(*tg.Channel)
	if !ok {
		return nil, fmt.Errorf("not a channel or supergroup: %s", username)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	fullCh, err := api.ChannelsGetFullChannel(ctx, &tg.InputChannel{
		ChannelID:  ch.ID,
		AccessHash: ch.AccessHash,
	})
	if err != nil {
		c.noteFloodWait(err)
		return nil, fmt.Errorf("get full channel %s: %w", username, err)
	}

	chFull, ok := fullCh.FullChat.(*tg.ChannelFull)
	if !ok {
		return nil, fmt.Errorf("unexpected full chat type for %s", username)
	}

	kind := PeerUnknown
	switch {
	case ch.Broadcast:
		kind = PeerBroadcast
	case ch.Megagroup:
		kind = PeerMegagroup
	}

	peer := &Peer{
		ID:           ch.ID,
		AccessHash:   ch.AccessHash,
		Username:     username,
		Title:        ch.Title,
		Kind:         kind,
		CanViewStats: chFull.CanViewStats,
	}
	if dc, ok := chFull.GetStatsDC(); ok {
		peer.StatsDC = dc
	}

	return peer, nil
}

// BroadcastStats fetches channel statistics for a broadcast channel,
// following at most one data-center redirect.
func (c *Client) BroadcastStats(ctx context.Context, peer *Peer) (*tg.StatsBroadcastStats, error) {
	var stats *tg.StatsBroadcastStats

	err := runWithRedirect(ctx, c.log, peer.StatsDC, func(ctx context.Context, dc int) error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		api, release, err := c.statsAPI(ctx, dc)
		if err != nil {
			return err
		}
		defer release()

		res, err := api.StatsGetBroadcastStats(ctx, &tg.StatsGetBroadcastStatsRequest{
			Channel: peer.InputChannel(),
		})
		if err != nil {
			c.noteFloodWait(err)
			return err
		}
		stats = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("broadcast stats for %s: %w", peer.Username, err)
	}

	return stats, nil
}

// MegagroupStats fetches supergroup statistics, following at most one
// data-center redirect.
func (c *Client) MegagroupStats(ctx context.Context, peer *Peer) (*tg.StatsMegagroupStats, error) {
	var stats *tg.StatsMegagroupStats

	err := runWithRedirect(ctx, c.log, peer.StatsDC, func(ctx context.Context, dc int) error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		api, release, err := c.statsAPI(ctx, dc)
		if err != nil {
			return err
		}
		defer release()

		res, err := api.StatsGetMegagroupStats(ctx, &tg.StatsGetMegagroupStatsRequest{
			Channel: peer.InputChannel(),
		})
		if err != nil {
			c.noteFloodWait(err)
			return err
		}
		stats = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("megagroup stats for %s: %w", peer.Username, err)
	}

	return stats, nil
}

// LoadAsyncGraph exchanges a deferred graph token for the actual
// graph. The exchange can itself be redirected to another DC, so it
// goes through the same single-retry path. dc carries the peer's
// stats DC so the exchange starts where the stats response came from.
func (c *Client) LoadAsyncGraph(ctx context.Context, dc int, token string) (tg.StatsGraphClass, error) {
	var graph tg.StatsGraphClass

	err := runWithRedirect(ctx, c.log, dc, func(ctx context.Context, dc int) error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		api, release, err := c.statsAPI(ctx, dc)
		if err != nil {
			return err
		}
		defer release()

		res, err := api.StatsLoadAsyncGraph(ctx, &tg.StatsLoadAsyncGraphRequest{
			Token: token,
		})
		if err != nil {
			c.noteFloodWait(err)
			return err
		}
		graph = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load async graph: %w", err)
	}

	return graph, nil
}

// noteFloodWait feeds FLOOD_WAIT backoff into the shared rate limiter.
func (c *Client) noteFloodWait(err error) {
	if d, ok := tgerr.AsFloodWait(err); ok {
		c.log.Warn().Dur("wait", d).Msg("telegram: FLOOD_WAIT detected, backing off")
		c.rateLimiter.SetFloodWait(d)
	}
}
