package telegram

import (
	"github.com/gotd/td/tg"
)

// PeerKind distinguishes the two statistics-bearing entity kinds.
type PeerKind string

// PeerKind constants. Unknown covers entities that are neither a
// broadcast channel nor a megagroup; the collector skips those.
const (
	PeerBroadcast PeerKind = "BROADCAST"
	PeerMegagroup PeerKind = "MEGAGROUP"
	PeerUnknown   PeerKind = "UNKNOWN"
)

// Peer is the resolved identity of one channel or supergroup,
// including the capability flags needed before any stats call.
type Peer struct {
	ID         int64    // channel id
	AccessHash int64    // access hash for api calls
	Username   string   // username (without @)
	Title      string   // display title
	Kind       PeerKind // broadcast channel vs megagroup

	// CanViewStats mirrors the can_view_stats flag from the full info
	// response. It is resolved fresh on every run; admin rights can be
	// revoked between runs.
	CanViewStats bool

	// StatsDC is the data center the full info suggests for stats
	// calls, or 0 when the home DC should be used.
	StatsDC int
}

// InputChannel builds the API input reference for this peer.
func (p *Peer) InputChannel() *tg.InputChannel {
	return &tg.InputChannel{
		ChannelID:  p.ID,
		AccessHash: p.AccessHash,
	}
}
