package stats

import (
	"errors"
	"fmt"

	"github.com/chanpulse/chanpulse/internal/telegram"
)

// Gate errors.
var (
	// ErrDisabled means the stats subsystem is switched off. Not a
	// failure: the caller logs it and exits cleanly.
	ErrDisabled = errors.New("stats collection is disabled")

	// ErrTelegramUnavailable means the subsystem is enabled but the
	// MTProto client cannot serve calls. This is a configuration
	// error, fatal to the whole run.
	ErrTelegramUnavailable = errors.New("telegram client unavailable")
)

// StatusFunc reports the current state of the telegram client.
type StatusFunc func() telegram.Status

// Gate short-circuits a collection pass before any work happens.
// It checks the subsystem flag first and the wire-protocol dependency
// second, so a disabled subsystem never reports a config error.
type Gate struct {
	enabled    bool
	configured bool
	status     StatusFunc
}

// NewGate creates a feature gate.
// configured reports whether the telegram API credentials are present;
// status reports the live client state.
func NewGate(enabled, configured bool, status StatusFunc) *Gate {
	return &Gate{
		enabled:    enabled,
		configured: configured,
		status:     status,
	}
}

// Check returns nil when a collection pass may proceed.
func (g *Gate) Check() error {
	if !g.enabled {
		return ErrDisabled
	}
	if !g.configured {
		return fmt.Errorf("%w: TG_API_ID and TG_API_HASH are not set", ErrTelegramUnavailable)
	}
	if g.status == nil || g.status() != telegram.StatusReady {
		return fmt.Errorf("%w: no authorized session, run tg-auth first", ErrTelegramUnavailable)
	}
	return nil
}
