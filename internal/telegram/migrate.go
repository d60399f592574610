package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gotd/td/tgerr"

	"github.com/chanpulse/chanpulse/internal/logger"
)

// statsMigrateType is the RPC error type Telegram returns when a stats
// request must be repeated against another data center.
const statsMigrateType = "STATS_MIGRATE"

// ErrMalformedMigrate indicates a stats migration error whose target
// data center could not be extracted. This is treated as a bug in the
// upstream response, not a transient condition: the call is not retried.
var ErrMalformedMigrate = errors.New("malformed STATS_MIGRATE error")

// statsMigrateDC extracts the target data center from a stats
// migration error. It returns (0, nil) for any other error kind, and
// ErrMalformedMigrate when the error is migrate-shaped but carries no
// usable DC number.
func statsMigrateDC(err error) (int, error) {
	rpcErr, ok := tgerr.As(err)
	if !ok {
		return 0, nil
	}

	if rpcErr.IsType(statsMigrateType) {
		if rpcErr.Argument <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedMigrate, rpcErr.Message)
		}
		return rpcErr.Argument, nil
	}

	// The argument parser leaves Type equal to the full message when
	// the trailing number is missing, e.g. "STATS_MIGRATE_".
	if strings.HasPrefix(rpcErr.Type, statsMigrateType) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedMigrate, rpcErr.Message)
	}

	return 0, nil
}

// runWithRedirect issues call against the home data center and follows
// at most one stats migration redirect. The second failure, if any,
// propagates unchanged: the protocol guarantees a single redirect hop,
// so looping would only mask an upstream inconsistency.
//
// home may be non-zero when the peer's full info already names a stats
// DC; dc 0 always means the currently connected data center.
func runWithRedirect(ctx context.Context, log *logger.Logger, home int, call func(ctx context.Context, dc int) error) error {
	err := call(ctx, home)
	if err == nil {
		return nil
	}

	dc, perr := statsMigrateDC(err)
	if perr != nil {
		return perr
	}
	if dc == 0 || dc == home {
		return err
	}

	log.Debug().Int("dc", dc).Msg("telegram: stats request redirected, retrying once")
	return call(ctx, dc)
}
