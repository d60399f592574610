package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/gotd/td/tgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanpulse/chanpulse/internal/logger"
)

func TestStatsMigrateDC(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantDC    int
		malformed bool
	}{
		{
			name:   "redirect to dc 4",
			err:    tgerr.New(303, "STATS_MIGRATE_4"),
			wantDC: 4,
		},
		{
			name:      "redirect without dc number",
			err:       tgerr.New(303, "STATS_MIGRATE"),
			malformed: true,
		},
		{
			name:   "unrelated rpc error",
			err:    tgerr.New(400, "CHANNEL_INVALID"),
			wantDC: 0,
		},
		{
			name:   "plain error",
			err:    errors.New("connection reset"),
			wantDC: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc, err := statsMigrateDC(tt.err)
			if tt.malformed {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedMigrate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDC, dc)
		})
	}
}

func TestRunWithRedirect_Success(t *testing.T) {
	calls := 0
	err := runWithRedirect(context.Background(), logger.Get(), 0, func(ctx context.Context, dc int) error {
		calls++
		assert.Equal(t, 0, dc)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunWithRedirect_FollowsRedirectOnce(t *testing.T) {
	var dcs []int
	err := runWithRedirect(context.Background(), logger.Get(), 0, func(ctx context.Context, dc int) error {
		dcs = append(dcs, dc)
		if dc == 0 {
			return tgerr.New(303, "STATS_MIGRATE_2")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, dcs)
}

func TestRunWithRedirect_RetryBound(t *testing.T) {
	// An upstream that always redirects must produce exactly two calls
	// and then surface the second failure unchanged.
	calls := 0
	err := runWithRedirect(context.Background(), logger.Get(), 0, func(ctx context.Context, dc int) error {
		calls++
		return tgerr.New(303, "STATS_MIGRATE_4")
	})

	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.NotErrorIs(t, err, ErrMalformedMigrate)
	assert.True(t, tgerr.Is(err, "STATS_MIGRATE"))
}

func TestRunWithRedirect_MalformedIsFatal(t *testing.T) {
	calls := 0
	err := runWithRedirect(context.Background(), logger.Get(), 0, func(ctx context.Context, dc int) error {
		calls++
		return tgerr.New(303, "STATS_MIGRATE")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedMigrate)
	assert.Equal(t, 1, calls)
}

func TestRunWithRedirect_OtherErrorsPropagate(t *testing.T) {
	wantErr := errors.New("boom")
	calls := 0
	err := runWithRedirect(context.Background(), logger.Get(), 0, func(ctx context.Context, dc int) error {
		calls++
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestRunWithRedirect_StartsAtHomeDC(t *testing.T) {
	var dcs []int
	err := runWithRedirect(context.Background(), logger.Get(), 5, func(ctx context.Context, dc int) error {
		dcs = append(dcs, dc)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{5}, dcs)
}

func TestRunWithRedirect_RedirectToSameDCNotRetried(t *testing.T) {
	calls := 0
	err := runWithRedirect(context.Background(), logger.Get(), 3, func(ctx context.Context, dc int) error {
		calls++
		return tgerr.New(303, "STATS_MIGRATE_3")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
