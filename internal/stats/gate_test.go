package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chanpulse/chanpulse/internal/telegram"
)

func statusFn(s telegram.Status) StatusFunc {
	return func() telegram.Status { return s }
}

func TestGate_Disabled(t *testing.T) {
	g := NewGate(false, true, statusFn(telegram.StatusReady))
	assert.ErrorIs(t, g.Check(), ErrDisabled)
}

func TestGate_DisabledWinsOverMissingDependency(t *testing.T) {
	// A disabled subsystem must never surface a config error.
	g := NewGate(false, false, nil)
	assert.ErrorIs(t, g.Check(), ErrDisabled)
}

func TestGate_EnabledWithoutCredentials(t *testing.T) {
	g := NewGate(true, false, statusFn(telegram.StatusReady))
	err := g.Check()
	assert.ErrorIs(t, err, ErrTelegramUnavailable)
	assert.Contains(t, err.Error(), "TG_API_ID")
}

func TestGate_EnabledUnauthorized(t *testing.T) {
	g := NewGate(true, true, statusFn(telegram.StatusUnauthorized))
	assert.ErrorIs(t, g.Check(), ErrTelegramUnavailable)
}

func TestGate_Ready(t *testing.T) {
	g := NewGate(true, true, statusFn(telegram.StatusReady))
	assert.NoError(t, g.Check())
}
