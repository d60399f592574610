package telegram

import (
	"context"
	"fmt"

	"github.com/celestix/gotgproto"
	"github.com/celestix/gotgproto/sessionMaker"
	"gorm.io/gorm"

	"github.com/chanpulse/chanpulse/internal/config"
)

// NewPersistentClient creates a telegram client that stores its session
// in the database, so auth key refreshes survive restarts. When a
// session string is configured it seeds the client instead; useful for
// the first run after cmd/tg-auth.
func NewPersistentClient(_ context.Context, cfg *config.Config, db *gorm.DB) (*gotgproto.Client, error) {
	clientOpts := &gotgproto.ClientOpts{
		Session:          sessionMaker.SqlSession(db.Dialector),
		DisableCopyright: true,
	}

	if cfg.TGSessionStr != "" {
		clientOpts.Session = sessionMaker.StringSession(cfg.TGSessionStr)
	}

	client, err := gotgproto.NewClient(
		cfg.TGApiID,
		cfg.TGApiHash,
		gotgproto.ClientTypePhone(""), // empty = use stored session
		clientOpts,
	)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}

	return client, nil
}
