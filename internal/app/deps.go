package app

import (
	"time"

	"github.com/flatchat/backend/internal/config"
	"github.com/flatchat/backend/internal/handlers"
	"github.com/flatchat/backend/internal/middleware"
	"github.com/flatchat/backend/internal/models"
	"github.com/flatchat/backend/internal/store"
	"github.com/flatchat/backend/internal/uploads"
)

// buildDependencies wires together the concrete implementations used by the
// HTTP handlers: JSON file collections behind the registry and ledger, and
// the attachment directory manager.
func buildDependencies(cfg config.Config) handlers.Dependencies {
	users, records := newCollections(cfg)

	registry := store.NewRegistry(users)
	files := uploads.NewManager(cfg.UploadsDir, cfg.UserImagesDir)
	ledger := store.NewLedger(records, registry, files)

	return handlers.Dependencies{
		Users: registry,
		Chats: ledger,
		Files: files,
		AuthLimiter: middleware.NewKeyedRateLimiter(
			cfg.AuthRateRequests, cfg.AuthRateWindow, cfg.AuthRateBurst, 10*time.Minute),
		UploadsDir:    cfg.UploadsDir,
		UserImagesDir: cfg.UserImagesDir,
		PublicDir:     cfg.PublicDir,
	}
}

func newCollections(cfg config.Config) (*store.Collection[models.User], *store.Collection[models.Record]) {
	return store.NewCollection[models.User](cfg.UsersFile),
		store.NewCollection[models.Record](cfg.MessagesFile)
}
