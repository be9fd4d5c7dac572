package providers

import (
	"fmt"
	"sync"

	"github.com/samber/do/v2"

	"github.com/omsapp/tag-server/internal/config"
	"github.com/omsapp/tag-server/internal/logger"
	"github.com/omsapp/tag-server/internal/store"
	"github.com/omsapp/tag-server/internal/store/sqlite"
)

// StoreHandle wraps the repository with shutdown capability.
type StoreHandle struct {
	store.Repository
	once sync.Once
	err  error
}

// Shutdown implements do.Shutdownable. It is safe to call more than once.
func (h *StoreHandle) Shutdown() error {
	h.once.Do(func() { h.err = h.Close() })
	return h.err
}

// ProvideStore opens the configured storage backend.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var (
		repo store.Repository
		err  error
	)
	switch cfg.Database.Driver {
	case config.DriverBadger:
		repo, err = store.New(cfg.Database.Path, log.Logger)
	case config.DriverSQLite:
		repo, err = sqlite.Open(cfg.Database.Path, log.Logger)
	default:
		err = fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "driver", cfg.Database.Driver, "path", cfg.Database.Path)

	return &StoreHandle{Repository: repo}, nil
}
