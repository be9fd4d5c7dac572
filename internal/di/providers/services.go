package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/omsapp/tag-server/internal/config"
	"github.com/omsapp/tag-server/internal/i18n"
	"github.com/omsapp/tag-server/internal/logger"
	"github.com/omsapp/tag-server/internal/service"
	"github.com/omsapp/tag-server/internal/validation"
)

// ProvideValidator provides the tag request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return validation.New(validation.Options{
		RequireColorHash: cfg.Tag.RequireColorHash,
	}), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Repository, validator, indexHandle.Indexer(), log.Component("tags")), nil
}

// CatalogHandle wraps the label catalog and its override watcher.
type CatalogHandle struct {
	*i18n.Catalog
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideCatalog loads the label tables and watches the override directory.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	labelLog := log.Component("i18n")

	catalog, err := i18n.New(i18n.Options{
		DefaultLanguage: cfg.Localization.DefaultLanguage,
		OverrideDir:     cfg.Localization.OverridePath,
		Logger:          labelLog,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Localization.OverridePath != "" {
		go func() {
			if err := catalog.Watch(ctx); err != nil {
				labelLog.Warn("Label override watcher stopped", "error", err)
			}
		}()
	}

	log.Info("Label tables loaded",
		"languages", catalog.Languages(),
		"default", catalog.Default(),
		"overrides", cfg.Localization.OverridePath,
	)

	return &CatalogHandle{Catalog: catalog, cancel: cancel}, nil
}
