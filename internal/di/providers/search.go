package providers

import (
	"context"
	"sync"

	"github.com/samber/do/v2"

	"github.com/omsapp/tag-server/internal/config"
	"github.com/omsapp/tag-server/internal/logger"
	"github.com/omsapp/tag-server/internal/search"
	"github.com/omsapp/tag-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// TagIndex is nil when search is disabled.
type SearchIndexHandle struct {
	*search.TagIndex
	once sync.Once
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	var err error
	h.once.Do(func() {
		if h.TagIndex != nil {
			err = h.Close()
		}
	})
	return err
}

// Indexer returns the index as a service.Indexer, or nil when disabled.
func (h *SearchIndexHandle) Indexer() service.Indexer {
	if h.TagIndex == nil {
		return nil
	}
	return h.TagIndex
}

// ProvideSearchIndex provides the Bleve typeahead index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Search index disabled, typeahead uses the store")
		return &SearchIndexHandle{}, nil
	}

	index, err := search.NewTagIndex(search.Options{
		DataPath: cfg.Search.Path,
		Logger:   log.Component("search"),
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{TagIndex: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds an empty index in the background
// when the store already holds tags.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tagService := do.MustInvoke[*service.TagService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if indexHandle.TagIndex == nil {
		return
	}
	if docCount, _ := indexHandle.DocumentCount(); docCount > 0 {
		return
	}

	ctx := context.Background()
	tags, err := storeHandle.ListTags(ctx)
	if err != nil || len(tags) == 0 {
		return
	}

	log.Info("Search index is empty but tags exist, triggering initial reindex",
		"tag_count", len(tags),
	)

	go func() {
		count, err := tagService.ReindexAll(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		log.Info("Initial search reindex completed", "documents", count)
	}()
}
