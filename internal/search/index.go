package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/omsapp/tag-server/internal/domain"
)

// TagIndex wraps a Bleve index of tag titles.
//
// All public methods are safe for concurrent use. The mutex guards the
// index handle while Rebuild swaps it.
type TagIndex struct {
	index  bleve.Index
	path   string // empty for memory-only indexes
	logger *slog.Logger
	mu     sync.RWMutex
}

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage; empty keeps the index in memory
	Logger   *slog.Logger // Logger for operations (uses discard if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch on startup discards the index so it can be rebuilt.
const mappingVersion = "2"

// NewTagIndex creates or opens a tag index.
// A corrupted index or one built with an older mapping is removed and
// recreated empty; the caller is expected to Rebuild it.
func NewTagIndex(opts Options) (*TagIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	indexMapping, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("build mapping: %w", err)
	}

	if opts.DataPath == "" {
		index, err := bleve.NewMemOnly(indexMapping)
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &TagIndex{index: index, logger: logger}, nil
	}

	indexPath := filepath.Join(opts.DataPath, "tags.bleve")
	versionPath := filepath.Join(opts.DataPath, "tags.version")

	var index bleve.Index
	if _, statErr := os.Stat(indexPath); statErr == nil {
		existing, readErr := os.ReadFile(versionPath)
		switch {
		case readErr != nil || string(existing) != mappingVersion:
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existing),
				"new_version", mappingVersion,
			)
		default:
			index, err = bleve.Open(indexPath)
			if err != nil {
				logger.Warn("failed to open existing index, will recreate",
					"path", indexPath,
					"error", err,
				)
			}
		}
		if index == nil {
			if removeErr := os.RemoveAll(indexPath); removeErr != nil {
				return nil, fmt.Errorf("remove old index: %w", removeErr)
			}
		}
	}

	if index == nil {
		index, err = bleve.New(indexPath, indexMapping)
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &TagIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (s *TagIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexTag adds or replaces a tag in the index.
func (s *TagIndex) IndexTag(t *domain.Tag) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := NewTagDocument(t)
	return s.index.Index(doc.ID(), doc.ToMap())
}

// DeleteTag removes a tag from the index. Unknown IDs are not an error.
func (s *TagIndex) DeleteTag(tagID int64) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(docID(tagID))
}

// DocumentCount returns the total number of indexed tags.
func (s *TagIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// FindTagIDs returns up to limit tag IDs whose folded title contains the
// folded search, ordered by folded title and then ID.
// The search is trimmed and otherwise matched literally; an empty search
// matches every tag.
func (s *TagIndex) FindTagIDs(ctx context.Context, search string, limit int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	req := bleve.NewSearchRequestOptions(buildQuery(search), limit, 0, false)
	req.SortBy([]string{"title_key", "sort_id"})

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}

	ids := make([]int64, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			s.logger.Warn("skipping malformed document id", "id", hit.ID)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// buildQuery turns typeahead text into a substring regexp over title_key.
// The needle is quoted, so wildcard and regexp metacharacters are literal.
func buildQuery(search string) query.Query {
	needle := domain.SearchNeedle(search)
	if needle == "" {
		return bleve.NewMatchAllQuery()
	}

	q := bleve.NewRegexpQuery(`[\s\S]*` + regexp.QuoteMeta(needle) + `[\s\S]*`)
	q.SetField("title_key")
	return q
}

// Rebuild drops the index and indexes tags from scratch.
//
// This takes the exclusive lock and blocks searches until it finishes.
func (s *TagIndex) Rebuild(tags []*domain.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	indexMapping, err := buildIndexMapping()
	if err != nil {
		return fmt.Errorf("build mapping: %w", err)
	}

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	var index bleve.Index
	if s.path == "" {
		index, err = bleve.NewMemOnly(indexMapping)
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, indexMapping)
	}
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index

	const batchSize = 500
	for i := 0; i < len(tags); i += batchSize {
		end := min(i+batchSize, len(tags))

		batch := s.index.NewBatch()
		for _, t := range tags[i:end] {
			doc := NewTagDocument(t)
			if err := batch.Index(doc.ID(), doc.ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", doc.ID(), err)
			}
		}
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	s.logger.Info("rebuilt search index", "path", s.path, "tags", len(tags))
	return nil
}
