package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/omsapp/tag-server/internal/domain"
)

// CreateTag stores a new tag together with its first localization in a
// single transaction. IDs are assigned to both; l11n may be nil.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag, l11n *domain.TagL11n) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tagID, err := nextID(s.tagSeq)
	if err != nil {
		return fmt.Errorf("next tag id: %w", err)
	}

	var l11nID int64
	if l11n != nil {
		if l11nID, err = nextID(s.l11nSeq); err != nil {
			return fmt.Errorf("next l11n id: %w", err)
		}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		stored := *t
		stored.ID = tagID
		if err := setJSON(txn, idKey(tagPrefix, tagID), &stored); err != nil {
			return err
		}
		if l11n == nil {
			return nil
		}

		storedL11n := *l11n
		storedL11n.ID = l11nID
		storedL11n.TagID = tagID
		return putL11n(txn, &storedL11n)
	})
	if err != nil {
		return err
	}

	t.ID = tagID
	if l11n != nil {
		l11n.ID = l11nID
		l11n.TagID = tagID
	}
	return nil
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(ctx context.Context, id int64) (*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var t domain.Tag
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, idKey(tagPrefix, id), &t, tagNotFound(id))
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTagsByIDs returns the tags for ids in the given order, skipping missing ones.
func (s *Store) GetTagsByIDs(ctx context.Context, ids []int64) ([]*domain.Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tags := make([]*domain.Tag, 0, len(ids))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			var t domain.Tag
			err := getJSON(txn, idKey(tagPrefix, id), &t, ErrNotFound)
			if err == ErrNotFound {
				continue
			}
			if err != nil {
				return err
			}
			tags = append(tags, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// UpdateTag overwrites an existing tag.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := idKey(tagPrefix, t.ID)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return tagNotFound(t.ID)
		} else if err != nil {
			return err
		}
		return setJSON(txn, key, t)
	})
}

// DeleteTag removes a tag and every localization that belongs to it.
// Audit entries are kept.
func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := idKey(tagPrefix, id)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return tagNotFound(id)
		} else if err != nil {
			return err
		}

		for _, idxKey := range collectKeys(txn, childPrefix(tagL11nPrefix, id)) {
			l11nID, err := strconv.ParseInt(string(idxKey[strings.LastIndexByte(string(idxKey), ':')+1:]), 10, 64)
			if err != nil {
				return fmt.Errorf("parse l11n index key %q: %w", idxKey, err)
			}
			if err := txn.Delete(idKey(l11nPrefix, l11nID)); err != nil {
				return err
			}
			if err := txn.Delete(idxKey); err != nil {
				return err
			}
		}
		for _, langKey := range collectKeys(txn, childPrefix(tagLangPrefix, id)) {
			if err := txn.Delete(langKey); err != nil {
				return err
			}
		}

		return txn.Delete(key)
	})
}

// ListTags returns every tag ordered by ID.
func (s *Store) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags := []*domain.Tag{}
	err := s.eachTag(ctx, func(t *domain.Tag) {
		tags = append(tags, t)
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// FindTags returns up to limit tags whose folded title contains the
// folded search, ordered by folded title then ID.
func (s *Store) FindTags(ctx context.Context, search string, limit int) ([]*domain.Tag, error) {
	needle := domain.SearchNeedle(search)

	type match struct {
		key string
		tag *domain.Tag
	}
	var matches []match
	err := s.eachTag(ctx, func(t *domain.Tag) {
		if key := domain.SearchKey(t.Title); strings.Contains(key, needle) {
			matches = append(matches, match{key: key, tag: t})
		}
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].key != matches[j].key {
			return matches[i].key < matches[j].key
		}
		return matches[i].tag.ID < matches[j].tag.ID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	tags := make([]*domain.Tag, len(matches))
	for i, m := range matches {
		tags[i] = m.tag
	}
	return tags, nil
}

func (s *Store) eachTag(ctx context.Context, fn func(*domain.Tag)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := []byte(tagPrefix)
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var t domain.Tag
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				return err
			}
			fn(&t)
		}
		return nil
	})
}

func tagNotFound(id int64) *Error {
	return ErrNotFound.WithMessage(fmt.Sprintf("tag %d not found", id))
}
