package store

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"sort"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/omsapp/tag-server/internal/domain"
)

// CreateL11n stores a localization for an existing tag.
// Returns ErrNotFound when the tag is missing and ErrAlreadyExists when
// the tag already has a localization in that language.
func (s *Store) CreateL11n(ctx context.Context, l *domain.TagL11n) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, err := nextID(s.l11nSeq)
	if err != nil {
		return fmt.Errorf("next l11n id: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(idKey(tagPrefix, l.TagID)); err == badger.ErrKeyNotFound {
			return tagNotFound(l.TagID)
		} else if err != nil {
			return err
		}

		stored := *l
		stored.ID = id
		return putL11n(txn, &stored)
	})
	if err != nil {
		return err
	}

	l.ID = id
	return nil
}

// putL11n writes a localization and its indexes, enforcing one row per
// (tag, language).
func putL11n(txn *badger.Txn, l *domain.TagL11n) error {
	langKey := childKey(tagLangPrefix, l.TagID, l.Language)
	if _, err := txn.Get(langKey); err == nil {
		return ErrAlreadyExists.WithMessage(fmt.Sprintf("tag %d already has a %q localization", l.TagID, l.Language))
	} else if err != badger.ErrKeyNotFound {
		return err
	}

	if err := setJSON(txn, idKey(l11nPrefix, l.ID), l); err != nil {
		return err
	}
	if err := txn.Set(childKey(tagL11nPrefix, l.TagID, fmt.Sprintf(idWidthTemplate, l.ID)), nil); err != nil {
		return err
	}
	return txn.Set(langKey, []byte(strconv.FormatInt(l.ID, 10)))
}

// ListL11n returns the localizations of a tag ordered by language.
// Returns ErrNotFound when the tag is missing.
func (s *Store) ListL11n(ctx context.Context, tagID int64) ([]*domain.TagL11n, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list := []*domain.TagL11n{}
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(idKey(tagPrefix, tagID)); err == badger.ErrKeyNotFound {
			return tagNotFound(tagID)
		} else if err != nil {
			return err
		}

		prefix := childPrefix(tagLangPrefix, tagID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var l11nID int64
			err := it.Item().Value(func(val []byte) error {
				var perr error
				l11nID, perr = strconv.ParseInt(string(val), 10, 64)
				return perr
			})
			if err != nil {
				return err
			}

			var l domain.TagL11n
			if err := getJSON(txn, idKey(l11nPrefix, l11nID), &l, ErrNotFound); err != nil {
				return err
			}
			list = append(list, &l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Language keys iterate in byte order already; keep it explicit.
	sort.SliceStable(list, func(i, j int) bool { return list[i].Language < list[j].Language })
	return list, nil
}

// DeleteL11n removes a localization and returns its last state.
func (s *Store) DeleteL11n(ctx context.Context, id int64) (*domain.TagL11n, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var l domain.TagL11n
	err := s.db.Update(func(txn *badger.Txn) error {
		notFound := ErrNotFound.WithMessage(fmt.Sprintf("localization %d not found", id))
		if err := getJSON(txn, idKey(l11nPrefix, id), &l, notFound); err != nil {
			return err
		}
		if err := txn.Delete(idKey(l11nPrefix, id)); err != nil {
			return err
		}
		if err := txn.Delete(childKey(tagL11nPrefix, l.TagID, fmt.Sprintf(idWidthTemplate, id))); err != nil {
			return err
		}
		return txn.Delete(childKey(tagLangPrefix, l.TagID, l.Language))
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// RecordAudit appends an audit entry under its entity.
func (s *Store) RecordAudit(ctx context.Context, e *domain.AuditEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, childKey(auditPrefix, e.EntityID, e.ID), e)
	})
}

// ListAudit returns the audit entries of a tag, newest first.
func (s *Store) ListAudit(ctx context.Context, tagID int64) ([]*domain.AuditEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := []*domain.AuditEntry{}
	prefix := childPrefix(auditPrefix, tagID)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e domain.AuditEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				return err
			}
			entries = append(entries, &e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// UUIDv7 keys sort oldest first; reverse for newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
