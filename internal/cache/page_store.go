/*
Package cache keeps flattened page text on disk so a re-run does not have to hit the
site again for pages it fetched recently.
*/
package cache

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

const keyPrefix = "page:"

// CachedPage is the stored form of one fetched page.
type CachedPage struct {
	Code      string
	Text      string
	FetchedAt time.Time
}

// PageStore is a badgerhold-backed page cache. A zero TTL keeps entries forever.
type PageStore struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	ttl    time.Duration
	now    func() time.Time
}

func Open(logger arbor.ILogger, path string, ttl time.Duration) (*PageStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = path
	options.ValueDir = path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open page cache at %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Str("ttl", ttl.String()).Msg("Page cache opened")

	return &PageStore{
		store:  store,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Get returns the cached text for code if present and fresh.
func (s *PageStore) Get(code string) (string, bool) {
	var page CachedPage
	err := s.store.Get(keyPrefix+code, &page)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return "", false
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("code", code).Msg("Failed to read page cache")
		return "", false
	}

	if s.ttl > 0 && s.now().Sub(page.FetchedAt) > s.ttl {
		return "", false
	}
	return page.Text, true
}

func (s *PageStore) Put(code, text string) error {
	page := CachedPage{
		Code:      code,
		Text:      text,
		FetchedAt: s.now(),
	}
	if err := s.store.Upsert(keyPrefix+code, &page); err != nil {
		return fmt.Errorf("failed to cache page %s: %w", code, err)
	}
	return nil
}

func (s *PageStore) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
