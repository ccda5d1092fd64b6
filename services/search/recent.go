package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meghashyamc/pinpoint/db/kvdb"
)

const (
	recentKey = "entries"

	maxRecentEntries = 24
)

// RecentEntry is one recently viewed item, newest first.
type RecentEntry struct {
	URI      string `json:"uri"`
	ViewedAt int64  `json:"viewed_at"`
}

// RecordView puts the item at the front of the recently viewed list.
// Viewing an item again moves it to the front.
func (s *Service) RecordView(uri string) error {
	if uri == "" {
		return nil
	}

	entries, err := s.Recent()
	if err != nil {
		return err
	}

	kept := make([]RecentEntry, 0, len(entries)+1)
	kept = append(kept, RecentEntry{URI: uri, ViewedAt: time.Now().UnixMilli()})
	for _, entry := range entries {
		if entry.URI == uri {
			continue
		}
		kept = append(kept, entry)
	}

	if len(kept) > maxRecentEntries {
		kept = kept[:maxRecentEntries]
	}

	return s.writeRecent(kept)
}

// Recent returns recently viewed items, most recent first.
func (s *Service) Recent() ([]RecentEntry, error) {
	value, err := s.metadata.Get(kvdb.RecentBucket, recentKey)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read recently viewed items: %w", err)
	}

	var entries []RecentEntry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		s.logger.Warn("recently viewed list unreadable, resetting", "err", err.Error())
		return nil, nil
	}

	return entries, nil
}

// ClearRecent forgets all recently viewed items.
func (s *Service) ClearRecent() error {
	if err := s.metadata.Delete(kvdb.RecentBucket, recentKey); err != nil && !errors.Is(err, kvdb.ErrNotFound) {
		return fmt.Errorf("failed to clear recently viewed items: %w", err)
	}
	return nil
}

func (s *Service) writeRecent(entries []RecentEntry) error {
	value, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to serialize recently viewed items: %w", err)
	}
	if err := s.metadata.Set(kvdb.RecentBucket, recentKey, string(value)); err != nil {
		return fmt.Errorf("failed to write recently viewed items: %w", err)
	}
	return nil
}
