package search

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meghashyamc/pinpoint/db/kvdb"
)

const (
	historyKey = "entries"

	// Oldest entries are evicted beyond this
	maxHistoryEntries = 30
)

// HistoryEntry is one remembered search, newest first.
type HistoryEntry struct {
	Query       string `json:"query"`
	SearchedAt  int64  `json:"searched_at"`
	ResultCount int    `json:"result_count"`
}

// RecordSearch puts the query at the front of the history along with
// how many items it found. Re-searching an existing query moves it to
// the front instead of duplicating it; matching is case-insensitive.
func (s *Service) RecordSearch(query string, resultCount int) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	entries, err := s.History()
	if err != nil {
		return err
	}

	kept := make([]HistoryEntry, 0, len(entries)+1)
	kept = append(kept, HistoryEntry{Query: query, SearchedAt: time.Now().UnixMilli(), ResultCount: resultCount})
	for _, entry := range entries {
		if strings.EqualFold(entry.Query, query) {
			continue
		}
		kept = append(kept, entry)
	}

	if len(kept) > maxHistoryEntries {
		kept = kept[:maxHistoryEntries]
	}

	return s.writeHistory(kept)
}

// History returns remembered searches, most recent first.
func (s *Service) History() ([]HistoryEntry, error) {
	value, err := s.metadata.Get(kvdb.HistoryBucket, historyKey)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read search history: %w", err)
	}

	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(value), &entries); err != nil {
		// A corrupt history list is not worth failing a search over
		s.logger.Warn("search history unreadable, resetting", "err", err.Error())
		return nil, nil
	}

	return entries, nil
}

// DeleteSearch removes one entry from the history, matched
// case-insensitively.
func (s *Service) DeleteSearch(query string) error {
	entries, err := s.History()
	if err != nil {
		return err
	}

	kept := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		if strings.EqualFold(entry.Query, query) {
			continue
		}
		kept = append(kept, entry)
	}

	return s.writeHistory(kept)
}

// ClearHistory forgets all remembered searches.
func (s *Service) ClearHistory() error {
	if err := s.metadata.Delete(kvdb.HistoryBucket, historyKey); err != nil && !errors.Is(err, kvdb.ErrNotFound) {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}

func (s *Service) writeHistory(entries []HistoryEntry) error {
	value, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to serialize search history: %w", err)
	}
	if err := s.metadata.Set(kvdb.HistoryBucket, historyKey, string(value)); err != nil {
		return fmt.Errorf("failed to write search history: %w", err)
	}
	return nil
}
