package search

import (
	"strings"

	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/db/kvdb"
	"github.com/meghashyamc/pinpoint/logger"
)

// Service answers search queries against the document index and keeps
// the lightweight browsing state around them, namely the search history
// and the recently viewed items.
type Service struct {
	logger   logger.Logger
	db       documentdb.DB
	metadata kvdb.DB
}

func New(logger logger.Logger, db documentdb.DB, metadata kvdb.DB) *Service {
	return &Service{
		logger:   logger,
		db:       db,
		metadata: metadata,
	}
}

// Search runs the query against the index and records it in the search
// history. A storage failure degrades to an empty result set so the
// caller always gets a usable answer.
func (s *Service) Search(query string) []documentdb.IndexedItem {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	items, err := s.db.Search(query)
	if err != nil {
		s.logger.Error("search failed", "query", query, "err", err.Error())
		return nil
	}

	if err := s.RecordSearch(query, len(items)); err != nil {
		s.logger.Warn("could not record search history", "err", err.Error())
	}

	return items
}

// Count reports the number of indexed items.
func (s *Service) Count() (int64, error) {
	return s.db.Count()
}
