package documentdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/meghashyamc/pinpoint/config"
	"github.com/meghashyamc/pinpoint/logger"
)

const maxSearchResults = 50

type SQLiteDB struct {
	db           *sql.DB
	logger       logger.Logger
	ftsAvailable bool
}

func New(logger logger.Logger, cfg *config.Config) (*SQLiteDB, error) {
	dbPath := cfg.GetDocumentDBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create document database directory", "err", err.Error(), "path", dbPath)
		return nil, fmt.Errorf("failed to create document database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		logger.Error("failed to open document database", "err", err.Error(), "path", dbPath)
		return nil, fmt.Errorf("failed to open document database: %w", err)
	}

	return &SQLiteDB{db: db, logger: logger}, nil
}

// Setup creates the item table, applies best-effort column migrations and
// probes once for full-text support. A missing full-text extension routes
// every later search through the substring fallback; a failure to create
// the base table is the one error that propagates, since the store is
// unusable without it.
func (s *SQLiteDB) Setup() error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS document_index (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content TEXT,
			file_path TEXT UNIQUE
		)
	`); err != nil {
		s.logger.Error("failed to create document table", "err", err.Error())
		return fmt.Errorf("failed to create document table: %w", err)
	}

	// Schema evolution: each ADD COLUMN fails harmlessly once the column exists
	for _, column := range []string{
		`ALTER TABLE document_index ADD COLUMN title TEXT DEFAULT ''`,
		`ALTER TABLE document_index ADD COLUMN item_type TEXT DEFAULT 'IMAGE'`,
		`ALTER TABLE document_index ADD COLUMN detection_type TEXT DEFAULT 'TEXT'`,
		`ALTER TABLE document_index ADD COLUMN created_at INTEGER DEFAULT 0`,
	} {
		if _, err := s.db.Exec(column); err != nil {
			s.logger.Debug("column migration skipped", "err", err.Error())
		}
	}

	s.ftsAvailable = s.probeFullText()
	if s.ftsAvailable {
		s.logger.Info("document database ready", "full_text", true)
	} else {
		s.logger.Warn("full-text search unavailable, using substring fallback")
	}

	return nil
}

// probeFullText checks once whether FTS5 is compiled in and the virtual
// table plus its sync triggers can be created.
func (s *SQLiteDB) probeFullText() bool {
	var enabled bool
	err := s.db.QueryRow(
		"SELECT COUNT(*) > 0 FROM pragma_compile_options WHERE compile_options = 'ENABLE_FTS5'",
	).Scan(&enabled)
	if err != nil || !enabled {
		return false
	}

	statements := []string{
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_index USING fts5(
			content,
			file_path UNINDEXED,
			tokenize = 'unicode61'
		)`,
		`CREATE TRIGGER IF NOT EXISTS fts_insert AFTER INSERT ON document_index BEGIN
			INSERT INTO fts_index(rowid, content, file_path)
			VALUES (NEW.id, NEW.content, NEW.file_path);
		END`,
		`CREATE TRIGGER IF NOT EXISTS fts_delete AFTER DELETE ON document_index BEGIN
			DELETE FROM fts_index WHERE rowid = OLD.id;
		END`,
		`CREATE TRIGGER IF NOT EXISTS fts_update AFTER UPDATE OF content ON document_index BEGIN
			DELETE FROM fts_index WHERE rowid = OLD.id;
			INSERT INTO fts_index(rowid, content, file_path)
			VALUES (NEW.id, NEW.content, NEW.file_path);
		END`,
	}
	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			s.logger.Warn("full-text setup failed", "err", err.Error())
			return false
		}
	}

	return true
}

func (s *SQLiteDB) IsIndexed(filePath string) (bool, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM document_index WHERE file_path = ? LIMIT 1", filePath).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		s.logger.Warn("indexed check failed", "path", filePath, "err", err.Error())
		return false, err
	}
	return true, nil
}

// Upsert stores one row per file path. The existing row is deleted and a
// fresh one inserted, rather than updated in place, so the full-text
// triggers fire and the timestamp refreshes. Empty title and content is a
// no-op to keep the index free of blank rows.
func (s *SQLiteDB) Upsert(title string, content string, filePath string, itemType ItemType, detectionType DetectionType) error {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
		s.logger.Debug("skipping upsert of empty item", "path", filePath)
		return nil
	}

	now := time.Now().UnixMilli()

	if s.ftsAvailable {
		if _, err := s.db.Exec("DELETE FROM document_index WHERE file_path = ?", filePath); err != nil {
			s.logger.Error("failed to delete existing row", "path", filePath, "err", err.Error())
			return fmt.Errorf("failed to delete existing row: %w", err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO document_index (title, content, file_path, item_type, detection_type, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			strings.TrimSpace(title), strings.TrimSpace(content), filePath, string(itemType), string(detectionType), now,
		); err != nil {
			s.logger.Error("failed to insert row", "path", filePath, "err", err.Error())
			return fmt.Errorf("failed to insert row: %w", err)
		}
		return nil
	}

	// No triggers to keep in sync, so a single statement suffices
	if _, err := s.db.Exec(
		`INSERT OR REPLACE INTO document_index (title, content, file_path, item_type, detection_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(title), strings.TrimSpace(content), filePath, string(itemType), string(detectionType), now,
	); err != nil {
		s.logger.Error("failed to upsert row", "path", filePath, "err", err.Error())
		return fmt.Errorf("failed to upsert row: %w", err)
	}
	return nil
}

func (s *SQLiteDB) Search(query string) ([]IndexedItem, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, nil
	}

	if s.ftsAvailable {
		items, err := s.searchFullText(trimmed)
		if err != nil {
			// Match syntax errors on odd input are expected; the substring
			// path below always works
			s.logger.Warn("full-text query failed, falling back to substring", "err", err.Error())
		} else if len(items) > 0 {
			return items, nil
		}
	}

	return s.searchSubstring(trimmed)
}

func (s *SQLiteDB) searchFullText(query string) ([]IndexedItem, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.Query(
		`SELECT d.id, d.title, d.content, d.file_path, d.item_type, d.detection_type, d.created_at
		 FROM fts_index f
		 JOIN document_index d ON d.id = f.rowid
		 WHERE fts_index MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		match, maxSearchResults,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

func (s *SQLiteDB) searchSubstring(query string) ([]IndexedItem, error) {
	rows, err := s.db.Query(
		`SELECT id, title, content, file_path, item_type, detection_type, created_at
		 FROM document_index
		 WHERE LOWER(content) LIKE LOWER(?) ESCAPE '\'
		 LIMIT ?`,
		"%"+escapeLikePattern(query)+"%", maxSearchResults,
	)
	if err != nil {
		s.logger.Error("substring search failed", "err", err.Error())
		return nil, fmt.Errorf("substring search failed: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// escapeLikePattern neutralizes LIKE wildcards so a substring search
// means literal containment.
func escapeLikePattern(query string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
}

// buildMatchQuery strips characters that are operators in the FTS5 match
// syntax, then combines a phrase match with per-word prefix matches,
// e.g. `invoice 123` -> `"invoice 123" OR "invoice"* OR "123"*`.
func buildMatchQuery(query string) string {
	var cleaned strings.Builder
	for _, r := range query {
		switch r {
		case '"', '\'', '*', '(', ')', '-', '^', ':', '.', ',', ';':
			cleaned.WriteRune(' ')
		default:
			cleaned.WriteRune(r)
		}
	}

	words := strings.Fields(cleaned.String())
	if len(words) == 0 {
		return ""
	}

	parts := []string{`"` + strings.Join(words, " ") + `"`}
	for _, word := range words {
		parts = append(parts, `"`+word+`"*`)
	}
	return strings.Join(parts, " OR ")
}

func scanItems(rows *sql.Rows) ([]IndexedItem, error) {
	var items []IndexedItem
	for rows.Next() {
		var item IndexedItem
		var title sql.NullString
		var itemType, detectionType string
		var createdAt sql.NullInt64
		if err := rows.Scan(&item.ID, &title, &item.Content, &item.FilePath, &itemType, &detectionType, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		item.Title = title.String
		item.Type = ItemType(itemType)
		item.DetectionType = DetectionType(detectionType)
		item.Timestamp = createdAt.Int64
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteDB) Count() (int64, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM document_index").Scan(&count); err != nil {
		s.logger.Error("count failed", "err", err.Error())
		return 0, fmt.Errorf("count failed: %w", err)
	}
	return count, nil
}

func (s *SQLiteDB) Clear() error {
	if _, err := s.db.Exec("DELETE FROM document_index"); err != nil {
		s.logger.Error("failed to clear index", "err", err.Error())
		return fmt.Errorf("failed to clear index: %w", err)
	}
	if s.ftsAvailable {
		if _, err := s.db.Exec("DELETE FROM fts_index"); err != nil {
			s.logger.Warn("failed to clear full-text rows", "err", err.Error())
		}
	}
	return nil
}

func (s *SQLiteDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
