package docscan

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/logger"
)

const (
	// Document folders on device storage are shallow; deeper trees are
	// almost always app-private data not worth scanning
	maxScanDepth = 4

	documentExtension = ".pdf"
)

// Service discovers document files under a root folder and indexes the
// ones not seen before.
type Service struct {
	logger logger.Logger
	store  documentdb.DB
}

func New(logger logger.Logger, store documentdb.DB) *Service {
	return &Service{
		logger: logger,
		store:  store,
	}
}

// ScanResult summarizes one scan pass.
type ScanResult struct {
	Discovered int `json:"discovered"`
	Indexed    int `json:"indexed"`
}

// Scan walks rootPath up to the depth limit, skipping dot-folders, and
// indexes every document file that is not already in the store. The
// file name doubles as the searchable title. Unreadable directories are
// skipped rather than failing the scan.
func (s *Service) Scan(rootPath string) (ScanResult, error) {
	rootPath = filepath.Clean(rootPath)

	var result ScanResult
	err := filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			s.logger.Warn("could not walk through file or directory", "path", path, "err", err.Error())
			if errors.Is(err, os.ErrPermission) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if path == rootPath {
				return nil
			}
			if strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if pathDepth(rootPath, path) >= maxScanDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != documentExtension {
			return nil
		}

		result.Discovered++
		if s.indexFile(path, info.Name()) {
			result.Indexed++
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	s.logger.Info("document scan completed", "root", rootPath, "discovered", result.Discovered, "indexed", result.Indexed)
	return result, nil
}

// indexFile stores one document unless it is already indexed. Reports
// whether a new entry was written.
func (s *Service) indexFile(path, name string) bool {
	indexed, err := s.store.IsIndexed(path)
	if err != nil {
		s.logger.Warn("indexed check failed, re-indexing document", "path", path, "err", err.Error())
	}
	if indexed {
		return false
	}

	title := strings.TrimSuffix(name, filepath.Ext(name))
	if err := s.store.Upsert(title, name, path, documentdb.TypeDocument, documentdb.DetectionText); err != nil {
		s.logger.Error("could not index document", "path", path, "err", err.Error())
		return false
	}
	return true
}

func pathDepth(rootPath, path string) int {
	rel, err := filepath.Rel(rootPath, path)
	if err != nil || rel == "." {
		return 0
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}
