package gallery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true,
	".gif": true, ".webp": true, ".heic": true, ".bmp": true,
}

// FolderSource pages over the image files of a single directory, newest
// first, the same order a device gallery presents them in. The cursor
// is the offset into the listing; since new files only prepend, a
// resumed walk never skips items it has not seen.
type FolderSource struct {
	root string
}

func NewFolderSource(root string) *FolderSource {
	return &FolderSource{root: filepath.Clean(root)}
}

func (s *FolderSource) GetPage(_ context.Context, pageSize int, after string) (Page, error) {
	if s.root == "" || s.root == "." {
		return Page{}, nil
	}

	uris, err := s.listImages()
	if err != nil {
		return Page{}, err
	}

	start := 0
	if after != "" {
		start, err = strconv.Atoi(after)
		if err != nil {
			return Page{}, fmt.Errorf("bad cursor %q: %w", after, err)
		}
	}
	if start >= len(uris) {
		return Page{}, nil
	}

	end := start + pageSize
	if end > len(uris) {
		end = len(uris)
	}

	items := make([]Item, 0, end-start)
	for _, uri := range uris[start:end] {
		items = append(items, Item{URI: uri})
	}

	return Page{
		Items:       items,
		HasNextPage: end < len(uris),
		EndCursor:   strconv.Itoa(end),
	}, nil
}

func (s *FolderSource) listImages() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("could not read gallery folder: %w", err)
	}

	type imageFile struct {
		path    string
		modTime int64
	}

	images := make([]imageFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		images = append(images, imageFile{
			path:    filepath.Join(s.root, entry.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}

	sort.Slice(images, func(i, j int) bool {
		if images[i].modTime != images[j].modTime {
			return images[i].modTime > images[j].modTime
		}
		return images[i].path < images[j].path
	})

	uris := make([]string, 0, len(images))
	for _, image := range images {
		uris = append(uris, image.path)
	}
	return uris, nil
}
