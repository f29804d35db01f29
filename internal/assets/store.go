package assets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"anim-studio/internal/domain"
)

// ErrOutsideLibrary is returned for paths escaping the asset directory.
var ErrOutsideLibrary = errors.New("path is outside the asset library")

// Store maintains the asset library cache. Refresh replaces the cache
// wholesale; Filter runs over the cached list only. Bindings call in
// from separate goroutines, so cache access is lock-guarded.
type Store struct {
	dir string

	mu    sync.RWMutex
	cache []domain.Asset
}

// NewStore creates a library store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the library directory.
func (s *Store) Dir() string {
	return s.dir
}

// Refresh re-reads the library directory and replaces the cached list.
func (s *Store) Refresh() ([]domain.Asset, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.mu.Lock()
			s.cache = nil
			s.mu.Unlock()
			return nil, nil
		}
		return nil, fmt.Errorf("read asset directory: %w", err)
	}

	assets := make([]domain.Asset, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || skipAssetName(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		assets = append(assets, domain.Asset{
			Path:         filepath.Join(s.dir, name),
			Name:         name,
			Size:         info.Size(),
			ModifiedTime: info.ModTime(),
			Category:     domain.CategoryForName(name),
		})
	}

	sort.Slice(assets, func(i, j int) bool {
		return strings.ToLower(assets[i].Name) < strings.ToLower(assets[j].Name)
	})

	s.mu.Lock()
	s.cache = assets
	s.mu.Unlock()
	return s.List(), nil
}

// List returns a copy of the cached asset list.
func (s *Store) List() []domain.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Asset, len(s.cache))
	copy(out, s.cache)
	return out
}

// Filter narrows the cached list by name substring and category. An empty
// query with category "all" returns the full cached list unchanged.
func (s *Store) Filter(query, category string) []domain.Asset {
	query = strings.ToLower(strings.TrimSpace(query))
	category = strings.ToLower(strings.TrimSpace(category))
	matchAll := category == "" || category == "all"

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Asset, 0, len(s.cache))
	for _, asset := range s.cache {
		if query != "" && !strings.Contains(strings.ToLower(asset.Name), query) {
			continue
		}
		if !matchAll && string(asset.Category) != category {
			continue
		}
		out = append(out, asset)
	}
	return out
}

// Upload copies a file into the library and refreshes the cache. Name
// collisions get a timestamp suffix instead of overwriting.
func (s *Store) Upload(srcPath string) (domain.Asset, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("stat upload source: %w", err)
	}
	if info.IsDir() {
		return domain.Asset{}, fmt.Errorf("upload source is a directory: %s", srcPath)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("open upload source: %w", err)
	}
	defer src.Close()

	destPath, err := s.prepareDestination(filepath.Base(srcPath))
	if err != nil {
		return domain.Asset{}, err
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("create library file: %w", err)
	}
	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		_ = os.Remove(destPath)
		return domain.Asset{}, fmt.Errorf("copy into library: %w", err)
	}
	if err := dest.Close(); err != nil {
		return domain.Asset{}, err
	}

	return s.describeAfterWrite(destPath)
}

// UploadContent stores base64 payload bytes as a new library file. Used
// for drag and drop uploads that arrive without a source path.
func (s *Store) UploadContent(name, base64Content string) (domain.Asset, error) {
	if strings.TrimSpace(name) == "" || base64Content == "" {
		return domain.Asset{}, errors.New("file name and content are required")
	}

	data, err := base64.StdEncoding.DecodeString(base64Content)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("decode upload content: %w", err)
	}

	destPath, err := s.prepareDestination(filepath.Base(name))
	if err != nil {
		return domain.Asset{}, err
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return domain.Asset{}, fmt.Errorf("write library file: %w", err)
	}

	return s.describeAfterWrite(destPath)
}

// Delete removes a library file and refreshes the cache.
func (s *Store) Delete(path string) error {
	if !s.contains(path) {
		return ErrOutsideLibrary
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}

	_, err := s.Refresh()
	return err
}

// prepareDestination resolves the target path, deduplicating collisions
// with a timestamp suffix.
func (s *Store) prepareDestination(name string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create asset directory: %w", err)
	}

	destPath := filepath.Join(s.dir, name)
	if _, err := os.Stat(destPath); err == nil {
		ext := filepath.Ext(name)
		base := strings.TrimSuffix(name, ext)
		destPath = filepath.Join(s.dir, fmt.Sprintf("%s_%d%s", base, time.Now().Unix(), ext))
	}
	return destPath, nil
}

// describeAfterWrite refreshes the cache and returns the written asset.
func (s *Store) describeAfterWrite(path string) (domain.Asset, error) {
	assets, err := s.Refresh()
	if err != nil {
		return domain.Asset{}, err
	}

	name := filepath.Base(path)
	for _, asset := range assets {
		if asset.Name == name {
			return asset, nil
		}
	}
	return domain.Asset{}, fmt.Errorf("uploaded asset not found: %s", name)
}

// contains reports whether path resolves inside the library directory.
func (s *Store) contains(path string) bool {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// skipAssetName filters hidden files and scene sources out of listings.
func skipAssetName(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".py" || ext == ".pyc"
}
