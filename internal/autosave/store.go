package autosave

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"anim-studio/internal/domain"
)

// ErrNoRecords is returned when recovery is requested with no snapshots.
var ErrNoRecords = errors.New("no autosave records")

// keyLayout names snapshots as autosave_YYYYMMDD_HHMMSS; keys sort
// chronologically.
const keyLayout = "20060102_150405"

// keepRecords is how many snapshots survive cleanup after each save.
const keepRecords = 5

// recordMetadata is the sidecar JSON stored next to each snapshot.
type recordMetadata struct {
	Timestamp    time.Time `json:"timestamp"`
	FilePath     string    `json:"filePath,omitempty"`
	AutosaveFile string    `json:"autosaveFile"`
}

// Store persists editor snapshots as timestamped file pairs in one
// directory: autosave_<key>.py with the code and autosave_<key>.json with
// metadata.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a snapshot store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// NewStoreForTests creates a store with an injectable clock.
func NewStoreForTests(dir string, now func() time.Time) *Store {
	return &Store{dir: dir, now: now}
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes one snapshot pair and prunes old records beyond the keep
// limit. It returns the stored record without its code.
func (s *Store) Save(code, filePath string) (domain.AutosaveRecord, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.AutosaveRecord{}, fmt.Errorf("create autosave directory: %w", err)
	}

	now := s.now()
	key := now.Format(keyLayout)
	codePath := s.codePath(key)
	if err := os.WriteFile(codePath, []byte(code), 0o644); err != nil {
		return domain.AutosaveRecord{}, fmt.Errorf("write autosave file: %w", err)
	}

	meta := recordMetadata{
		Timestamp:    now,
		FilePath:     filePath,
		AutosaveFile: filepath.Base(codePath),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return domain.AutosaveRecord{}, err
	}
	if err := os.WriteFile(s.metaPath(key), data, 0o644); err != nil {
		return domain.AutosaveRecord{}, fmt.Errorf("write autosave metadata: %w", err)
	}

	if err := s.cleanup(keepRecords); err != nil {
		return domain.AutosaveRecord{}, err
	}

	return domain.AutosaveRecord{
		Key:       key,
		Timestamp: now,
		FilePath:  filePath,
	}, nil
}

// List returns all records sorted newest first, without code content.
func (s *Store) List() ([]domain.AutosaveRecord, error) {
	keys, err := s.keys()
	if err != nil {
		return nil, err
	}

	records := make([]domain.AutosaveRecord, 0, len(keys))
	for _, key := range keys {
		records = append(records, s.describe(key))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Key > records[j].Key
	})
	return records, nil
}

// Latest returns the newest record including its code.
func (s *Store) Latest() (domain.AutosaveRecord, error) {
	records, err := s.List()
	if err != nil {
		return domain.AutosaveRecord{}, err
	}
	if len(records) == 0 {
		return domain.AutosaveRecord{}, ErrNoRecords
	}
	return s.Load(records[0].Key)
}

// Load returns one full record including its code.
func (s *Store) Load(key string) (domain.AutosaveRecord, error) {
	code, err := os.ReadFile(s.codePath(key))
	if err != nil {
		return domain.AutosaveRecord{}, fmt.Errorf("read autosave %s: %w", key, err)
	}

	record := s.describe(key)
	record.Code = string(code)
	return record, nil
}

// Delete removes one snapshot pair.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.codePath(key)); err != nil {
		return fmt.Errorf("delete autosave %s: %w", key, err)
	}
	if err := os.Remove(s.metaPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// DeleteAll removes every snapshot and returns how many were deleted.
func (s *Store) DeleteAll() (int, error) {
	keys, err := s.keys()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, key := range keys {
		if err := s.Delete(key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// cleanup removes the oldest snapshot pairs beyond the keep limit.
func (s *Store) cleanup(keep int) error {
	keys, err := s.keys()
	if err != nil {
		return err
	}
	if len(keys) <= keep {
		return nil
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	for _, key := range keys[keep:] {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// keys scans the snapshot directory for record keys.
func (s *Store) keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read autosave directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "autosave_") || !strings.HasSuffix(name, ".py") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(strings.TrimPrefix(name, "autosave_"), ".py"))
	}
	return keys, nil
}

// describe builds a record from metadata, falling back to the key itself
// when the sidecar file is missing or unreadable.
func (s *Store) describe(key string) domain.AutosaveRecord {
	record := domain.AutosaveRecord{Key: key}
	if ts, err := time.ParseInLocation(keyLayout, key, time.Local); err == nil {
		record.Timestamp = ts
	}

	data, err := os.ReadFile(s.metaPath(key))
	if err != nil {
		return record
	}

	var meta recordMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return record
	}
	if !meta.Timestamp.IsZero() {
		record.Timestamp = meta.Timestamp
	}
	record.FilePath = meta.FilePath
	return record
}

func (s *Store) codePath(key string) string {
	return filepath.Join(s.dir, "autosave_"+key+".py")
}

func (s *Store) metaPath(key string) string {
	return filepath.Join(s.dir, "autosave_"+key+".json")
}
