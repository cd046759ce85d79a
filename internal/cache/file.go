package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fortuna/mlbh2h/internal/stats"
)

// ErrStatsFileExists is returned when a date's stats file is already written.
var ErrStatsFileExists = errors.New("stats file already exists")

// FileCache keeps one JSON document per date under <data_dir>/_stats.
// Files are write-once.
type FileCache struct {
	dir string
}

// NewFileCache creates a file cache rooted at dataDir.
func NewFileCache(dataDir string) *FileCache {
	return &FileCache{dir: filepath.Join(dataDir, "_stats")}
}

// Path returns the file holding date's records.
func (fc *FileCache) Path(date string) string {
	return filepath.Join(fc.dir, date+".json")
}

// Exists reports whether date has been cached.
func (fc *FileCache) Exists(date string) bool {
	_, err := os.Stat(fc.Path(date))
	return err == nil
}

// Load returns date's records. ok is false when the file does not exist.
func (fc *FileCache) Load(date string) (players []stats.RawPlayer, ok bool, err error) {
	data, err := os.ReadFile(fc.Path(date))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read stats file: %w", err)
	}

	if err := json.Unmarshal(data, &players); err != nil {
		return nil, false, fmt.Errorf("decode stats file %s: %w", fc.Path(date), err)
	}
	return players, true, nil
}

// Save writes date's records. It never overwrites an existing file.
func (fc *FileCache) Save(date string, players []stats.RawPlayer) error {
	if err := os.MkdirAll(fc.dir, 0o755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}

	data, err := json.Marshal(players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}

	path := fc.Path(date)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrStatsFileExists, path)
	}
	if err != nil {
		return fmt.Errorf("create stats file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("write stats file: %w", err)
	}
	return f.Close()
}

// Dates lists the cached dates in ascending order.
func (fc *FileCache) Dates() ([]string, error) {
	entries, err := os.ReadDir(fc.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list stats dir: %w", err)
	}

	var dates []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		dates = append(dates, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(dates)
	return dates, nil
}
