package league

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrLeagueExists      = errors.New("league already exists")
	ErrLeagueNotFound    = errors.New("league not found")
	ErrInvalidLeagueName = errors.New("invalid league name")
	ErrInvalidWeight     = errors.New("invalid scoring weight")
)

const (
	leaguesDir   = "leagues"
	scoringFile  = "scoring.json"
	rosterFile   = "roster.json"
	reservedMark = "_"
)

// Store reads and writes league settings under <dataDir>/leagues/<name>.
type Store struct {
	dataDir string
}

// NewStore creates a league store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// DataDir returns the root directory of the store.
func (s *Store) DataDir() string {
	return s.dataDir
}

// Dir returns the directory holding a league's files.
func (s *Store) Dir(name string) string {
	return filepath.Join(s.dataDir, leaguesDir, name)
}

// ValidateName rejects empty names, names that escape the leagues
// directory, and names starting with "_" (reserved for internal data).
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return fmt.Errorf("%w: empty", ErrInvalidLeagueName)
	case strings.HasPrefix(trimmed, reservedMark):
		return fmt.Errorf("%w: %q must not start with %q", ErrInvalidLeagueName, name, reservedMark)
	case strings.ContainsAny(trimmed, `/\`) || trimmed == "." || trimmed == "..":
		return fmt.Errorf("%w: %q", ErrInvalidLeagueName, name)
	case trimmed == SampleLeague:
		return fmt.Errorf("%w: %q is built in", ErrInvalidLeagueName, name)
	}
	return nil
}

// Exists reports whether a league directory is present.
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Dir(name))
	return err == nil && info.IsDir()
}

// List returns the names of saved leagues, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, leaguesDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read leagues dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), reservedMark) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadScoringRule loads a league's rule, or the built-in one for "sample".
func (s *Store) LoadScoringRule(name string) (ScoringRule, error) {
	if name == SampleLeague {
		return SampleScoringRule(), nil
	}

	var rule ScoringRule
	if err := s.readJSON(name, scoringFile, &rule); err != nil {
		return rule, err
	}
	if err := rule.Validate(); err != nil {
		return rule, fmt.Errorf("league %s: %w", name, err)
	}
	return rule, nil
}

// LoadRoster loads a league's roster, or the built-in one for "sample".
func (s *Store) LoadRoster(name string) (Roster, error) {
	if name == SampleLeague {
		return SampleRoster(), nil
	}

	var roster Roster
	if err := s.readJSON(name, rosterFile, &roster); err != nil {
		return roster, err
	}
	if err := roster.Validate(); err != nil {
		return roster, fmt.Errorf("league %s: %w", name, err)
	}
	return roster, nil
}

// Create writes a new league. An existing league is an error unless force
// is set, in which case its directory is removed first.
func (s *Store) Create(name string, rule ScoringRule, roster Roster, force bool) error {
	if err := s.prepare(name, force); err != nil {
		return err
	}
	if err := s.writeJSON(name, scoringFile, rule); err != nil {
		return err
	}
	return s.writeJSON(name, rosterFile, roster)
}

// SaveRoster replaces only the roster of a league, creating the league
// directory when needed. An existing roster is kept unless force is set.
func (s *Store) SaveRoster(name string, roster Roster, force bool) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := roster.Validate(); err != nil {
		return err
	}
	path := filepath.Join(s.Dir(name), rosterFile)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s has a roster", ErrLeagueExists, name)
	}
	if err := os.MkdirAll(s.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create league dir: %w", err)
	}
	return s.writeJSON(name, rosterFile, roster)
}

func (s *Store) prepare(name string, force bool) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if s.Exists(name) {
		if !force {
			return fmt.Errorf("%w: %s", ErrLeagueExists, name)
		}
		if err := os.RemoveAll(s.Dir(name)); err != nil {
			return fmt.Errorf("remove league %s: %w", name, err)
		}
	}
	if err := os.MkdirAll(s.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create league dir: %w", err)
	}
	return nil
}

func (s *Store) readJSON(name, file string, v interface{}) error {
	path := filepath.Join(s.Dir(name), file)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s (missing %s)", ErrLeagueNotFound, name, file)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (s *Store) writeJSON(name, file string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", file, err)
	}
	path := filepath.Join(s.Dir(name), file)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
