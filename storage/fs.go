package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dimaq12/hexsweeper/models"
)

var (
	ErrCorrupt     = errors.New("score file is corrupt")
	ErrInvalidName = errors.New("invalid difficulty name")
)

// FS keeps one JSON array of scores per difficulty under dir.
type FS struct {
	dir string
	mu  sync.Mutex
}

func NewFS(dir string) *FS { return &FS{dir: dir} }

func (s *FS) pathFor(difficulty string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(difficulty))
	if name == "" || strings.ContainsAny(name, `/\.`) {
		return "", fmt.Errorf("%q: %w", difficulty, ErrInvalidName)
	}
	return filepath.Join(s.dir, name+"_scores.json"), nil
}

// Load returns the stored scores for difficulty. A missing file yields an
// empty list; unparsable content yields ErrCorrupt.
func (s *FS) Load(ctx context.Context, difficulty string) ([]models.ScoreEntry, error) {
	path, err := s.pathFor(difficulty)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.ScoreEntry{}, nil
		}
		return nil, err
	}
	out := []models.ScoreEntry{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrCorrupt, err)
	}
	return out, nil
}

// Save replaces the stored list for difficulty. The file is written next to
// its target and renamed so readers never see a partial array.
func (s *FS) Save(ctx context.Context, difficulty string, entries []models.ScoreEntry) error {
	path, err := s.pathFor(difficulty)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []models.ScoreEntry{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, ".scores-*.json")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
