package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/dimaq12/hexsweeper/models"
)

// Memory is an in-process score store for tests and throwaway servers.
type Memory struct {
	mu     sync.Mutex
	scores map[string][]models.ScoreEntry
}

func NewMemory() *Memory {
	return &Memory{scores: make(map[string][]models.ScoreEntry)}
}

func (m *Memory) Load(_ context.Context, difficulty string) ([]models.ScoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.scores[strings.ToLower(difficulty)]
	out := make([]models.ScoreEntry, len(src))
	copy(out, src)
	return out, nil
}

func (m *Memory) Save(_ context.Context, difficulty string, entries []models.ScoreEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]models.ScoreEntry, len(entries))
	copy(cp, entries)
	m.scores[strings.ToLower(difficulty)] = cp
	return nil
}
