package score

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dimaq12/hexsweeper/models"
)

var ErrInvalidEntry = errors.New("invalid score entry")

// Store loads and saves the score list of one difficulty. A missing list is
// an empty slice, not an error.
type Store interface {
	Load(ctx context.Context, difficulty string) ([]models.ScoreEntry, error)
	Save(ctx context.Context, difficulty string, entries []models.ScoreEntry) error
}

// Leaderboard applies the ranking rules on top of a Store.
type Leaderboard struct {
	store Store
	log   logrus.FieldLogger
}

func NewLeaderboard(store Store, log logrus.FieldLogger) *Leaderboard {
	return &Leaderboard{store: store, log: log}
}

// Qualifies reports whether elapsed would be a new best for difficulty.
func (l *Leaderboard) Qualifies(ctx context.Context, difficulty string, elapsed int) (bool, error) {
	entries, err := l.store.Load(ctx, difficulty)
	if err != nil {
		return false, err
	}
	return IsNewBest(entries, difficulty, elapsed), nil
}

// Record appends entry to its difficulty's list.
func (l *Leaderboard) Record(ctx context.Context, entry models.ScoreEntry) error {
	entry.PlayerName = strings.TrimSpace(entry.PlayerName)
	if entry.PlayerName == "" || entry.Difficulty == "" || entry.TimeTaken < 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidEntry, entry)
	}
	entries, err := l.store.Load(ctx, entry.Difficulty)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if err := l.store.Save(ctx, entry.Difficulty, entries); err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{
		"player":     entry.PlayerName,
		"seconds":    entry.TimeTaken,
		"difficulty": entry.Difficulty,
	}).Info("score recorded")
	return nil
}

// Top returns the n fastest stored entries for difficulty.
func (l *Leaderboard) Top(ctx context.Context, difficulty string, n int) ([]models.ScoreEntry, error) {
	entries, err := l.store.Load(ctx, difficulty)
	if err != nil {
		return nil, err
	}
	return TopN(entries, difficulty, n), nil
}
