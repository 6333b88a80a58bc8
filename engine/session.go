package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dimaq12/hexsweeper/models"
)

var (
	ErrGameOver = errors.New("game is over")
	ErrNotWon   = errors.New("game has not been won")
)

type State int

const (
	Playing State = iota
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "playing"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RevealResult is the delta a host renders after a reveal.
type RevealResult struct {
	Changed []models.Coordinate `json:"changed"`
	State   State               `json:"state"`
}

// Session is one game from start to win or loss.
type Session struct {
	ID         uuid.UUID
	Difficulty models.Difficulty
	StartedAt  time.Time

	engine *Engine
	clock  *Stopwatch
	state  State
	now    func() time.Time
	log    logrus.FieldLogger
}

// NewSession builds the board for d, places bombs, counts neighbours and
// starts the clock.
func NewSession(d models.Difficulty, opts ...Option) (*Session, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	id := uuid.New()
	log := o.log.WithFields(logrus.Fields{
		"game":       id.String(),
		"difficulty": d.Name,
	})
	eng := New(models.NewBoard(d.Width, d.Height, d.Bombs), WithPlacer(o.placer), WithLogger(log))
	if err := eng.AllocateBombs(d.Bombs); err != nil {
		return nil, fmt.Errorf("new %s game: %w", d.Name, err)
	}
	if err := eng.ComputeAdjacency(); err != nil {
		return nil, fmt.Errorf("new %s game: %w", d.Name, err)
	}

	s := &Session{
		ID:         id,
		Difficulty: d,
		StartedAt:  o.now(),
		engine:     eng,
		clock:      NewStopwatch(o.now),
		now:        o.now,
		log:        log,
	}
	s.clock.Start()
	log.Info("game started")
	return s, nil
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Board() *models.Board {
	return s.engine.Board()
}

func (s *Session) Cell(coord models.Coordinate) (models.Cell, error) {
	return s.engine.Cell(coord)
}

// Reveal opens a cell. Flagged cells are protected and left closed. A bomb
// ends the game as lost; opening the last safe cell ends it as won. Both
// stop the clock.
func (s *Session) Reveal(coord models.Coordinate) (RevealResult, error) {
	if s.state != Playing {
		return RevealResult{State: s.state}, ErrGameOver
	}
	cell, err := s.engine.Cell(coord)
	if err != nil {
		return RevealResult{State: s.state}, err
	}
	if cell.IsFlagged {
		return RevealResult{State: s.state}, nil
	}

	changed, err := s.engine.Reveal(coord)
	if err != nil {
		return RevealResult{State: s.state}, err
	}

	switch {
	case cell.IsBomb:
		s.finish(Lost)
		s.log.WithFields(logrus.Fields{"x": coord.X, "y": coord.Y}).Info("bomb revealed")
	case s.engine.CheckWin():
		s.finish(Won)
		s.log.WithField("seconds", s.clock.Seconds()).Info("game won")
	}
	return RevealResult{Changed: changed, State: s.state}, nil
}

func (s *Session) finish(st State) {
	s.state = st
	s.clock.Pause()
}

// ToggleFlag flips a flag while the game is running.
func (s *Session) ToggleFlag(coord models.Coordinate) (FlagResult, error) {
	if s.state != Playing {
		return FlagResult{}, ErrGameOver
	}
	return s.engine.ToggleFlag(coord)
}

func (s *Session) CheckWin() bool {
	return s.engine.CheckWin()
}

// RevealBombs uncovers the remaining bombs once the game is lost.
func (s *Session) RevealBombs() []models.Coordinate {
	if s.state != Lost {
		return nil
	}
	return s.engine.RevealBombs()
}

// BombsRemaining is the counter shown to the player: bombs minus flags. It
// goes negative when the player over-flags.
func (s *Session) BombsRemaining() int {
	return s.Difficulty.Bombs - s.engine.Flags()
}

func (s *Session) Elapsed() int {
	return s.clock.Seconds()
}

func (s *Session) Pause() {
	if s.state == Playing {
		s.clock.Pause()
	}
}

func (s *Session) Resume() {
	if s.state == Playing {
		s.clock.Resume()
	}
}

// Score builds the leaderboard entry for a won game.
func (s *Session) Score(player string) (models.ScoreEntry, error) {
	if s.state != Won {
		return models.ScoreEntry{}, ErrNotWon
	}
	return models.ScoreEntry{
		PlayerName:   player,
		TimeTaken:    s.clock.Seconds(),
		DateAchieved: s.now().UTC(),
		Difficulty:   s.Difficulty.Name,
	}, nil
}
