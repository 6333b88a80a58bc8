// Package engine holds the hexsweeper rules: bomb placement, adjacency
// counts, cascading reveal, flags and win detection. It never renders and
// never blocks; hosts drive it one command at a time.
package engine

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dimaq12/hexsweeper/models"
)

var (
	ErrTooManyBombs      = errors.New("bomb count must be below the number of cells")
	ErrAlreadyAllocated  = errors.New("bombs already allocated")
	ErrNotAllocated      = errors.New("bombs not allocated yet")
	ErrAdjacencyComputed = errors.New("adjacency already computed")
	ErrAdjacencyMissing  = errors.New("adjacency not computed yet")
	ErrInvalidPlacement  = errors.New("placer returned an invalid layout")
)

type options struct {
	placer Placer
	log    logrus.FieldLogger
	now    func() time.Time
}

// Option configures an Engine or a Session.
type Option func(*options)

// WithPlacer swaps the bomb placement strategy.
func WithPlacer(p Placer) Option {
	return func(o *options) { o.placer = p }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.placer == nil {
		o.placer = RejectionPlacer{}
	}
	if o.log == nil {
		quiet := logrus.New()
		quiet.SetOutput(io.Discard)
		o.log = quiet
	}
	return o
}

// FlagResult is what a flag toggle reports back: the new flag state and how
// the remaining-bomb display moves (-1, 0 or +1).
type FlagResult struct {
	Flagged bool `json:"flagged"`
	Delta   int  `json:"delta"`
}

// Engine applies game rules to a single board it exclusively owns.
type Engine struct {
	board  *models.Board
	placer Placer
	log    logrus.FieldLogger

	allocated bool
	counted   bool
	flags     int
}

func New(board *models.Board, opts ...Option) *Engine {
	o := buildOptions(opts)
	return &Engine{board: board, placer: o.placer, log: o.log}
}

// Board exposes the underlying grid for read-only iteration by hosts.
func (e *Engine) Board() *models.Board {
	return e.board
}

// AllocateBombs marks count distinct cells as bombs. It may run once per
// board, and count must leave at least one safe cell.
func (e *Engine) AllocateBombs(count int) error {
	if e.allocated {
		return ErrAlreadyAllocated
	}
	total := e.board.Size()
	if count < 0 || count >= total {
		return fmt.Errorf("%d bombs for %d cells: %w", count, total, ErrTooManyBombs)
	}

	chosen := e.placer.Place(e.board.Coordinates(), count)
	if len(chosen) != count {
		return fmt.Errorf("got %d bombs, want %d: %w", len(chosen), count, ErrInvalidPlacement)
	}
	cells := make([]*models.Cell, 0, count)
	seen := make(map[models.Coordinate]bool, count)
	for _, c := range chosen {
		cell, err := e.board.Get(c)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidPlacement, err)
		}
		if seen[c] {
			return fmt.Errorf("bomb %s placed twice: %w", c, ErrInvalidPlacement)
		}
		seen[c] = true
		cells = append(cells, cell)
	}
	for _, cell := range cells {
		cell.IsBomb = true
	}
	e.allocated = true
	e.log.WithField("bombs", count).Debug("bombs allocated")
	return nil
}

// ComputeAdjacency stores, for every cell, how many of its neighbours are
// bombs. Runs exactly once, between allocation and the first reveal.
func (e *Engine) ComputeAdjacency() error {
	if !e.allocated {
		return ErrNotAllocated
	}
	if e.counted {
		return ErrAdjacencyComputed
	}
	for _, c := range e.board.Coordinates() {
		cell, _ := e.board.Get(c)
		n := 0
		for _, nb := range e.board.NeighboursOf(c) {
			if other, _ := e.board.Get(nb); other.IsBomb {
				n++
			}
		}
		cell.BombNeighbourCount = n
	}
	e.counted = true
	return nil
}

// Reveal opens the cell at coord and returns every coordinate whose revealed
// state changed, in reveal order. Revealing an open cell changes nothing.
// A bomb is reported like any other cell; ending the game is up to the host.
// Empty cells cascade through their neighbours; numbered cells stop the
// cascade. Revealing a cell also clears its flag.
func (e *Engine) Reveal(coord models.Coordinate) ([]models.Coordinate, error) {
	if !e.counted {
		return nil, ErrAdjacencyMissing
	}
	cell, err := e.board.Get(coord)
	if err != nil {
		return nil, err
	}
	if cell.IsRevealed {
		return nil, nil
	}

	changed := []models.Coordinate{coord}
	e.open(cell)
	if cell.IsBomb || cell.BombNeighbourCount > 0 {
		return changed, nil
	}

	stack := []models.Coordinate{coord}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range e.board.NeighboursOf(top) {
			next, _ := e.board.Get(nb)
			if next.IsRevealed {
				continue
			}
			e.open(next)
			changed = append(changed, nb)
			if next.BombNeighbourCount == 0 {
				stack = append(stack, nb)
			}
		}
	}

	e.log.WithFields(logrus.Fields{
		"x":     coord.X,
		"y":     coord.Y,
		"cells": len(changed),
	}).Debug("cascade reveal")
	return changed, nil
}

func (e *Engine) open(cell *models.Cell) {
	cell.IsRevealed = true
	if cell.IsFlagged {
		cell.IsFlagged = false
		e.flags--
	}
}

// ToggleFlag flips the flag on a hidden cell. Revealed cells cannot carry a
// flag; toggling one is a no-op with a zero delta.
func (e *Engine) ToggleFlag(coord models.Coordinate) (FlagResult, error) {
	cell, err := e.board.Get(coord)
	if err != nil {
		return FlagResult{}, err
	}
	if cell.IsRevealed {
		return FlagResult{}, nil
	}
	cell.IsFlagged = !cell.IsFlagged
	if cell.IsFlagged {
		e.flags++
		return FlagResult{Flagged: true, Delta: -1}, nil
	}
	e.flags--
	return FlagResult{Flagged: false, Delta: 1}, nil
}

// Flags is the number of flags currently on the board.
func (e *Engine) Flags() int {
	return e.flags
}

// CheckWin reports whether every safe cell is open. Bomb cells are ignored.
func (e *Engine) CheckWin() bool {
	for _, c := range e.board.Coordinates() {
		cell, _ := e.board.Get(c)
		if !cell.IsBomb && !cell.IsRevealed {
			return false
		}
	}
	return true
}

// RevealBombs opens every hidden bomb, for showing the board after a loss.
func (e *Engine) RevealBombs() []models.Coordinate {
	var changed []models.Coordinate
	for _, c := range e.board.Coordinates() {
		cell, _ := e.board.Get(c)
		if cell.IsBomb && !cell.IsRevealed {
			e.open(cell)
			changed = append(changed, c)
		}
	}
	return changed
}

// Cell returns a copy of the cell for display.
func (e *Engine) Cell(coord models.Coordinate) (models.Cell, error) {
	cell, err := e.board.Get(coord)
	if err != nil {
		return models.Cell{}, err
	}
	return *cell, nil
}
