package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("cell not found")
	ErrDuplicateCell = errors.New("cell already exists")
)

type Cell struct {
	Coord              Coordinate
	IsBomb             bool
	IsRevealed         bool
	IsFlagged          bool
	BombNeighbourCount int
}

// Board owns every cell of a hex grid. It answers structural questions only;
// game rules live in the engine package.
type Board struct {
	Width     int
	Height    int
	BombCount int

	cells map[Coordinate]*Cell
	order []Coordinate
}

// NewBoard builds a width x height hex grid. Row y holds the cells
// x = 2*col + y%2 for col in [0, width).
func NewBoard(width, height, bombCount int) *Board {
	b := &Board{
		Width:     width,
		Height:    height,
		BombCount: bombCount,
		cells:     make(map[Coordinate]*Cell, width*height),
		order:     make([]Coordinate, 0, width*height),
	}

	for y := 0; y < height; y++ {
		for col := 0; col < width; col++ {
			// Coordinates generated here are unique, so the error is impossible.
			_ = b.CreateCell(Coordinate{X: 2*col + y%2, Y: y})
		}
	}

	return b
}

// CreateCell inserts an unrevealed, bomb-free cell at coord.
func (b *Board) CreateCell(coord Coordinate) error {
	if b.cells == nil {
		b.cells = make(map[Coordinate]*Cell)
	}
	if _, ok := b.cells[coord]; ok {
		return fmt.Errorf("create %s: %w", coord, ErrDuplicateCell)
	}
	b.cells[coord] = &Cell{Coord: coord}
	b.order = append(b.order, coord)
	return nil
}

func (b *Board) Exists(coord Coordinate) bool {
	_, ok := b.cells[coord]
	return ok
}

// Get returns the cell at coord. Callers must only pass coordinates they got
// from the board; anything else is a bookkeeping bug and yields ErrNotFound.
func (b *Board) Get(coord Coordinate) (*Cell, error) {
	cell, ok := b.cells[coord]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", coord, ErrNotFound)
	}
	return cell, nil
}

// NeighboursOf returns the existing cells around coord: six for interior
// cells, fewer on edges and corners.
func (b *Board) NeighboursOf(coord Coordinate) []Coordinate {
	out := make([]Coordinate, 0, len(NeighbourOffsets))
	for _, n := range coord.Adjacent() {
		if b.Exists(n) {
			out = append(out, n)
		}
	}
	return out
}

// Coordinates lists every cell in construction order.
func (b *Board) Coordinates() []Coordinate {
	out := make([]Coordinate, len(b.order))
	copy(out, b.order)
	return out
}

func (b *Board) Size() int {
	return len(b.order)
}
