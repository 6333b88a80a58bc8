package server

import (
	"github.com/google/uuid"

	"github.com/dimaq12/hexsweeper/engine"
	"github.com/dimaq12/hexsweeper/models"
)

// cellView is what a client may know about a cell: bombs and counts stay
// hidden until the cell is revealed.
type cellView struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	State string `json:"state"`
	Count int    `json:"count,omitempty"`
	Bomb  bool   `json:"bomb,omitempty"`
}

type gameView struct {
	ID             uuid.UUID    `json:"id"`
	Difficulty     string       `json:"difficulty"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	State          engine.State `json:"state"`
	BombsRemaining int          `json:"bombsRemaining"`
	Elapsed        int          `json:"elapsed"`
	Cells          []cellView   `json:"cells"`
}

func newCellView(cell models.Cell) cellView {
	v := cellView{X: cell.Coord.X, Y: cell.Coord.Y, State: "hidden"}
	switch {
	case cell.IsRevealed:
		v.State = "revealed"
		v.Bomb = cell.IsBomb
		v.Count = cell.BombNeighbourCount
	case cell.IsFlagged:
		v.State = "flagged"
	}
	return v
}

func cellViews(s *engine.Session, coords []models.Coordinate) []cellView {
	out := make([]cellView, 0, len(coords))
	for _, co := range coords {
		if cell, err := s.Cell(co); err == nil {
			out = append(out, newCellView(cell))
		}
	}
	return out
}

func newGameView(s *engine.Session) gameView {
	return gameView{
		ID:             s.ID,
		Difficulty:     s.Difficulty.Name,
		Width:          s.Difficulty.Width,
		Height:         s.Difficulty.Height,
		State:          s.State(),
		BombsRemaining: s.BombsRemaining(),
		Elapsed:        s.Elapsed(),
		Cells:          cellViews(s, s.Board().Coordinates()),
	}
}
