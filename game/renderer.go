package game

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/dimaq12/hexsweeper/engine"
	"github.com/dimaq12/hexsweeper/models"
)

var countColors = [7]tcell.Color{
	tcell.ColorGray,
	tcell.ColorBlue,
	tcell.ColorGreen,
	tcell.ColorRed,
	tcell.ColorNavy,
	tcell.ColorMaroon,
	tcell.ColorTeal,
}

// Renderer draws a session into a table. Double-width coordinates map
// straight onto table columns, so odd rows come out shifted by half a cell
// and the grid reads as hexagons.
type Renderer struct {
	boardTable *tview.Table
	status     *tview.TextView
}

func NewRenderer() *Renderer {
	status := tview.NewTextView().SetDynamicColors(true)
	status.SetBorder(true)
	return &Renderer{
		boardTable: tview.NewTable(),
		status:     status,
	}
}

func (r *Renderer) DrawBoard(s *engine.Session) {
	r.boardTable.Clear()
	board := s.Board()
	for y := 0; y < board.Height; y++ {
		for x := 0; x < 2*board.Width; x++ {
			coord := models.Coordinate{X: x, Y: y}
			if board.Exists(coord) {
				r.RenderCell(s, coord)
				continue
			}
			r.boardTable.SetCell(y, x, tview.NewTableCell(" ").SetSelectable(false))
		}
	}

	r.boardTable.SetSelectable(true, true)
	r.boardTable.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", s.Difficulty.Name))
	r.boardTable.Select(0, 0)
}

func (r *Renderer) RenderCell(s *engine.Session, coord models.Coordinate) {
	cell, err := s.Cell(coord)
	if err != nil {
		return
	}
	text, color := cellText(cell)
	r.boardTable.SetCell(coord.Y, coord.X, tview.NewTableCell(text).
		SetTextColor(color).
		SetAlign(tview.AlignCenter))
}

// RenderCells redraws only the cells a move changed.
func (r *Renderer) RenderCells(s *engine.Session, coords []models.Coordinate) {
	for _, c := range coords {
		r.RenderCell(s, c)
	}
}

func cellText(cell models.Cell) (string, tcell.Color) {
	switch {
	case cell.IsRevealed && cell.IsBomb:
		return "*", tcell.ColorRed
	case cell.IsRevealed && cell.BombNeighbourCount == 0:
		return " ", tcell.ColorDefault
	case cell.IsRevealed:
		return fmt.Sprintf("%d", cell.BombNeighbourCount), countColors[cell.BombNeighbourCount]
	case cell.IsFlagged:
		return "F", tcell.ColorYellow
	default:
		return ".", tcell.ColorWhite
	}
}

// DrawStatus writes the bomb counter, timer and an optional message.
func (r *Renderer) DrawStatus(s *engine.Session, msg string) {
	r.status.SetText(statusLine(s, msg))
}

func statusLine(s *engine.Session, msg string) string {
	line := fmt.Sprintf("Bombs: [yellow]%d[-]  Time: [green]%ds[-]", s.BombsRemaining(), s.Elapsed())
	switch s.State() {
	case engine.Won:
		line += "  [green]You won![-]"
	case engine.Lost:
		line += "  [red]Boom.[-]"
	}
	if msg != "" {
		line += "  " + msg
	}
	return line
}
