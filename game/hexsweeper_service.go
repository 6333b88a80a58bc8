package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"github.com/dimaq12/hexsweeper/engine"
	"github.com/dimaq12/hexsweeper/models"
	"github.com/dimaq12/hexsweeper/score"
	"github.com/dimaq12/hexsweeper/storage"
)

const (
	boardPage      = "board"
	namePage       = "name"
	scoresPage     = "scores"
	difficultyPage = "difficulty"
)

// GameService is the terminal host: it forwards key presses to the current
// session and renders whatever the session reports back.
type GameService struct {
	registry    models.Registry
	leaderboard *score.Leaderboard
	opts        []engine.Option
	log         logrus.FieldLogger

	session  *engine.Session
	renderer *Renderer
	app      *tview.Application
	pages    *tview.Pages
	message  string
	paused   bool
	done     chan struct{}
}

func NewGameService(registry models.Registry, lb *score.Leaderboard, log logrus.FieldLogger, opts ...engine.Option) *GameService {
	renderer := NewRenderer()
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(renderer.status, 3, 0, false).
		AddItem(renderer.boardTable, 0, 1, true).
		AddItem(tview.NewTextView().SetText("enter reveal  f flag  p pause  n new  s scores  q quit"), 1, 0, false)

	s := &GameService{
		registry:    registry,
		leaderboard: lb,
		opts:        append(opts, engine.WithLogger(log)),
		log:         log,
		renderer:    renderer,
		pages:       tview.NewPages().AddPage(boardPage, layout, true, true),
	}
	s.handleInput()
	return s
}

// NewGame throws away the current session and starts d.
func (s *GameService) NewGame(d models.Difficulty) error {
	session, err := engine.NewSession(d, s.opts...)
	if err != nil {
		return err
	}
	s.session = session
	s.message = ""
	s.paused = false
	s.renderer.DrawBoard(session)
	s.redrawStatus()
	s.pages.SwitchToPage(boardPage)
	s.focus(s.renderer.boardTable)
	return nil
}

// Run starts a game of d and blocks until the player quits.
func (s *GameService) Run(d models.Difficulty) error {
	s.app = tview.NewApplication()
	if err := s.NewGame(d); err != nil {
		return err
	}
	s.app.SetRoot(s.pages, true)
	s.done = make(chan struct{})
	go s.tick()
	defer close(s.done)
	return s.app.Run()
}

func (s *GameService) Stop() {
	if s.app != nil {
		s.app.Stop()
	}
}

func (s *GameService) tick() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.app.QueueUpdateDraw(s.redrawStatus)
		}
	}
}

func (s *GameService) redrawStatus() {
	if s.session != nil {
		s.renderer.DrawStatus(s.session, s.message)
	}
}

func (s *GameService) focus(p tview.Primitive) {
	if s.app != nil {
		s.app.SetFocus(p)
	}
}

// Reveal opens coord and renders the delta. A loss also uncovers the
// remaining bombs; a win may ask for a name.
func (s *GameService) Reveal(coord models.Coordinate) {
	if s.paused || !s.session.Board().Exists(coord) {
		return
	}
	res, err := s.session.Reveal(coord)
	if err != nil {
		if !errors.Is(err, engine.ErrGameOver) {
			s.log.WithError(err).Error("reveal failed")
		}
		return
	}
	s.renderer.RenderCells(s.session, res.Changed)

	switch res.State {
	case engine.Lost:
		s.renderer.RenderCells(s.session, s.session.RevealBombs())
		s.message = "press n for a new game"
	case engine.Won:
		s.onWin()
	}
	s.redrawStatus()
}

func (s *GameService) Flag(coord models.Coordinate) {
	if s.paused || !s.session.Board().Exists(coord) {
		return
	}
	if _, err := s.session.ToggleFlag(coord); err != nil {
		if !errors.Is(err, engine.ErrGameOver) {
			s.log.WithError(err).Error("flag failed")
		}
		return
	}
	s.renderer.RenderCell(s.session, coord)
	s.redrawStatus()
}

func (s *GameService) togglePause() {
	if s.session.State() != engine.Playing {
		return
	}
	s.paused = !s.paused
	if s.paused {
		s.session.Pause()
		s.message = "[yellow]paused[-]"
	} else {
		s.session.Resume()
		s.message = ""
	}
	s.redrawStatus()
}

func (s *GameService) onWin() {
	elapsed := s.session.Elapsed()
	best, err := s.leaderboard.Qualifies(context.Background(), s.session.Difficulty.Name, elapsed)
	if errors.Is(err, storage.ErrCorrupt) {
		s.log.WithError(err).Warn("score file unreadable, treating as empty")
		best, err = true, nil
	}
	if err != nil {
		s.log.WithError(err).Error("load scores")
	}
	if !best {
		s.message = fmt.Sprintf("won in %ds", elapsed)
		return
	}
	s.message = fmt.Sprintf("new best: %ds", elapsed)
	s.askName()
}

func (s *GameService) askName() {
	form := tview.NewForm()
	form.AddInputField("Name", "", 20, nil, nil)
	form.AddButton("Save", func() {
		name := form.GetFormItemByLabel("Name").(*tview.InputField).GetText()
		s.SaveScore(name)
	})
	form.AddButton("Skip", func() { s.closeDialog(namePage) })
	form.SetBorder(true).SetTitle(" New best time! ")
	s.openDialog(namePage, form, 40, 7)
}

// SaveScore records the won game under name and shows the leaderboard.
func (s *GameService) SaveScore(name string) {
	entry, err := s.session.Score(name)
	if err != nil {
		s.log.WithError(err).Error("build score")
		return
	}
	if err := s.leaderboard.Record(context.Background(), entry); err != nil {
		if errors.Is(err, score.ErrInvalidEntry) {
			// keep the form open until a name is typed
			return
		}
		s.log.WithError(err).Error("save score")
		s.message = fmt.Sprintf("[red]score not saved: %v[-]", err)
		s.closeDialog(namePage)
		s.redrawStatus()
		return
	}
	s.closeDialog(namePage)
	s.showScores(entry.Difficulty)
}

func (s *GameService) showScores(difficulty string) {
	top, err := s.leaderboard.Top(context.Background(), difficulty, score.DefaultTopN)
	if err != nil {
		s.log.WithError(err).Warn("load scores")
	}

	table := tview.NewTable().SetBorders(false)
	for col, h := range []string{"#", "Name", "Time", "Date"} {
		table.SetCell(0, col, tview.NewTableCell(h).SetTextColor(tcell.ColorYellow).SetSelectable(false))
	}
	for i, e := range top {
		table.SetCell(i+1, 0, tview.NewTableCell(fmt.Sprintf("%d", i+1)))
		table.SetCell(i+1, 1, tview.NewTableCell(e.PlayerName))
		table.SetCell(i+1, 2, tview.NewTableCell(fmt.Sprintf("%ds", e.TimeTaken)))
		table.SetCell(i+1, 3, tview.NewTableCell(e.DateAchieved.Local().Format("2006-01-02")))
	}
	if len(top) == 0 {
		table.SetCell(1, 1, tview.NewTableCell("no scores yet"))
	}
	table.SetBorder(true).SetTitle(fmt.Sprintf(" %s best times ", difficulty))
	table.SetDoneFunc(func(tcell.Key) { s.closeDialog(scoresPage) })
	s.openDialog(scoresPage, table, 50, score.DefaultTopN+4)
}

func (s *GameService) showDifficulties() {
	list := tview.NewList()
	for i, d := range s.registry.All() {
		d := d
		list.AddItem(d.Name, fmt.Sprintf("%dx%d, %d bombs", d.Width, d.Height, d.Bombs), rune('1'+i), func() {
			s.pages.RemovePage(difficultyPage)
			if err := s.NewGame(d); err != nil {
				s.log.WithError(err).Error("new game")
			}
		})
	}
	list.SetDoneFunc(func() { s.closeDialog(difficultyPage) })
	list.SetBorder(true).SetTitle(" New game ")
	s.openDialog(difficultyPage, list, 40, 3*len(s.registry.All())+2)
}

// openDialog shows p centred over the board with the clock stopped.
func (s *GameService) openDialog(name string, p tview.Primitive, width, height int) {
	s.session.Pause()
	s.pages.AddPage(name, modal(p, width, height), true, true)
	s.focus(p)
}

func (s *GameService) closeDialog(name string) {
	s.pages.RemovePage(name)
	if !s.paused {
		s.session.Resume()
	}
	s.focus(s.renderer.boardTable)
}

func modal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

func (s *GameService) handleInput() {
	s.renderer.boardTable.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		row, col := s.renderer.boardTable.GetSelection()
		coord := models.Coordinate{X: col, Y: row}

		switch event.Key() {
		case tcell.KeyEnter:
			s.Reveal(coord)
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case 'f', 'F':
				s.Flag(coord)
				return nil
			case 'p', 'P':
				s.togglePause()
				return nil
			case 'n', 'N':
				s.showDifficulties()
				return nil
			case 's', 'S':
				s.showScores(s.session.Difficulty.Name)
				return nil
			case 'q', 'Q':
				s.Stop()
				return nil
			}
		}
		return event
	})
}
