package engine

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/dimaq12/hexsweeper/models"
)

func c(x, y int) models.Coordinate { return models.Coordinate{X: x, Y: y} }

// easyBombs sits on the right edge of a 5x5 board, leaving one connected
// empty region on the left.
var easyBombs = FixedPlacer{c(8, 0), c(8, 2), c(8, 4)}

func newReadyEngine(t *testing.T, w, h int, p Placer, bombs int) *Engine {
	t.Helper()
	e := New(models.NewBoard(w, h, bombs), WithPlacer(p))
	if err := e.AllocateBombs(bombs); err != nil {
		t.Fatalf("AllocateBombs failed: %v", err)
	}
	if err := e.ComputeAdjacency(); err != nil {
		t.Fatalf("ComputeAdjacency failed: %v", err)
	}
	return e
}

func sorted(cs []models.Coordinate) []models.Coordinate {
	out := append([]models.Coordinate(nil), cs...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func countBombs(b *models.Board) int {
	n := 0
	for _, co := range b.Coordinates() {
		if cell, _ := b.Get(co); cell.IsBomb {
			n++
		}
	}
	return n
}

func TestAllocateBombsCount(t *testing.T) {
	placers := map[string]func(seed int64) Placer{
		"rejection": func(seed int64) Placer { return RejectionPlacer{Rand: rand.New(rand.NewSource(seed))} },
		"shuffle":   func(seed int64) Placer { return ShufflePlacer{Rand: rand.New(rand.NewSource(seed))} },
	}
	for name, mk := range placers {
		t.Run(name, func(t *testing.T) {
			for seed := int64(1); seed <= 20; seed++ {
				for _, d := range models.DefaultRegistry().All() {
					b := models.NewBoard(d.Width, d.Height, d.Bombs)
					e := New(b, WithPlacer(mk(seed)))
					if err := e.AllocateBombs(d.Bombs); err != nil {
						t.Fatalf("%s seed %d: %v", d.Name, seed, err)
					}
					if got := countBombs(b); got != d.Bombs {
						t.Fatalf("%s seed %d: %d bombs, want %d", d.Name, seed, got, d.Bombs)
					}
				}
			}
		})
	}
}

func TestAllocateBombsNearSaturation(t *testing.T) {
	b := models.NewBoard(3, 3, 8)
	e := New(b, WithPlacer(ShufflePlacer{Rand: rand.New(rand.NewSource(7))}))
	if err := e.AllocateBombs(8); err != nil {
		t.Fatalf("AllocateBombs failed: %v", err)
	}
	if got := countBombs(b); got != 8 {
		t.Fatalf("got %d bombs", got)
	}
}

func TestAllocateBombsErrors(t *testing.T) {
	t.Run("twice", func(t *testing.T) {
		e := New(models.NewBoard(5, 5, 3))
		if err := e.AllocateBombs(3); err != nil {
			t.Fatal(err)
		}
		if err := e.AllocateBombs(3); !errors.Is(err, ErrAlreadyAllocated) {
			t.Fatalf("expected ErrAlreadyAllocated, got %v", err)
		}
	})
	t.Run("no safe cell", func(t *testing.T) {
		e := New(models.NewBoard(2, 2, 4))
		if err := e.AllocateBombs(4); !errors.Is(err, ErrTooManyBombs) {
			t.Fatalf("expected ErrTooManyBombs, got %v", err)
		}
	})
	t.Run("negative", func(t *testing.T) {
		e := New(models.NewBoard(2, 2, 0))
		if err := e.AllocateBombs(-1); !errors.Is(err, ErrTooManyBombs) {
			t.Fatalf("expected ErrTooManyBombs, got %v", err)
		}
	})
	t.Run("duplicate fixed bomb", func(t *testing.T) {
		e := New(models.NewBoard(5, 5, 2), WithPlacer(FixedPlacer{c(0, 0), c(0, 0)}))
		if err := e.AllocateBombs(2); !errors.Is(err, ErrInvalidPlacement) {
			t.Fatalf("expected ErrInvalidPlacement, got %v", err)
		}
	})
	t.Run("fixed bomb off board", func(t *testing.T) {
		e := New(models.NewBoard(5, 5, 1), WithPlacer(FixedPlacer{c(1, 0)}))
		if err := e.AllocateBombs(1); !errors.Is(err, ErrInvalidPlacement) {
			t.Fatalf("expected ErrInvalidPlacement, got %v", err)
		}
		if countBombs(e.Board()) != 0 {
			t.Fatal("failed allocation must not leave bombs behind")
		}
	})
}

func TestPlacerByNameSeeded(t *testing.T) {
	cells := models.NewBoard(15, 15, 30).Coordinates()
	for _, name := range []string{"rejection", "shuffle"} {
		t.Run(name, func(t *testing.T) {
			a := PlacerByName(name, 42).Place(cells, 30)
			b := PlacerByName(name, 42).Place(cells, 30)
			if len(a) != 30 || !equalCoords(a, b) {
				t.Fatalf("same seed gave different layouts:\n%v\n%v", a, b)
			}

			// one seeded placer shared by concurrently created games
			shared := PlacerByName(name, 42)
			var wg sync.WaitGroup
			counts := make([]int, 16)
			for i := range counts {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					e := New(models.NewBoard(15, 15, 30), WithPlacer(shared))
					if err := e.AllocateBombs(30); err == nil {
						counts[i] = countBombs(e.Board())
					}
				}(i)
			}
			wg.Wait()
			for i, n := range counts {
				if n != 30 {
					t.Errorf("game %d has %d bombs, want 30", i, n)
				}
			}
		})
	}
}

func equalCoords(a, b []models.Coordinate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestComputeAdjacencyMatchesBruteForce(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		e := newReadyEngine(t, 10, 10, RejectionPlacer{Rand: rand.New(rand.NewSource(seed))}, 15)
		b := e.Board()
		all := b.Coordinates()
		for _, co := range all {
			want := 0
			for _, other := range all {
				oc, _ := b.Get(other)
				if !oc.IsBomb {
					continue
				}
				for _, d := range models.NeighbourOffsets {
					if co.Add(d) == other {
						want++
					}
				}
			}
			cell, _ := b.Get(co)
			if cell.BombNeighbourCount != want {
				t.Fatalf("seed %d: %s count %d, want %d", seed, co, cell.BombNeighbourCount, want)
			}
		}
	}
}

func TestComputeAdjacencyOrder(t *testing.T) {
	e := New(models.NewBoard(5, 5, 3))
	if err := e.ComputeAdjacency(); !errors.Is(err, ErrNotAllocated) {
		t.Fatalf("expected ErrNotAllocated, got %v", err)
	}
	if _, err := e.Reveal(c(0, 0)); !errors.Is(err, ErrAdjacencyMissing) {
		t.Fatalf("expected ErrAdjacencyMissing, got %v", err)
	}
	if err := e.AllocateBombs(3); err != nil {
		t.Fatal(err)
	}
	if err := e.ComputeAdjacency(); err != nil {
		t.Fatal(err)
	}
	if err := e.ComputeAdjacency(); !errors.Is(err, ErrAdjacencyComputed) {
		t.Fatalf("expected ErrAdjacencyComputed, got %v", err)
	}
}

func TestRevealEasyCascade(t *testing.T) {
	e := newReadyEngine(t, 5, 5, easyBombs, 3)

	changed, err := e.Reveal(c(0, 0))
	if err != nil {
		t.Fatalf("Reveal failed: %v", err)
	}
	want := []models.Coordinate{
		c(0, 0), c(2, 0), c(4, 0), c(6, 0),
		c(1, 1), c(3, 1), c(5, 1), c(7, 1),
		c(0, 2), c(2, 2), c(4, 2), c(6, 2),
		c(1, 3), c(3, 3), c(5, 3), c(7, 3),
		c(0, 4), c(2, 4), c(4, 4), c(6, 4),
	}
	got := sorted(changed)
	if len(got) != len(want) {
		t.Fatalf("cascade revealed %d cells, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cascade = %v, want %v", got, want)
		}
	}
	if changed[0] != c(0, 0) {
		t.Errorf("first changed cell should be the target, got %s", changed[0])
	}

	for _, hidden := range []models.Coordinate{c(9, 1), c(9, 3), c(8, 0), c(8, 2), c(8, 4)} {
		cell, _ := e.Cell(hidden)
		if cell.IsRevealed {
			t.Errorf("%s revealed beyond the boundary", hidden)
		}
	}
	if e.CheckWin() {
		t.Fatal("win reported with safe cells hidden")
	}

	changed, _ = e.Reveal(c(9, 1))
	if len(changed) != 1 || changed[0] != c(9, 1) {
		t.Fatalf("numbered reveal = %v", changed)
	}
	if e.CheckWin() {
		t.Fatal("win reported with (9,3) hidden")
	}
	if _, err := e.Reveal(c(9, 3)); err != nil {
		t.Fatal(err)
	}
	if !e.CheckWin() {
		t.Fatal("expected win once every safe cell is open")
	}
}

func TestRevealIdempotent(t *testing.T) {
	e := newReadyEngine(t, 5, 5, easyBombs, 3)
	first, _ := e.Reveal(c(6, 0))
	if len(first) != 1 {
		t.Fatalf("numbered cell reveal = %v", first)
	}
	second, err := e.Reveal(c(6, 0))
	if err != nil || len(second) != 0 {
		t.Fatalf("second reveal = %v, %v; want empty", second, err)
	}
	e.Reveal(c(0, 0))
	again, _ := e.Reveal(c(2, 2))
	if len(again) != 0 {
		t.Fatalf("revealing inside an open region changed %v", again)
	}
}

func TestRevealBomb(t *testing.T) {
	e := newReadyEngine(t, 5, 5, easyBombs, 3)
	changed, err := e.Reveal(c(8, 2))
	if err != nil {
		t.Fatal(err)
	}
	if len(changed) != 1 || changed[0] != c(8, 2) {
		t.Fatalf("bomb reveal = %v", changed)
	}
	cell, _ := e.Cell(c(8, 2))
	if !cell.IsBomb || !cell.IsRevealed {
		t.Fatalf("bomb cell state %+v", cell)
	}
	if e.CheckWin() {
		t.Fatal("revealed bomb must not count toward a win")
	}

	rest := sorted(e.RevealBombs())
	if len(rest) != 2 || rest[0] != c(8, 0) || rest[1] != c(8, 4) {
		t.Fatalf("RevealBombs = %v", rest)
	}
}

func TestRevealNotFound(t *testing.T) {
	e := newReadyEngine(t, 5, 5, easyBombs, 3)
	if _, err := e.Reveal(c(1, 0)); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := e.ToggleFlag(c(-2, 0)); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := e.Cell(c(10, 0)); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// expectedCascade follows the recursive definition directly: the connected
// zero region around start plus its one-cell boundary ring.
func expectedCascade(b *models.Board, start models.Coordinate) map[models.Coordinate]bool {
	out := map[models.Coordinate]bool{}
	var visit func(models.Coordinate)
	visit = func(co models.Coordinate) {
		if out[co] {
			return
		}
		out[co] = true
		cell, _ := b.Get(co)
		if cell.BombNeighbourCount != 0 {
			return
		}
		for _, n := range b.NeighboursOf(co) {
			visit(n)
		}
	}
	visit(start)
	return out
}

func TestFloodFillContainment(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		e := newReadyEngine(t, 15, 15, ShufflePlacer{Rand: rand.New(rand.NewSource(seed))}, 30)
		b := e.Board()

		var start models.Coordinate
		found := false
		for _, co := range b.Coordinates() {
			cell, _ := b.Get(co)
			if !cell.IsBomb && cell.BombNeighbourCount == 0 {
				start, found = co, true
				break
			}
		}
		if !found {
			continue
		}

		want := expectedCascade(b, start)
		changed, err := e.Reveal(start)
		if err != nil {
			t.Fatal(err)
		}
		if len(changed) != len(want) {
			t.Fatalf("seed %d: revealed %d cells, want %d", seed, len(changed), len(want))
		}
		seen := map[models.Coordinate]bool{}
		for _, co := range changed {
			if !want[co] {
				t.Fatalf("seed %d: %s revealed outside the region", seed, co)
			}
			if seen[co] {
				t.Fatalf("seed %d: %s reported twice", seed, co)
			}
			seen[co] = true
		}
		for _, co := range b.Coordinates() {
			cell, _ := b.Get(co)
			if cell.IsRevealed != want[co] {
				t.Fatalf("seed %d: %s revealed=%v", seed, co, cell.IsRevealed)
			}
			if cell.IsRevealed && cell.IsBomb {
				t.Fatalf("seed %d: cascade opened bomb %s", seed, co)
			}
		}
	}
}

func TestCheckWinIgnoresBombs(t *testing.T) {
	e := newReadyEngine(t, 5, 5, easyBombs, 3)
	for _, co := range e.Board().Coordinates() {
		cell, _ := e.Cell(co)
		if !cell.IsBomb {
			if _, err := e.Reveal(co); err != nil {
				t.Fatal(err)
			}
		}
	}
	if !e.CheckWin() {
		t.Fatal("expected win with all safe cells open and bombs hidden")
	}
	e.RevealBombs()
	if !e.CheckWin() {
		t.Fatal("bomb reveal state must not affect CheckWin")
	}
}

func TestToggleFlag(t *testing.T) {
	e := newReadyEngine(t, 5, 5, easyBombs, 3)

	res, err := e.ToggleFlag(c(8, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Flagged || res.Delta != -1 {
		t.Fatalf("flag = %+v", res)
	}
	if e.Flags() != 1 {
		t.Fatalf("Flags() = %d", e.Flags())
	}

	res, _ = e.ToggleFlag(c(8, 0))
	if res.Flagged || res.Delta != 1 {
		t.Fatalf("unflag = %+v", res)
	}

	e.Reveal(c(6, 0))
	res, err = e.ToggleFlag(c(6, 0))
	if err != nil || res != (FlagResult{}) {
		t.Fatalf("flagging a revealed cell = %+v, %v; want no-op", res, err)
	}
	cell, _ := e.Cell(c(6, 0))
	if cell.IsFlagged {
		t.Fatal("revealed cell must not carry a flag")
	}
}

func TestCascadeClearsFlags(t *testing.T) {
	e := newReadyEngine(t, 5, 5, easyBombs, 3)
	e.ToggleFlag(c(4, 2))
	e.ToggleFlag(c(9, 1))

	changed, _ := e.Reveal(c(0, 0))
	if len(changed) != 20 {
		t.Fatalf("cascade revealed %d cells", len(changed))
	}
	cell, _ := e.Cell(c(4, 2))
	if !cell.IsRevealed || cell.IsFlagged {
		t.Fatalf("flagged cell in region: %+v", cell)
	}
	if e.Flags() != 1 {
		t.Fatalf("Flags() = %d, want 1", e.Flags())
	}
}
