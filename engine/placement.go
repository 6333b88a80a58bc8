package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/dimaq12/hexsweeper/models"
)

// Placer picks which cells receive bombs. Implementations must return count
// distinct coordinates taken from cells.
type Placer interface {
	Place(cells []models.Coordinate, count int) []models.Coordinate
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// RejectionPlacer draws uniformly random cells and retries on repeats. It
// only terminates when count is below len(cells); the engine checks that.
type RejectionPlacer struct {
	Rand *rand.Rand
}

func (p RejectionPlacer) Place(cells []models.Coordinate, count int) []models.Coordinate {
	r := p.Rand
	if r == nil {
		r = newRand()
	}
	picked := make(map[int]bool, count)
	out := make([]models.Coordinate, 0, count)
	for len(out) < count {
		i := r.Intn(len(cells))
		if picked[i] {
			continue
		}
		picked[i] = true
		out = append(out, cells[i])
	}
	return out
}

// ShufflePlacer runs a partial Fisher-Yates shuffle and keeps the first
// count cells. Same distribution as RejectionPlacer, bounded work.
type ShufflePlacer struct {
	Rand *rand.Rand
}

func (p ShufflePlacer) Place(cells []models.Coordinate, count int) []models.Coordinate {
	r := p.Rand
	if r == nil {
		r = newRand()
	}
	coords := make([]models.Coordinate, len(cells))
	copy(coords, cells)
	// https://en.wikipedia.org/wiki/Fisher–Yates_shuffle
	for i := 0; i < count && i < len(coords); i++ {
		j := i + r.Intn(len(coords)-i)
		coords[i], coords[j] = coords[j], coords[i]
	}
	if count > len(coords) {
		count = len(coords)
	}
	return coords[:count]
}

// FixedPlacer always returns the same layout. Used to replay games and in
// tests.
type FixedPlacer []models.Coordinate

func (p FixedPlacer) Place(_ []models.Coordinate, _ int) []models.Coordinate {
	out := make([]models.Coordinate, len(p))
	copy(out, p)
	return out
}

// lockedSource serialises a seeded source so one placer can serve games
// created on several goroutines.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}

// PlacerByName maps a config value to a placer. Unknown names fall back to
// rejection sampling. A non-zero seed makes the sequence of layouts
// reproducible from process start; the placer is safe for concurrent use.
func PlacerByName(name string, seed int64) Placer {
	var r *rand.Rand
	if seed != 0 {
		r = rand.New(&lockedSource{src: rand.NewSource(seed).(rand.Source64)})
	}
	switch name {
	case "shuffle", "fisher-yates":
		return ShufflePlacer{Rand: r}
	default:
		return RejectionPlacer{Rand: r}
	}
}
