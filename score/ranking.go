// Package score ranks finished games and keeps per-difficulty leaderboards.
package score

import (
	"sort"
	"strings"

	"github.com/dimaq12/hexsweeper/models"
)

// DefaultTopN is how many entries a leaderboard shows.
const DefaultTopN = 3

func sameDifficulty(e models.ScoreEntry, difficulty string) bool {
	return strings.EqualFold(e.Difficulty, difficulty)
}

// IsNewBest reports whether elapsed beats every stored time for difficulty.
// An empty history always yields a new best; a tie does not.
func IsNewBest(existing []models.ScoreEntry, difficulty string, elapsed int) bool {
	best := -1
	for _, e := range existing {
		if !sameDifficulty(e, difficulty) {
			continue
		}
		if best < 0 || e.TimeTaken < best {
			best = e.TimeTaken
		}
	}
	return best < 0 || elapsed < best
}

// TopN returns the n fastest entries for difficulty, fastest first. Equal
// times keep their original order.
func TopN(scores []models.ScoreEntry, difficulty string, n int) []models.ScoreEntry {
	out := make([]models.ScoreEntry, 0, len(scores))
	for _, e := range scores {
		if sameDifficulty(e, difficulty) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeTaken < out[j].TimeTaken
	})
	if n < 0 {
		n = 0
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
