package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// Difficulty is a named board configuration. CellSize is only a rendering
// hint for hosts.
type Difficulty struct {
	Name     string `json:"name"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Bombs    int    `json:"bombs"`
	CellSize int    `json:"cellSize"`
}

// Cells is the number of cells a board of this difficulty holds.
func (d Difficulty) Cells() int {
	return d.Width * d.Height
}

// ProfileError reports a difficulty that cannot produce a playable board.
type ProfileError struct {
	Name          string
	Width, Height int
	Bombs         int
}

func (e *ProfileError) Error() string {
	switch {
	case e.Width <= 0:
		return fmt.Sprintf("difficulty %q: width must be positive, got %d", e.Name, e.Width)
	case e.Height <= 0:
		return fmt.Sprintf("difficulty %q: height must be positive, got %d", e.Name, e.Height)
	case e.Bombs < 0:
		return fmt.Sprintf("difficulty %q: negative bomb count %d", e.Name, e.Bombs)
	default:
		return fmt.Sprintf("difficulty %q: %d bombs do not fit in %d cells", e.Name, e.Bombs, e.Width*e.Height)
	}
}

// Validate checks that the profile leaves at least one safe cell.
func (d Difficulty) Validate() error {
	if d.Width <= 0 || d.Height <= 0 || d.Bombs < 0 || d.Bombs >= d.Cells() {
		return &ProfileError{Name: d.Name, Width: d.Width, Height: d.Height, Bombs: d.Bombs}
	}
	return nil
}

// Registry is an immutable, ordered table of difficulties.
type Registry struct {
	profiles []Difficulty
}

// NewRegistry validates every profile up front so a bad table fails at
// startup instead of hanging bomb placement later.
func NewRegistry(profiles ...Difficulty) (Registry, error) {
	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return Registry{}, err
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return Registry{}, fmt.Errorf("difficulty %q registered twice", p.Name)
		}
		seen[key] = true
	}
	out := make([]Difficulty, len(profiles))
	copy(out, profiles)
	return Registry{profiles: out}, nil
}

// DefaultRegistry returns the built-in Easy, Medium and Hard profiles.
func DefaultRegistry() Registry {
	return Registry{profiles: []Difficulty{
		{Name: "Easy", Width: 5, Height: 5, Bombs: 3, CellSize: 60},
		{Name: "Medium", Width: 10, Height: 10, Bombs: 15, CellSize: 40},
		{Name: "Hard", Width: 15, Height: 15, Bombs: 30, CellSize: 30},
	}}
}

// Lookup finds a profile by name, ignoring case.
func (r Registry) Lookup(name string) (Difficulty, error) {
	name = strings.TrimSpace(name)
	for _, p := range r.profiles {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Difficulty{}, fmt.Errorf("%q: %w", name, ErrUnknownDifficulty)
}

// All returns the profiles in registration order.
func (r Registry) All() []Difficulty {
	out := make([]Difficulty, len(r.profiles))
	copy(out, r.profiles)
	return out
}

func (r Registry) Names() []string {
	out := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		out[i] = p.Name
	}
	return out
}
