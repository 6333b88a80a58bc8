package models

import "fmt"

// Coordinate addresses a hex cell in double-width layout: even rows use
// even x values, odd rows use odd x values.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NeighbourOffsets are the six hex directions. They are the same for every
// row because of the double-width layout.
var NeighbourOffsets = [6]Coordinate{
	{X: -2, Y: 0},
	{X: 2, Y: 0},
	{X: -1, Y: -1},
	{X: 1, Y: -1},
	{X: -1, Y: 1},
	{X: 1, Y: 1},
}

// Add returns c shifted by d.
func (c Coordinate) Add(d Coordinate) Coordinate {
	return Coordinate{X: c.X + d.X, Y: c.Y + d.Y}
}

// Adjacent returns all six surrounding coordinates, whether or not a cell
// exists there.
func (c Coordinate) Adjacent() [6]Coordinate {
	var out [6]Coordinate
	for i, d := range NeighbourOffsets {
		out[i] = c.Add(d)
	}
	return out
}

// Aligned reports whether x and y share parity, which every real cell does.
func (c Coordinate) Aligned() bool {
	return (c.X-c.Y)%2 == 0
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}
