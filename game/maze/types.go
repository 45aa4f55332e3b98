package maze

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Orientation is the robot's facing, cyclic North -> East -> South -> West.
type Orientation uint8

const (
	North Orientation = iota
	East
	South
	West
)

// Orientations lists the four headings in clockwise order.
var Orientations = [4]Orientation{North, East, South, West}

// Right returns the heading one quarter turn clockwise.
func (o Orientation) Right() Orientation {
	return (o + 1) % 4
}

// Left returns the heading one quarter turn counter-clockwise, which is
// three clockwise quarter turns.
func (o Orientation) Left() Orientation {
	return (o + 3) % 4
}

// Opposite returns the heading two quarter turns away.
func (o Orientation) Opposite() Orientation {
	return (o + 2) % 4
}

// Letter returns the compass letter used in the text format.
func (o Orientation) Letter() byte {
	return "NESW"[o%4]
}

// Delta returns the row/column step taken when moving in this heading.
func (o Orientation) Delta() (dRow, dCol int) {
	switch o % 4 {
	case North:
		return -1, 0
	case East:
		return 0, 1
	case South:
		return 1, 0
	default:
		return 0, -1
	}
}

func (o Orientation) String() string {
	switch o % 4 {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	default:
		return "west"
	}
}

// ParseOrientation accepts a compass letter or a full heading name.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north":
		return North, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	}
	return North, fmt.Errorf("unknown orientation %q", s)
}

// MarshalJSON encodes the heading by name.
func (o Orientation) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes a heading name or letter.
func (o *Orientation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseOrientation(s)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Coord is a (row, column) pair; rows grow downward, columns rightward.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Step returns the neighbouring coordinate in the given heading. The result
// may lie outside the grid.
func (c Coord) Step(o Orientation) Coord {
	dr, dc := o.Delta()
	return Coord{Row: c.Row + dr, Col: c.Col + dc}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Cell is a bit set of open passages plus a visited marker.
type Cell uint8

const (
	passageN Cell = 1 << iota
	passageE
	passageS
	passageW
	visitedBit

	passageMask = passageN | passageE | passageS | passageW
)

func passageBit(o Orientation) Cell {
	return Cell(1) << (o % 4)
}

// Open reports whether the cell has an open passage in the given heading.
func (c Cell) Open(o Orientation) bool {
	return c&passageBit(o) != 0
}

// With returns the cell with the passage in the given heading opened.
func (c Cell) With(o Orientation) Cell {
	return c | passageBit(o)
}

// Visited reports whether the breadcrumb marker is set.
func (c Cell) Visited() bool {
	return c&visitedBit != 0
}

// MarkVisited returns the cell with the breadcrumb marker set.
func (c Cell) MarkVisited() Cell {
	return c | visitedBit
}

// Passages returns the cell with the breadcrumb marker stripped.
func (c Cell) Passages() Cell {
	return c & passageMask
}

// Degree counts open passages.
func (c Cell) Degree() int {
	n := 0
	for _, o := range Orientations {
		if c.Open(o) {
			n++
		}
	}
	return n
}

// String returns the passage letters in NESW order, or "." for a closed cell.
func (c Cell) String() string {
	var b strings.Builder
	for _, o := range Orientations {
		if c.Open(o) {
			b.WriteByte(o.Letter())
		}
	}
	if b.Len() == 0 {
		return "."
	}
	return b.String()
}
