package maze

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyGrid        = errors.New("grid has no cells")
	ErrRaggedGrid       = errors.New("all rows must be the same length")
	ErrMissingStart     = errors.New("maze does not contain a starting point")
	ErrMissingFinish    = errors.New("maze does not contain an ending point")
	ErrDuplicateMarker  = errors.New("marker appears on more than one cell")
	ErrOutOfBounds      = errors.New("coordinate outside the grid")
	ErrAsymmetricWalls  = errors.New("passage is not mirrored by its neighbour")
	ErrInvalidCellToken = errors.New("invalid cell token")
)

// Grid is a rectangular wall-encoded maze, indexed [row][col].
type Grid [][]Cell

// NewGrid returns a rows x cols grid with every passage closed.
func NewGrid(rows, cols int) Grid {
	g := make(Grid, rows)
	for i := range g {
		g[i] = make([]Cell, cols)
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the number of columns, taken from the first row.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Validate checks that the grid is non-empty and rectangular.
func (g Grid) Validate() error {
	if len(g) == 0 || len(g[0]) == 0 {
		return ErrEmptyGrid
	}
	width := len(g[0])
	for i, row := range g[1:] {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrRaggedGrid, i+1, len(row), width)
		}
	}
	return nil
}

// Contains reports whether c lies within the grid.
func (g Grid) Contains(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Rows() && c.Col >= 0 && c.Col < g.Cols()
}

// At returns the cell at c. It panics when c is outside the grid.
func (g Grid) At(c Coord) Cell {
	return g[c.Row][c.Col]
}

// Clamp maps c onto the nearest in-bounds coordinate.
func (g Grid) Clamp(c Coord) Coord {
	return Coord{
		Row: clamp(c.Row, 0, g.Rows()-1),
		Col: clamp(c.Col, 0, g.Cols()-1),
	}
}

// Carve opens the passage from c toward heading o on both adjoining cells.
// It returns ErrOutOfBounds when either cell lies outside the grid.
func (g Grid) Carve(c Coord, o Orientation) error {
	next := c.Step(o)
	if !g.Contains(c) || !g.Contains(next) {
		return fmt.Errorf("%w: carve %s from %s", ErrOutOfBounds, o, c)
	}
	g[c.Row][c.Col] = g[c.Row][c.Col].With(o)
	g[next.Row][next.Col] = g[next.Row][next.Col].With(o.Opposite())
	return nil
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for i, row := range g {
		out[i] = append([]Cell(nil), row...)
	}
	return out
}

// ClearVisited strips every breadcrumb marker.
func (g Grid) ClearVisited() {
	for _, row := range g {
		for j := range row {
			row[j] = row[j].Passages()
		}
	}
}

// CheckSymmetry returns ErrAsymmetricWalls for the first passage whose
// neighbour does not open back toward it. Passages leading off the grid
// are also reported.
func (g Grid) CheckSymmetry() error {
	for r, row := range g {
		for c, cell := range row {
			here := Coord{Row: r, Col: c}
			for _, o := range Orientations {
				if !cell.Open(o) {
					continue
				}
				next := here.Step(o)
				if !g.Contains(next) {
					return fmt.Errorf("%w: %s opens %s off the grid", ErrAsymmetricWalls, here, o)
				}
				if !g.At(next).Open(o.Opposite()) {
					return fmt.Errorf("%w: %s opens %s but %s does not open %s",
						ErrAsymmetricWalls, here, o, next, o.Opposite())
				}
			}
		}
	}
	return nil
}

// PassageCount counts opened (cell, direction) pairs.
func (g Grid) PassageCount() int {
	n := 0
	for _, row := range g {
		for _, cell := range row {
			n += cell.Degree()
		}
	}
	return n
}

// MirroredPassages counts passages opened from both sides. One-way
// openings are not counted.
func (g Grid) MirroredPassages() int {
	n := 0
	for r, row := range g {
		for c, cell := range row {
			here := Coord{Row: r, Col: c}
			for _, o := range []Orientation{East, South} {
				next := here.Step(o)
				if cell.Open(o) && g.Contains(next) && g.At(next).Open(o.Opposite()) {
					n++
				}
			}
		}
	}
	return n
}

// DeadEnds counts cells with exactly one open passage.
func (g Grid) DeadEnds() int {
	n := 0
	for _, row := range g {
		for _, cell := range row {
			if cell.Degree() == 1 {
				n++
			}
		}
	}
	return n
}

// Reachable counts the cells reachable from c by following open passages
// that stay inside the grid.
func (g Grid) Reachable(from Coord) int {
	if !g.Contains(from) {
		return 0
	}
	seen := make([][]bool, g.Rows())
	for i := range seen {
		seen[i] = make([]bool, g.Cols())
	}
	seen[from.Row][from.Col] = true
	queue := []Coord{from}
	count := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		count++
		for _, o := range Orientations {
			if !g.At(cur).Open(o) {
				continue
			}
			next := cur.Step(o)
			if !g.Contains(next) || seen[next.Row][next.Col] {
				continue
			}
			seen[next.Row][next.Col] = true
			queue = append(queue, next)
		}
	}
	return count
}

// Layout bundles a grid with its fixed start and finish cells.
type Layout struct {
	Grid   Grid
	Start  Coord
	Finish Coord
}

// Validate checks the grid shape and that start and finish lie inside it.
func (l *Layout) Validate() error {
	if err := l.Grid.Validate(); err != nil {
		return err
	}
	if !l.Grid.Contains(l.Start) {
		return fmt.Errorf("%w: start %s", ErrOutOfBounds, l.Start)
	}
	if !l.Grid.Contains(l.Finish) {
		return fmt.Errorf("%w: finish %s", ErrOutOfBounds, l.Finish)
	}
	return nil
}

// Connected reports whether every cell is reachable from the start.
func (l *Layout) Connected() bool {
	return l.Grid.Reachable(l.Start) == l.Grid.Rows()*l.Grid.Cols()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
