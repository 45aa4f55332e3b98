package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/wricardo/maze-robot/game/maze"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownShape    = errors.New("unknown maze shape")
)

// Shape names a generation algorithm.
type Shape string

const (
	ShapeLine   Shape = "line"
	ShapeRandom Shape = "random"
	ShapeSpiral Shape = "spiral"
)

// Shapes lists every supported shape.
var Shapes = []Shape{ShapeLine, ShapeRandom, ShapeSpiral}

// ParseShape normalises a shape name.
func ParseShape(s string) (Shape, error) {
	shape := Shape(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Shapes {
		if shape == known {
			return shape, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

// Option configures Random.
type Option func(*options)

type options struct {
	rng *rand.Rand
}

// WithSeed makes Random deterministic.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand supplies the random source directly.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// Line returns a single-row corridor of the given length, open end to end.
func Line(length int) (*maze.Layout, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: length must be >= 1, got %d", ErrInvalidArgument, length)
	}

	grid := maze.NewGrid(1, length)
	for col := 0; col < length-1; col++ {
		if err := grid.Carve(maze.Coord{Row: 0, Col: col}, maze.East); err != nil {
			return nil, err
		}
	}

	return &maze.Layout{
		Grid:   grid,
		Start:  maze.Coord{Row: 0, Col: 0},
		Finish: maze.Coord{Row: 0, Col: length - 1},
	}, nil
}

// Random carves a perfect maze with a randomised depth-first walk. The
// start cell is a random row of the first column and the finish a random
// row of the last column; both are picked after carving.
func Random(width, height int, opts ...Option) (*maze.Layout, error) {
	if err := checkDims(width, height); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rng := o.rng

	grid := maze.NewGrid(height, width)
	visited := make([][]bool, height)
	for i := range visited {
		visited[i] = make([]bool, width)
	}

	root := maze.Coord{Row: rng.Intn(height), Col: rng.Intn(width)}
	visited[root.Row][root.Col] = true
	stack := []maze.Coord{root}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		candidates := unvisitedNeighbours(grid, cur, visited)
		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		dir := candidates[rng.Intn(len(candidates))]
		if err := grid.Carve(cur, dir); err != nil {
			return nil, err
		}
		next := cur.Step(dir)
		visited[next.Row][next.Col] = true
		stack = append(stack, next)
	}

	start := maze.Coord{Row: rng.Intn(height), Col: 0}
	finish := maze.Coord{Row: rng.Intn(height), Col: width - 1}

	return &maze.Layout{Grid: grid, Start: start, Finish: finish}, nil
}

// neighbourOrder is above, below, left, right.
var neighbourOrder = [4]maze.Orientation{maze.North, maze.South, maze.West, maze.East}

// unvisitedNeighbours returns the headings toward unvisited neighbours.
// Neighbours are clamped to the grid; a clamp that lands back on cur is
// dropped rather than treated as a move.
func unvisitedNeighbours(grid maze.Grid, cur maze.Coord, visited [][]bool) []maze.Orientation {
	out := make([]maze.Orientation, 0, 4)
	for _, dir := range neighbourOrder {
		next := grid.Clamp(cur.Step(dir))
		if next == cur || visited[next.Row][next.Col] {
			continue
		}
		out = append(out, dir)
	}
	return out
}

// Spiral carves a single corridor that winds clockwise from (0,0) toward
// the centre, ring by ring. The finish is the innermost cell reached.
func Spiral(width, height int) (*maze.Layout, error) {
	if err := checkDims(width, height); err != nil {
		return nil, err
	}

	path := spiralOrder(width, height)
	grid := maze.NewGrid(height, width)
	for i := 1; i < len(path); i++ {
		dir, err := headingBetween(path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		if err := grid.Carve(path[i-1], dir); err != nil {
			return nil, err
		}
	}

	return &maze.Layout{
		Grid:   grid,
		Start:  path[0],
		Finish: path[len(path)-1],
	}, nil
}

// spiralOrder lists every cell once in clockwise ring order.
func spiralOrder(width, height int) []maze.Coord {
	path := make([]maze.Coord, 0, width*height)
	layers := min((height+1)/2, (width+1)/2)

	for layer := 0; layer < layers; layer++ {
		top, bottom := layer, height-1-layer
		left, right := layer, width-1-layer

		for col := left; col <= right; col++ {
			path = append(path, maze.Coord{Row: top, Col: col})
		}
		for row := top + 1; row <= bottom; row++ {
			path = append(path, maze.Coord{Row: row, Col: right})
		}
		if bottom != top {
			for col := right - 1; col >= left; col-- {
				path = append(path, maze.Coord{Row: bottom, Col: col})
			}
		}
		if left != right {
			for row := bottom - 1; row > top; row-- {
				path = append(path, maze.Coord{Row: row, Col: left})
			}
		}
	}

	return path
}

func headingBetween(from, to maze.Coord) (maze.Orientation, error) {
	for _, o := range maze.Orientations {
		if from.Step(o) == to {
			return o, nil
		}
	}
	return maze.North, fmt.Errorf("cells %s and %s are not neighbours", from, to)
}

func checkDims(width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: width and height must be >= 1, got %dx%d", ErrInvalidArgument, width, height)
	}
	return nil
}
