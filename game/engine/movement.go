package engine

import "github.com/wricardo/maze-robot/game/maze"

// target is the cell ahead of the robot, clamped onto the grid. Facing out
// of the grid yields the current cell.
func (e *MazeState) target() maze.Coord {
	return e.grid.Clamp(e.position.Step(e.orientation))
}

func (e *MazeState) canMove() bool {
	here := e.grid.At(e.position)
	return here.Open(e.orientation) && e.target() != e.position
}

// PathIsClear reports whether MoveForward would succeed.
func (e *MazeState) PathIsClear() Tristate {
	if !e.Loaded() {
		return Unknown
	}
	return FromBool(e.canMove())
}

// MoveForward steps one cell in the facing direction. The departed cell is
// marked visited. Walls and the grid edge block the move.
func (e *MazeState) MoveForward() Tristate {
	if !e.Loaded() {
		return Unknown
	}
	if !e.canMove() {
		return No
	}
	e.grid[e.position.Row][e.position.Col] = e.grid.At(e.position).MarkVisited()
	e.position = e.target()
	return Yes
}

// WasVisited reports whether the robot has already departed its current
// cell earlier in this run.
func (e *MazeState) WasVisited() Tristate {
	if !e.Loaded() {
		return Unknown
	}
	return FromBool(e.grid.At(e.position).Visited())
}

// PossibleMoves lists the headings with an open, in-grid passage from the
// current cell.
func (e *MazeState) PossibleMoves() []maze.Orientation {
	if !e.Loaded() {
		return nil
	}
	var out []maze.Orientation
	here := e.grid.At(e.position)
	for _, o := range maze.Orientations {
		next := e.position.Step(o)
		if here.Open(o) && e.grid.Contains(next) {
			out = append(out, o)
		}
	}
	return out
}
