package engine

import (
	"fmt"
	"time"

	"github.com/wricardo/maze-robot/game/maze"
)

// Engine defines the interface for maze navigation.
type Engine interface {
	Load(layout *maze.Layout) error
	Loaded() bool
	Clear()
	Restart()

	TurnRight()
	TurnLeft()
	MoveForward() Tristate
	PathIsClear() Tristate
	WasVisited() Tristate
	IsFinished() bool

	Execute(cmd Command) (Tristate, error)
	Run(cmds []Command) ([]Tristate, error)

	Position() maze.Coord
	Orientation() maze.Orientation
	Start() maze.Coord
	Finish() maze.Coord
	Grid() maze.Grid
	History() []HistoryEntry
	CurrentRun() []HistoryEntry

	Snapshot() *State
	Restore(s *State) error
}

var _ Engine = (*MazeState)(nil)

// MazeState is the navigation state machine. Its state is the loaded grid,
// the robot's position and orientation, and the breadcrumbs stored in the
// grid's visited bits. A MazeState is not safe for concurrent use.
type MazeState struct {
	grid        maze.Grid
	start       maze.Coord
	finish      maze.Coord
	position    maze.Coord
	orientation maze.Orientation

	history    []HistoryEntry
	currentRun []HistoryEntry
	total      int

	now func() time.Time
}

// New returns an empty engine.
func New() *MazeState {
	return &MazeState{now: time.Now}
}

// NewWithLayout returns an engine with the layout already loaded.
func NewWithLayout(layout *maze.Layout) (*MazeState, error) {
	e := New()
	if err := e.Load(layout); err != nil {
		return nil, err
	}
	return e, nil
}

// Load installs a layout. On error the engine is left cleared.
func (e *MazeState) Load(layout *maze.Layout) error {
	if layout == nil {
		e.Clear()
		return fmt.Errorf("load maze: %w", maze.ErrEmptyGrid)
	}
	if err := layout.Validate(); err != nil {
		e.Clear()
		return fmt.Errorf("load maze: %w", err)
	}

	e.grid = layout.Grid.Clone()
	e.grid.ClearVisited()
	e.start = layout.Start
	e.finish = layout.Finish
	e.position = layout.Start
	e.orientation = maze.North
	e.currentRun = nil
	return nil
}

// Loaded reports whether a maze is installed.
func (e *MazeState) Loaded() bool {
	return e.grid != nil
}

// Clear drops the maze and resets navigation to its defaults.
func (e *MazeState) Clear() {
	e.grid = nil
	e.start = maze.Coord{}
	e.finish = maze.Coord{}
	e.position = maze.Coord{}
	e.orientation = maze.North
	e.history = nil
	e.currentRun = nil
	e.total = 0
}

// Restart clears every breadcrumb and puts the robot back on the start
// facing north. The wall layout is untouched.
func (e *MazeState) Restart() {
	if !e.Loaded() {
		return
	}
	e.grid.ClearVisited()
	e.position = e.start
	e.orientation = maze.North
	e.currentRun = nil
}

// TurnRight rotates one quarter turn clockwise.
func (e *MazeState) TurnRight() {
	if !e.Loaded() {
		return
	}
	e.orientation = e.orientation.Right()
}

// TurnLeft rotates one quarter turn counter-clockwise.
func (e *MazeState) TurnLeft() {
	if !e.Loaded() {
		return
	}
	e.orientation = e.orientation.Left()
}

// IsFinished reports whether the robot stands on the finish. An empty
// engine is never finished.
func (e *MazeState) IsFinished() bool {
	return e.Loaded() && e.position == e.finish
}

// Grid returns a copy of the loaded grid, including breadcrumbs.
func (e *MazeState) Grid() maze.Grid {
	if !e.Loaded() {
		return nil
	}
	return e.grid.Clone()
}

// Layout returns a copy of the loaded layout, or nil.
func (e *MazeState) Layout() *maze.Layout {
	if !e.Loaded() {
		return nil
	}
	return &maze.Layout{Grid: e.Grid(), Start: e.start, Finish: e.finish}
}

// Cell returns the cell at c. ok is false when c is outside the grid.
func (e *MazeState) Cell(c maze.Coord) (cell maze.Cell, ok bool) {
	if !e.Loaded() || !e.grid.Contains(c) {
		return 0, false
	}
	return e.grid.At(c), true
}

// VisitedAt reports the breadcrumb at c.
func (e *MazeState) VisitedAt(c maze.Coord) Tristate {
	cell, ok := e.Cell(c)
	if !ok {
		return Unknown
	}
	return FromBool(cell.Visited())
}

func (e *MazeState) Position() maze.Coord {
	return e.position
}

func (e *MazeState) Orientation() maze.Orientation {
	return e.orientation
}

func (e *MazeState) Start() maze.Coord {
	return e.start
}

func (e *MazeState) Finish() maze.Coord {
	return e.finish
}

// Execute runs one command and records it in the history. Turns and
// restarts answer Yes when a maze is loaded.
func (e *MazeState) Execute(cmd Command) (Tristate, error) {
	from := e.position
	var result Tristate

	switch cmd {
	case TurnRight:
		e.TurnRight()
		result = e.loadedAnswer()
	case TurnLeft:
		e.TurnLeft()
		result = e.loadedAnswer()
	case MoveForward:
		result = e.MoveForward()
	case Restart:
		e.Restart()
		result = e.loadedAnswer()
	default:
		return Unknown, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	if e.Loaded() {
		e.record(cmd, from, result)
	}
	return result, nil
}

// Run executes commands in order and stops early once the finish is
// reached or a command is rejected.
func (e *MazeState) Run(cmds []Command) ([]Tristate, error) {
	results := make([]Tristate, 0, len(cmds))
	for _, cmd := range cmds {
		if e.IsFinished() {
			break
		}
		result, err := e.Execute(cmd)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// History returns a copy of every command executed since the engine was
// cleared.
func (e *MazeState) History() []HistoryEntry {
	return append([]HistoryEntry{}, e.history...)
}

// CurrentRun returns a copy of the commands executed since the last
// restart or load.
func (e *MazeState) CurrentRun() []HistoryEntry {
	return append([]HistoryEntry{}, e.currentRun...)
}

// LastCommand returns a copy of the most recent history entry, or nil.
func (e *MazeState) LastCommand() *HistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	last := e.history[len(e.history)-1]
	return &last
}

func (e *MazeState) loadedAnswer() Tristate {
	if !e.Loaded() {
		return Unknown
	}
	return Yes
}

func (e *MazeState) record(cmd Command, from maze.Coord, result Tristate) {
	e.total++
	entry := HistoryEntry{
		Command:       cmd,
		FromPosition:  from,
		ToPosition:    e.position,
		Orientation:   e.orientation,
		Result:        result,
		CommandNumber: e.total,
		Timestamp:     e.now().Unix(),
	}
	e.history = append(e.history, entry)
	if cmd != Restart {
		e.currentRun = append(e.currentRun, entry)
	}
}
