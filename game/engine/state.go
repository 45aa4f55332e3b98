package engine

import (
	"fmt"

	"github.com/wricardo/maze-robot/game/maze"
)

// Snapshot captures the engine state for persistence and transports.
func (e *MazeState) Snapshot() *State {
	s := &State{
		Loaded:        e.Loaded(),
		Start:         e.start,
		Finish:        e.finish,
		Position:      e.position,
		Orientation:   e.orientation,
		Visited:       []maze.Coord{},
		Finished:      e.IsFinished(),
		PathIsClear:   e.PathIsClear(),
		WasVisited:    e.WasVisited(),
		History:       append([]HistoryEntry{}, e.history...),
		CurrentRun:    append([]HistoryEntry{}, e.currentRun...),
		TotalCommands: e.total,
	}
	if !e.Loaded() {
		return s
	}

	s.Rows = e.grid.Rows()
	s.Cols = e.grid.Cols()
	if text, err := maze.FormatString(e.Layout()); err == nil {
		s.Grid = text
	}
	for r, row := range e.grid {
		for c, cell := range row {
			if cell.Visited() {
				s.Visited = append(s.Visited, maze.Coord{Row: r, Col: c})
			}
		}
	}
	return s
}

// Restore replaces the engine state with a snapshot. On error the engine
// is left cleared.
func (e *MazeState) Restore(s *State) error {
	if s == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if !s.Loaded {
		e.Clear()
		e.history = append([]HistoryEntry(nil), s.History...)
		e.total = s.TotalCommands
		return nil
	}

	layout, err := maze.ParseString(s.Grid)
	if err != nil {
		e.Clear()
		return fmt.Errorf("restore grid: %w", err)
	}
	if err := e.Load(layout); err != nil {
		return err
	}
	if !e.grid.Contains(s.Position) {
		e.Clear()
		return fmt.Errorf("restore position: %w: %s", maze.ErrOutOfBounds, s.Position)
	}
	for _, c := range s.Visited {
		if !e.grid.Contains(c) {
			e.Clear()
			return fmt.Errorf("restore visited: %w: %s", maze.ErrOutOfBounds, c)
		}
		e.grid[c.Row][c.Col] = e.grid.At(c).MarkVisited()
	}

	e.position = s.Position
	e.orientation = s.Orientation % 4
	e.history = append([]HistoryEntry(nil), s.History...)
	e.currentRun = append([]HistoryEntry(nil), s.CurrentRun...)
	e.total = s.TotalCommands
	return nil
}
