// Package engine provides the maze navigation state machine.
//
// A MazeState owns a copy of a maze layout, the robot's position and
// orientation, and the breadcrumbs left in each departed cell. The robot
// turns in quarter turns and moves one cell at a time through open
// passages; the grid edge acts as a wall.
//
// Questions that make no sense without a maze, such as PathIsClear on an
// empty state, answer Unknown instead of No.
//
// Usage:
//
//	layout, err := generator.Line(5)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state, err := engine.NewWithLayout(layout)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state.TurnRight()
//	for state.PathIsClear() == engine.Yes {
//		state.MoveForward()
//	}
//	fmt.Println(state.IsFinished()) // true
//
// Execute and Run add a command history on top of the primitive moves, and
// Snapshot/Restore turn the state into a JSON-friendly value for sessions.
package engine
