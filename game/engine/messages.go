package engine

import "fmt"

// Message describes the outcome of a command for human and agent clients.
func Message(cmd Command, result Tristate, s *State) string {
	if !s.Loaded {
		return "No maze is loaded."
	}
	if s.Finished && (cmd == MoveForward || cmd == "") {
		return fmt.Sprintf("Finish reached at %s.", s.Position)
	}

	switch cmd {
	case TurnRight, TurnLeft:
		return fmt.Sprintf("Now facing %s at %s.", s.Orientation, s.Position)
	case Restart:
		return fmt.Sprintf("Back at the start %s facing %s.", s.Position, s.Orientation)
	case MoveForward:
		if result == Yes {
			if s.WasVisited == Yes {
				return fmt.Sprintf("Moved %s to %s. This cell was visited before.", s.Orientation, s.Position)
			}
			return fmt.Sprintf("Moved %s to %s.", s.Orientation, s.Position)
		}
		return fmt.Sprintf("Blocked facing %s at %s.", s.Orientation, s.Position)
	}
	return fmt.Sprintf("At %s facing %s.", s.Position, s.Orientation)
}
