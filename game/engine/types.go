package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/maze-robot/game/maze"
)

var ErrUnknownCommand = errors.New("unknown command")

// Tristate answers a navigation question. Unknown means no maze is loaded,
// which is different from a plain No.
type Tristate int8

const (
	Unknown Tristate = iota
	No
	Yes
)

// FromBool converts a known answer.
func FromBool(b bool) Tristate {
	if b {
		return Yes
	}
	return No
}

// Known reports whether the answer is Yes or No.
func (t Tristate) Known() bool {
	return t == Yes || t == No
}

// True reports whether the answer is Yes.
func (t Tristate) True() bool {
	return t == Yes
}

func (t Tristate) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes Unknown as null and the others as booleans.
func (t Tristate) MarshalJSON() ([]byte, error) {
	switch t {
	case Yes:
		return []byte("true"), nil
	case No:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, true or false.
func (t *Tristate) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	if b == nil {
		*t = Unknown
		return nil
	}
	*t = FromBool(*b)
	return nil
}

// Command is an instruction from the driving agent.
type Command string

const (
	TurnRight   Command = "right"
	TurnLeft    Command = "left"
	MoveForward Command = "forward"
	Restart     Command = "restart"
)

// Commands lists the canonical commands.
var Commands = []Command{TurnRight, TurnLeft, MoveForward, Restart}

// ParseCommand accepts the canonical names and a few aliases.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right", "r", "turn_right", "turnright":
		return TurnRight, nil
	case "left", "l", "turn_left", "turnleft":
		return TurnLeft, nil
	case "forward", "f", "move", "move_forward", "moveforward":
		return MoveForward, nil
	case "restart":
		return Restart, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// HistoryEntry records one executed command.
type HistoryEntry struct {
	Command       Command          `json:"command"`
	FromPosition  maze.Coord       `json:"from_position"`
	ToPosition    maze.Coord       `json:"to_position"`
	Orientation   maze.Orientation `json:"orientation"`
	Result        Tristate         `json:"result"`
	CommandNumber int              `json:"command_number"`
	Timestamp     int64            `json:"timestamp"`
}

// State is a serialisable snapshot of the engine.
type State struct {
	Loaded      bool             `json:"loaded"`
	Grid        string           `json:"grid,omitempty"` // text format, no visited markers
	Rows        int              `json:"rows"`
	Cols        int              `json:"cols"`
	Start       maze.Coord       `json:"start"`
	Finish      maze.Coord       `json:"finish"`
	Position    maze.Coord       `json:"position"`
	Orientation maze.Orientation `json:"orientation"`
	Visited     []maze.Coord     `json:"visited"`
	Finished    bool             `json:"finished"`
	PathIsClear Tristate         `json:"path_is_clear"`
	WasVisited  Tristate         `json:"was_visited"`

	// History is cumulative; CurrentRun is cleared on restart.
	History       []HistoryEntry `json:"history,omitempty"`
	CurrentRun    []HistoryEntry `json:"current_run,omitempty"`
	TotalCommands int            `json:"total_commands"`
}
