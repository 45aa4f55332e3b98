package engine

import (
	"fmt"
	"strings"

	"github.com/wricardo/maze-robot/game/generator"
	"github.com/wricardo/maze-robot/game/maze"
)

// ShapeLayout marks a config whose maze is given verbatim in text format.
const ShapeLayout = "layout"

const (
	MinDimension = 1
	MaxDimension = 100
)

// MazeConfig describes how a session's maze is built.
type MazeConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Shape       string `json:"shape" yaml:"shape"`
	Width       int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height      int    `json:"height,omitempty" yaml:"height,omitempty"`
	Length      int    `json:"length,omitempty" yaml:"length,omitempty"`
	Seed        *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Layout      string `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// ValidateMazeConfig checks the fields required by the config's shape.
// Hand-written layouts must also be symmetric and fully connected.
func ValidateMazeConfig(config *MazeConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	shape := strings.ToLower(strings.TrimSpace(config.Shape))
	switch shape {
	case string(generator.ShapeLine):
		length := config.Length
		if length == 0 {
			length = config.Width
		}
		if err := checkRange("length", length); err != nil {
			return err
		}
	case string(generator.ShapeRandom), string(generator.ShapeSpiral):
		if err := checkRange("width", config.Width); err != nil {
			return err
		}
		if err := checkRange("height", config.Height); err != nil {
			return err
		}
	case ShapeLayout:
		layout, err := maze.ParseString(config.Layout)
		if err != nil {
			return fmt.Errorf("config validation: layout: %w", err)
		}
		if err := layout.Grid.CheckSymmetry(); err != nil {
			return fmt.Errorf("config validation: layout: %w", err)
		}
		if !layout.Connected() {
			return fmt.Errorf("config validation: layout: finish or other cells unreachable from start")
		}
	case "":
		return fmt.Errorf("config validation: shape is required")
	default:
		return fmt.Errorf("config validation: %w: %q", generator.ErrUnknownShape, config.Shape)
	}
	return nil
}

func checkRange(field string, v int) error {
	if v < MinDimension || v > MaxDimension {
		return fmt.Errorf("config validation: %s must be between %d and %d, got %d", field, MinDimension, MaxDimension, v)
	}
	return nil
}

// Recipe converts a generated shape config into a generator recipe.
func (c *MazeConfig) Recipe() generator.Recipe {
	return generator.Recipe{
		Shape:  generator.Shape(strings.ToLower(strings.TrimSpace(c.Shape))),
		Width:  c.Width,
		Height: c.Height,
		Length: c.Length,
		Seed:   c.Seed,
	}
}

// Build produces a fresh layout. Random configs without a seed produce a
// different maze on every call.
func (c *MazeConfig) Build() (*maze.Layout, error) {
	if strings.EqualFold(strings.TrimSpace(c.Shape), ShapeLayout) {
		return maze.ParseString(c.Layout)
	}
	return generator.Generate(c.Recipe())
}
