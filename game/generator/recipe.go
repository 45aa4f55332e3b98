package generator

import (
	"fmt"

	"github.com/wricardo/maze-robot/game/maze"
)

// Recipe describes a maze to generate. Length applies to lines (falling
// back to Width), Width and Height to the other shapes. A nil Seed makes
// random mazes non-deterministic.
type Recipe struct {
	Shape  Shape  `json:"shape" yaml:"shape"`
	Width  int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height int    `json:"height,omitempty" yaml:"height,omitempty"`
	Length int    `json:"length,omitempty" yaml:"length,omitempty"`
	Seed   *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Generate builds the layout described by r.
func Generate(r Recipe) (*maze.Layout, error) {
	switch r.Shape {
	case ShapeLine:
		length := r.Length
		if length == 0 {
			length = r.Width
		}
		return Line(length)
	case ShapeRandom:
		var opts []Option
		if r.Seed != nil {
			opts = append(opts, WithSeed(*r.Seed))
		}
		return Random(r.Width, r.Height, opts...)
	case ShapeSpiral:
		return Spiral(r.Width, r.Height)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, r.Shape)
	}
}
