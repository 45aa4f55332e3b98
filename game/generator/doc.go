// Package generator builds wall-encoded maze layouts.
//
// Three shapes are supported:
//   - Line: a single-row corridor from (0,0) to (0,length-1)
//   - Random: a perfect maze carved by a randomised depth-first walk
//   - Spiral: one corridor winding clockwise from (0,0) to the centre
//
// Every layout is fully connected and keeps passages symmetric. Random
// mazes are reproducible when a seed is supplied:
//
//	layout, err := generator.Random(20, 10, generator.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
package generator
