// Package maze defines the wall-encoded grid model shared by the generator
// and the navigation engine.
//
// A Cell is a small bit set: one bit per compass passage (N, E, S, W) and a
// visited bit used for breadcrumbs. A set passage bit means the side is open;
// a missing bit is a wall. Generators keep passages symmetric, so a cell's
// own bits are enough to decide whether the robot may leave it.
//
// Text Format:
//
// Grids are exchanged as whitespace-separated tokens, one row per line:
//
//	Es EW SW
//	.  .  NSf
//
// Each token lists open passages in any order, plus optional lowercase
// markers: s (start), f (finish) and v (visited). "." is a closed cell.
// Format never writes visited markers.
package maze
