// Package config loads maze definitions from a directory of YAML files.
//
// Each file describes one maze:
//
//	name: Classic
//	description: A 10x10 random maze with a fixed seed
//	shape: random   # line, random, spiral or layout
//	width: 10
//	height: 10
//	seed: 7
//
// A layout config embeds the text grid format instead:
//
//	name: Tiny
//	description: Hand-drawn two cell maze
//	shape: layout
//	layout: |
//	  Es Wf
//
// The file name without extension is the config ID used when creating a
// session. Parsed configs are cached. The default is "classic" when present,
// otherwise the first valid file, otherwise a built-in 5x5 spiral.
package config
