package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wricardo/maze-robot/game/maze"
)

// Stats summarizes a maze layout.
type Stats struct {
	Rows      int
	Cols      int
	Start     maze.Coord
	Finish    maze.Coord
	Passages  int
	DeadEnds  int
	Reachable int
	Symmetric bool
	Perfect   bool
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Summarize a maze text file or YAML maze config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layout, err := loadLayout(args[0])
			if err != nil {
				return err
			}
			s := computeStats(layout)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Size:          %dx%d (%d cells)\n", s.Rows, s.Cols, s.Rows*s.Cols)
			fmt.Fprintf(out, "Start:         %s\n", s.Start)
			fmt.Fprintf(out, "Finish:        %s\n", s.Finish)
			fmt.Fprintf(out, "Passages:      %d\n", s.Passages)
			fmt.Fprintf(out, "Dead ends:     %d\n", s.DeadEnds)
			fmt.Fprintf(out, "Reachable:     %d\n", s.Reachable)
			fmt.Fprintf(out, "Symmetric:     %t\n", s.Symmetric)
			fmt.Fprintf(out, "Perfect:       %t\n", s.Perfect)
			return nil
		},
	}
}

func computeStats(l *maze.Layout) Stats {
	s := Stats{
		Rows:      l.Grid.Rows(),
		Cols:      l.Grid.Cols(),
		Start:     l.Start,
		Finish:    l.Finish,
		Passages:  l.Grid.MirroredPassages(),
		DeadEnds:  l.Grid.DeadEnds(),
		Reachable: l.Grid.Reachable(l.Start),
		Symmetric: l.Grid.CheckSymmetry() == nil,
	}
	// A perfect maze is a spanning tree of the cells.
	cells := s.Rows * s.Cols
	s.Perfect = s.Symmetric && s.Reachable == cells && s.Passages == cells-1
	return s
}
