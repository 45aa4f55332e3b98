package main

import (
	"github.com/spf13/cobra"

	"github.com/wricardo/maze-robot/game/generator"
)

func newLineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "line",
		Short: "Generate a single-row corridor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			length, _ := cmd.Flags().GetInt("length")
			layout, err := generator.Line(length)
			if err != nil {
				return err
			}
			return writeLayout(cmd, layout)
		},
	}
	cmd.Flags().IntP("length", "n", 5, "Number of cells")
	return cmd
}

func newRandomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Generate a perfect maze by randomized depth-first carving",
		Long:  `Every cell of a random maze is reachable from every other by exactly one path. The same --seed always produces the same maze.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			width, _ := cmd.Flags().GetInt("width")
			height, _ := cmd.Flags().GetInt("height")

			var opts []generator.Option
			if cmd.Flags().Changed("seed") {
				seed, _ := cmd.Flags().GetInt64("seed")
				opts = append(opts, generator.WithSeed(seed))
			}

			layout, err := generator.Random(width, height, opts...)
			if err != nil {
				return err
			}
			return writeLayout(cmd, layout)
		},
	}
	cmd.Flags().IntP("width", "W", 10, "Number of columns")
	cmd.Flags().IntP("height", "H", 10, "Number of rows")
	cmd.Flags().Int64("seed", 0, "Seed for a reproducible maze")
	return cmd
}

func newSpiralCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spiral",
		Short: "Generate a clockwise spiral from the top-left corner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			width, _ := cmd.Flags().GetInt("width")
			height, _ := cmd.Flags().GetInt("height")
			layout, err := generator.Spiral(width, height)
			if err != nil {
				return err
			}
			return writeLayout(cmd, layout)
		},
	}
	cmd.Flags().IntP("width", "W", 5, "Number of columns")
	cmd.Flags().IntP("height", "H", 5, "Number of rows")
	return cmd
}
