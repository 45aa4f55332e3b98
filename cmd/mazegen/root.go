package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wricardo/maze-robot/game/maze"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mazegen",
		Short:         "Generate and inspect maze text files",
		Long:          `mazegen writes line, random and spiral mazes in the text format used by maze-robot configs and sessions, and validates or summarizes existing maze files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP("out", "o", "", "Write the maze to this file instead of stdout")

	root.AddCommand(
		newLineCmd(),
		newRandomCmd(),
		newSpiralCmd(),
		newValidateCmd(),
		newStatsCmd(),
	)
	return root
}

// writeLayout prints l to --out, or to the command's output stream.
func writeLayout(cmd *cobra.Command, l *maze.Layout) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return maze.Format(cmd.OutOrStdout(), l)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := maze.Format(f, l); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, err = io.WriteString(cmd.ErrOrStderr(), "Wrote "+out+"\n")
	return err
}
