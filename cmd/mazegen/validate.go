package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/maze-robot/game/engine"
	"github.com/wricardo/maze-robot/game/maze"
)

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check maze text files and YAML maze configs",
		Long: `Maze text files must parse, keep every passage mirrored by its neighbour and reach every cell from the start.
YAML files are checked as maze configs and the maze they describe is built and checked the same way.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				result := validateFile(path)
				fmt.Fprintf(out, "%s %s\n", strings.Repeat("=", 20), result.File)
				if result.Valid {
					fmt.Fprintln(out, "✅ VALID")
					continue
				}
				failed++
				fmt.Fprintln(out, "❌ INVALID")
				for _, e := range result.Errors {
					fmt.Fprintln(out, "  ❌ "+e)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files are invalid", failed, len(args))
			}
			fmt.Fprintln(out, "✅ All mazes are valid!")
			return nil
		},
	}
}

func validateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true}

	layout, err := loadLayout(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	result.Errors = checkLayout(layout)
	result.Valid = len(result.Errors) == 0
	return result
}

// loadLayout reads a maze text file, or builds the maze a YAML config
// describes.
func loadLayout(path string) (*maze.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return buildConfig(data)
	default:
		return maze.ParseString(string(data))
	}
}

func buildConfig(data []byte) (*maze.Layout, error) {
	var config engine.MazeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if err := engine.ValidateMazeConfig(&config); err != nil {
		return nil, err
	}
	return config.Build()
}

// checkLayout lists every structural problem with l.
func checkLayout(l *maze.Layout) []string {
	var problems []string
	if err := l.Validate(); err != nil {
		return []string{err.Error()}
	}
	if err := l.Grid.CheckSymmetry(); err != nil {
		problems = append(problems, err.Error())
	}
	if !l.Connected() {
		total := l.Grid.Rows() * l.Grid.Cols()
		problems = append(problems, fmt.Sprintf("%d of %d cells unreachable from start %s",
			total-l.Grid.Reachable(l.Start), total, l.Start))
	}
	return problems
}
