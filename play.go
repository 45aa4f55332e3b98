package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/maze-robot/game/service"
)

const playHelp = "Commands: right, left, forward, restart (or r, l, f), state, grid, help, quit. Separate several with spaces or commas."

// runPlay creates a session from configName (the default config when
// empty) and executes commands read line by line from in.
func runPlay(ctx context.Context, svc service.GameService, configName string, in io.Reader, out io.Writer) error {
	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigName: configName})
	if err != nil {
		return err
	}
	s := info.State
	fmt.Fprintf(out, "Session %s: %s, %dx%d maze from %s to %s, facing %s.\n",
		info.ID, info.ConfigName, s.Rows, s.Cols, s.Start, s.Finish, s.Orientation)
	fmt.Fprintln(out, playHelp)

	finished := s.Finished
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		for _, token := range strings.FieldsFunc(scanner.Text(), isSeparator) {
			switch strings.ToLower(token) {
			case "quit", "exit", "q":
				return nil
			case "help", "?":
				fmt.Fprintln(out, playHelp)
			case "grid":
				grid, err := svc.GetGrid(ctx, info.ID)
				if err != nil {
					return err
				}
				fmt.Fprint(out, grid)
			case "state":
				state, err := svc.GetState(ctx, info.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "At %s facing %s, path clear: %s, visited: %s, commands: %d.\n",
					state.Position, state.Orientation, state.PathIsClear, state.WasVisited, state.TotalCommands)
			default:
				result, err := svc.Command(ctx, info.ID, token)
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				fmt.Fprintln(out, result.Message)
				if result.Finished && !finished {
					run, err := svc.GetHistory(ctx, info.ID, service.HistoryOptions{CurrentRun: true, Limit: 1})
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Finished after %d commands.\n", run.TotalCommands)
				}
				finished = result.Finished
			}
		}
	}
	return scanner.Err()
}

func isSeparator(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == ';'
}
