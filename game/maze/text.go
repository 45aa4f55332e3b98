package maze

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Markers used by the text format alongside the NESW passage letters.
const (
	StartMarker   = 's'
	FinishMarker  = 'f'
	VisitedMarker = 'v'
	EmptyToken    = "."
)

// Parse reads a whitespace-separated text grid. Each token lists the open
// passages of one cell and may carry start, finish and visited markers.
func Parse(r io.Reader) (*Layout, error) {
	var (
		grid                Grid
		start, finish       Coord
		hasStart, hasFinish bool
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rowNo := len(grid)
		tokens := strings.Fields(line)
		row := make([]Cell, 0, len(tokens))
		for colNo, tok := range tokens {
			here := Coord{Row: rowNo, Col: colNo}
			cell, isStart, isFinish, err := parseToken(tok)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", rowNo, colNo, err)
			}
			if isStart {
				if hasStart {
					return nil, fmt.Errorf("%w: start at %s and %s", ErrDuplicateMarker, start, here)
				}
				start, hasStart = here, true
			}
			if isFinish {
				if hasFinish {
					return nil, fmt.Errorf("%w: finish at %s and %s", ErrDuplicateMarker, finish, here)
				}
				finish, hasFinish = here, true
			}
			row = append(row, cell)
		}
		grid = append(grid, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}

	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if !hasStart {
		return nil, ErrMissingStart
	}
	if !hasFinish {
		return nil, ErrMissingFinish
	}

	return &Layout{Grid: grid, Start: start, Finish: finish}, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s string) (*Layout, error) {
	return Parse(strings.NewReader(s))
}

func parseToken(tok string) (cell Cell, isStart, isFinish bool, err error) {
	if tok == EmptyToken {
		return 0, false, false, nil
	}
	for i := 0; i < len(tok); i++ {
		switch ch := tok[i]; ch {
		case 'N':
			cell = cell.With(North)
		case 'E':
			cell = cell.With(East)
		case 'S':
			cell = cell.With(South)
		case 'W':
			cell = cell.With(West)
		case StartMarker:
			isStart = true
		case FinishMarker:
			isFinish = true
		case VisitedMarker:
			cell = cell.MarkVisited()
		case '.':
			// placeholder for a closed cell carrying only markers
		default:
			return 0, false, false, fmt.Errorf("%w %q: unexpected %q", ErrInvalidCellToken, tok, ch)
		}
	}
	return cell, isStart, isFinish, nil
}

// Format writes the layout in the text format. Visited markers are never
// written.
func Format(w io.Writer, l *Layout) error {
	if err := l.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for r, row := range l.Grid {
		for c, cell := range row {
			if c > 0 {
				bw.WriteByte(' ')
			}
			here := Coord{Row: r, Col: c}
			tok := cell.Passages().String()
			markers := ""
			if here == l.Start {
				markers += string(StartMarker)
			}
			if here == l.Finish {
				markers += string(FinishMarker)
			}
			if markers != "" && tok == EmptyToken {
				tok = ""
			}
			bw.WriteString(tok + markers)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// FormatString is Format into a string.
func FormatString(l *Layout) (string, error) {
	var b strings.Builder
	if err := Format(&b, l); err != nil {
		return "", err
	}
	return b.String(), nil
}
