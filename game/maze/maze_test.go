package maze

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeByThree is a hand-carved perfect maze:
//
//	(0,0)-(0,1)-(0,2)
//	              |
//	(1,0)-(1,1)  (1,2)
//	  |           |
//	(2,0)-(2,1)-(2,2)
const threeByThree = `
Es  EW  SW
ES  W   NS
NE  EW  NWf
`

func TestOrientationCycle(t *testing.T) {
	for _, start := range Orientations {
		o := start
		for i := 0; i < 4; i++ {
			o = o.Right()
		}
		assert.Equal(t, start, o, "four right turns from %s", start)

		o = start
		for i := 0; i < 4; i++ {
			o = o.Left()
		}
		assert.Equal(t, start, o, "four left turns from %s", start)

		assert.Equal(t, start, start.Right().Left())
		assert.Equal(t, start.Opposite(), start.Right().Right())
	}

	assert.Equal(t, East, North.Right())
	assert.Equal(t, West, North.Left())
}

func TestOrientationJSON(t *testing.T) {
	data, err := json.Marshal(South)
	require.NoError(t, err)
	assert.JSONEq(t, `"south"`, string(data))

	var o Orientation
	require.NoError(t, json.Unmarshal([]byte(`"W"`), &o))
	assert.Equal(t, West, o)

	assert.Error(t, json.Unmarshal([]byte(`"up"`), &o))
}

func TestCellBits(t *testing.T) {
	var c Cell
	assert.Equal(t, ".", c.String())

	c = c.With(West).With(North)
	assert.True(t, c.Open(North))
	assert.True(t, c.Open(West))
	assert.False(t, c.Open(East))
	assert.Equal(t, "NW", c.String())
	assert.Equal(t, 2, c.Degree())

	v := c.MarkVisited()
	assert.True(t, v.Visited())
	assert.Equal(t, c, v.Passages())
	assert.Equal(t, "NW", v.String())
}

func TestGridCarveIsSymmetric(t *testing.T) {
	g := NewGrid(2, 2)
	require.NoError(t, g.Carve(Coord{0, 0}, East))
	require.NoError(t, g.Carve(Coord{0, 1}, South))

	assert.True(t, g.At(Coord{0, 0}).Open(East))
	assert.True(t, g.At(Coord{0, 1}).Open(West))
	assert.True(t, g.At(Coord{1, 1}).Open(North))
	assert.NoError(t, g.CheckSymmetry())

	err := g.Carve(Coord{0, 0}, North)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestGridValidate(t *testing.T) {
	assert.ErrorIs(t, Grid{}.Validate(), ErrEmptyGrid)
	assert.ErrorIs(t, Grid{{0, 0}, {0}}.Validate(), ErrRaggedGrid)
	assert.NoError(t, NewGrid(3, 4).Validate())
}

func TestGridCheckSymmetry(t *testing.T) {
	g := NewGrid(1, 2)
	g[0][0] = g[0][0].With(East)
	assert.ErrorIs(t, g.CheckSymmetry(), ErrAsymmetricWalls)

	g = NewGrid(1, 1)
	g[0][0] = g[0][0].With(North)
	assert.ErrorIs(t, g.CheckSymmetry(), ErrAsymmetricWalls)
}

func TestGridMirroredPassages(t *testing.T) {
	layout, err := ParseString(threeByThree)
	require.NoError(t, err)
	assert.Equal(t, 9-1, layout.Grid.MirroredPassages())

	g := NewGrid(2, 2)
	g[0][0] = g[0][0].With(East)
	g[0][0] = g[0][0].With(South)
	g[1][0] = g[1][0].With(North)
	g[1][1] = g[1][1].With(West)
	assert.Equal(t, 1, g.MirroredPassages())
	assert.Equal(t, 4, g.PassageCount())
}

func TestGridClamp(t *testing.T) {
	g := NewGrid(3, 4)
	assert.Equal(t, Coord{0, 0}, g.Clamp(Coord{-1, -5}))
	assert.Equal(t, Coord{2, 3}, g.Clamp(Coord{7, 9}))
	assert.Equal(t, Coord{1, 2}, g.Clamp(Coord{1, 2}))
}

func TestParse(t *testing.T) {
	layout, err := ParseString(threeByThree)
	require.NoError(t, err)

	assert.Equal(t, 3, layout.Grid.Rows())
	assert.Equal(t, 3, layout.Grid.Cols())
	assert.Equal(t, Coord{0, 0}, layout.Start)
	assert.Equal(t, Coord{2, 2}, layout.Finish)
	assert.NoError(t, layout.Grid.CheckSymmetry())
	assert.True(t, layout.Connected())
	assert.Equal(t, 2*(9-1), layout.Grid.PassageCount())
	assert.Equal(t, 2, layout.Grid.DeadEnds())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "\n\n", ErrEmptyGrid},
		{"ragged", "Es W\nEf\n", ErrRaggedGrid},
		{"missing start", "E Wf\n", ErrMissingStart},
		{"missing finish", "Es W\n", ErrMissingFinish},
		{"duplicate start", "Es Ws\n.f .\n", ErrDuplicateMarker},
		{"duplicate finish", "Esf Wf\n", ErrDuplicateMarker},
		{"bad letter", "Es Q\n.f .\n", ErrInvalidCellToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseString(tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestParseMarkersAndComments(t *testing.T) {
	layout, err := ParseString("# a single cell\nsf\n")
	require.NoError(t, err)
	assert.Equal(t, layout.Start, layout.Finish)
	assert.Equal(t, Cell(0), layout.Grid[0][0])

	layout, err = ParseString("Esv Wf\n")
	require.NoError(t, err)
	assert.True(t, layout.Grid[0][0].Visited())
}

func TestFormatStripsVisited(t *testing.T) {
	layout, err := ParseString(threeByThree)
	require.NoError(t, err)
	layout.Grid[1][1] = layout.Grid[1][1].MarkVisited()

	out, err := FormatString(layout)
	require.NoError(t, err)
	assert.Equal(t, "Es EW SW\nES W NS\nNE EW NWf\n", out)
	assert.NotContains(t, out, "v")

	again, err := ParseString(out)
	require.NoError(t, err)
	assert.Equal(t, layout.Start, again.Start)
	assert.Equal(t, layout.Finish, again.Finish)
	assert.False(t, again.Grid[1][1].Visited())
}

func TestFormatClosedMarkedCell(t *testing.T) {
	layout := &Layout{Grid: NewGrid(1, 1)}
	out, err := FormatString(layout)
	require.NoError(t, err)
	assert.Equal(t, "sf\n", out)
}

func TestLayoutValidate(t *testing.T) {
	layout := &Layout{Grid: NewGrid(2, 2), Start: Coord{0, 0}, Finish: Coord{2, 0}}
	assert.ErrorIs(t, layout.Validate(), ErrOutOfBounds)

	layout.Finish = Coord{1, 1}
	assert.NoError(t, layout.Validate())
	assert.False(t, layout.Connected())
}
