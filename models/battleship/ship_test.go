package battleship

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultFleetTemplate(t *testing.T) {
	require.Equal(t, 10, DefaultFleetTemplate.ShipCount())
	require.Equal(t, 20, DefaultFleetTemplate.CellCount())
	require.Equal(t, map[int]int{4: 1, 3: 2, 2: 3, 1: 4}, DefaultFleetTemplate.Counts())

	clone := DefaultFleetTemplate.Clone()
	clone[0].Count = 0
	require.Equal(t, 1, DefaultFleetTemplate[0].Count)
}

func TestFootprint(t *testing.T) {
	require.Equal(t, []Coordinates{{X: 8, Y: 0}, {X: 9, Y: 0}, {X: 10, Y: 0}}, Footprint(8, 0, 3, Horizontal))
	require.Equal(t, []Coordinates{{X: 1, Y: 1}, {X: 1, Y: 2}}, Footprint(1, 1, 2, Vertical))
}

func TestParseNames(t *testing.T) {
	tests := []struct {
		name     string
		expected Orientation
		valid    bool
	}{
		{"horizontal", Horizontal, true},
		{"V", Vertical, true},
		{"vertical", Vertical, true},
		{"diagonal", Horizontal, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			o, err := ParseOrientation(test.name)
			if !test.valid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, test.expected, o)
		})
	}

	board, err := ParseBoard("opponent")
	require.NoError(t, err)
	require.Equal(t, BoardOpponent, board)

	_, err = ParseBoard("enemy")
	require.Error(t, err)

	require.Equal(t, SideComputer, SidePlayer.Opponent())
	require.Equal(t, "computer", SideComputer.String())
}
