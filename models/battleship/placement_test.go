package battleship

import (
	"errors"
	"math/rand/v2"
	"testing"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	"github.com/stretchr/testify/require"
)

func seededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func TestCanPlaceBounds(t *testing.T) {
	grid := NewGrid(GridSize)

	tests := []struct {
		name        string
		x, y        int
		length      int
		orientation Orientation
		expected    bool
	}{
		{"top left corner", 0, 0, 4, Horizontal, true},
		{"touching right edge", 6, 0, 4, Horizontal, true},
		{"past right edge", 7, 0, 4, Horizontal, false},
		{"length 3 at x 8", 8, 0, 3, Horizontal, false},
		{"touching bottom edge", 0, 6, 4, Vertical, true},
		{"past bottom edge", 0, 7, 4, Vertical, false},
		{"bottom right corner", 9, 9, 1, Vertical, true},
		{"negative anchor", -1, 0, 1, Horizontal, false},
		{"zero length", 0, 0, 0, Horizontal, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, CanPlace(grid, test.x, test.y, test.length, test.orientation))
		})
	}
}

func TestCanPlaceBufferRule(t *testing.T) {
	grid := Place(NewGrid(GridSize), 4, 4, 2, Horizontal)

	// Footprint and the ring around it
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 6; x++ {
			require.False(t, CanPlace(grid, x, y, 1, Horizontal), "x: %d y: %d", x, y)
		}
	}

	require.True(t, CanPlace(grid, 2, 4, 1, Horizontal))
	require.True(t, CanPlace(grid, 7, 4, 1, Horizontal))
	require.True(t, CanPlace(grid, 4, 2, 1, Horizontal))
	require.True(t, CanPlace(grid, 4, 6, 1, Horizontal))

	// A vertical ship ending right above the buffer is still fine
	require.True(t, CanPlace(grid, 5, 0, 3, Vertical))
	require.False(t, CanPlace(grid, 5, 0, 4, Vertical))
}

func TestCanPlaceDiagonalContact(t *testing.T) {
	grid := Place(NewGrid(GridSize), 0, 0, 1, Horizontal)

	require.False(t, CanPlace(grid, 1, 1, 1, Horizontal))
	require.True(t, CanPlace(grid, 2, 2, 1, Horizontal))

	corner := Place(NewGrid(GridSize), 9, 9, 1, Horizontal)
	require.False(t, CanPlace(corner, 8, 8, 1, Horizontal))
	require.False(t, CanPlace(corner, 6, 8, 3, Horizontal))
	require.True(t, CanPlace(corner, 6, 7, 3, Horizontal))
}

func TestPlaceDoesNotMutate(t *testing.T) {
	grid := NewGrid(GridSize)
	placed := Place(grid, 2, 3, 3, Vertical)

	require.Equal(t, 0, grid.Count(CellShipPart))
	require.Equal(t, 3, placed.Count(CellShipPart))
	require.Equal(t, CellShipPart, placed[5][2])
}

func TestRandomPlacementProperties(t *testing.T) {
	for seed := uint64(1); seed <= 50; seed++ {
		grid, err := RandomPlacement(seededRand(seed), GridSize, DefaultFleetTemplate)
		require.NoError(t, err, "seed %d", seed)

		require.Equal(t, DefaultFleetTemplate.CellCount(), grid.Count(CellShipPart), "seed %d", seed)
		require.NoError(t, ValidateFleet(grid, GridSize, DefaultFleetTemplate), "seed %d", seed)
	}
}

func TestRandomPlacementIsReproducible(t *testing.T) {
	first, err := RandomPlacement(seededRand(42), GridSize, DefaultFleetTemplate)
	require.NoError(t, err)

	second, err := RandomPlacement(seededRand(42), GridSize, DefaultFleetTemplate)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestRandomPlacementExhausted(t *testing.T) {
	_, err := RandomPlacement(seededRand(1), GridSize, FleetTemplate{{Length: 11, Count: 1}})
	require.True(t, errors.Is(err, cerr.ErrPlacementExhausted))

	// At most 4 isolated cells fit on a 3x3 grid
	_, err = RandomPlacement(seededRand(1), 3, FleetTemplate{{Length: 1, Count: 5}})
	require.True(t, errors.Is(err, cerr.ErrPlacementExhausted))

	_, err = RandomPlacement(seededRand(1), GridSize, FleetTemplate{{Length: 0, Count: 1}})
	require.True(t, errors.Is(err, cerr.ErrInvalidPlacement))
}

func TestValidateFleet(t *testing.T) {
	require.NoError(t, ValidateFleet(fixedFleetGrid(), GridSize, DefaultFleetTemplate))

	twoSingles := FleetTemplate{{Length: 1, Count: 2}}

	withHit := fixedFleetGrid()
	withHit[0][0] = CellHit

	missingShip := fixedFleetGrid()
	missingShip[6][4] = CellEmpty

	tests := []struct {
		name     string
		grid     Grid
		size     int
		template FleetTemplate
	}{
		{
			name:     "wrong size",
			grid:     NewGrid(GridSize - 1),
			size:     GridSize,
			template: DefaultFleetTemplate,
		},
		{
			name:     "ragged row",
			grid:     append(NewGrid(GridSize)[:GridSize-1], make([]Cell, 3)),
			size:     GridSize,
			template: DefaultFleetTemplate,
		},
		{
			name:     "diagonal contact",
			grid:     Place(Place(NewGrid(GridSize), 0, 0, 1, Horizontal), 1, 1, 1, Horizontal),
			size:     GridSize,
			template: twoSingles,
		},
		{
			name:     "orthogonal contact",
			grid:     Place(NewGrid(GridSize), 0, 0, 2, Horizontal),
			size:     GridSize,
			template: twoSingles,
		},
		{
			name:     "bent ship",
			grid:     Place(Place(NewGrid(GridSize), 0, 0, 2, Horizontal), 0, 1, 1, Horizontal),
			size:     GridSize,
			template: FleetTemplate{{Length: 3, Count: 1}},
		},
		{
			name:     "missing ship",
			grid:     missingShip,
			size:     GridSize,
			template: DefaultFleetTemplate,
		},
		{
			name:     "resolved cell before battle",
			grid:     withHit,
			size:     GridSize,
			template: DefaultFleetTemplate,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateFleet(test.grid, test.size, test.template)
			require.True(t, errors.Is(err, cerr.ErrInvalidPlacement), "got %v", err)
		})
	}
}

func TestPlacementShipByShip(t *testing.T) {
	placement := NewPlacement(GridSize, DefaultFleetTemplate)

	length, ok := placement.NextLength()
	require.True(t, ok)
	require.Equal(t, 4, length)

	placed, err := placement.PlaceNext(0, 0)
	require.NoError(t, err)
	require.Equal(t, 4, placed)

	// Next is a length-3 ship, touching the first one
	_, err = placement.PlaceNext(0, 1)
	require.True(t, errors.Is(err, cerr.ErrInvalidPlacement))

	_, err = placement.PlaceNext(8, 5)
	require.True(t, errors.Is(err, cerr.ErrInvalidPlacement))

	_, err = placement.PlaceNext(GridSize, 0)
	require.True(t, errors.Is(err, cerr.ErrOutOfBounds))

	placement.SetOrientation(Vertical)
	require.Equal(t, Vertical, placement.Orientation())

	placed, err = placement.PlaceNext(9, 2)
	require.NoError(t, err)
	require.Equal(t, 3, placed)
	require.Equal(t, CellShipPart, placement.Grid()[4][9])

	remaining := placement.Remaining()
	require.Equal(t, DefaultFleetTemplate.ShipCount()-2, remaining.ShipCount())
	require.False(t, placement.IsComplete())

	placement.Reset()
	require.Equal(t, 0, placement.Grid().Count(CellShipPart))
	length, _ = placement.NextLength()
	require.Equal(t, 4, length)
}

func TestPlacementRandomize(t *testing.T) {
	placement := NewPlacement(GridSize, DefaultFleetTemplate)

	require.NoError(t, placement.Randomize(seededRand(7)))
	require.True(t, placement.IsComplete())
	require.NoError(t, ValidateFleet(placement.Grid(), GridSize, DefaultFleetTemplate))

	_, err := placement.PlaceNext(0, 0)
	require.True(t, errors.Is(err, cerr.ErrFleetAlreadyPlaced))
}
