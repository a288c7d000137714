package battleship

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const GridSize int = 10

type Cell int

const (
	CellEmpty Cell = iota
	CellShipPart
	// Ship part struck, ship not confirmed sunk yet
	CellHit
	CellSunk
	CellMiss
)

func (c Cell) String() string {
	switch c {
	case CellEmpty:
		return "Empty"
	case CellShipPart:
		return "ShipPart"
	case CellHit:
		return "Hit"
	case CellSunk:
		return "Sunk"
	case CellMiss:
		return "Miss"
	default:
		return "Unknown"
	}
}

// IsShip reports whether a ship occupies the cell, hit or not.
func (c Cell) IsShip() bool {
	return c == CellShipPart || c == CellHit || c == CellSunk
}

func (c Cell) IsHitEquivalent() bool {
	return c == CellHit || c == CellSunk
}

// IsResolved reports whether the cell has already been fired upon.
func (c Cell) IsResolved() bool {
	return c == CellHit || c == CellSunk || c == CellMiss
}

type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

// Grid is indexed as grid[y][x]; x is the column and y the row.
type Grid [][]Cell

// Creates a new default grid
// All indexes are zero/CellEmpty
func NewGrid(gridSize int) Grid {
	grid := make(Grid, gridSize)

	for i := 0; i < gridSize; i++ {
		grid[i] = make([]Cell, gridSize)
	}
	return grid
}

func (g Grid) Size() int {
	return len(g)
}

func (g Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && y < len(g) && x < len(g[y])
}

func (g Grid) CellAt(x, y int) (Cell, error) {
	if !g.InBounds(x, y) {
		return CellEmpty, cerr.ErrXorYOutOfGridBound(x, y)
	}
	return g[y][x], nil
}

func (g Grid) Clone() Grid {
	clone := make(Grid, len(g))
	for i := range g {
		clone[i] = make([]Cell, len(g[i]))
		copy(clone[i], g[i])
	}
	return clone
}

// with returns a copy of the grid where (x, y) holds cell.
func (g Grid) with(x, y int, cell Cell) Grid {
	clone := g.Clone()
	clone[y][x] = cell
	return clone
}

func (g Grid) Count(cell Cell) int {
	n := 0
	for y := range g {
		for x := range g[y] {
			if g[y][x] == cell {
				n++
			}
		}
	}
	return n
}

// Neighbors8 returns the surrounding cells including diagonals,
// clipped to the grid.
func (g Grid) Neighbors8(x, y int) []Coordinates {
	neighbors := make([]Coordinates, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.InBounds(x+dx, y+dy) {
				neighbors = append(neighbors, NewCoordinates(x+dx, y+dy))
			}
		}
	}
	return neighbors
}

// Neighbors4 returns the orthogonal neighbors clipped to the grid,
// in the order up, down, left, right.
func (g Grid) Neighbors4(x, y int) []Coordinates {
	neighbors := make([]Coordinates, 0, 4)
	for _, d := range allDirections {
		dx, dy := d.Offset()
		if g.InBounds(x+dx, y+dy) {
			neighbors = append(neighbors, NewCoordinates(x+dx, y+dy))
		}
	}
	return neighbors
}

func (g Grid) String() string {
	if len(g) == 0 {
		return "GRID HAS SIZE ZERO\n"
	}

	var buffer bytes.Buffer
	tabWriter := tabwriter.NewWriter(&buffer, 3, 0, 1, ' ', 0)

	fmt.Fprint(tabWriter, "\t")
	for x := range g[0] {
		fmt.Fprint(tabWriter, strconv.Itoa(x)+"\t")
	}
	fmt.Fprint(tabWriter, "\n")

	for y := range g {
		fmt.Fprint(tabWriter, strconv.Itoa(y)+"\t")
		for x := range g[y] {
			switch g[y][x] {
			case CellShipPart:
				fmt.Fprint(tabWriter, "S\t")
			case CellHit:
				fmt.Fprint(tabWriter, "X\t")
			case CellSunk:
				fmt.Fprint(tabWriter, "#\t")
			case CellMiss:
				fmt.Fprint(tabWriter, "O\t")
			default:
				fmt.Fprint(tabWriter, "~\t")
			}
		}
		fmt.Fprint(tabWriter, "\n")
	}
	tabWriter.Flush()
	return buffer.String()
}
