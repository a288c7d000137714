package battleship

type ShotOutcome int

const (
	OutcomeMiss ShotOutcome = iota
	OutcomeHit
	OutcomeAlreadyShot
)

func (o ShotOutcome) String() string {
	switch o {
	case OutcomeMiss:
		return "Miss"
	case OutcomeHit:
		return "Hit"
	case OutcomeAlreadyShot:
		return "AlreadyShot"
	default:
		return "Unknown"
	}
}

// ApplyShot fires at (x, y) and returns the resulting grid. Shooting a cell
// that was already resolved returns OutcomeAlreadyShot and the very same
// grid.
func ApplyShot(grid Grid, x, y int) (Grid, ShotOutcome, error) {
	cell, err := grid.CellAt(x, y)
	if err != nil {
		return grid, OutcomeMiss, err
	}

	switch {
	case cell.IsResolved():
		return grid, OutcomeAlreadyShot, nil
	case cell == CellShipPart:
		return grid.with(x, y, CellHit), OutcomeHit, nil
	default:
		return grid.with(x, y, CellMiss), OutcomeMiss, nil
	}
}

// ShipComponents groups ship cells into straight runs. Scanning row-major,
// the horizontal run from an unvisited cell is taken first; a run of one
// falls back to the vertical run downwards.
func ShipComponents(grid Grid) [][]Coordinates {
	visited := make([][]bool, len(grid))
	for y := range grid {
		visited[y] = make([]bool, len(grid[y]))
	}

	components := make([][]Coordinates, 0, DefaultFleetTemplate.ShipCount())
	for y := range grid {
		for x := range grid[y] {
			if !grid[y][x].IsShip() || visited[y][x] {
				continue
			}

			component := make([]Coordinates, 0, 4)
			for i := 0; grid.InBounds(x+i, y) && grid[y][x+i].IsShip(); i++ {
				component = append(component, NewCoordinates(x+i, y))
				visited[y][x+i] = true
			}

			if len(component) == 1 {
				for i := 1; grid.InBounds(x, y+i) && grid[y+i][x].IsShip(); i++ {
					component = append(component, NewCoordinates(x, y+i))
					visited[y+i][x] = true
				}
			}
			components = append(components, component)
		}
	}
	return components
}

// ReconcileSunkShips marks every fully hit ship as sunk and demotes stray
// sunk cells of ships that still float back to hit. Unhit ship parts are
// left alone. Calling it twice yields the same grid as calling it once.
func ReconcileSunkShips(grid Grid) Grid {
	reconciled := grid.Clone()

	for _, component := range ShipComponents(grid) {
		allHit := true
		for _, c := range component {
			if !grid[c.Y][c.X].IsHitEquivalent() {
				allHit = false
				break
			}
		}

		for _, c := range component {
			switch {
			case allHit:
				reconciled[c.Y][c.X] = CellSunk
			case grid[c.Y][c.X] == CellSunk:
				reconciled[c.Y][c.X] = CellHit
			}
		}
	}
	return reconciled
}

// AllSunk reports whether no unhit ship part is left on the grid.
func AllSunk(grid Grid) bool {
	for y := range grid {
		for x := range grid[y] {
			if grid[y][x] == CellShipPart {
				return false
			}
		}
	}
	return true
}

// SunkShipAt returns the cells of the ship covering (x, y) when that ship is
// sunk, nil otherwise.
func SunkShipAt(grid Grid, x, y int) []Coordinates {
	target := NewCoordinates(x, y)

	for _, component := range ShipComponents(grid) {
		found := false
		for _, c := range component {
			if c == target {
				found = true
				break
			}
		}
		if !found {
			continue
		}

		for _, c := range component {
			if grid[c.Y][c.X] != CellSunk {
				return nil
			}
		}
		return component
	}
	return nil
}
