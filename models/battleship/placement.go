package battleship

import (
	"fmt"
	"math/rand/v2"
	"sort"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	// Attempts per ship before random placement gives up
	MaxPlacementAttempts = 1000
)

// CanPlace reports whether a ship fits at the anchor without leaving the
// grid and without its footprint or the ring around it touching another ship.
func CanPlace(grid Grid, x, y, length int, orientation Orientation) bool {
	if length <= 0 {
		return false
	}

	footprint := Footprint(x, y, length, orientation)
	for _, c := range footprint {
		if !grid.InBounds(c.X, c.Y) {
			return false
		}
	}

	for _, c := range footprint {
		if grid[c.Y][c.X] == CellShipPart {
			return false
		}
		for _, n := range grid.Neighbors8(c.X, c.Y) {
			if grid[n.Y][n.X] == CellShipPart {
				return false
			}
		}
	}
	return true
}

// Place writes the ship into a copy of the grid. Callers must check
// CanPlace first; Place does not validate.
func Place(grid Grid, x, y, length int, orientation Orientation) Grid {
	placed := grid.Clone()
	for _, c := range Footprint(x, y, length, orientation) {
		placed[c.Y][c.X] = CellShipPart
	}
	return placed
}

// RandomPlacement lays out the whole template on an empty grid. A ship that
// cannot find a spot within MaxPlacementAttempts fails the entire layout;
// no partial grid is returned.
func RandomPlacement(rng *rand.Rand, size int, template FleetTemplate) (Grid, error) {
	grid := NewGrid(size)

	for _, entry := range template {
		if entry.Length <= 0 {
			return nil, cerr.ErrInvalidFleet(fmt.Sprintf("ship length must be positive, got %d", entry.Length))
		}
		if entry.Length > size {
			return nil, cerr.ErrShipPlacementExhausted(entry.Length, 0)
		}

		for i := 0; i < entry.Count; i++ {
			placed := false

			for attempts := 0; attempts < MaxPlacementAttempts; attempts++ {
				orientation := Horizontal
				if rng.Float64() >= 0.5 {
					orientation = Vertical
				}

				maxX, maxY := size-1, size-1
				if orientation == Horizontal {
					maxX = size - entry.Length
				} else {
					maxY = size - entry.Length
				}
				x := rng.IntN(maxX + 1)
				y := rng.IntN(maxY + 1)

				if CanPlace(grid, x, y, entry.Length, orientation) {
					grid = Place(grid, x, y, entry.Length, orientation)
					placed = true
					break
				}
			}

			if !placed {
				return nil, cerr.ErrShipPlacementExhausted(entry.Length, MaxPlacementAttempts)
			}
		}
	}

	return grid, nil
}

// ValidateFleet checks a grid submitted at battle start: it must be
// size x size, hold only empty water and unhit ship parts, and contain
// exactly the template's ships as straight runs that never touch.
func ValidateFleet(grid Grid, size int, template FleetTemplate) error {
	if len(grid) != size {
		return cerr.ErrInvalidFleet(fmt.Sprintf("grid must have %d rows, got %d", size, len(grid)))
	}
	for y, row := range grid {
		if len(row) != size {
			return cerr.ErrInvalidFleet(fmt.Sprintf("row %d must have %d cells, got %d", y, size, len(row)))
		}
	}

	for y := range grid {
		for x, cell := range grid[y] {
			if cell != CellEmpty && cell != CellShipPart {
				return cerr.ErrInvalidFleet(fmt.Sprintf("cell x: %d y: %d holds %s before battle", x, y, cell))
			}

			if cell != CellShipPart {
				continue
			}
			// Any diagonal contact is either two ships touching or a bent ship
			for _, dx := range []int{-1, 1} {
				if grid.InBounds(x+dx, y+1) && grid[y+1][x+dx] == CellShipPart {
					return cerr.ErrInvalidFleet(fmt.Sprintf("ships touch diagonally at x: %d y: %d", x, y))
				}
			}
		}
	}

	got := make(map[int]int)
	for _, component := range ShipComponents(grid) {
		got[len(component)]++
	}

	want := template.Counts()
	lengths := make([]int, 0, len(want)+len(got))
	for length := range want {
		lengths = append(lengths, length)
	}
	for length := range got {
		if _, prs := want[length]; !prs {
			lengths = append(lengths, length)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(lengths)))

	for _, length := range lengths {
		if got[length] != want[length] {
			return cerr.ErrInvalidFleet(fmt.Sprintf("expected %d ships of length %d, got %d", want[length], length, got[length]))
		}
	}
	return nil
}

// Placement tracks a fleet being laid out ship by ship during setup.
type Placement struct {
	grid        Grid
	template    FleetTemplate
	remaining   FleetTemplate
	orientation Orientation
}

func NewPlacement(size int, template FleetTemplate) *Placement {
	return &Placement{
		grid:        NewGrid(size),
		template:    template.Clone(),
		remaining:   template.Clone(),
		orientation: Horizontal,
	}
}

// NextLength returns the length of the next ship to place, following the
// template order.
func (p *Placement) NextLength() (int, bool) {
	for _, e := range p.remaining {
		if e.Count > 0 {
			return e.Length, true
		}
	}
	return 0, false
}

func (p *Placement) PlaceNext(x, y int) (int, error) {
	length, ok := p.NextLength()
	if !ok {
		return 0, cerr.ErrFleetAlreadyPlaced
	}
	if !p.grid.InBounds(x, y) {
		return 0, cerr.ErrXorYOutOfGridBound(x, y)
	}
	if !CanPlace(p.grid, x, y, length, p.orientation) {
		return 0, cerr.ErrCannotPlaceShip(x, y, length, p.orientation)
	}

	p.grid = Place(p.grid, x, y, length, p.orientation)
	for i := range p.remaining {
		if p.remaining[i].Length == length && p.remaining[i].Count > 0 {
			p.remaining[i].Count--
			break
		}
	}
	return length, nil
}

func (p *Placement) SetOrientation(o Orientation) {
	p.orientation = o
}

func (p *Placement) Orientation() Orientation {
	return p.orientation
}

// Randomize replaces whatever was placed so far with a full random layout.
// On failure the current placement stays untouched.
func (p *Placement) Randomize(rng *rand.Rand) error {
	grid, err := RandomPlacement(rng, p.grid.Size(), p.template)
	if err != nil {
		return err
	}

	p.grid = grid
	for i := range p.remaining {
		p.remaining[i].Count = 0
	}
	return nil
}

func (p *Placement) Reset() {
	p.grid = NewGrid(p.grid.Size())
	p.remaining = p.template.Clone()
}

func (p *Placement) IsComplete() bool {
	_, ok := p.NextLength()
	return !ok
}

func (p *Placement) Remaining() FleetTemplate {
	return p.remaining.Clone()
}

func (p *Placement) Grid() Grid {
	return p.grid.Clone()
}
