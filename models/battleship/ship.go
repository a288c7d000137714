package battleship

import (
	"strings"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

func ParseOrientation(name string) (Orientation, error) {
	switch strings.ToLower(name) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	default:
		return Horizontal, cerr.ErrInvalidOrientationName(name)
	}
}

type FleetEntry struct {
	Length int `json:"length"`
	Count  int `json:"count"`
}

// FleetTemplate lists ship lengths in the order they get placed.
type FleetTemplate []FleetEntry

var DefaultFleetTemplate = FleetTemplate{
	{Length: 4, Count: 1},
	{Length: 3, Count: 2},
	{Length: 2, Count: 3},
	{Length: 1, Count: 4},
}

func (ft FleetTemplate) ShipCount() int {
	n := 0
	for _, e := range ft {
		n += e.Count
	}
	return n
}

func (ft FleetTemplate) CellCount() int {
	n := 0
	for _, e := range ft {
		n += e.Length * e.Count
	}
	return n
}

// Counts maps ship length to the number of ships of that length.
func (ft FleetTemplate) Counts() map[int]int {
	counts := make(map[int]int, len(ft))
	for _, e := range ft {
		counts[e.Length] += e.Count
	}
	return counts
}

func (ft FleetTemplate) Clone() FleetTemplate {
	clone := make(FleetTemplate, len(ft))
	copy(clone, ft)
	return clone
}

// Footprint returns the cells a ship anchored at (x, y) covers.
// It does not check bounds.
func Footprint(x, y, length int, orientation Orientation) []Coordinates {
	cells := make([]Coordinates, length)
	for i := 0; i < length; i++ {
		if orientation == Horizontal {
			cells[i] = NewCoordinates(x+i, y)
		} else {
			cells[i] = NewCoordinates(x, y+i)
		}
	}
	return cells
}
