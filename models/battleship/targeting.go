package battleship

import (
	"math/rand/v2"

	"github.com/dolthub/swiss"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	// Random draws while hunting before falling back to a full scan
	MaxHuntAttempts = 1000
)

type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
)

var allDirections = [...]Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "none"
	}
}

func (d Direction) Offset() (dx, dy int) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	case DirectionRight:
		return 1, 0
	default:
		return 0, 0
	}
}

type TargetingPhase int

const (
	PhaseHunting TargetingPhase = iota
	PhaseTargeting
)

func (p TargetingPhase) String() string {
	if p == PhaseTargeting {
		return "Targeting"
	}
	return "Hunting"
}

// Targeting is the computer's hunt/target strategy. After a hit it walks
// the four compass directions from the latest hit, keeps extending along
// whichever keeps hitting, and goes back to random search once every
// direction is exhausted or the ship sinks.
type Targeting struct {
	size      int
	board     Grid // geometry only, never written
	rng       *rand.Rand
	hitStack  []Coordinates
	fired     *swiss.Map[Coordinates, struct{}]
	direction Direction
	exhausted map[Direction]struct{}
}

func NewTargeting(size int, rng *rand.Rand) *Targeting {
	return &Targeting{
		size:      size,
		board:     NewGrid(size),
		rng:       rng,
		hitStack:  make([]Coordinates, 0, 4),
		fired:     swiss.NewMap[Coordinates, struct{}](uint32(size * size)),
		direction: DirectionNone,
		exhausted: make(map[Direction]struct{}, len(allDirections)),
	}
}

func (t *Targeting) Phase() TargetingPhase {
	if len(t.hitStack) == 0 {
		return PhaseHunting
	}
	return PhaseTargeting
}

func (t *Targeting) Direction() Direction {
	return t.direction
}

func (t *Targeting) HitStack() []Coordinates {
	stack := make([]Coordinates, len(t.hitStack))
	copy(stack, t.hitStack)
	return stack
}

func (t *Targeting) HasFiredAt(c Coordinates) bool {
	return t.fired.Has(c)
}

func (t *Targeting) FiredCount() int {
	return t.fired.Count()
}

// Reset drops the current pursuit. The fired-at set is kept for the whole
// battle.
func (t *Targeting) Reset() {
	t.hitStack = t.hitStack[:0]
	t.direction = DirectionNone
	clear(t.exhausted)
}

// NextShot picks the coordinate to fire at next.
func (t *Targeting) NextShot() (Coordinates, error) {
	if len(t.hitStack) == 0 {
		return t.hunt()
	}

	last := t.hitStack[len(t.hitStack)-1]

	if t.direction != DirectionNone {
		dx, dy := t.direction.Offset()
		next := NewCoordinates(last.X+dx, last.Y+dy)
		if t.board.InBounds(next.X, next.Y) && !t.fired.Has(next) {
			return next, nil
		}
		t.exhausted[t.direction] = struct{}{}
		t.direction = DirectionNone
	}

	candidates := t.openDirections(last)
	if len(candidates) == 0 {
		t.Reset()
		return t.hunt()
	}

	t.direction = candidates[t.rng.IntN(len(candidates))]
	dx, dy := t.direction.Offset()
	return NewCoordinates(last.X+dx, last.Y+dy), nil
}

// openDirections lists the directions from c whose neighbour is on the
// grid, not fired at and not exhausted for this run.
func (t *Targeting) openDirections(c Coordinates) []Direction {
	candidates := make([]Direction, 0, len(allDirections))
	for _, n := range t.board.Neighbors4(c.X, c.Y) {
		d := directionBetween(c, n)
		if _, prs := t.exhausted[d]; prs || t.fired.Has(n) {
			continue
		}
		candidates = append(candidates, d)
	}
	return candidates
}

func directionBetween(from, to Coordinates) Direction {
	for _, d := range allDirections {
		if dx, dy := d.Offset(); from.X+dx == to.X && from.Y+dy == to.Y {
			return d
		}
	}
	return DirectionNone
}

// RecordShot feeds the outcome of a shot back into the strategy. sunk tells
// whether the hit finished off a ship.
func (t *Targeting) RecordShot(c Coordinates, outcome ShotOutcome, sunk bool) {
	t.fired.Put(c, struct{}{})

	switch outcome {
	case OutcomeHit:
		if sunk {
			t.Reset()
			return
		}

		if len(t.hitStack) == 0 {
			t.hitStack = append(t.hitStack, c)
			t.direction = DirectionNone
			return
		}

		// A new run starts from this hit, same axis as before
		t.hitStack = append(t.hitStack, c)
		clear(t.exhausted)

	case OutcomeMiss:
		if len(t.hitStack) > 0 && t.direction != DirectionNone {
			t.exhausted[t.direction] = struct{}{}
			t.direction = DirectionNone
		}
	}
}

func (t *Targeting) hunt() (Coordinates, error) {
	for attempts := 0; attempts < MaxHuntAttempts; attempts++ {
		c := NewCoordinates(t.rng.IntN(t.size), t.rng.IntN(t.size))
		if !t.fired.Has(c) {
			return c, nil
		}
	}

	for y := 0; y < t.size; y++ {
		for x := 0; x < t.size; x++ {
			if c := NewCoordinates(x, y); !t.fired.Has(c) {
				return c, nil
			}
		}
	}
	return Coordinates{}, cerr.ErrNoUntriedCell
}
