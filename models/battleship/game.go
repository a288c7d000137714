package battleship

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

const (
	// Whole-fleet retries for the computer's random layout
	MaxFleetGenerations = 10
)

type Turn int

const (
	TurnSetup Turn = iota
	TurnPlayer
	TurnComputer
	TurnGameOver
)

func (t Turn) String() string {
	switch t {
	case TurnSetup:
		return "Setup"
	case TurnPlayer:
		return "PlayerTurn"
	case TurnComputer:
		return "ComputerTurn"
	case TurnGameOver:
		return "GameOver"
	default:
		return "Unknown"
	}
}

type FireResult struct {
	X               int
	Y               int
	Outcome         ShotOutcome
	Sunk            bool
	SunkCoordinates []Coordinates
	GameOver        bool
	Winner          Side
	NextTurn        Turn
}

// Game is one human vs. computer match. Every exported method holds the
// game's mutex, so a fire and a computer turn can never interleave.
type Game struct {
	mu sync.Mutex

	uuid      string
	size      int
	template  FleetTemplate
	rng       *rand.Rand
	createdAt time.Time

	// Lays out the computer's fleet, RandomPlacement unless swapped in tests
	layoutFleet func(rng *rand.Rand, size int, template FleetTemplate) (Grid, error)

	turn   Turn
	winner Side

	// Only set during TurnSetup
	placement *Placement

	playerGrid    Grid
	opponentGrid  Grid
	targeting     *Targeting
	playerShots   int
	computerShots int
}

type GameOption func(*Game) error

func WithRand(rng *rand.Rand) GameOption {
	return func(g *Game) error {
		if rng == nil {
			return errors.New("random source must not be nil")
		}
		g.rng = rng
		return nil
	}
}

func WithSeed(seed uint64) GameOption {
	return func(g *Game) error {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		return nil
	}
}

func WithFleetTemplate(template FleetTemplate) GameOption {
	return func(g *Game) error {
		if template.ShipCount() == 0 {
			return cerr.ErrInvalidFleet("fleet template has no ships")
		}
		g.template = template.Clone()
		return nil
	}
}

func WithGridSize(size int) GameOption {
	return func(g *Game) error {
		if size <= 0 {
			return cerr.ErrInvalidFleet("grid size must be positive")
		}
		g.size = size
		return nil
	}
}

func NewGame(gameUuid string, optFuncs ...GameOption) (*Game, error) {
	game := &Game{
		uuid:      gameUuid,
		size:      GridSize,
		template:  DefaultFleetTemplate.Clone(),
		createdAt: time.Now(),

		layoutFleet: RandomPlacement,
	}

	for _, opt := range optFuncs {
		if err := opt(game); err != nil {
			return nil, err
		}
	}
	if game.rng == nil {
		game.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	game.resetToSetup()
	return game, nil
}

func (g *Game) resetToSetup() {
	g.turn = TurnSetup
	g.winner = SideNone
	g.placement = NewPlacement(g.size, g.template)
	g.playerGrid = nil
	g.opponentGrid = nil
	g.targeting = NewTargeting(g.size, g.rng)
	g.playerShots = 0
	g.computerShots = 0
}

func (g *Game) Uuid() string {
	return g.uuid
}

func (g *Game) CreatedAt() time.Time {
	return g.createdAt
}

func (g *Game) Size() int {
	return g.size
}

func (g *Game) Turn() Turn {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.turn
}

// Winner returns the winning side once the game is over.
func (g *Game) Winner() (Side, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.winner, g.turn == TurnGameOver
}

// Shots returns how many shots each side has fired this battle.
func (g *Game) Shots() (player, computer int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playerShots, g.computerShots
}

func (g *Game) requireSetup() error {
	if g.turn != TurnSetup {
		return cerr.ErrGameNotInSetup(g.uuid)
	}
	return nil
}

func (g *Game) PlaceShip(x, y int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireSetup(); err != nil {
		return 0, err
	}
	return g.placement.PlaceNext(x, y)
}

func (g *Game) SetOrientation(o Orientation) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireSetup(); err != nil {
		return err
	}
	g.placement.SetOrientation(o)
	return nil
}

func (g *Game) RandomizePlacement() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireSetup(); err != nil {
		return err
	}
	return g.placement.Randomize(g.rng)
}

func (g *Game) ResetPlacement() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireSetup(); err != nil {
		return err
	}
	g.placement.Reset()
	return nil
}

// PlacementSnapshot returns the fleet laid out so far, the ships still to
// place and the orientation the next one will use.
func (g *Game) PlacementSnapshot() (Grid, FleetTemplate, Orientation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireSetup(); err != nil {
		return nil, nil, Horizontal, err
	}
	return g.placement.Grid(), g.placement.Remaining(), g.placement.Orientation(), nil
}

// StartBattle starts the game from the fleet placed ship by ship.
func (g *Game) StartBattle() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireSetup(); err != nil {
		return err
	}
	if !g.placement.IsComplete() {
		return cerr.ErrInvalidFleet("not every ship of the fleet is placed")
	}
	return g.start(g.placement.Grid())
}

// Start validates a complete player grid, lays out the computer's fleet and
// hands the first turn to the player. On failure the game stays in setup.
func (g *Game) Start(playerGrid Grid) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireSetup(); err != nil {
		return err
	}
	return g.start(playerGrid)
}

func (g *Game) start(playerGrid Grid) error {
	if err := ValidateFleet(playerGrid, g.size, g.template); err != nil {
		return err
	}

	opponentGrid, err := g.generateOpponentGrid()
	if err != nil {
		return err
	}

	g.playerGrid = playerGrid.Clone()
	g.opponentGrid = opponentGrid
	g.placement = nil
	g.targeting = NewTargeting(g.size, g.rng)
	g.turn = TurnPlayer

	log.Debug("battle started", "game", g.uuid, "player", g.playerGrid, "opponent", g.opponentGrid)
	return nil
}

func (g *Game) generateOpponentGrid() (Grid, error) {
	var lastErr error
	for i := 0; i < MaxFleetGenerations; i++ {
		grid, err := g.layoutFleet(g.rng, g.size, g.template)
		if err == nil {
			return grid, nil
		}
		if !errors.Is(err, cerr.ErrPlacementExhausted) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (g *Game) requireTurn(turn Turn, side Side) error {
	if g.turn == TurnGameOver {
		return cerr.ErrGameFinished(g.uuid)
	}
	if g.turn != turn {
		return cerr.ErrNotTurnFor(side)
	}
	return nil
}

// Fire resolves the player's shot at the computer's fleet. A hit keeps the
// turn, a miss hands it to the computer.
func (g *Game) Fire(x, y int) (FireResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireTurn(TurnPlayer, SidePlayer); err != nil {
		return FireResult{}, err
	}

	grid, outcome, err := ApplyShot(g.opponentGrid, x, y)
	if err != nil {
		return FireResult{}, err
	}

	result := g.resolve(SidePlayer, x, y, grid, outcome)
	return result, nil
}

// ComputerTurn lets the computer pick and fire exactly one shot at the
// player's fleet.
func (g *Game) ComputerTurn() (FireResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.requireTurn(TurnComputer, SideComputer); err != nil {
		return FireResult{}, err
	}

	target, err := g.targeting.NextShot()
	if err != nil {
		return FireResult{}, err
	}

	grid, outcome, err := ApplyShot(g.playerGrid, target.X, target.Y)
	if err != nil {
		return FireResult{}, err
	}

	result := g.resolve(SideComputer, target.X, target.Y, grid, outcome)
	g.targeting.RecordShot(target, outcome, result.Sunk)
	return result, nil
}

// resolve commits a shot fired by shooter and moves the turn machine.
func (g *Game) resolve(shooter Side, x, y int, grid Grid, outcome ShotOutcome) FireResult {
	result := FireResult{X: x, Y: y, Outcome: outcome}

	if outcome == OutcomeAlreadyShot {
		result.NextTurn = g.turn
		return result
	}

	if outcome == OutcomeHit {
		grid = ReconcileSunkShips(grid)
		result.SunkCoordinates = SunkShipAt(grid, x, y)
		result.Sunk = len(result.SunkCoordinates) > 0
	}

	if shooter == SidePlayer {
		g.opponentGrid = grid
		g.playerShots++
	} else {
		g.playerGrid = grid
		g.computerShots++
	}

	switch {
	case AllSunk(grid):
		g.turn = TurnGameOver
		g.winner = shooter
		log.Debug("game over", "game", g.uuid, "winner", shooter, "player", g.playerGrid, "opponent", g.opponentGrid)
	case outcome == OutcomeMiss && shooter == SidePlayer:
		g.turn = TurnComputer
	case outcome == OutcomeMiss && shooter == SideComputer:
		g.turn = TurnPlayer
	}

	result.GameOver = g.turn == TurnGameOver
	result.Winner = g.winner
	result.NextTurn = g.turn
	return result
}

// BoardView returns a snapshot of one of the two grids. Unhit ships of the
// computer are shown as empty water.
func (g *Game) BoardView(which Board) Grid {
	g.mu.Lock()
	defer g.mu.Unlock()

	if which == BoardOpponent {
		if g.opponentGrid == nil {
			return NewGrid(g.size)
		}

		view := g.opponentGrid.Clone()
		for y := range view {
			for x := range view[y] {
				if view[y][x] == CellShipPart {
					view[y][x] = CellEmpty
				}
			}
		}
		return view
	}

	if g.turn == TurnSetup {
		return g.placement.Grid()
	}
	return g.playerGrid.Clone()
}

// Rematch throws the current battle away and goes back to setup.
func (g *Game) Rematch() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.resetToSetup()
}
