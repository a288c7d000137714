package battleship

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	"github.com/stretchr/testify/require"
)

var singleShipTemplate = FleetTemplate{{Length: 1, Count: 1}}

// newSingleShipGame starts a 3x3 game where each side has one length-1
// ship: the player's at (0,0), the computer's at (2,2).
func newSingleShipGame(t *testing.T) *Game {
	t.Helper()

	game, err := NewGame("single", WithSeed(1), WithGridSize(3), WithFleetTemplate(singleShipTemplate))
	require.NoError(t, err)

	playerGrid := Place(NewGrid(3), 0, 0, 1, Horizontal)
	require.NoError(t, game.Start(playerGrid))
	require.Equal(t, TurnPlayer, game.Turn())

	game.opponentGrid = Place(NewGrid(3), 2, 2, 1, Horizontal)
	return game
}

func TestNewGameOptions(t *testing.T) {
	before := time.Now()
	game, err := NewGame("abc123")
	require.NoError(t, err)
	require.False(t, game.CreatedAt().Before(before))
	require.False(t, game.CreatedAt().After(time.Now()))
	require.Equal(t, "abc123", game.Uuid())
	require.Equal(t, GridSize, game.Size())
	require.Equal(t, TurnSetup, game.Turn())

	_, err = NewGame("bad", WithGridSize(0))
	require.Error(t, err)

	_, err = NewGame("bad", WithFleetTemplate(FleetTemplate{}))
	require.Error(t, err)

	_, err = NewGame("bad", WithRand(nil))
	require.Error(t, err)
}

func TestSingleShipPlayerWins(t *testing.T) {
	game := newSingleShipGame(t)

	result, err := game.Fire(2, 2)
	require.NoError(t, err)
	require.Equal(t, OutcomeHit, result.Outcome)
	require.True(t, result.Sunk)
	require.Equal(t, []Coordinates{{X: 2, Y: 2}}, result.SunkCoordinates)
	require.True(t, result.GameOver)
	require.Equal(t, SidePlayer, result.Winner)
	require.Equal(t, TurnGameOver, result.NextTurn)

	winner, over := game.Winner()
	require.True(t, over)
	require.Equal(t, SidePlayer, winner)

	_, err = game.Fire(0, 0)
	require.True(t, errors.Is(err, cerr.ErrGameAlreadyOver))
	_, err = game.ComputerTurn()
	require.True(t, errors.Is(err, cerr.ErrGameAlreadyOver))

	playerShots, computerShots := game.Shots()
	require.Equal(t, 1, playerShots)
	require.Equal(t, 0, computerShots)
}

func TestSingleShipComputerWins(t *testing.T) {
	game := newSingleShipGame(t)

	// The computer already searched everything but the player's ship
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			if x != 0 || y != 0 {
				game.targeting.RecordShot(NewCoordinates(x, y), OutcomeMiss, false)
			}
		}
	}

	result, err := game.Fire(0, 0)
	require.NoError(t, err)
	require.Equal(t, OutcomeMiss, result.Outcome)
	require.Equal(t, TurnComputer, result.NextTurn)

	result, err = game.ComputerTurn()
	require.NoError(t, err)
	require.Equal(t, 0, result.X)
	require.Equal(t, 0, result.Y)
	require.Equal(t, OutcomeHit, result.Outcome)
	require.True(t, result.Sunk)
	require.True(t, result.GameOver)
	require.Equal(t, SideComputer, result.Winner)
	require.Equal(t, CellSunk, game.BoardView(BoardPlayer)[0][0])
}

// A lone length-1 ship at (0,0) on a full size grid goes down with a
// single shot, whichever side fires it.
func TestSingleShipOnFullGrid(t *testing.T) {
	lone := Place(NewGrid(GridSize), 0, 0, 1, Horizontal)

	game, err := NewGame("lone", WithSeed(7), WithGridSize(GridSize), WithFleetTemplate(singleShipTemplate))
	require.NoError(t, err)
	require.NoError(t, game.Start(lone))
	require.Equal(t, 1, game.opponentGrid.Count(CellShipPart))

	game.opponentGrid = lone.Clone()
	result, err := game.Fire(0, 0)
	require.NoError(t, err)
	require.Equal(t, OutcomeHit, result.Outcome)
	require.True(t, result.Sunk)
	require.Equal(t, []Coordinates{{X: 0, Y: 0}}, result.SunkCoordinates)
	require.True(t, result.GameOver)
	require.Equal(t, SidePlayer, result.Winner)
	require.Equal(t, CellSunk, game.opponentGrid[0][0])

	game, err = NewGame("lone", WithSeed(8), WithGridSize(GridSize), WithFleetTemplate(singleShipTemplate))
	require.NoError(t, err)
	require.NoError(t, game.Start(lone))
	game.opponentGrid = Place(NewGrid(GridSize), 9, 9, 1, Horizontal)
	game.targeting.RecordShot(NewCoordinates(1, 0), OutcomeHit, false)

	result, err = game.Fire(5, 5)
	require.NoError(t, err)
	require.Equal(t, TurnComputer, result.NextTurn)

	// Pursuing from (1,0) with right and down ruled out leaves only (0,0)
	game.targeting.exhausted[DirectionRight] = struct{}{}
	game.targeting.exhausted[DirectionDown] = struct{}{}
	result, err = game.ComputerTurn()
	require.NoError(t, err)
	require.Equal(t, NewCoordinates(0, 0), NewCoordinates(result.X, result.Y))
	require.True(t, result.Sunk)
	require.True(t, result.GameOver)
	require.Equal(t, SideComputer, result.Winner)
}

func TestOutOfTurnLeavesStateUnchanged(t *testing.T) {
	game := newSingleShipGame(t)
	before := game.BoardView(BoardPlayer)

	_, err := game.ComputerTurn()
	require.True(t, errors.Is(err, cerr.ErrWrongTurn))
	require.Equal(t, TurnPlayer, game.Turn())
	require.Equal(t, before, game.BoardView(BoardPlayer))

	result, err := game.Fire(1, 1)
	require.NoError(t, err)
	require.Equal(t, TurnComputer, result.NextTurn)

	opponentBefore := game.BoardView(BoardOpponent)
	_, err = game.Fire(0, 1)
	require.True(t, errors.Is(err, cerr.ErrWrongTurn))
	require.Equal(t, opponentBefore, game.BoardView(BoardOpponent))
}

func TestFireAlreadyShotKeepsTurn(t *testing.T) {
	game, err := NewGame("twoships", WithSeed(2), WithGridSize(4), WithFleetTemplate(FleetTemplate{{Length: 2, Count: 1}}))
	require.NoError(t, err)
	require.NoError(t, game.Start(Place(NewGrid(4), 0, 0, 2, Horizontal)))
	game.opponentGrid = Place(NewGrid(4), 1, 3, 2, Horizontal)

	result, err := game.Fire(1, 3)
	require.NoError(t, err)
	require.Equal(t, OutcomeHit, result.Outcome)
	require.False(t, result.Sunk)
	require.Equal(t, TurnPlayer, result.NextTurn)

	result, err = game.Fire(1, 3)
	require.NoError(t, err)
	require.Equal(t, OutcomeAlreadyShot, result.Outcome)
	require.Equal(t, TurnPlayer, result.NextTurn)

	playerShots, _ := game.Shots()
	require.Equal(t, 1, playerShots)

	_, err = game.Fire(4, 0)
	require.True(t, errors.Is(err, cerr.ErrOutOfBounds))
	require.Equal(t, TurnPlayer, game.Turn())
}

func TestStartRejectsInvalidFleet(t *testing.T) {
	game, err := NewGame("invalid", WithSeed(3))
	require.NoError(t, err)

	err = game.Start(NewGrid(GridSize))
	require.True(t, errors.Is(err, cerr.ErrInvalidPlacement))
	require.Equal(t, TurnSetup, game.Turn())

	err = game.StartBattle()
	require.True(t, errors.Is(err, cerr.ErrInvalidPlacement))
	require.Equal(t, TurnSetup, game.Turn())
}

func TestStartFailsWhenOpponentCannotBePlaced(t *testing.T) {
	game, err := NewGame("cramped", WithSeed(4))
	require.NoError(t, err)

	layouts := 0
	game.layoutFleet = func(_ *rand.Rand, _ int, template FleetTemplate) (Grid, error) {
		layouts++
		return nil, cerr.ErrShipPlacementExhausted(template[0].Length, MaxPlacementAttempts)
	}

	require.NoError(t, game.RandomizePlacement())
	placedBefore, remainingBefore, orientationBefore, err := game.PlacementSnapshot()
	require.NoError(t, err)

	err = game.StartBattle()
	require.True(t, errors.Is(err, cerr.ErrPlacementExhausted))
	require.Equal(t, MaxFleetGenerations, layouts)
	require.Equal(t, TurnSetup, game.Turn())

	placedAfter, remainingAfter, orientationAfter, err := game.PlacementSnapshot()
	require.NoError(t, err)
	require.Equal(t, placedBefore, placedAfter)
	require.Equal(t, remainingBefore, remainingAfter)
	require.Equal(t, orientationBefore, orientationAfter)
	require.Equal(t, NewGrid(GridSize), game.BoardView(BoardOpponent))

	err = game.Start(fixedFleetGrid())
	require.True(t, errors.Is(err, cerr.ErrPlacementExhausted))
	require.Equal(t, 2*MaxFleetGenerations, layouts)
	require.Equal(t, TurnSetup, game.Turn())
}

func TestStartStopsOnInvalidTemplateError(t *testing.T) {
	game, err := NewGame("broken", WithSeed(4))
	require.NoError(t, err)

	layouts := 0
	game.layoutFleet = func(*rand.Rand, int, FleetTemplate) (Grid, error) {
		layouts++
		return nil, cerr.ErrInvalidFleet("ship length must be positive, got 0")
	}

	err = game.Start(fixedFleetGrid())
	require.True(t, errors.Is(err, cerr.ErrInvalidPlacement))
	require.Equal(t, 1, layouts)
	require.Equal(t, TurnSetup, game.Turn())
}

func TestSetupOperationsOnlyInSetup(t *testing.T) {
	game, err := NewGame("setup", WithSeed(5))
	require.NoError(t, err)

	require.NoError(t, game.SetOrientation(Vertical))
	length, err := game.PlaceShip(0, 0)
	require.NoError(t, err)
	require.Equal(t, 4, length)
	require.Equal(t, CellShipPart, game.BoardView(BoardPlayer)[3][0])

	require.NoError(t, game.ResetPlacement())
	require.Equal(t, 0, game.BoardView(BoardPlayer).Count(CellShipPart))

	require.NoError(t, game.RandomizePlacement())
	grid, remaining, orientation, err := game.PlacementSnapshot()
	require.NoError(t, err)
	require.Equal(t, 0, remaining.ShipCount())
	require.Equal(t, Vertical, orientation)
	require.Equal(t, DefaultFleetTemplate.CellCount(), grid.Count(CellShipPart))

	require.NoError(t, game.StartBattle())
	require.Equal(t, TurnPlayer, game.Turn())

	_, err = game.PlaceShip(0, 0)
	require.True(t, errors.Is(err, cerr.ErrNotInSetup))
	require.True(t, errors.Is(game.SetOrientation(Horizontal), cerr.ErrNotInSetup))
	require.True(t, errors.Is(game.RandomizePlacement(), cerr.ErrNotInSetup))
	require.True(t, errors.Is(game.ResetPlacement(), cerr.ErrNotInSetup))
	require.True(t, errors.Is(game.Start(grid), cerr.ErrNotInSetup))
	_, _, _, err = game.PlacementSnapshot()
	require.True(t, errors.Is(err, cerr.ErrNotInSetup))
}

func TestBoardViewRedactsOpponentShips(t *testing.T) {
	game, err := NewGame("redact", WithSeed(6))
	require.NoError(t, err)

	require.Equal(t, NewGrid(GridSize), game.BoardView(BoardOpponent))

	require.NoError(t, game.Start(fixedFleetGrid()))
	require.Equal(t, DefaultFleetTemplate.CellCount(), game.BoardView(BoardPlayer).Count(CellShipPart))
	require.Equal(t, 0, game.BoardView(BoardOpponent).Count(CellShipPart))

	// Fire until something is hit, the hit must show up
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			if game.Turn() != TurnPlayer {
				return
			}
			result, err := game.Fire(x, y)
			require.NoError(t, err)

			view := game.BoardView(BoardOpponent)
			require.Equal(t, 0, view.Count(CellShipPart))
			if result.Outcome == OutcomeHit {
				require.True(t, view[y][x].IsHitEquivalent())
			} else {
				require.Equal(t, CellMiss, view[y][x])
			}
		}
	}
}

func TestRematchGoesBackToSetup(t *testing.T) {
	game := newSingleShipGame(t)
	_, err := game.Fire(2, 2)
	require.NoError(t, err)

	game.Rematch()

	require.Equal(t, TurnSetup, game.Turn())
	_, over := game.Winner()
	require.False(t, over)
	playerShots, computerShots := game.Shots()
	require.Zero(t, playerShots)
	require.Zero(t, computerShots)
	require.Equal(t, 0, game.targeting.FiredCount())

	_, remaining, _, err := game.PlacementSnapshot()
	require.NoError(t, err)
	require.Equal(t, singleShipTemplate.ShipCount(), remaining.ShipCount())
}

// Plays full default games where the player sweeps the grid row by row.
func TestFullGameRunsToCompletion(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		game, err := NewGame("full", WithSeed(seed))
		require.NoError(t, err)
		require.NoError(t, game.RandomizePlacement())
		require.NoError(t, game.StartBattle())

		next := 0
		for turns := 0; game.Turn() != TurnGameOver; turns++ {
			require.Less(t, turns, 2*GridSize*GridSize+2, "seed %d", seed)

			switch game.Turn() {
			case TurnPlayer:
				result, err := game.Fire(next%GridSize, next/GridSize)
				require.NoError(t, err)
				require.NotEqual(t, OutcomeAlreadyShot, result.Outcome)
				next++

			case TurnComputer:
				result, err := game.ComputerTurn()
				require.NoError(t, err)
				require.NotEqual(t, OutcomeAlreadyShot, result.Outcome)
			}
		}

		winner, over := game.Winner()
		require.True(t, over)

		_, computerShots := game.Shots()
		playerBoard := game.BoardView(BoardPlayer)
		resolved := playerBoard.Count(CellHit) + playerBoard.Count(CellSunk) + playerBoard.Count(CellMiss)
		require.Equal(t, computerShots, resolved, "computer fired at a cell twice")

		if winner == SideComputer {
			require.True(t, AllSunk(playerBoard))
		} else {
			require.Equal(t, SidePlayer, winner)
			require.True(t, AllSunk(game.opponentGrid))
		}
	}
}
