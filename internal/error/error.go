package error

import (
	"errors"
	"fmt"
)

// Sentinels for the failure classes callers branch on.
// Constructors below wrap them with the offending values.
var (
	ErrOutOfBounds        = errors.New("coordinates out of grid bound")
	ErrInvalidPlacement   = errors.New("invalid fleet placement")
	ErrPlacementExhausted = errors.New("random placement exhausted its retry budget")
	ErrWrongTurn          = errors.New("not this side's turn")
	ErrGameAlreadyOver    = errors.New("game is already over")
	ErrNotInSetup         = errors.New("game is not in setup phase")
	ErrFleetAlreadyPlaced = errors.New("every ship of the fleet is already placed")
	ErrNoUntriedCell      = errors.New("no untried cell left on the grid")
	ErrGameNotExists      = errors.New("game does not exist")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionConnected   = errors.New("session is not waiting for a reconnect")
)

// Short messages sent to clients next to the error details.
const (
	ConstErrAttackFailed       = "attack operation failed"
	ConstErrComputerTurnFailed = "computer turn failed"
	ConstErrCreateGameFailed   = "failed to create game"
	ConstErrPlacementFailed    = "ship placement failed"
	ConstErrStartGameFailed    = "failed to start game"
	ConstErrBoardViewFailed    = "failed to fetch board"
	ConstErrInvalidPayload     = "invalid request payload"
	ConstErrNoGame             = "create a game first"
)

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("%w\tx: %d\ty: %d", ErrOutOfBounds, x, y)
}

func ErrInvalidFleet(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidPlacement, reason)
}

func ErrCannotPlaceShip(x, y, length int, orientation fmt.Stringer) error {
	return fmt.Errorf("%w: ship of length %d cannot be placed %s at x: %d\ty: %d", ErrInvalidPlacement, length, orientation, x, y)
}

func ErrShipPlacementExhausted(length, attempts int) error {
	return fmt.Errorf("%w: ship of length %d after %d attempts", ErrPlacementExhausted, length, attempts)
}

func ErrNotTurnFor(side fmt.Stringer) error {
	return fmt.Errorf("%w: %s", ErrWrongTurn, side)
}

func ErrGameFinished(gameUuid string) error {
	return fmt.Errorf("%w, uuid: %s", ErrGameAlreadyOver, gameUuid)
}

func ErrGameNotInSetup(gameUuid string) error {
	return fmt.Errorf("%w, uuid: %s", ErrNotInSetup, gameUuid)
}

func ErrGameNotFound(gameUuid string) error {
	return fmt.Errorf("%w, uuid: %s", ErrGameNotExists, gameUuid)
}

func ErrSessionNotFoundWithID(sessionId string) error {
	return fmt.Errorf("%w, id: %s", ErrSessionNotFound, sessionId)
}

func ErrSessionStillConnected(sessionId string) error {
	return fmt.Errorf("%w, id: %s", ErrSessionConnected, sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session is nil, id: %s", sessionId)
}

func ErrNoGameInSession(sessionId string) error {
	return fmt.Errorf("no game is attached to session, id: %s", sessionId)
}

func ErrInvalidBoardName(name string) error {
	return fmt.Errorf("invalid board name: %q", name)
}

func ErrInvalidOrientationName(name string) error {
	return fmt.Errorf("invalid orientation: %q", name)
}
