package battleship

import (
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

// Side is one of the two contenders of a game.
type Side int

const (
	SideNone Side = iota
	SidePlayer
	SideComputer
)

func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideComputer:
		return "computer"
	default:
		return "none"
	}
}

func (s Side) Opponent() Side {
	switch s {
	case SidePlayer:
		return SideComputer
	case SideComputer:
		return SidePlayer
	default:
		return SideNone
	}
}

// Board selects which grid of a game a view is taken from.
type Board int

const (
	// The human's own fleet with the computer's shots on it
	BoardPlayer Board = iota
	// The computer's fleet as the human is allowed to see it
	BoardOpponent
)

func (b Board) String() string {
	if b == BoardOpponent {
		return "opponent"
	}
	return "player"
}

func ParseBoard(name string) (Board, error) {
	switch name {
	case "player", "":
		return BoardPlayer, nil
	case "opponent":
		return BoardOpponent, nil
	default:
		return BoardPlayer, cerr.ErrInvalidBoardName(name)
	}
}
