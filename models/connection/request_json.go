package connection

import (
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

type ReqPlaceShip struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type ReqSetOrientation struct {
	Orientation string `json:"orientation"`
}

// DefenceGrid is optional; without it the fleet placed during setup is used.
type ReqStartGame struct {
	DefenceGrid mb.Grid `json:"defence_grid,omitempty"`
}

type ReqAttack struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type ReqBoardView struct {
	Board string `json:"board"`
}
