package connection

import (
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespCreateGame struct {
	GameUuid string           `json:"game_uuid"`
	GridSize int              `json:"grid_size"`
	Fleet    mb.FleetTemplate `json:"fleet"`
}

type RespPlacement struct {
	Grid        mb.Grid          `json:"grid"`
	Remaining   mb.FleetTemplate `json:"remaining"`
	Orientation string           `json:"orientation"`
	PlacedShip  int              `json:"placed_ship,omitempty"`
	IsComplete  bool             `json:"is_complete"`
}

type RespStartGame struct {
	GameUuid string `json:"game_uuid"`
	Turn     string `json:"turn"`
}

type RespAttack struct {
	X               int              `json:"x"`
	Y               int              `json:"y"`
	Outcome         string           `json:"outcome"`
	Sunk            bool             `json:"sunk"`
	SunkCoordinates []mb.Coordinates `json:"sunk_coordinates,omitempty"`
	IsTurn          bool             `json:"is_turn"`
	GameOver        bool             `json:"game_over"`
	Winner          string           `json:"winner,omitempty"`
	NextTurn        string           `json:"next_turn"`
}

// NewRespAttack builds the attack response as seen by the human player.
func NewRespAttack(result mb.FireResult) RespAttack {
	resp := RespAttack{
		X:               result.X,
		Y:               result.Y,
		Outcome:         result.Outcome.String(),
		Sunk:            result.Sunk,
		SunkCoordinates: result.SunkCoordinates,
		IsTurn:          result.NextTurn == mb.TurnPlayer,
		GameOver:        result.GameOver,
		NextTurn:        result.NextTurn.String(),
	}
	if result.GameOver {
		resp.Winner = result.Winner.String()
	}
	return resp
}

type RespBoardView struct {
	Board string  `json:"board"`
	Grid  mb.Grid `json:"grid"`
}

type RespEndGame struct {
	Winner        string `json:"winner"`
	PlayerShots   int    `json:"player_shots"`
	ComputerShots int    `json:"computer_shots"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
