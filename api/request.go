package api

import (
	"encoding/json"

	"github.com/charmbracelet/log"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

// Every incoming valid request will have this structure.
// Each handler decodes the payload it expects and answers with
// the message to write back, carrying an error if it failed.
type Request struct {
	sessionId string
	payload   []byte
}

func NewRequest(sessionId string, payload ...[]byte) Request {
	if len(payload) > 1 {
		log.Warn("cannot accept more than one payload", "session", sessionId)
	}

	req := Request{sessionId: sessionId}
	if len(payload) != 0 {
		req.payload = payload[0]
	}
	return req
}

func decodePayload[T any](payload []byte) (T, error) {
	var msg mc.Message[T]
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg.Payload, err
	}
	return msg.Payload, nil
}

func (r Request) noGame() *mc.RespErr {
	return mc.NewRespErr(cerr.ErrNoGameInSession(r.sessionId).Error(), cerr.ConstErrNoGame)
}

func (r Request) HandleCreateGame(gameManager mb.GameManager) (*mb.Game, mc.Message[mc.RespCreateGame]) {
	resp := mc.NewMessage[mc.RespCreateGame](mc.CodeCreateGame)

	game, err := gameManager.CreateGame()
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrCreateGameFailed)
		return nil, resp
	}

	_, fleet, _, err := game.PlacementSnapshot()
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrCreateGameFailed)
		return game, resp
	}

	resp.AddPayload(mc.RespCreateGame{
		GameUuid: game.Uuid(),
		GridSize: game.Size(),
		Fleet:    fleet,
	})
	return game, resp
}

// placementResponse answers any setup request with the state of the
// placement after it ran.
func placementResponse(code uint8, game *mb.Game, placedShip int) mc.Message[mc.RespPlacement] {
	resp := mc.NewMessage[mc.RespPlacement](code)

	grid, remaining, orientation, err := game.PlacementSnapshot()
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	resp.AddPayload(mc.RespPlacement{
		Grid:        grid,
		Remaining:   remaining,
		Orientation: orientation.String(),
		PlacedShip:  placedShip,
		IsComplete:  remaining.ShipCount() == 0,
	})
	return resp
}

func (r Request) HandlePlaceShip(game *mb.Game) mc.Message[mc.RespPlacement] {
	if game == nil {
		resp := mc.NewMessage[mc.RespPlacement](mc.CodePlaceShip)
		resp.Error = r.noGame()
		return resp
	}

	req, err := decodePayload[mc.ReqPlaceShip](r.payload)
	if err != nil {
		resp := mc.NewMessage[mc.RespPlacement](mc.CodePlaceShip)
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	length, err := game.PlaceShip(req.X, req.Y)
	if err != nil {
		resp := mc.NewMessage[mc.RespPlacement](mc.CodePlaceShip)
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}
	return placementResponse(mc.CodePlaceShip, game, length)
}

func (r Request) HandleSetOrientation(game *mb.Game) mc.Message[mc.RespPlacement] {
	resp := mc.NewMessage[mc.RespPlacement](mc.CodeSetOrientation)
	if game == nil {
		resp.Error = r.noGame()
		return resp
	}

	req, err := decodePayload[mc.ReqSetOrientation](r.payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	orientation, err := mb.ParseOrientation(req.Orientation)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	if err := game.SetOrientation(orientation); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}
	return placementResponse(mc.CodeSetOrientation, game, 0)
}

func (r Request) HandleRandomPlacement(game *mb.Game) mc.Message[mc.RespPlacement] {
	resp := mc.NewMessage[mc.RespPlacement](mc.CodeRandomPlacement)
	if game == nil {
		resp.Error = r.noGame()
		return resp
	}

	if err := game.RandomizePlacement(); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}
	return placementResponse(mc.CodeRandomPlacement, game, 0)
}

func (r Request) HandleResetPlacement(game *mb.Game) mc.Message[mc.RespPlacement] {
	resp := mc.NewMessage[mc.RespPlacement](mc.CodeResetPlacement)
	if game == nil {
		resp.Error = r.noGame()
		return resp
	}

	if err := game.ResetPlacement(); err != nil {
		resp.AddError(err.Error(), cerr.ConstErrPlacementFailed)
		return resp
	}
	return placementResponse(mc.CodeResetPlacement, game, 0)
}

// HandleStartGame starts the battle either from a grid sent by the client
// or from what was placed ship by ship.
func (r Request) HandleStartGame(game *mb.Game) mc.Message[mc.RespStartGame] {
	resp := mc.NewMessage[mc.RespStartGame](mc.CodeStartGame)
	if game == nil {
		resp.Error = r.noGame()
		return resp
	}

	req, err := decodePayload[mc.ReqStartGame](r.payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	if req.DefenceGrid != nil {
		err = game.Start(req.DefenceGrid)
	} else {
		err = game.StartBattle()
	}
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrStartGameFailed)
		return resp
	}

	log.Info("battle started", "session", r.sessionId, "game", game.Uuid())
	resp.AddPayload(mc.RespStartGame{GameUuid: game.Uuid(), Turn: game.Turn().String()})
	return resp
}

func (r Request) HandleAttack(game *mb.Game) mc.Message[mc.RespAttack] {
	resp := mc.NewMessage[mc.RespAttack](mc.CodeAttack)
	if game == nil {
		resp.Error = r.noGame()
		return resp
	}

	req, err := decodePayload[mc.ReqAttack](r.payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	result, err := game.Fire(req.X, req.Y)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrAttackFailed)
		return resp
	}

	resp.AddPayload(mc.NewRespAttack(result))
	return resp
}

func (r Request) HandleComputerTurn(game *mb.Game) mc.Message[mc.RespAttack] {
	resp := mc.NewMessage[mc.RespAttack](mc.CodeComputerTurn)
	if game == nil {
		resp.Error = r.noGame()
		return resp
	}

	result, err := game.ComputerTurn()
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrComputerTurnFailed)
		return resp
	}

	resp.AddPayload(mc.NewRespAttack(result))
	return resp
}

func (r Request) HandleBoardView(game *mb.Game) mc.Message[mc.RespBoardView] {
	resp := mc.NewMessage[mc.RespBoardView](mc.CodeBoardView)
	if game == nil {
		resp.Error = r.noGame()
		return resp
	}

	req, err := decodePayload[mc.ReqBoardView](r.payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	board, err := mb.ParseBoard(req.Board)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrBoardViewFailed)
		return resp
	}

	resp.AddPayload(mc.RespBoardView{Board: board.String(), Grid: game.BoardView(board)})
	return resp
}

func (r Request) HandleRematch(game *mb.Game) mc.Message[mc.RespPlacement] {
	if game == nil {
		resp := mc.NewMessage[mc.RespPlacement](mc.CodeRematch)
		resp.Error = r.noGame()
		return resp
	}

	game.Rematch()
	return placementResponse(mc.CodeRematch, game, 0)
}

func NewEndGameMessage(game *mb.Game) mc.Message[mc.RespEndGame] {
	resp := mc.NewMessage[mc.RespEndGame](mc.CodeEndGame)

	winner, _ := game.Winner()
	playerShots, computerShots := game.Shots()
	resp.AddPayload(mc.RespEndGame{
		Winner:        winner.String(),
		PlayerShots:   playerShots,
		ComputerShots: computerShots,
	})
	return resp
}
