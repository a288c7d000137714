package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/saeidalz13/battleship-solo/db/sqlc"
	"github.com/saeidalz13/battleship-solo/internal/config"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"
)

var fallbackIpNet = net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(32, 32)}

type RequestProcessor struct {
	sessionManager mc.SessionManager
	gameManager    mb.GameManager
	analytics      *sqlc.AnalyticsManager
	upgrader       websocket.Upgrader
	ipnet          net.IPNet
	stage          string
	allowedOrigins map[string]struct{}
}

// NewRequestProcessor wires the websocket endpoint. A nil querier turns
// analytics off.
func NewRequestProcessor(q sqlc.Querier, optFuncs ...Option) (*RequestProcessor, error) {
	rp := &RequestProcessor{
		sessionManager: mc.NewBattleshipSessionManager(),
		gameManager:    mb.NewBattleshipGameManager(),
		stage:          config.StageDev,
		allowedOrigins: make(map[string]struct{}),
	}

	for _, opt := range optFuncs {
		if err := opt(rp); err != nil {
			return nil, err
		}
	}

	rp.upgrader = websocket.Upgrader{
		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: time.Second * 5,

		// probably more than enough but this is a good average size
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin:     rp.CheckOrigin,
	}

	ipnet, err := getServerIpNet()
	if err != nil {
		log.Warn("server ip not found, analytics keyed by loopback", "err", err)
		ipnet = fallbackIpNet
	}
	rp.ipnet = ipnet

	if q != nil {
		rp.analytics = sqlc.NewDbManager(q, rp.ipnet).Analytics
	}
	return rp, nil
}

func getServerIpNet() (net.IPNet, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return net.IPNet{}, err
	}

	for _, iface := range ifaces {
		// If the flag is down
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			return net.IPNet{}, err
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}

			if ipnet.IP.To4() != nil && !ipnet.IP.IsLoopback() {
				return *ipnet, nil
			}
		}
	}

	return net.IPNet{}, errors.New("no non-loopback ipv4 interface is up")
}

// Expose this method to use it in testing
func (rp *RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp *RequestProcessor) SessionManager() mc.SessionManager {
	return rp.sessionManager
}

func (rp *RequestProcessor) GameManager() mb.GameManager {
	return rp.gameManager
}

// NewMux routes the websocket endpoint and the health check.
func NewMux(rp *RequestProcessor) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /battleship", rp)
	mux.HandleFunc("GET /health", HandleHealth)
	return mux
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (rp *RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Upgrade replies to the client itself on failure
	conn, err := rp.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("could not open websocket connection", "addr", r.RemoteAddr, "err", err)
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	if sessionIdQuery == "" {
		log.Info("a new connection established", "addr", conn.RemoteAddr().String())
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))
		return
	}

	rp.reconnect(sessionIdQuery, conn)
}

// reconnect attaches conn to a session waiting for its client after an
// abnormal closure. The goroutine already serving that session greets the
// client and keeps reading from the new connection. Unknown sessions and
// sessions that are still connected are refused.
func (rp *RequestProcessor) reconnect(sessionId string, conn *websocket.Conn) {
	if _, err := rp.sessionManager.ReconnectSession(sessionId, conn); err != nil {
		log.Warn("reconnect refused", "session", sessionId, "addr", conn.RemoteAddr().String(), "err", err)

		msg := mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID)
		msg.AddError(err.Error(), "session cannot be resumed, connect without a session id")
		_ = conn.WriteJSON(msg)
		_ = conn.Close()
	}
}

// recordAnalytics runs one counter update. Failures are logged only, a game
// never depends on analytics.
func (rp *RequestProcessor) recordAnalytics(event string, increment func(*sqlc.AnalyticsManager, context.Context) error) {
	if rp.analytics == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	if err := increment(rp.analytics, ctx); err != nil {
		log.Error("analytics update failed", "event", event, "err", err)
	}
}

func (rp *RequestProcessor) recordWinner(game *mb.Game) {
	winner, over := game.Winner()
	if !over {
		return
	}

	switch winner {
	case mb.SidePlayer:
		rp.recordAnalytics("player_wins", (*sqlc.AnalyticsManager).IncrementPlayerWinsCount)
	case mb.SideComputer:
		rp.recordAnalytics("computer_wins", (*sqlc.AnalyticsManager).IncrementComputerWinsCount)
	}
}

func (rp *RequestProcessor) processSessionRequests(session *mc.Session) {
	sessionId := session.Id()

	defer func() {
		if game := session.Game(); game != nil {
			rp.gameManager.TerminateGame(game.Uuid())
		}
		if conn := session.Conn(); conn != nil {
			_ = conn.Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
		log.Info("session terminated", "session", sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// Retries are done by now, the connection could not be recovered
			break sessionLoop
		}

		var signal mc.Signal
		if err := json.Unmarshal(payload, &signal); err != nil || signal.Code == nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError("incoming req payload must contain 'code' field", "")
			if err = rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		req := NewRequest(sessionId, payload)
		game := session.Game()

		var respMsg interface{}
		gameOver := false

		switch *signal.Code {
		case mc.CodeCreateGame:
			// A session plays one game at a time
			if game != nil {
				rp.gameManager.TerminateGame(game.Uuid())
			}
			newGame, msg := req.HandleCreateGame(rp.gameManager)
			session.SetGame(newGame)
			respMsg = msg

		case mc.CodePlaceShip:
			respMsg = req.HandlePlaceShip(game)

		case mc.CodeSetOrientation:
			respMsg = req.HandleSetOrientation(game)

		case mc.CodeRandomPlacement:
			respMsg = req.HandleRandomPlacement(game)

		case mc.CodeResetPlacement:
			respMsg = req.HandleResetPlacement(game)

		case mc.CodeStartGame:
			msg := req.HandleStartGame(game)
			if msg.Error == nil {
				rp.recordAnalytics("games_created", (*sqlc.AnalyticsManager).IncrementGamesCreatedCount)
			}
			respMsg = msg

		// Every shot that ends the game is followed by CodeEndGame
		case mc.CodeAttack:
			msg := req.HandleAttack(game)
			gameOver = msg.Error == nil && msg.Payload.GameOver
			respMsg = msg

		case mc.CodeComputerTurn:
			msg := req.HandleComputerTurn(game)
			gameOver = msg.Error == nil && msg.Payload.GameOver
			respMsg = msg

		case mc.CodeBoardView:
			respMsg = req.HandleBoardView(game)

		case mc.CodeRematch:
			msg := req.HandleRematch(game)
			if msg.Error == nil {
				rp.recordAnalytics("rematch_called", (*sqlc.AnalyticsManager).IncrementRematchCalledCount)
			}
			respMsg = msg

		default:
			msg := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			msg.AddError("", "invalid code in the incoming payload")
			respMsg = msg
		}

		if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
			break sessionLoop
		}

		if gameOver {
			rp.recordWinner(game)
			log.Info("game over", "session", sessionId, "game", game.Uuid(), "duration", time.Since(game.CreatedAt()).Round(time.Second))
			if err := rp.sessionManager.WriteToSessionConn(session, NewEndGameMessage(game), mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
		}
	}
}
