package connection

import (
	"context"
	"encoding/base64"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	CleanupPeriodically(ctx context.Context)

	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	ReconnectSession(sessionId string, conn *websocket.Conn) (*Session, error)
	HandleAbnormalClosureSession(session *Session) error
	Count() int

	WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error
	ReadFromSessionConn(session *Session) (int, []byte, error)
}

type BattleshipSessionManager struct {
	cleanupInterval time.Duration
	gracePeriod     time.Duration
	sessions        map[string]*Session
	mu              sync.RWMutex
}

func NewBattleshipSessionManager() *BattleshipSessionManager {
	initMapSize := 10

	return &BattleshipSessionManager{
		sessions:        make(map[string]*Session, initMapSize),
		cleanupInterval: time.Minute * 20,
		gracePeriod:     gracePeriod,
	}
}

var _ SessionManager = (*BattleshipSessionManager)(nil)

func (bsm *BattleshipSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
	session := NewSession(sessionId, conn)

	bsm.mu.Lock()
	bsm.sessions[sessionId] = session
	bsm.mu.Unlock()

	return session
}

func (bsm *BattleshipSessionManager) FindSession(sessionId string) (*Session, error) {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	session, prs := bsm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotFoundWithID(sessionId)
	}

	if session == nil {
		return nil, cerr.ErrSessionIsNil(sessionId)
	}

	return session, nil
}

func (bsm *BattleshipSessionManager) TerminateSession(sessionId string) {
	bsm.mu.Lock()
	defer bsm.mu.Unlock()
	delete(bsm.sessions, sessionId)
}

// ReconnectSession hands a fresh connection to a session whose previous
// connection closed abnormally. The goroutine serving that session picks
// it up, greets the client and carries on with the same game. Sessions
// that are not waiting for their client are refused.
func (bsm *BattleshipSessionManager) ReconnectSession(sessionId string, conn *websocket.Conn) (*Session, error) {
	session, err := bsm.FindSession(sessionId)
	if err != nil {
		return nil, err
	}

	if err := session.reconnectionAfterAbnormalClosure(conn); err != nil {
		return nil, err
	}
	session.touch()
	log.Info("session reconnected", "session", sessionId, "addr", session.remoteAddr())
	return session, nil
}

func (bsm *BattleshipSessionManager) Count() int {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()
	return len(bsm.sessions)
}

// To ensure that there is no dangling sessions, the session
// manager removes the ones idle for longer than the cleanup
// interval. It returns once ctx is done.
func (bsm *BattleshipSessionManager) CleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(bsm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bsm.removeIdleSessions()
		}
	}
}

func (bsm *BattleshipSessionManager) removeIdleSessions() {
	bsm.mu.Lock()
	defer bsm.mu.Unlock()

	for id, session := range bsm.sessions {
		if session.idleFor() > bsm.cleanupInterval {
			// Unblocks the serving goroutine so it releases the game
			session.close()
			delete(bsm.sessions, id)
			log.Info("removed idle session", "session", id)
		}
	}
}

// This function takes care of abnormal closures. This happens due
// to backgrounding in mobile clients or any other unexpected reasons
// for web apps. A session with a game waits for the client to come
// back within the grace period.
func (bsm *BattleshipSessionManager) HandleAbnormalClosureSession(s *Session) error {
	return bsm.waitForReconnect(s, s.Conn())
}

// waitForReconnect returns as soon as the session holds a connection
// other than failedConn.
func (bsm *BattleshipSessionManager) waitForReconnect(s *Session, failedConn *websocket.Conn) error {
	// Nothing to resume, so this session is over
	if s.Game() == nil {
		return NewConnErr(ConnLoopBreak).AddDesc("no game attached to session")
	}

	reconnected, ok := s.awaitReconnect(failedConn)
	if !ok {
		return nil
	}

	timer := time.NewTimer(bsm.gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		if s.stopAwaitingReconnect() {
			log.Info("player reconnected as grace period ended", "session", s.id)
			return nil
		}
		log.Info("grace period is over", "session", s.id)
		return NewConnErr(ConnLoopBreak).AddDesc("grace period is over for session: " + s.id)

	case <-reconnected:
		log.Info("player reconnected", "session", s.id)
		return nil
	}
}

// resume waits for the client to come back and tells it over the new
// connection that its session is alive.
func (bsm *BattleshipSessionManager) resume(s *Session, failedConn *websocket.Conn) error {
	if err := bsm.waitForReconnect(s, failedConn); err != nil {
		return err
	}

	msg := NewMessage[RespSessionId](CodeSessionID)
	msg.AddPayload(RespSessionId{SessionID: s.id})
	return s.writeToConnWithRetry(msg, MessageTypeJSON)
}

func (bsm *BattleshipSessionManager) WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error {
	conn := session.Conn()
	err := session.writeToConnWithRetry(msg, msgType)
	if err == nil {
		return nil
	}

	if ConnErrCode(err) == ConnLoopAbnormalClosureRetry {
		if err := bsm.resume(session, conn); err != nil {
			return err
		}
		// The reconnected client asks for state again; the lost frame is not resent
		return nil
	}
	return err
}

func (bsm *BattleshipSessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	var retries uint8

	for {
		conn := session.Conn()
		if conn == nil {
			return -1, []byte{}, NewConnErr(ConnLoopBreak).AddDesc("session has no connection")
		}

		messageType, payload, err := conn.ReadMessage()
		if err == nil {
			session.touch()
			return messageType, payload, nil
		}

		switch session.handleReadFromConnErr(err, retries) {
		case ConnLoopContinue:
			retries++
			continue

		case ConnLoopAbnormalClosureRetry:
			if err := bsm.resume(session, conn); err != nil {
				return -1, []byte{}, err
			}
			retries = 0

		default:
			return -1, []byte{}, err
		}
	}
}
