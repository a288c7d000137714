package battleship

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	cerr "github.com/saeidalz13/battleship-solo/internal/error"
)

type GameManager interface {
	CreateGame() (*Game, error)
	GetGame(gameUuid string) (*Game, error)
	StartSession(playerGrid Grid) (*Game, error)
	TerminateGame(gameUuid string)
	Count() int
}

type BattleshipGameManager struct {
	games    map[string]*Game
	gameOpts []GameOption
	mu       sync.RWMutex
}

var _ GameManager = (*BattleshipGameManager)(nil)

// NewBattleshipGameManager returns a manager whose games are all created
// with gameOpts.
func NewBattleshipGameManager(gameOpts ...GameOption) *BattleshipGameManager {
	return &BattleshipGameManager{
		games:    make(map[string]*Game, 10),
		gameOpts: gameOpts,
	}
}

func (bgm *BattleshipGameManager) CreateGame() (*Game, error) {
	bgm.mu.Lock()
	defer bgm.mu.Unlock()

	gameUuid := uuid.NewString()[:6]
	for {
		if _, prs := bgm.games[gameUuid]; !prs {
			break
		}
		gameUuid = uuid.NewString()[:6]
	}

	game, err := NewGame(gameUuid, bgm.gameOpts...)
	if err != nil {
		return nil, err
	}
	bgm.games[gameUuid] = game

	log.Debug("game created", "uuid", gameUuid, "games", len(bgm.games))
	return game, nil
}

func (bgm *BattleshipGameManager) GetGame(gameUuid string) (*Game, error) {
	bgm.mu.RLock()
	game, prs := bgm.games[gameUuid]
	bgm.mu.RUnlock()
	if !prs {
		return nil, cerr.ErrGameNotFound(gameUuid)
	}

	return game, nil
}

// StartSession creates a game and starts it straight away with playerGrid.
// A game that fails to start is not kept.
func (bgm *BattleshipGameManager) StartSession(playerGrid Grid) (*Game, error) {
	game, err := bgm.CreateGame()
	if err != nil {
		return nil, err
	}

	if err := game.Start(playerGrid); err != nil {
		bgm.TerminateGame(game.Uuid())
		return nil, err
	}
	return game, nil
}

func (bgm *BattleshipGameManager) TerminateGame(gameUuid string) {
	bgm.mu.Lock()
	defer bgm.mu.Unlock()

	if _, prs := bgm.games[gameUuid]; !prs {
		return
	}
	delete(bgm.games, gameUuid)
	log.Debug("game terminated", "uuid", gameUuid)
}

func (bgm *BattleshipGameManager) Count() int {
	bgm.mu.RLock()
	defer bgm.mu.RUnlock()
	return len(bgm.games)
}
