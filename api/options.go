package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/saeidalz13/battleship-solo/internal/config"
	mb "github.com/saeidalz13/battleship-solo/models/battleship"
	mc "github.com/saeidalz13/battleship-solo/models/connection"
)

type Option func(*RequestProcessor) error

func WithStage(stage string) Option {
	return func(rp *RequestProcessor) error {
		if stage != config.StageDev && stage != config.StageProd {
			return fmt.Errorf("stage must be either dev or prod, got %q", stage)
		}
		rp.stage = stage
		return nil
	}
}

func WithAllowedOrigins(origins ...string) Option {
	return func(rp *RequestProcessor) error {
		for _, origin := range origins {
			rp.allowedOrigins[origin] = struct{}{}
		}
		return nil
	}
}

func WithGameManager(gameManager mb.GameManager) Option {
	return func(rp *RequestProcessor) error {
		if gameManager == nil {
			return errors.New("game manager must not be nil")
		}
		rp.gameManager = gameManager
		return nil
	}
}

func WithSessionManager(sessionManager mc.SessionManager) Option {
	return func(rp *RequestProcessor) error {
		if sessionManager == nil {
			return errors.New("session manager must not be nil")
		}
		rp.sessionManager = sessionManager
		return nil
	}
}

// CheckOrigin lets every origin through in dev. In prod only the allowed
// origins and clients that send no Origin header (native apps) get in.
func (rp *RequestProcessor) CheckOrigin(r *http.Request) bool {
	if rp.stage != config.StageProd {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	_, allowed := rp.allowedOrigins[origin]
	return allowed
}
