package config

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader    websocket.Upgrader
	ReadLimit   int64
	IdleTimeout time.Duration
	WriteWait   time.Duration
}

// NewWebSocket accepts any origin unless WS_ALLOWED_ORIGINS lists them
// (comma separated).
func NewWebSocket() (*WebSocket, error) {
	var allowed map[string]bool
	if origins := os.Getenv("WS_ALLOWED_ORIGINS"); origins != "" {
		allowed = make(map[string]bool)
		for _, origin := range strings.Split(origins, ",") {
			allowed[strings.TrimSpace(origin)] = true
		}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowed == nil {
				return true
			}
			return allowed[r.Header.Get("Origin")]
		},
	}

	readLimit, err := strconv.ParseInt(lookupDefault("WS_READ_LIMIT", "4096"), 10, 64)
	if err != nil || readLimit <= 0 {
		return nil, fmt.Errorf("invalid WS_READ_LIMIT: %q", os.Getenv("WS_READ_LIMIT"))
	}

	idleTimeout, err := time.ParseDuration(lookupDefault("WS_IDLE_TIMEOUT", "10m"))
	if err != nil || idleTimeout <= 0 {
		return nil, fmt.Errorf("invalid WS_IDLE_TIMEOUT: %q", os.Getenv("WS_IDLE_TIMEOUT"))
	}

	ws := &WebSocket{
		Upgrader:    upgrader,
		ReadLimit:   readLimit,
		IdleTimeout: idleTimeout,
		WriteWait:   10 * time.Second,
	}

	return ws, nil
}
