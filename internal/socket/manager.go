// Package socket serves the chat over WebSocket connections.
package socket

import (
	"log/slog"
	"sync"

	"github.com/ashureev/adolai/internal/metrics"
	"github.com/coder/websocket"
)

// tab identifies one browser tab of one user.
type tab struct {
	userID    string
	sessionID string
}

// SessionManager holds at most one live chat socket per tab. A tab that
// reconnects takes the slot over and the older socket is closed.
type SessionManager struct {
	mu    sync.Mutex
	conns map[tab]*websocket.Conn
}

// NewSessionManager creates an empty session manager.
func NewSessionManager() *SessionManager {
	return &SessionManager{conns: make(map[tab]*websocket.Conn)}
}

// Register takes the tab's slot for conn and reports whether an older
// socket was displaced.
func (m *SessionManager) Register(userID, sessionID string, conn *websocket.Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := tab{userID, sessionID}
	old, replaced := m.conns[key]
	if replaced && old != conn {
		_ = old.Close(websocket.StatusPolicyViolation, "opened in another connection")
	}
	m.conns[key] = conn
	metrics.SocketConnections.Set(float64(len(m.conns)))
	slog.Info("Chat socket registered", "user_id", userID, "session_id", sessionID, "replaced", replaced)
	return replaced
}

// Unregister frees the tab's slot, unless conn was already displaced.
func (m *SessionManager) Unregister(userID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := tab{userID, sessionID}
	if m.conns[key] != conn {
		return
	}
	delete(m.conns, key)
	metrics.SocketConnections.Set(float64(len(m.conns)))
	slog.Info("Chat socket unregistered", "user_id", userID, "session_id", sessionID)
}

// CloseAll closes every socket with StatusGoingAway. The server calls it on
// shutdown because hijacked connections outlive http.Server.Shutdown.
func (m *SessionManager) CloseAll() int {
	m.mu.Lock()
	conns := m.conns
	m.conns = make(map[tab]*websocket.Conn)
	metrics.SocketConnections.Set(0)
	m.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
	return len(conns)
}
