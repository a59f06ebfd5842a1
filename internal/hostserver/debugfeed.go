package hostserver

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"rollbackgame/internal/gamecore"
	"rollbackgame/internal/netcode"
)

// maxDebugFeedClients bounds how many spectator connections the debug
// feed accepts, a fixed limit rather than a per-IP one since this feed
// is meant for a handful of observers, not the public.
const maxDebugFeedClients = 32

var debugUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// debugFrame is one tick's speculative-world snapshot, broadcast to every
// connected spectator. It is for humans watching a match, not for
// driving another peer's simulation — peers exchange netcode packets
// over the UDP transport instead.
type debugFrame struct {
	Frame      netcode.Frame  `json:"frame"`
	Players    []playerSample `json:"players"`
}

type playerSample struct {
	Player netcode.PlayerNumber `json:"player"`
	X      float64              `json:"x"`
	Y      float64              `json:"y"`
	Rotation float64            `json:"rotation"`
	Health   int16              `json:"health"`
}

// debugFeedHub fans out debugFrame broadcasts to every connected
// WebSocket spectator, adapted from the teacher's WebSocketHub down to
// the single responsibility this host needs: broadcast-only, no inbound
// client messages.
type debugFeedHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

func newDebugFeedHub() *debugFeedHub {
	return &debugFeedHub{clients: make(map[*websocket.Conn]struct{})}
}

func (h *debugFeedHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	full := len(h.clients) >= maxDebugFeedClients
	h.mu.RUnlock()
	if full {
		http.Error(w, "too many spectators", http.StatusServiceUnavailable)
		return
	}

	conn, err := debugUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go h.readUntilClose(conn)
}

// readUntilClose drains and discards any client messages purely to
// detect disconnects; this feed never reads input from spectators.
func (h *debugFeedHub) readUntilClose(conn *websocket.Conn) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *debugFeedHub) broadcast(f debugFrame) {
	payload, err := json.Marshal(f)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("hostserver: debug feed write error: %v", err)
		}
	}
}

func samplesFrom(game *gamecore.Manager, count int) []playerSample {
	out := make([]playerSample, 0, count)
	for p := 0; p < count; p++ {
		pn := netcode.PlayerNumber(p)
		t := game.CurrentTransform(pn)
		out = append(out, playerSample{
			Player:   pn,
			X:        t.Position.X,
			Y:        t.Position.Y,
			Rotation: t.Rotation,
			Health:   game.CurrentCharacterHealth(pn),
		})
	}
	return out
}
