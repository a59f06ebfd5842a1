// Package hostserver is the authoritative host process: it receives
// player input packets over UDP, drives the fixed-step simulation
// forward, broadcasts confirmations back to peers, and exposes a small
// HTTP admin surface plus an optional WebSocket spectator feed.
package hostserver

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"rollbackgame/internal/config"
	"rollbackgame/internal/gamecore"
	"rollbackgame/internal/netcode"
	"rollbackgame/internal/telemetry"
)

// peerAddr pairs a player slot with the UDP address input packets for
// that slot should be echoed/confirmed to.
type peerAddr struct {
	addr  *net.UDPAddr
	known bool
}

// Host owns the UDP socket, the match, and the admin/debug HTTP servers.
type Host struct {
	cfg     config.HostConfig
	game    *gamecore.Manager
	conn    *net.UDPConn
	limiter *PacketLimiter
	feed    *debugFeedHub

	peers [config.MaxPlayers]peerAddr
}

// NewHost returns a host ready to Run, with a fresh match and level.
func NewHost(cfg config.HostConfig) *Host {
	return &Host{
		cfg:     cfg,
		game:    gamecore.NewManager(),
		limiter: NewPacketLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		feed:    newDebugFeedHub(),
	}
}

// Run opens the UDP listener and the HTTP admin/debug servers, then
// blocks running the fixed-tick simulation loop until ctx is canceled.
func (h *Host) Run(ctx context.Context) error {
	addr := &net.UDPAddr{Port: h.cfg.ListenPort}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}
	h.conn = conn
	defer conn.Close()

	go h.readLoop(ctx)
	h.startAdminServer()

	ticker := time.NewTicker(time.Duration(config.FixedPeriod * float64(time.Second)))
	defer ticker.Stop()

	var frame netcode.Frame
	for {
		select {
		case <-ctx.Done():
			return nil
		case start := <-ticker.C:
			frame++
			h.game.Tick(frame)
			telemetry.RecordTick(time.Since(start))
			h.broadcastConfirmation(frame)
			h.feed.broadcast(debugFrame{
				Frame:   frame,
				Players: samplesFrom(h.game, config.MaxPlayers),
			})
		}
	}
}

// readLoop receives and decodes inbound player input packets, rate
// limiting per source address before touching the simulation.
func (h *Host) readLoop(ctx context.Context) {
	buf := make([]byte, 2048)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, remote, err := h.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("hostserver: read error: %v", err)
			continue
		}

		if !h.limiter.Allow(remote.String()) {
			telemetry.RecordInputRejected("rate_limit")
			continue
		}

		pkt, err := netcode.DecodePlayerInputPacket(buf[:n])
		if err != nil {
			telemetry.RecordInputRejected("malformed")
			continue
		}
		if int(pkt.PlayerNumber) >= config.MaxPlayers {
			telemetry.RecordInputRejected("unknown_player")
			continue
		}

		h.peers[pkt.PlayerNumber] = peerAddr{addr: remote, known: true}
		h.game.SpawnPlayer(pkt.PlayerNumber)

		// pkt.Inputs[i] is the input at frame CurrentFrame-i (index 0 is
		// newest, per spec.md §6); apply oldest-first so the final call
		// leaves lastReceivedFrame at the packet's newest frame. Early in
		// a match CurrentFrame can be smaller than i, which would
		// underflow the Frame subtraction; skip those slots instead of
		// latching a wrapped-around frame number.
		for i := len(pkt.Inputs) - 1; i >= 0; i-- {
			if netcode.Frame(i) > pkt.CurrentFrame {
				continue
			}
			f := pkt.CurrentFrame - netcode.Frame(i)
			h.game.SetPlayerInput(pkt.PlayerNumber, f, pkt.Inputs[i])
		}
		telemetry.RecordInputAccepted()
	}
}

// broadcastConfirmation sends every known peer the host's confirmed
// checksum for the frame just validated.
func (h *Host) broadcastConfirmation(frame netcode.Frame) {
	validated := h.game.GetLastValidatedFrame()
	var pkt netcode.ConfirmationPacket
	pkt.ValidatedFrame = validated
	for p := 0; p < config.MaxPlayers; p++ {
		pkt.Checksums[p] = h.game.ValidatePhysicsState(netcode.PlayerNumber(p))
	}
	payload := pkt.Encode()

	for _, peer := range h.peers {
		if !peer.known {
			continue
		}
		if _, err := h.conn.WriteToUDP(payload, peer.addr); err != nil {
			log.Printf("hostserver: confirmation write error: %v", err)
		}
	}
}

// startAdminServer serves the admin HTTP API and debug WebSocket feed on
// the configured admin port.
func (h *Host) startAdminServer() {
	mux := http.NewServeMux()
	mux.Handle("/", NewAdminRouter(h))
	mux.Handle("/debug/feed", h.feed)

	addr := net.JoinHostPort("", strconv.Itoa(h.cfg.AdminPort))
	go func() {
		log.Printf("hostserver: admin server listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("hostserver: admin server error: %v", err)
		}
	}()
}
