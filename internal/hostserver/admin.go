package hostserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"rollbackgame/internal/netcode"
)

// NewAdminRouter builds the host's small HTTP surface: match status and
// a health check, on a chi router with cors and the RequestID, RealIP
// and Recoverer middleware.
func NewAdminRouter(h *Host) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/match", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, h.matchStatus())
	})

	return r
}

// matchStatusResponse is the admin API's view of the match, safe to
// expose publicly since it carries no per-player positional data.
type matchStatusResponse struct {
	CurrentFrame       netcode.Frame `json:"currentFrame"`
	LastValidatedFrame netcode.Frame `json:"lastValidatedFrame"`
	HasWinner          bool          `json:"hasWinner"`
	Winner             netcode.PlayerNumber `json:"winner,omitempty"`
}

func (h *Host) matchStatus() matchStatusResponse {
	winner, ok := h.game.CheckWinner()
	return matchStatusResponse{
		CurrentFrame:       h.game.GetCurrentFrame(),
		LastValidatedFrame: h.game.GetLastValidatedFrame(),
		HasWinner:          ok,
		Winner:             winner,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
