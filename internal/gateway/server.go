package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ashmelev/frostline/internal/model"
	"github.com/ashmelev/frostline/internal/sim"
)

// Server exposes the browser-facing surface: a websocket event stream with
// a command channel, plus snapshot endpoints for stats and world state.
type Server struct {
	sim      *sim.Sim
	hub      *Hub
	addr     string
	upgrader websocket.Upgrader
}

// NewServer wires a gateway over a simulation. The hub is subscribed to the
// sim's event drain; call before sim.Run starts.
func NewServer(s *sim.Sim, bind string, port int) *Server {
	hub := NewHub()
	s.Subscribe(hub.Publish)

	return &Server{
		sim:  s,
		hub:  hub,
		addr: fmt.Sprintf("%s:%d", bind, port),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Hub returns the broadcast hub, for tests and diagnostics.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run serves HTTP until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/snapshot", s.handleSnapshot)

	srv := &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("gateway shutdown: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("gateway listen: %w", err)
	}
}

// handleWS upgrades the connection, registers it for event broadcasts, and
// reads client commands until the socket closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}

	s.hub.add(conn)
	defer s.hub.remove(conn)

	slog.Info("client connected", "remote", conn.RemoteAddr())

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			slog.Info("client disconnected", "remote", conn.RemoteAddr())
			return
		}

		var cmd command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			slog.Warn("discarding malformed client message", "err", err)
			continue
		}
		s.dispatch(cmd)
	}
}

// dispatch routes one client command into the simulation. Unknown command
// types are logged and dropped; a malformed client never halts the stream.
func (s *Server) dispatch(cmd command) {
	switch cmd.Type {
	case "attack":
		s.sim.PlayerAttack(model.Vec3{X: cmd.X, Y: cmd.Y, Z: cmd.Z})
	case "move":
		s.sim.MovePlayer(model.Vec3{X: cmd.X, Y: cmd.Y, Z: cmd.Z})
	case "cast":
		s.sim.CastAbility(cmd.Ability)
	case "learn":
		s.sim.LearnAbility(cmd.Ability)
	case "equip":
		s.sim.EquipItem(cmd.Item)
	case "unequip":
		s.sim.UnequipItem(cmd.Item)
	case "collect":
		s.sim.CollectPickup(cmd.Target)
	case "respawn":
		s.sim.RespawnPlayer()
	default:
		slog.Warn("unknown client command", "type", cmd.Type)
	}
}

// handleStats serves the derived stat snapshot of one entity.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	stats := s.sim.CurrentStats(model.ID(id))
	if stats == nil {
		http.Error(w, "entity not found or has no stats", http.StatusNotFound)
		return
	}

	writeJSON(w, stats)
}

// entitySnapshot is one row of the world snapshot.
type entitySnapshot struct {
	ID       model.ID   `json:"id"`
	Kind     string     `json:"kind"`
	Name     string     `json:"name"`
	Position model.Vec3 `json:"position"`
	Heading  float64    `json:"heading"`
	Health   *float64   `json:"health,omitempty"`
	Max      *float64   `json:"maxHealth,omitempty"`
}

// handleSnapshot serves the full entity list so a freshly connected client
// can render the current world before the event stream catches it up.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var rows []entitySnapshot
	s.sim.Registry().ForEach(func(e *model.Entity) bool {
		row := entitySnapshot{
			ID:       e.ID,
			Kind:     e.Kind.String(),
			Name:     e.Name,
			Position: e.Position,
			Heading:  e.Heading,
		}
		if e.Health != nil {
			cur, max := e.Health.Current(), e.Health.Max()
			row.Health, row.Max = &cur, &max
		}
		rows = append(rows, row)
		return true
	})

	writeJSON(w, struct {
		XP       int              `json:"xp"`
		Entities []entitySnapshot `json:"entities"`
	}{
		XP:       s.sim.PlayerXP(),
		Entities: rows,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "err", err)
	}
}
