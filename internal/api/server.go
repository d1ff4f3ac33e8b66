// Package api serves one running game over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints play the game and require a bearer token.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/lobster-tycoon/internal/config"
	"github.com/talgya/lobster-tycoon/internal/engine"
	"github.com/talgya/lobster-tycoon/internal/persistence"
)

const (
	maxSSEConns  = 2
	streamReplay = 50
)

// Server serves a game over HTTP.
type Server struct {
	Game     *engine.Game
	Clock    *engine.Clock   // nil when boat timers are off
	DB       *persistence.DB // nil disables snapshots
	Hub      *Hub            // nil disables streaming
	AdminKey string          // Bearer token for POST endpoints. Empty = POST disabled.
	RelayKey string          // Bearer token for the event stream. Empty = streaming disabled.

	// Limiter throttles POST endpoints. Nil gets 120 requests a minute.
	Limiter *RateLimiter

	sseConns atomic.Int32
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	if s.Limiter == nil {
		s.Limiter = NewRateLimiter(120, time.Minute)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (read-only).
		r.Get("/status", s.handleStatus)
		r.Get("/boats", s.handleBoats)
		r.Get("/buyers", s.handleBuyers)
		r.Get("/contracts", s.handleContracts)
		r.Get("/standings", s.handleStandings)
		r.Get("/towns", s.handleTowns)
		r.Get("/events", s.handleEvents)
		r.Get("/legacy", s.handleLegacy)
		r.Get("/story", s.handleStory)
		r.Get("/speed", s.handleSpeed)

		// SSE streaming endpoint (relay key).
		r.Get("/stream", s.handleStream)

		// Player commands (admin key).
		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Use(middleware.Timeout(30 * time.Second))
			r.Post("/buy", s.handleBuy)
			r.Post("/sell", s.handleSell)
			r.Post("/pass", s.handlePass)
			r.Post("/equipment", s.handleEquipment)
			r.Post("/loan", s.handleLoan)
			r.Post("/repay", s.handleRepay)
			r.Post("/travel", s.handleTravel)
			r.Post("/accept", s.handleAccept)
			r.Post("/deliver", s.handleDeliver)
			r.Post("/next", s.handleNext)
			r.Post("/retire", s.handleRetire)
			r.Post("/story", s.handleAnswer)
			r.Post("/speed", s.handleSpeed)
			r.Post("/snapshot", s.handleSnapshot)
		})
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "relay_auth", s.RelayKey != "")

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	slog.Info("HTTP API stopped")
	return nil
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// LOBSTER_CORS_ORIGINS adds a comma-separated list to the localhost dev servers.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("LOBSTER_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request, key string) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == key
}

// adminOnly requires the admin bearer token, then applies the rate limit.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	limited := RateLimitMiddleware(s.Limiter, next.ServeHTTP)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "commands disabled (no admin key set)", http.StatusForbidden)
			return
		}
		if !bearer(r, s.AdminKey) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		limited(w, r)
	})
}

// ── Queries ───────────────────────────────────────────────────────────

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	g := s.Game
	st := g.Snapshot()
	today, tomorrow := g.Forecast()
	status := map[string]any{
		"day":             st.Day,
		"season":          st.Season,
		"weather":         today,
		"tomorrow":        tomorrow,
		"market_trend":    st.MarketTrend,
		"town":            g.CurrentTown().Name,
		"cash":            st.Cash,
		"debt":            st.Debt,
		"net_worth":       g.NetWorth(),
		"inventory":       g.TotalInventory(),
		"capacity":        g.Capacity(),
		"freshness":       g.AverageFreshness(),
		"reputation":      st.Reputation.Score,
		"reputation_tier": g.ReputationTier().Name,
		"days_in_trouble": st.DaysInTrouble,
		"equipment":       st.Equipment,
		"outcome":         st.Outcome,
		"summary":         st.Summary,
		"event_count":     st.EventCount,
	}
	if s.Clock != nil {
		status["speed"] = s.Clock.CurrentSpeed()
		status["running"] = s.Clock.Running()
	}
	writeJSON(w, status)
}

func (s *Server) handleBoats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.Boats())
}

func (s *Server) handleBuyers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.Buyers())
}

func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	offers, active := s.Game.Contracts()
	writeJSON(w, map[string]any{"offers": offers, "active": active})
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.Standings())
}

type townView struct {
	ID         config.TownID `json:"id"`
	Name       string        `json:"name"`
	TravelCost float64       `json:"travel_cost"`
	Here       bool          `json:"here"`
	CanTravel  bool          `json:"can_travel"`
	Reason     string        `json:"reason,omitempty"`
}

func (s *Server) handleTowns(w http.ResponseWriter, r *http.Request) {
	here := s.Game.CurrentTown().ID
	out := make([]townView, 0, len(config.Towns))
	for _, t := range config.Towns {
		ok, reason := s.Game.CanTravelTo(t.ID)
		out = append(out, townView{
			ID:         t.ID,
			Name:       t.Name,
			TravelCost: t.TravelCost,
			Here:       t.ID == here,
			CanTravel:  ok,
			Reason:     reason,
		})
	}
	writeJSON(w, out)
}

// handleEvents returns events from sequence number ?since= (default: the
// last ?limit=, 50) plus the cursor for the next poll.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var from int
	if v := q.Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "since must be a non-negative integer", http.StatusBadRequest)
			return
		}
		from = n
	} else {
		limit := 50
		if l := q.Get("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}
		_, total := s.Game.Events(math.MaxInt)
		from = max(0, total-limit)
	}

	events, next := s.Game.Events(from)
	if cat := q.Get("category"); cat != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Category == cat {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	writeJSON(w, map[string]any{"events": events, "next": next})
}

func (s *Server) handleLegacy(w http.ResponseWriter, r *http.Request) {
	l := s.Game.Legacy()
	writeJSON(w, map[string]any{
		"title":             engine.PrestigeTitle(l.Prestige),
		"prestige":          l.Prestige,
		"lifetime_earnings": l.LifetimeEarnings,
		"games_completed":   l.GamesCompleted,
		"best_cash":         l.BestCash,
		"achievements":      l.Achievements,
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Clock == nil {
		http.Error(w, "boat timers are off", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if !decode(w, r, &req) {
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be 0-100", http.StatusBadRequest)
			return
		}
		s.Clock.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Clock.CurrentSpeed()})
}

// ── Commands ──────────────────────────────────────────────────────────

type commandRequest struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

type commandResponse struct {
	OK     bool           `json:"ok"`
	Events []engine.Event `json:"events"`
	Report any            `json:"report,omitempty"`
}

// run executes one command and answers with the events it logged.
// Rejections are 200 with ok=false; unknown ids are 404.
func (s *Server) run(w http.ResponseWriter, fn func() (bool, error)) {
	_, cursor := s.Game.Events(math.MaxInt)
	ok, err := fn()
	if err != nil {
		writeCommandError(w, err)
		return
	}
	events, _ := s.Game.Events(cursor)
	writeJSON(w, commandResponse{OK: ok, Events: events})
}

func writeCommandError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrUnknownChoice) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, known := range []error{
		engine.ErrUnknownBoat, engine.ErrUnknownBuyer, engine.ErrUnknownContract,
		engine.ErrUnknownEquipment, engine.ErrUnknownTown, engine.ErrUnknownRetirement,
	} {
		if errors.Is(err, known) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	}
	slog.Error("command failed", "error", err)
	http.Error(w, "command failed", http.StatusInternalServerError)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.BuyFromBoat(req.ID, int(req.Amount)) })
	}
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.SellToBuyer(req.ID, int(req.Amount)) })
	}
}

func (s *Server) handlePass(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.PassBoat(req.ID) })
	}
}

func (s *Server) handleEquipment(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.BuyEquipment(config.EquipmentID(req.ID)) })
	}
}

func (s *Server) handleLoan(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.TakeLoan(req.Amount), nil })
	}
}

// handleRepay pays req.Amount, or as much as cash allows when it is zero.
func (s *Server) handleRepay(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.PayLoan(req.Amount), nil })
	}
}

func (s *Server) handleTravel(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.TravelTo(config.TownID(req.ID)) })
	}
}

func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.AcceptContract(req.ID) })
	}
}

func (s *Server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.DeliverToContract(req.ID, int(req.Amount)) })
	}
}

func (s *Server) handleRetire(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.Retire(r.Context(), req.ID) })
	}
}

// handleStory returns the captain story waiting on an answer, or null.
func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Game.PendingStory())
}

// handleAnswer answers the waiting story with a 0-based choice.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Choice int `json:"choice"`
	}
	if decode(w, r, &req) {
		s.run(w, func() (bool, error) { return s.Game.ResolveStory(req.Choice) })
	}
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	_, cursor := s.Game.Events(math.MaxInt)
	report, ok := s.Game.AdvanceDay(r.Context())
	events, _ := s.Game.Events(cursor)
	resp := commandResponse{OK: ok, Events: events}
	if ok {
		resp.Report = report
	}
	writeJSON(w, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	var req struct {
		Slot string `json:"slot"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Slot == "" {
		req.Slot = "api"
	}

	snap := s.Game.Snapshot()
	if err := s.DB.SaveSnapshot(r.Context(), req.Slot, snap); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"slot":    req.Slot,
		"day":     snap.Day,
		"message": "snapshot saved",
	})
}

// ── Streaming ─────────────────────────────────────────────────────────

// handleStream provides an SSE endpoint for real-time event streaming.
// Requires the relay key and limits concurrent connections.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.RelayKey == "" || s.Hub == nil {
		http.Error(w, "streaming disabled (no relay key)", http.StatusForbidden)
		return
	}
	if !bearer(r, s.RelayKey) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if current := s.sseConns.Add(1); current > maxSSEConns {
		s.sseConns.Add(-1)
		http.Error(w, "too many SSE connections", http.StatusServiceUnavailable)
		return
	}
	defer s.sseConns.Add(-1)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Subscribe before reading the replay so nothing falls in between;
	// events already replayed are skipped when they arrive on the channel.
	subID, ch := s.Hub.Subscribe()
	defer s.Hub.Unsubscribe(subID)

	_, total := s.Game.Events(math.MaxInt)
	recent, sent := s.Game.Events(max(0, total-streamReplay))
	for _, e := range recent {
		writeSSEEvent(w, e)
	}
	flusher.Flush()

	slog.Info("SSE client connected", "sub_id", subID)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			if e.Seq <= sent {
				continue
			}
			writeSSEEvent(w, e)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "sub_id", subID)
			return
		}
	}
}

// writeSSEEvent writes a single event in SSE format.
func writeSSEEvent(w http.ResponseWriter, e engine.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Category, data)
}

// decode reads a JSON body, answering 400 itself on failure. An empty body
// decodes to the zero request.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(v); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Warn("write response", "error", err)
	}
}
