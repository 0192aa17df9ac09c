// internal/httpserver/server.go
//
// HTTP surface for the ranked wordl service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", the rank ladder, rank lookup, simulation,
//     leaderboard and other players' stats.
//   - Player endpoints (require a player token): POST /game/new, POST /game/guess,
//     GET /game/current, GET /stats/me.
//
// Notes:
//   - Player identity comes from a JWT ("id" claim) in the Authorization header
//     or the auth cookie; see internal/auth.
//   - Service errors map to status codes in errorStatus; bodies are {"error": "..."}.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordl-ranked/internal/auth"
	"github.com/robalobadob/wordl-ranked/internal/game"
	"github.com/robalobadob/wordl-ranked/internal/ranked"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

var endpoints = []string{
	"/health", "POST /game/new", "POST /game/guess", "/game/current",
	"/stats/me", "/stats/{playerID}", "/leaderboard", "/ranks", "/rank", "/simulate",
}

// Options tune the router.
type Options struct {
	ClientOrigin   string                      // CORS origin; defaults to http://localhost:5173
	RequestTimeout time.Duration               // per-request handler budget; defaults to 10s
	Ready          func(context.Context) error // optional backend check for /health
}

// Server bundles the router, the ranked service and the token issuer.
type Server struct {
	r      *chi.Mux
	svc    *ranked.Service
	issuer *auth.Issuer
	ready  func(context.Context) error
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *ranked.Service, issuer *auth.Issuer, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	s := &Server{r: chi.NewRouter(), svc: svc, issuer: issuer, ready: opts.Ready}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"service": "wordl-ranked", "endpoints": endpoints})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.ready != nil {
			if err := s.ready(r.Context()); err != nil {
				log.Warn().Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// Game + own stats (require a player token)
	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Get("/game/current", s.handleCurrent)
		r.Get("/stats/me", s.handleMyStats)
	})

	// Public lookups; the leaderboard adds the caller's standing when a token is sent.
	s.r.Get("/stats/{playerID}", s.handlePlayerStats)
	s.r.With(s.optionalAuth).Get("/leaderboard", s.handleLeaderboard)
	s.r.Get("/ranks", s.handleRanks)
	s.r.Get("/rank", s.handleRank)
	s.r.Get("/simulate", s.handleSimulate)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Router exposes the internal router (useful for tests and for http.Server).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ctxPlayerKey is the context key for the authenticated player ID.
type ctxPlayerKey struct{}

func playerFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxPlayerKey{}).(string)
	return id
}

// requireAuth enforces a valid player token.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := auth.BearerOrCookie(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		id, err := s.issuer.Parse(tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxPlayerKey{}, id)))
	})
}

// optionalAuth decorates the request with the player when a valid token is
// present. It never 401s.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := auth.BearerOrCookie(r); tok != "" {
			if id, err := s.issuer.Parse(tok); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxPlayerKey{}, id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ responses ----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ranked.ErrInvalidGuess),
		errors.Is(err, ranked.ErrInvalidMode),
		errors.Is(err, ranked.ErrInvalidGuessCount):
		return http.StatusBadRequest
	case errors.Is(err, ranked.ErrAlreadyInRankedGame):
		return http.StatusConflict
	case errors.Is(err, ranked.ErrNoActiveGame):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Internal errors are logged and hidden.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("player", playerFrom(r.Context())).
			Msg("request failed")
		writeError(w, status, "internal_error")
		return
	}
	writeError(w, status, err.Error())
}

// ------------------------------- GAME --------------------------------------

// newGameReq is the payload for POST /game/new.
type newGameReq struct {
	Mode      string `json:"mode"`      // "casual" | "ranked"; empty means casual
	ChannelID string `json:"channelId"` // where to reach the player after a restart
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json")
			return
		}
	}
	mode := game.Mode(strings.ToLower(strings.TrimSpace(req.Mode)))
	if mode == "" {
		mode = game.ModeCasual
	}
	v, err := s.svc.StartGame(r.Context(), playerFrom(r.Context()), mode, req.ChannelID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// guessReq is the payload for POST /game/guess.
type guessReq struct {
	Guess string `json:"guess"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	out, err := s.svc.SubmitGuess(r.Context(), playerFrom(r.Context()), req.Guess)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Active(playerFrom(r.Context()))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// ------------------------------- STATS -------------------------------------

func (s *Server) handleMyStats(w http.ResponseWriter, r *http.Request) {
	s.writeProfile(w, r, playerFrom(r.Context()))
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request) {
	s.writeProfile(w, r, chi.URLParam(r, "playerID"))
}

func (s *Server) writeProfile(w http.ResponseWriter, r *http.Request, playerID string) {
	p, err := s.svc.Stats(r.Context(), playerID)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}
	lb, err := s.svc.Leaderboard(r.Context(), playerFrom(r.Context()), limit)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

// ------------------------------- RANKS -------------------------------------

func (s *Server) handleRanks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Table().Bands())
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	elo, err := strconv.Atoi(r.URL.Query().Get("elo"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "elo must be an integer")
		return
	}
	pos := s.svc.RankWithDivision(elo)
	if pos == nil {
		writeError(w, http.StatusNotFound, "no rank for negative elo")
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

// handleSimulate previews a ranked result: ?elo=1000&outcome=win&guesses=3.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	elo, err := strconv.Atoi(q.Get("elo"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "elo must be an integer")
		return
	}
	var won bool
	switch strings.ToLower(q.Get("outcome")) {
	case "", "win", "won":
		won = true
	case "lose", "loss", "lost":
		won = false
	default:
		writeError(w, http.StatusBadRequest, "outcome must be win or lose")
		return
	}
	guesses := 0
	if won {
		if guesses, err = strconv.Atoi(q.Get("guesses")); err != nil {
			writeError(w, http.StatusBadRequest, "guesses must be an integer")
			return
		}
	}
	sim, err := s.svc.SimulateDelta(elo, guesses, won)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sim)
}
