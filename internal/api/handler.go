package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"clinic/m/domain"
	"clinic/m/internal/auth"
)

type ctxKey string

const ctxUser ctxKey = "user"

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db       *sqlx.DB
	sessions *auth.Sessions
	log      zerolog.Logger
}

// New constructs a Handler.
func New(db *sqlx.DB, sessions *auth.Sessions, log zerolog.Logger) *Handler {
	return &Handler{db: db, sessions: sessions, log: log}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)
	})

	r.Route("/api", func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Get("/me", h.me)
		pr.Route("/catalog", func(r chi.Router) {
			r.Get("/", h.listCatalog)
			r.Get("/categories", h.listCategories)
		})
		pr.Get("/specialties", h.listSpecialties)
		pr.Get("/injectables", h.listInjectables)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authMiddleware accepts the session cookie or an Authorization bearer token,
// trying each in turn, and reloads the account on every request so a
// deleted user loses access at once.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var candidates []string
		if c, err := r.Cookie(h.sessions.CookieName()); err == nil && c.Value != "" {
			candidates = append(candidates, c.Value)
		}
		if header := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(header), "bearer ") {
			candidates = append(candidates, strings.TrimSpace(header[len("Bearer "):]))
		}
		if len(candidates) == 0 {
			respondError(w, http.StatusUnauthorized, "login required")
			return
		}

		var claims *auth.Claims
		for _, tokenString := range candidates {
			if parsed, err := h.sessions.Parse(tokenString); err == nil {
				claims = parsed
				break
			}
		}
		if claims == nil {
			respondError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		var user domain.User
		err := h.db.GetContext(r.Context(), &user, h.db.Rebind(`SELECT id, username, role FROM users WHERE id = ?`), claims.UserID)
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusUnauthorized, "invalid session")
			return
		}
		if err != nil {
			h.log.Error().Err(err).Msg("session user lookup failed")
			respondError(w, http.StatusInternalServerError, "unable to load session")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUser, user)))
	})
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
