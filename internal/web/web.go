// Package web exposes the calendar engine over an HTTP JSON API:
// normalized appointment lists and the month/week/year/upcoming views.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"agendacal/internal/calendar"
	"agendacal/internal/config"
	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// Provider supplies raw appointment records for a time window. The ICS
// store implements it; tests substitute a stub.
type Provider interface {
	Appointments(ctx context.Context, rangeStart, rangeEnd time.Time) ([]model.Appointment, []string, error)
}

// Server provides the HTTP API over a Provider and the config-level
// defaults (timezone, locale, hour range, display cap).
type Server struct {
	cfg      *config.Config
	provider Provider
	mux      *http.ServeMux

	// Single-entry cache of the last provider window, to avoid
	// re-fetching and re-expanding feeds on every request.
	cacheMu sync.RWMutex
	cache   *windowCache
}

const windowCacheTTL = 30 * time.Second

type windowCache struct {
	key       string
	appts     []model.Appointment
	truncated []string
	updatedAt time.Time
}

// NewServer constructs a Server.
func NewServer(cfg *config.Config, provider Provider) *Server {
	s := &Server{
		cfg:      cfg,
		provider: provider,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/appointments", s.handleAppointments)
	s.mux.HandleFunc("/api/calendar/month", s.handleMonth)
	s.mux.HandleFunc("/api/calendar/week", s.handleWeek)
	s.mux.HandleFunc("/api/calendar/year", s.handleYear)
	s.mux.HandleFunc("/api/upcoming", s.handleUpcoming)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password means auth is effectively off.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="agendacal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventsForWindow fetches the provider window (with the single-entry
// TTL cache) and normalizes it in loc.
func (s *Server) eventsForWindow(ctx context.Context, from, to time.Time, loc *time.Location) ([]model.Event, []string, error) {
	key := from.UTC().Format(time.RFC3339) + "/" + to.UTC().Format(time.RFC3339)
	now := time.Now()

	s.cacheMu.RLock()
	c := s.cache
	s.cacheMu.RUnlock()
	if c != nil && c.key == key && now.Sub(c.updatedAt) < windowCacheTTL {
		return calendar.Normalize(c.appts, loc), c.truncated, nil
	}

	appts, truncated, err := s.provider.Appointments(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}

	s.cacheMu.Lock()
	s.cache = &windowCache{key: key, appts: appts, truncated: truncated, updatedAt: time.Now()}
	s.cacheMu.Unlock()

	return calendar.Normalize(appts, loc), truncated, nil
}

// location resolves the tz query parameter, falling back to the
// configured default. An unknown zone is a client error, not a silent
// fallback.
func (s *Server) location(r *http.Request) (*time.Location, error) {
	if name := r.URL.Query().Get("tz"); name != "" {
		return time.LoadLocation(name)
	}
	loc, err := s.cfg.Location()
	if err != nil {
		// A broken configured zone is a server-side problem.
		appLog.Error("configured timezone is invalid", err, "timezone", s.cfg.Timezone)
		return nil, err
	}
	return loc, nil
}

// labels resolves the locale query parameter over the configured
// default.
func (s *Server) labels(r *http.Request) *calendar.Labels {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = s.cfg.Locale
	}
	return calendar.LabelsFor(locale)
}

// anchorDate resolves the date query parameter ("YYYY-MM-DD") in loc,
// defaulting to now.
func anchorDate(r *http.Request, loc *time.Location) (time.Time, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return time.Now().In(loc), nil
	}
	return time.ParseInLocation("2006-01-02", v, loc)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
