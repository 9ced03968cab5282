package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"hotelbook/internal/booking"
	"hotelbook/internal/config"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RoomCatalog exposes the configured room list to API handlers.
type RoomCatalog interface {
	GetRooms() []models.Room
	GetRoomByNumber(number int64) (models.Room, bool)
}

// OccupancyReporter renders an occupancy report file for a date range.
type OccupancyReporter interface {
	Generate(rooms []models.Room, byRoom map[int64][]models.Booking, start, end time.Time) (string, error)
}

// HTTPServer exposes the booking API over plain HTTP.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings domain.BookingService
	rooms    RoomCatalog
	reports  OccupancyReporter
	logger   *zerolog.Logger
	server   *http.Server
	auth     *HTTPAuth
}

func NewHTTPServer(cfg config.APIConfig, bookings domain.BookingService, rooms RoomCatalog, reports OccupancyReporter, limits domain.SnapshotCache, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		rooms:    rooms,
		reports:  reports,
		logger:   logger,
	}
	srv.auth = NewHTTPAuth(cfg, limits)

	mux.HandleFunc("/api/v1/bookings", withMetrics("/api/v1/bookings", srv.handleBookings))
	mux.HandleFunc("/api/v1/bookings/", withMetrics("/api/v1/bookings/{id}", srv.handleBooking))
	mux.HandleFunc("/api/v1/rooms", withMetrics("/api/v1/rooms", srv.handleRooms))
	mux.HandleFunc("/api/v1/rooms/", withMetrics("/api/v1/rooms/{room}/availability", srv.handleRoomAvailability))
	mux.HandleFunc("/api/v1/reports/occupancy", withMetrics("/api/v1/reports/occupancy", srv.handleOccupancyReport))
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// HTTPAuth provides API-key auth and per-key rate limiting for HTTP
// endpoints. Rate counters live in the shared snapshot cache when one is
// wired, so limits hold across restarts and instances; a per-process
// rate.Limiter covers the cacheless setup and cache outages.
type HTTPAuth struct {
	cfg      config.APIConfig
	keys     []config.APIClientKey
	limits   domain.SnapshotCache
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPAuth(cfg config.APIConfig, limits domain.SnapshotCache) *HTTPAuth {
	return &HTTPAuth{cfg: cfg, keys: cfg.Auth.APIKeys, limits: limits}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Auth.Enabled && r.URL.Path != "/healthz" {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if err == errPermissionDenied {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

var errPermissionDenied = fmt.Errorf("permission denied")

func (a *HTTPAuth) headerName() string {
	header := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = "x-api-key"
	}
	return header
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.headerName()))
	if apiKey == "" {
		return fmt.Errorf("missing api key header")
	}

	var client config.APIClientKey
	found := false
	for _, k := range a.keys {
		// Compare every key to keep timing independent of a match position.
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(apiKey)) == 1 {
			client = k
			found = true
		}
	}
	if !found {
		return fmt.Errorf("invalid api key")
	}

	return a.checkPermissions(client, r)
}

func (a *HTTPAuth) checkPermissions(client config.APIClientKey, r *http.Request) error {
	required := requiredPermissionHTTP(r)
	if required == "" {
		return nil
	}
	if len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermissionHTTP(r *http.Request) string {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/bookings"):
		if r.Method == http.MethodGet {
			return "read:bookings"
		}
		return "write:bookings"
	case strings.HasPrefix(path, "/api/v1/rooms"):
		return "read:availability"
	case strings.HasPrefix(path, "/api/v1/reports"):
		return "read:reports"
	}
	return ""
}

// rateLimitWindow sizes the shared counter window for cache-backed limiting.
const rateLimitWindow = time.Minute

func (a *HTTPAuth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	key := a.clientKey(r)

	if a.limits != nil {
		allowed, err := a.limits.CheckRateLimit(r.Context(), "api_rate:"+key, a.windowLimit(), rateLimitWindow)
		if err == nil {
			if !allowed {
				return fmt.Errorf("rate limit exceeded")
			}
			return nil
		}
		// Cache unreachable; the local limiter takes over.
	}

	lim := a.getLimiter(key)
	if !lim.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

// windowLimit converts the configured rate into a request budget per window,
// keeping the same burst allowance the local limiter grants.
func (a *HTTPAuth) windowLimit() int {
	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}
	return int(a.cfg.RateLimit.RPS*rateLimitWindow.Seconds()) + burst
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.headerName())); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *HTTPAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func withMetrics(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP(endpoint)
		h(w, r)
	}
}

// writeServiceError maps workflow errors onto HTTP statuses and the
// wire-visible messages callers depend on.
func writeServiceError(w http.ResponseWriter, err error, bookingID int64) {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.Messages()})
	case errors.Is(err, booking.ErrRoomConflict):
		writeError(w, http.StatusBadRequest, booking.ErrRoomConflict.Error())
	case errors.Is(err, booking.ErrRoomFullyBooked):
		writeError(w, http.StatusNotFound, booking.ErrRoomFullyBooked.Error())
	case errors.Is(err, database.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("No Bookings found with Id: %d.", bookingID))
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
