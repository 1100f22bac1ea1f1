/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging (zerolog, tagged with the request ID)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the front-desk UI

ROUTE GROUPS:
  /api/resources/*     Rooms
  /api/bookings/*      Reservations and lifecycle
  /api/occupancy/*     Occupancy metrics
  /api/timeline        Timeline layout
  /api/allocations/*   Charge allocation preview
  /api/shifts/*        Weekly staff rota
  /api/reports/*       Spreadsheet exports
  /api/scenarios/*     Demo data loaders
  /healthz             Liveness + store ping
  /metrics             Prometheus scrape endpoint

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterOptions controls the parts of the router that vary per deployment.
type RouterOptions struct {
	AllowedOrigins []string
	EnableMetrics  bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", h.Health)
	if opts.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", h.ListResources)
			r.Post("/", h.CreateResource)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", h.ListBookings)
			r.Post("/", h.CreateBooking)
			r.Post("/{id}/checkin", h.CheckIn)
			r.Post("/{id}/checkout", h.CheckOut)
			r.Post("/{id}/cancel", h.CancelBooking)
		})

		r.Route("/occupancy", func(r chi.Router) {
			r.Get("/", h.GetOccupancy)
			r.Get("/{year}", h.GetYearOccupancy)
		})

		r.Get("/timeline", h.GetTimeline)
		r.Post("/allocations/preview", h.PreviewAllocation)

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.GetShiftWeek)
			r.Post("/advance", h.AdvanceShift)
			r.Post("/publish", h.PublishShifts)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/occupancy.xlsx", h.ExportOccupancy)
			r.Get("/timeline.xlsx", h.ExportTimeline)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

// pinger is implemented by stores backed by a connection (sqlite).
type pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports liveness, and store reachability when the store can be pinged.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.PingContext(ctx); err != nil {
			h.Log.Error().Err(err).Str("request_id", requestID(r)).Msg("store unreachable")
			writeError(w, http.StatusServiceUnavailable, "Store unreachable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request with status, size and latency.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info().
					Str("request_id", requestID(r)).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("latency", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
