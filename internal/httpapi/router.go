package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"crewwatch/internal/eventbus"
	"crewwatch/internal/journal"
	"crewwatch/internal/logger"
	"crewwatch/internal/poller"
)

// Controller is the part of the scheduler the control API drives.
type Controller interface {
	Status() poller.Status
	Start(ctx context.Context, interval time.Duration)
	Stop()
	ResetErrorCounter()
	Tick(ctx context.Context) poller.TickReport
}

// Deps wires the control API to the running process.
type Deps struct {
	Poller  Controller
	Bus     *eventbus.Bus
	Journal *journal.Journal // nil when DATABASE_URL is unset

	// Parent context for polling started from the API
	BaseContext context.Context
	Interval    time.Duration

	// Empty secret leaves the admin routes unauthenticated
	JWTSecret string
}

func NewRouter(d Deps) http.Handler {
	if d.BaseContext == nil {
		d.BaseContext = context.Background()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", Health(d.Poller))

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", Snapshot(d.Bus))
		r.Get("/snapshot/{topic}", SnapshotTopic(d.Bus))
		r.Get("/markers", Markers(d.Bus))
		r.Get("/poller", PollerStatus(d.Poller))
		r.Get("/history", History(d.Journal))
		r.Get("/history/summary", HistorySummary(d.Journal))

		r.Group(func(r chi.Router) {
			if d.JWTSecret != "" {
				r.Use(Auth(d.JWTSecret))
				r.Use(RequireRole("admin"))
			} else {
				logger.Named("httpapi").Warn("⚠️  APP_JWT_SECRET not set - poller control routes are unauthenticated")
			}

			r.Post("/poller/reset", ResetPoller(d.Poller))
			r.Post("/poller/refresh", RefreshPoller(d.Poller, d.BaseContext))
			r.Post("/poller/start", StartPoller(d.Poller, d.BaseContext, d.Interval))
			r.Post("/poller/stop", StopPoller(d.Poller))
		})
	})

	return r
}
