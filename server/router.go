package server

import (
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// newRouter wires the middleware chain and route table, directly
// modeled on the api command's chi/cors/sentry/prometheus ordering:
// Logger, then Sentry (so Recoverer still sees re-panicked errors),
// then Recoverer, then metrics, then CORS, then the routes themselves.
func newRouter(a *App, corsOrigins []string, sentryEnabled bool) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)

	if sentryEnabled {
		sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: true})
		r.Use(sentryHandler.Handle)
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if txn := sentry.TransactionFromContext(req.Context()); txn != nil {
					if rctx := chi.RouteContext(req.Context()); rctx != nil {
						if pattern := rctx.RoutePattern(); pattern != "" {
							txn.Name = req.Method + " " + pattern
						} else {
							txn.Name = req.Method + " " + req.URL.Path
						}
					}
				}
				next.ServeHTTP(w, req)
			})
		})
	}

	r.Use(middleware.Recoverer)
	if a.metrics != nil {
		r.Use(a.metrics.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := &handlers{app: a}

	r.Route("/api", func(r chi.Router) {
		r.Get("/network", h.getNetwork)
		r.Post("/network/nodes", h.postNode)
		r.Post("/network/edges", h.postEdge)
		r.Post("/network/save", h.postSaveNetwork)

		r.Get("/schedules", h.listSchedules)
		r.Put("/schedules/{id}", h.putSchedule)
		r.Delete("/schedules/{id}", h.deleteSchedule)

		r.Get("/conflicts", h.getConflicts)
		r.Post("/conflicts/resolve", h.postResolveAll)
		r.Post("/conflicts/plan", h.postPlan)

		r.Get("/routes/alternatives", h.getRouteAlternatives)

		r.Post("/realtime/positions", h.postPosition)
		r.Get("/realtime/predictions", h.getPredictions)
		r.Post("/realtime/optimize", h.postOptimize)

		r.Get("/events", h.getEvents)
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		a.hub.serveWS(w, r)
	})

	return r
}
