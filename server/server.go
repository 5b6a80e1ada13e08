// Package server is the HTTP/websocket boundary: a chi REST API over
// the railway/schedule/conflict/resolver/route/realtime/store packages,
// a gorilla/websocket push channel for live conflict and adjustment
// notifications, and a durable in-process recent-events feed. This is
// the only package in the module that parses "HH:MM" wall-clock strings,
// and the only one that serves the REST API.
package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
	log "gopkg.in/inconshreveable/log15.v2"

	"github.com/railwayai/railwayai/conflict"
	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/realtime"
	"github.com/railwayai/railwayai/resolver"
	"github.com/railwayai/railwayai/route"
	"github.com/railwayai/railwayai/schedule"
	"github.com/railwayai/railwayai/store"
	"github.com/railwayai/railwayai/telemetry"
)

// App bundles the server's live state: the active network, its
// schedules, and the engines operating over them. Unlike the teacher's
// single global *simulation.Simulation, App holds no package-level
// state so multiple instances can exist in tests.
type App struct {
	mu sync.RWMutex

	graph   *railway.Graph
	nodeIDs []string

	trains    map[string]schedule.Train
	schedules map[string]*schedule.TrainSchedule

	detector *conflict.Detector
	resolver *resolver.Resolver
	planner  *resolver.Planner
	router   *route.Optimizer
	realtime *realtime.Optimizer

	store         store.Store
	lastNetworkID uuid.UUID
	metrics       *telemetry.Registry
	hub           *Hub
	events        *eventLog

	logger log.Logger
}

// Config configures a new App. Store and Metrics may be nil (no
// persistence, no metrics collection), matching the teacher's pattern of
// tolerating a nil simulation before Run is called.
type Config struct {
	Graph          *railway.Graph
	NodeIDs        []string
	DetectorConfig conflict.Config
	ResolverConfig resolver.Config
	RouteConfig    route.Config
	RealtimeConfig realtime.Config
	Store          store.Store
	Metrics        *telemetry.Registry
	Logger         log.Logger
}

// New builds an App wired over a single shared railway.Graph, the same
// way the teacher's hub_simulation/hub_suggestions objects share one
// package-level *simulation.Simulation.
func New(cfg Config) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New()
	}
	a := &App{
		graph:     cfg.Graph,
		nodeIDs:   cfg.NodeIDs,
		trains:    make(map[string]schedule.Train),
		schedules: make(map[string]*schedule.TrainSchedule),
		detector:  conflict.New(cfg.Graph, cfg.DetectorConfig),
		resolver:  resolver.New(cfg.Graph, cfg.ResolverConfig),
		planner:   resolver.NewPlanner(cfg.Graph, cfg.DetectorConfig, cfg.ResolverConfig),
		router:    route.New(cfg.Graph, cfg.RouteConfig),
		realtime:  realtime.New(cfg.Graph, cfg.RealtimeConfig),
		store:     cfg.Store,
		metrics:   cfg.Metrics,
		events:    newEventLog(1000),
		logger:    logger.New("module", "server"),
	}
	a.detector.SetLogger(logger)
	a.resolver.SetLogger(logger)
	a.router.SetLogger(logger)
	a.realtime.SetLogger(logger)

	a.hub = newHub(a.events, logger)
	a.hub.registerObject("conflicts", &conflictObject{app: a})
	a.hub.registerObject("realtime", &realtimeObject{app: a})
	go a.hub.run()

	a.realtime.OnConflictPredicted(func(pc realtime.PredictedConflict) {
		a.hub.push("predicted_conflict", pc)
	})
	a.realtime.OnAdjustmentGenerated(func(adj realtime.Adjustment) {
		recordAdjustmentEvent(a.events, adj)
		a.hub.push("adjustment", adj)
	})

	return a
}

// Handler returns the fully-wired chi router for use with http.Server.
func (a *App) Handler(corsOrigins []string, sentryEnabled bool) http.Handler {
	return newRouter(a, corsOrigins, sentryEnabled)
}

// persistNetwork saves the current graph, returning the new network ID.
func (a *App) persistNetwork(ctx context.Context, name string) (uuid.UUID, error) {
	if a.store == nil {
		return uuid.UUID{}, errStoreUnavailable
	}
	a.mu.RLock()
	id, err := a.store.SaveNetwork(ctx, name, a.graph, a.nodeIDs)
	a.mu.RUnlock()
	if err != nil {
		return uuid.UUID{}, err
	}
	a.mu.Lock()
	a.lastNetworkID = id
	a.mu.Unlock()
	return id, nil
}

// currentNetworkID reports the most recently saved network, if any.
func (a *App) currentNetworkID() (uuid.UUID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastNetworkID, a.lastNetworkID != uuid.Nil
}

var errStoreUnavailable = &storeUnavailableError{}

type storeUnavailableError struct{}

func (e *storeUnavailableError) Error() string { return "no store configured" }
