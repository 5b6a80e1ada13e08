package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/railwayai/railwayai/railway"
	"github.com/railwayai/railwayai/realtime"
	"github.com/railwayai/railwayai/schedule"
)

type handlers struct{ app *App }

// networkResponse is the wire shape for a network dump: flat node/edge
// lists rather than the graph's adjacency internals.
type networkResponse struct {
	Nodes []railway.Node `json:"nodes"`
	Edges []railway.Edge `json:"edges"`
	Stats railway.NetworkStats `json:"stats"`
}

func (h *handlers) getNetwork(w http.ResponseWriter, r *http.Request) {
	ids := h.app.listNodeIDs()
	nodes := make([]railway.Node, 0, len(ids))
	seenEdges := map[string]bool{}
	edges := make([]railway.Edge, 0)
	h.app.mu.RLock()
	for _, id := range ids {
		if n, ok := h.app.graph.Node(id); ok {
			nodes = append(nodes, *n)
		}
		for _, nbr := range h.app.graph.GetNeighbors(id) {
			if e, ok := h.app.graph.EdgeBetween(id, nbr); ok {
				if !seenEdges[e.ID] {
					seenEdges[e.ID] = true
					edges = append(edges, e)
				}
			}
		}
	}
	h.app.mu.RUnlock()
	writeJSON(w, http.StatusOK, networkResponse{Nodes: nodes, Edges: edges, Stats: h.app.networkStats()})
}

func (h *handlers) postNode(w http.ResponseWriter, r *http.Request) {
	var n railway.Node
	if err := decodeJSON(r, &n); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.app.addNode(n); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *handlers) postEdge(w http.ResponseWriter, r *http.Request) {
	var e railway.Edge
	if err := decodeJSON(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.app.addEdge(e); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// scheduleRequest is the wire shape for creating/replacing a schedule:
// stop times arrive as "HH:MM" against a single reference date, the one
// boundary where that format is accepted.
type scheduleRequest struct {
	Train schedule.Train `json:"train"`
	ScheduleID string     `json:"scheduleId"`
	Date  string          `json:"date"` // RFC3339 date, time-of-day ignored
	Stops []stopRequest   `json:"stops"`
}

type stopRequest struct {
	NodeID    string `json:"nodeId"`
	Arrival   string `json:"arrival"`   // "HH:MM"
	Departure string `json:"departure"` // "HH:MM"
	IsStop    bool   `json:"isStop"`
	Platform  int    `json:"platform"`
}

func (h *handlers) listSchedules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.listSchedules())
}

func (h *handlers) putSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date: "+err.Error())
		return
	}
	stops := make([]schedule.Stop, 0, len(req.Stops))
	for _, sr := range req.Stops {
		arr, err := parseClockOnDate(date, sr.Arrival)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		dep, err := parseClockOnDate(date, sr.Departure)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		stops = append(stops, schedule.Stop{
			NodeID: sr.NodeID, Arrival: arr, Departure: dep,
			IsStop: sr.IsStop, Platform: sr.Platform,
		})
	}
	sc := schedule.TrainSchedule{ID: id, TrainID: req.Train.ID, Stops: stops}
	h.app.putSchedule(req.Train, sc)
	writeJSON(w, http.StatusOK, sc)
}

func (h *handlers) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.app.removeSchedule(id) {
		writeError(w, http.StatusNotFound, "schedule not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) getConflicts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.detectConflicts())
}

func (h *handlers) postResolveAll(w http.ResponseWriter, r *http.Request) {
	conflicts := h.app.detectConflicts()
	batch := h.app.resolveAll(conflicts)
	writeJSON(w, http.StatusOK, batch)
}

func (h *handlers) postPlan(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.app.planAll(r.Context()))
}

type saveNetworkRequest struct {
	Name string `json:"name"`
}

func (h *handlers) postSaveNetwork(w http.ResponseWriter, r *http.Request) {
	var req saveNetworkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.app.persistNetwork(r.Context(), req.Name)
	if err != nil {
		if err == errStoreUnavailable {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"networkId": id.String()})
}

func (h *handlers) getRouteAlternatives(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := q.Get("start")
	end := q.Get("end")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "start and end query parameters are required")
		return
	}
	var excludeEdges []string
	if raw := q.Get("excludeEdges"); raw != "" {
		excludeEdges = splitQueryCSV(raw)
	}
	conflicts := h.app.detectConflicts()
	alts := h.app.findAlternatives(start, end, excludeEdges, conflicts)
	writeJSON(w, http.StatusOK, alts)
}

func splitQueryCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func (h *handlers) postPosition(w http.ResponseWriter, r *http.Request) {
	var pos realtime.TrainPosition
	if err := decodeJSON(r, &pos); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.app.realtime.UpdatePosition(pos)
	if h.app.metrics != nil {
		h.app.metrics.PositionsIngestedTotal.Inc()
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *handlers) getPredictions(w http.ResponseWriter, r *http.Request) {
	predicted := h.app.realtime.PredictConflicts()
	if h.app.metrics != nil {
		h.app.metrics.PredictedConflictsTotal.Add(float64(len(predicted)))
	}
	writeJSON(w, http.StatusOK, predicted)
}

func (h *handlers) postOptimize(w http.ResponseWriter, r *http.Request) {
	adjustments := h.app.realtime.Optimize()
	for _, adj := range adjustments {
		recordAdjustmentEvent(h.app.events, adj)
		if h.app.metrics != nil {
			h.app.metrics.AdjustmentsAppliedTotal.WithLabelValues(string(adj.Type)).Inc()
		}
	}
	writeJSON(w, http.StatusOK, adjustments)
}

func (h *handlers) getEvents(w http.ResponseWriter, r *http.Request) {
	since := int64(0)
	if raw := r.URL.Query().Get("since"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			since = v
		}
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	writeJSON(w, http.StatusOK, h.app.events.since(since, limit))
}
