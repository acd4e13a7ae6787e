package handlers

import (
	"net/http"
	"time"

	"github.com/complyops/deadline-engine/internal/domain/calendar"
	"github.com/complyops/deadline-engine/internal/infrastructure/monitoring/prometheus"
)

// EngineStatsSource exposes the engine counter snapshot.
type EngineStatsSource interface {
	Stats() prometheus.EngineStats
}

// CalendarStatsSource exposes the holiday-calendar cache counters.
type CalendarStatsSource interface {
	Stats() calendar.CacheStats
}

// StatsHandler serves a consolidated JSON snapshot of engine and calendar
// counters for operators who want numbers without scraping /metrics.
type StatsHandler struct {
	engine   EngineStatsSource
	calendar CalendarStatsSource
	startAt  time.Time
}

func NewStatsHandler(engine EngineStatsSource, cal CalendarStatsSource) *StatsHandler {
	return &StatsHandler{
		engine:   engine,
		calendar: cal,
		startAt:  time.Now(),
	}
}

// StatsResponse is the body for GET /stats.
type StatsResponse struct {
	Uptime   string                 `json:"uptime"`
	Engine   prometheus.EngineStats `json:"engine"`
	Calendar calendar.CacheStats    `json:"calendar"`
}

// Stats handles GET /stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Uptime: time.Since(h.startAt).Truncate(time.Second).String(),
	}
	if h.engine != nil {
		resp.Engine = h.engine.Stats()
	}
	if h.calendar != nil {
		resp.Calendar = h.calendar.Stats()
	}
	writeJSON(w, http.StatusOK, resp)
}
