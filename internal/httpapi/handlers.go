package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"crewwatch/internal/eventbus"
	"crewwatch/internal/journal"
	"crewwatch/internal/poller"
	"crewwatch/internal/views"
	"crewwatch/pkg/utils"
)

// Health reports process liveness and the poller state
func Health(p Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondSuccess(w, map[string]interface{}{
			"status": "ok",
			"poller": p.Status().State,
		})
	}
}

// Snapshot returns the latest payload of every topic
func Snapshot(bus *eventbus.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics := make(map[string]interface{}, len(eventbus.Topics))
		for _, topic := range eventbus.Topics {
			if v, ok := bus.Last(topic); ok {
				topics[string(topic)] = v
			} else {
				topics[string(topic)] = nil
			}
		}
		utils.RespondSuccess(w, map[string]interface{}{"topics": topics})
	}
}

// SnapshotTopic returns the latest payload of one topic
func SnapshotTopic(bus *eventbus.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := eventbus.Topic(chi.URLParam(r, "topic"))
		if !knownTopic(topic) {
			utils.RespondError(w, http.StatusNotFound, "Unknown topic")
			return
		}

		v, ok := bus.Last(topic)
		if !ok {
			utils.RespondError(w, http.StatusNotFound, "No data received yet")
			return
		}
		utils.RespondSuccess(w, map[string]interface{}{"topic": topic, "data": v})
	}
}

func knownTopic(topic eventbus.Topic) bool {
	for _, t := range eventbus.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Markers returns map markers built from the latest crew locations.
// With ?lat=&lng= the markers are sorted nearest first.
func Markers(bus *eventbus.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, ok := eventbus.LastAs[poller.CrewLocationsEvent](bus, eventbus.TopicCrewLocations)
		if !ok {
			utils.RespondError(w, http.StatusNotFound, "No crew locations received yet")
			return
		}

		markers := views.CrewMarkers(ev.Crews)

		latStr, lngStr := r.URL.Query().Get("lat"), r.URL.Query().Get("lng")
		if latStr != "" || lngStr != "" {
			lat, err1 := strconv.ParseFloat(latStr, 64)
			lng, err2 := strconv.ParseFloat(lngStr, 64)
			if err1 != nil || err2 != nil {
				utils.RespondError(w, http.StatusBadRequest, "lat and lng must both be numbers")
				return
			}
			views.SortByDistance(markers, lat, lng)
		}

		utils.RespondSuccess(w, map[string]interface{}{
			"markers":     markers,
			"count":       len(markers),
			"received_at": ev.ReceivedAt,
		})
	}
}

// PollerStatus returns the scheduler state and error count
func PollerStatus(p Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := p.Status()
		utils.RespondSuccess(w, map[string]interface{}{
			"state":              st.State,
			"consecutive_errors": st.ConsecutiveErrors,
			"threshold":          st.Threshold,
			"interval":           st.Interval.String(),
			"tick_in_flight":     st.TickInFlight,
		})
	}
}

// ResetPoller closes the circuit so the next tick runs a full cycle
func ResetPoller(p Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.ResetErrorCounter()
		utils.RespondSuccess(w, map[string]interface{}{"state": p.Status().State})
	}
}

// RefreshPoller runs one tick immediately
func RefreshPoller(p Controller, base context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := p.Tick(base)
		utils.RespondSuccess(w, map[string]interface{}{
			"outcome":            report.Outcome,
			"consecutive_errors": report.ConsecutiveErrors,
			"error":              report.Message,
			"duration":           report.Duration.String(),
		})
	}
}

func StartPoller(p Controller, base context.Context, interval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Start(base, interval)
		utils.RespondSuccess(w, map[string]interface{}{"state": p.Status().State})
	}
}

func StopPoller(p Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Stop()
		utils.RespondSuccess(w, map[string]interface{}{"state": p.Status().State})
	}
}

// History lists recent poll ticks from the journal
func History(j *journal.Journal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		records, err := j.Recent(limit)
		if errors.Is(err, journal.ErrDisabled) {
			utils.RespondError(w, http.StatusServiceUnavailable, "Journal is disabled")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to load history")
			return
		}

		utils.RespondSuccess(w, map[string]interface{}{"ticks": records})
	}
}

// HistorySummary counts ticks per outcome over ?window= (default 1h)
func HistorySummary(j *journal.Journal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window := time.Hour
		if raw := r.URL.Query().Get("window"); raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil || d <= 0 {
				utils.RespondError(w, http.StatusBadRequest, "window must be a positive duration like 30m")
				return
			}
			window = d
		}

		counts, err := j.Summary(time.Now().Add(-window))
		if errors.Is(err, journal.ErrDisabled) {
			utils.RespondError(w, http.StatusServiceUnavailable, "Journal is disabled")
			return
		}
		if err != nil {
			utils.RespondError(w, http.StatusInternalServerError, "Failed to summarize history")
			return
		}

		utils.RespondSuccess(w, map[string]interface{}{
			"window":   window.String(),
			"outcomes": counts,
		})
	}
}
