package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Delaurensbot/BrabantRoyale/services/analytics"
	"github.com/Delaurensbot/BrabantRoyale/services/cwrace"
	"github.com/Delaurensbot/BrabantRoyale/services/joins"
	"github.com/Delaurensbot/BrabantRoyale/services/race"
	"github.com/Delaurensbot/BrabantRoyale/services/recap"
)

type Handlers struct {
	Race      race.Service
	CWRace    cwrace.Service
	Analytics analytics.Service
	Recap     recap.Service
	Joins     joins.Service
}

func (h Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/race", h.handleRace)
	mux.HandleFunc("/api/cwstats", h.handleCWStats)
	mux.HandleFunc("/api/analytics", h.handleAnalytics)
	mux.HandleFunc("/api/recap", h.handleRecap)
	mux.HandleFunc("/api/joins", h.handleJoins)
}

func (h Handlers) handleRace(w http.ResponseWriter, r *http.Request) {
	report, err := h.Race.Collect(r.Context(), r.URL.Query().Get("clan"), race.Options{
		Top:      intQuery(r, "top", 0),
		StoryMax: intQuery(r, "story_max", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h Handlers) handleCWStats(w http.ResponseWriter, r *http.Request) {
	report, err := h.CWRace.Collect(r.Context(), r.URL.Query().Get("clan"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h Handlers) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.Analytics.Collect(r.Context(), r.URL.Query().Get("clan"), analytics.Options{
		Top: intQuery(r, "top", 0),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

type recapResponse struct {
	*recap.Report
	EndWar *recap.EndWarReport `json:"end_war,omitempty"`
}

func (h Handlers) handleRecap(w http.ResponseWriter, r *http.Request) {
	clan := r.URL.Query().Get("clan")

	report, err := h.Recap.Collect(r.Context(), clan)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := recapResponse{Report: report}
	endWar, err := h.Recap.CollectEndWar(r.Context(), clan)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
	} else {
		resp.EndWar = endWar
	}
	writeJSON(w, resp)
}

func (h Handlers) handleJoins(w http.ResponseWriter, r *http.Request) {
	report, err := h.Joins.Collect(r.Context(), r.URL.Query().Get("clan"), intQuery(r, "limit", 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func intQuery(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err.Error())
	}
}

func writeError(w http.ResponseWriter, err error) {
	slog.Error("request failed", "err", err.Error())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok":    false,
		"error": err.Error(),
	})
}
