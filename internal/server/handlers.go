package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pocketpause/pausecore/pkg/rules"
	"github.com/pocketpause/pausecore/pkg/schedule"
)

type ParseRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	result := s.Parser.ParseProductURLSmart(r.Context(), req.URL)
	json.NewEncoder(w).Encode(result)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(s.Parser.Metrics())
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var fb rules.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if fb.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	if err := s.Rules.AddFeedback(r.Context(), fb); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	if domain := r.URL.Query().Get("domain"); domain != "" {
		rule, err := s.Rules.GetRulesForDomain("https://" + domain + "/")
		if err != nil {
			http.Error(w, "no rule for domain", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(rule)
		return
	}
	json.NewEncoder(w).Encode(s.Rules.ListRules())
}

type SchedulePreviewRequest struct {
	Settings  schedule.Settings `json:"settings"`
	ReadyTime time.Time         `json:"ready_time"`
}

type SchedulePreviewResponse struct {
	ScheduledTime time.Time `json:"scheduled_time"`
}

func (s *Server) handleSchedulePreview(w http.ResponseWriter, r *http.Request) {
	var req SchedulePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	scheduled := schedule.CalculateScheduledTime(req.Settings, req.ReadyTime)
	json.NewEncoder(w).Encode(SchedulePreviewResponse{ScheduledTime: scheduled})
}

func (s *Server) handlePendingCount(w http.ResponseWriter, r *http.Request) {
	if s.Queue == nil {
		http.Error(w, "notification queue not configured", http.StatusServiceUnavailable)
		return
	}
	count, err := s.Queue.PendingCount(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]int{"pending": count})
}
