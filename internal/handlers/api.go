package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/editathons/internal/app"
	"github.com/shrimpsizemoose/editathons/internal/models"
)

type APIHandler struct {
	service *app.Service
}

func NewAPIHandler(service *app.Service) *APIHandler {
	return &APIHandler{
		service: service,
	}
}

type campaignSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Year *int64 `json:"year"`
}

type editathonSummary struct {
	ID       int64  `json:"id"`
	Sitename string `json:"sitename"`
}

type campaignDetail struct {
	ID           int64                 `json:"id"`
	Name         string                `json:"name"`
	Year         *int64                `json:"year"`
	Description  *string               `json:"description"`
	Editathons   []editathonSummary    `json:"editathons"`
	ProjectStats []models.ProjectStats `json:"project_stats"`
	UserStats    []models.UserStats    `json:"user_stats"`
}

type editathonDetail struct {
	ID           int64                 `json:"id"`
	Sitename     string                `json:"sitename"`
	ProjectStats []models.ProjectStats `json:"project_stats"`
	UserStats    []models.UserStats    `json:"user_stats"`
}

func summarizeEditathons(editathons []models.Editathon) []editathonSummary {
	out := make([]editathonSummary, 0, len(editathons))
	for _, e := range editathons {
		out = append(out, editathonSummary{ID: e.ID, Sitename: e.Sitename})
	}
	return out
}

func (h *APIHandler) HandleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.ListCampaigns(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]campaignSummary, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, campaignSummary{ID: c.ID, Name: c.Name, Year: c.Year})
	}

	writeJSON(w, map[string]interface{}{
		"campaigns": out,
	})
}

func (h *APIHandler) HandleCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	overview, err := h.service.CampaignDetail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c := overview.Campaign
	writeJSON(w, map[string]interface{}{
		"campaign": campaignDetail{
			ID:           c.ID,
			Name:         c.Name,
			Year:         c.Year,
			Description:  c.Description,
			Editathons:   summarizeEditathons(overview.Editathons),
			ProjectStats: overview.Projects,
			UserStats:    overview.Users,
		},
	})
}

func (h *APIHandler) HandleCampaignEditathons(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	editathons, err := h.service.CampaignEditathons(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"editathons": summarizeEditathons(editathons),
	})
}

func (h *APIHandler) HandleEditathon(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	overview, err := h.service.EditathonDetail(r.Context(), id, mux.Vars(r)["site"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"editathon": editathonDetail{
			ID:           overview.Editathon.ID,
			Sitename:     overview.Editathon.Sitename,
			ProjectStats: overview.Projects,
			UserStats:    overview.Users,
		},
	})
}

func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		logger.Error.Printf("Health check failed: %v", err)
		http.Error(w, "Store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, app.ErrNotFound) {
		logger.Debug.Printf("%s: %v", r.URL.Path, err)
		http.NotFound(w, r)
		return
	}
	logger.Error.Printf("Failed to serve %s: %v", r.URL.Path, err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
