package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/editathons/internal/app"
	"github.com/shrimpsizemoose/editathons/internal/models"
	"github.com/shrimpsizemoose/editathons/internal/web"
)

type PageHandler struct {
	service  *app.Service
	renderer *web.Renderer
}

func NewPageHandler(service *app.Service, renderer *web.Renderer) *PageHandler {
	return &PageHandler{
		service:  service,
		renderer: renderer,
	}
}

func (h *PageHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.ListCampaigns(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.render(w, r, web.PageIndex, struct {
		Campaigns []models.Campaign
	}{campaigns})
}

func (h *PageHandler) HandleCampaign(w http.ResponseWriter, r *http.Request) {
	year, ok := intVar(r, "year")
	if !ok {
		http.NotFound(w, r)
		return
	}

	overview, err := h.service.CampaignOverview(r.Context(), mux.Vars(r)["name"], year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.render(w, r, web.PageCampaign, overview)
}

func (h *PageHandler) HandleEditathon(w http.ResponseWriter, r *http.Request) {
	year, ok := intVar(r, "year")
	if !ok {
		http.NotFound(w, r)
		return
	}

	vars := mux.Vars(r)
	overview, err := h.service.EditathonOverview(r.Context(), vars["name"], year, vars["site"])
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.render(w, r, web.PageEditathon, overview)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page string, data interface{}) {
	body, err := h.renderer.Render(page, data)
	if err != nil {
		logger.Error.Printf("Failed to render %s for %s: %v", page, r.URL.Path, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(body)
}
