package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/editathons/internal/app"
	"github.com/shrimpsizemoose/editathons/internal/metrics"
	"github.com/shrimpsizemoose/editathons/internal/web"
)

// NewRouter wires pages, the JSON API and operational endpoints.
func NewRouter(service *app.Service, renderer *web.Renderer) *mux.Router {
	pages := NewPageHandler(service, renderer)
	api := NewAPIHandler(service)

	r := mux.NewRouter()
	r.Use(instrument)

	r.HandleFunc("/", pages.HandleIndex).Methods(http.MethodGet)
	r.HandleFunc("/campaign/{name}&{year:[0-9]+}", pages.HandleCampaign).Methods(http.MethodGet)
	r.HandleFunc("/campaign/{name}&{year:[0-9]+}/{site}", pages.HandleEditathon).Methods(http.MethodGet)

	r.HandleFunc("/api/campaigns", api.HandleListCampaigns).Methods(http.MethodGet)
	r.HandleFunc("/api/campaigns/{id:[0-9]+}", api.HandleCampaign).Methods(http.MethodGet)
	// registered before {site} so that "editathons" is never read as a site
	r.HandleFunc("/api/campaigns/{id:[0-9]+}/editathons", api.HandleCampaignEditathons).Methods(http.MethodGet)
	r.HandleFunc("/api/campaigns/{id:[0-9]+}/{site}", api.HandleEditathon).Methods(http.MethodGet)

	r.HandleFunc("/healthz", api.HandleHealth).Methods(http.MethodGet)

	if service.Config.Metrics.Enabled {
		r.Handle(service.Config.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				path = tpl
			}
		}
		metrics.APIRequestDuration.WithLabelValues(
			path,
			r.Method,
			strconv.Itoa(rec.status),
		).Observe(time.Since(start).Seconds())
	})
}

func intVar(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return v, err == nil
}
