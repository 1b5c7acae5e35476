package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/editathons/internal/app"
	"github.com/shrimpsizemoose/editathons/internal/models"
	"github.com/shrimpsizemoose/editathons/internal/web"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockStore) ApplyMigrations(dir string) error {
	return nil
}

func (m *MockStore) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Campaign), args.Error(1)
}

func (m *MockStore) GetCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockStore) FindCampaign(ctx context.Context, name string, year int64) (*models.Campaign, error) {
	args := m.Called(name, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockStore) ListEditathons(ctx context.Context, campaignID int64) ([]models.Editathon, error) {
	args := m.Called(campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Editathon), args.Error(1)
}

func (m *MockStore) FindEditathon(ctx context.Context, campaignID int64, sitename string) (*models.Editathon, error) {
	args := m.Called(campaignID, sitename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Editathon), args.Error(1)
}

func (m *MockStore) CampaignProjectStats(ctx context.Context, campaignID int64) ([]models.ProjectStats, error) {
	args := m.Called(campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProjectStats), args.Error(1)
}

func (m *MockStore) CampaignUserStats(ctx context.Context, campaignID int64) ([]models.UserStats, error) {
	args := m.Called(campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserStats), args.Error(1)
}

func (m *MockStore) EditathonProjectStats(ctx context.Context, editathonID int64) ([]models.ProjectStats, error) {
	args := m.Called(editathonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProjectStats), args.Error(1)
}

func (m *MockStore) EditathonUserStats(ctx context.Context, editathonID int64) ([]models.UserStats, error) {
	args := m.Called(editathonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserStats), args.Error(1)
}

var (
	year2024 = int64(2024)

	artFeminism = &models.Campaign{ID: 1, Name: "Art+Feminism", Year: &year2024}
	commons     = &models.Editathon{ID: 10, CampaignID: 1, Sitename: "commons"}

	projectStats = []models.ProjectStats{
		{Project: "commons", Users: 1, Articles: 1, AcceptedArticles: 1},
		{Project: "wikidata", Users: 1, Articles: 1, AcceptedArticles: 0},
	}
	userStats = []models.UserStats{
		{User: "Alice", Articles: 1, AcceptedArticles: 1, Projects: []string{"commons"}},
		{User: "Bob", Articles: 1, AcceptedArticles: 0, Projects: []string{"wikidata"}},
	}
)

func newTestRouter(t *testing.T) (*mux.Router, *MockStore) {
	store := new(MockStore)

	config := &app.Config{}
	config.Metrics.Enabled = true
	config.Metrics.Path = "/metrics"

	renderer, err := web.NewRenderer("2006-01-02")
	require.NoError(t, err)

	return NewRouter(&app.Service{Config: config, Store: store}, renderer), store
}

func serve(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestAPIListCampaigns(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("ListCampaigns").Return([]models.Campaign{*artFeminism}, nil)

	rec := serve(router, "/api/campaigns")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"campaigns":[{"id":1,"name":"Art+Feminism","year":2024}]}`, rec.Body.String())
}

func TestAPICampaignDetail(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("GetCampaign", int64(1)).Return(artFeminism, nil)
	store.On("ListEditathons", int64(1)).Return([]models.Editathon{*commons}, nil)
	store.On("CampaignProjectStats", int64(1)).Return(projectStats, nil)
	store.On("CampaignUserStats", int64(1)).Return(userStats, nil)

	rec := serve(router, "/api/campaigns/1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"campaign":{
		"id":1,"name":"Art+Feminism","year":2024,"description":null,
		"editathons":[{"id":10,"sitename":"commons"}],
		"project_stats":[
			{"project":"commons","users":1,"articles":1,"accepted_articles":1},
			{"project":"wikidata","users":1,"articles":1,"accepted_articles":0}
		],
		"user_stats":[
			{"user":"Alice","articles":1,"accepted_articles":1,"projects":["commons"]},
			{"user":"Bob","articles":1,"accepted_articles":0,"projects":["wikidata"]}
		]
	}}`, rec.Body.String())
}

func TestAPICampaignWithoutEditathons(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("GetCampaign", int64(2)).Return(&models.Campaign{ID: 2, Name: "Empty"}, nil)
	store.On("ListEditathons", int64(2)).Return(nil, nil)
	store.On("CampaignProjectStats", int64(2)).Return(nil, nil)
	store.On("CampaignUserStats", int64(2)).Return(nil, nil)

	rec := serve(router, "/api/campaigns/2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Campaign map[string]json.RawMessage `json:"campaign"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.JSONEq(t, `[]`, string(body.Campaign["editathons"]))
	assert.JSONEq(t, `[]`, string(body.Campaign["project_stats"]))
	assert.JSONEq(t, `[]`, string(body.Campaign["user_stats"]))
}

func TestAPICampaignEditathons(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("GetCampaign", int64(1)).Return(artFeminism, nil)
	store.On("ListEditathons", int64(1)).Return([]models.Editathon{*commons}, nil)

	rec := serve(router, "/api/campaigns/1/editathons")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"editathons":[{"id":10,"sitename":"commons"}]}`, rec.Body.String())
	store.AssertNotCalled(t, "FindEditathon", mock.Anything, mock.Anything)
}

func TestAPIEditathonDetail(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("FindEditathon", int64(1), "commons").Return(commons, nil)
	store.On("EditathonProjectStats", int64(10)).Return(projectStats, nil)
	store.On("EditathonUserStats", int64(10)).Return(userStats, nil)

	rec := serve(router, "/api/campaigns/1/commons")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"editathon":{
		"id":10,"sitename":"commons",
		"project_stats":[
			{"project":"commons","users":1,"articles":1,"accepted_articles":1},
			{"project":"wikidata","users":1,"articles":1,"accepted_articles":0}
		],
		"user_stats":[
			{"user":"Alice","articles":1,"accepted_articles":1,"projects":["commons"]},
			{"user":"Bob","articles":1,"accepted_articles":0,"projects":["wikidata"]}
		]
	}}`, rec.Body.String())
}

func TestAPINotFound(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("GetCampaign", int64(404)).Return(nil, nil)
	store.On("FindEditathon", int64(1), "nowhere").Return(nil, nil)

	testCases := []struct {
		name string
		path string
	}{
		{name: "unknown campaign", path: "/api/campaigns/404"},
		{name: "unknown campaign editathons", path: "/api/campaigns/404/editathons"},
		{name: "unknown site", path: "/api/campaigns/1/nowhere"},
		{name: "non-numeric id", path: "/api/campaigns/abc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(router, tc.path)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestAPIStoreFailure(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("GetCampaign", int64(1)).Return(artFeminism, nil)
	store.On("ListEditathons", int64(1)).Return([]models.Editathon{*commons}, nil)
	store.On("CampaignProjectStats", int64(1)).Return(projectStats, nil)
	store.On("CampaignUserStats", int64(1)).Return(nil, errors.New("connection reset"))

	rec := serve(router, "/api/campaigns/1")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestIndexPage(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("ListCampaigns").Return([]models.Campaign{*artFeminism}, nil)

	rec := serve(router, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `Feminism&amp;2024"`)
}

func TestCampaignPage(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("FindCampaign", "Art+Feminism", int64(2024)).Return(artFeminism, nil)
	store.On("ListEditathons", int64(1)).Return([]models.Editathon{*commons}, nil)
	store.On("CampaignProjectStats", int64(1)).Return(projectStats, nil)
	store.On("CampaignUserStats", int64(1)).Return(userStats, nil)

	rec := serve(router, "/campaign/Art+Feminism&2024")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<td>Alice</td>")
	assert.Contains(t, body, "<td>wikidata</td>")
	assert.Contains(t, body, ">commons</a>")
}

func TestEditathonPage(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("FindCampaign", "Art+Feminism", int64(2024)).Return(artFeminism, nil)
	store.On("FindEditathon", int64(1), "commons").Return(commons, nil)
	store.On("EditathonProjectStats", int64(10)).Return(projectStats, nil)
	store.On("EditathonUserStats", int64(10)).Return(userStats, nil)

	rec := serve(router, "/campaign/Art+Feminism&2024/commons")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>Bob</td>")
}

func TestPageNotFound(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("FindCampaign", "Nope", int64(2024)).Return(nil, nil)
	store.On("FindCampaign", "Art+Feminism", int64(2024)).Return(artFeminism, nil)
	store.On("FindEditathon", int64(1), "nowhere").Return(nil, nil)

	for _, path := range []string{
		"/campaign/Nope&2024",
		"/campaign/Nope&2024/commons",
		"/campaign/Art+Feminism&2024/nowhere",
		"/campaign/Art+Feminism&twenty",
	} {
		rec := serve(router, path)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestHealth(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("Ping").Return(nil).Once()
	store.On("Ping").Return(errors.New("down")).Once()

	assert.Equal(t, http.StatusOK, serve(router, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, "/healthz").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, store := newTestRouter(t)
	store.On("ListCampaigns").Return([]models.Campaign{}, nil)

	serve(router, "/api/campaigns")
	rec := serve(router, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `api_request_duration_seconds_count{method="GET",path="/api/campaigns",status="200"}`)
}
