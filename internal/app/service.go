package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/editathons/internal/metrics"
	"github.com/shrimpsizemoose/editathons/internal/models"
	"github.com/shrimpsizemoose/editathons/internal/store"
)

// ErrNotFound is returned when a campaign or editathon lookup misses.
var ErrNotFound = errors.New("not found")

type Service struct {
	Config *Config
	Store  store.StatsStore
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	return &Service{
		Config: config,
		Store:  store,
	}, nil
}

type Stats struct {
	Projects []models.ProjectStats
	Users    []models.UserStats
}

type CampaignOverview struct {
	Campaign   *models.Campaign
	Editathons []models.Editathon
	Stats
}

type EditathonOverview struct {
	Campaign  *models.Campaign
	Editathon *models.Editathon
	Stats
}

func (s *Service) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	return s.Store.ListCampaigns(ctx)
}

func (s *Service) FindCampaign(ctx context.Context, name string, year int64) (*models.Campaign, error) {
	campaign, err := s.Store.FindCampaign(ctx, name, year)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, fmt.Errorf("campaign %s&%d: %w", name, year, ErrNotFound)
	}
	return campaign, nil
}

func (s *Service) GetCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	campaign, err := s.Store.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, fmt.Errorf("campaign %d: %w", id, ErrNotFound)
	}
	return campaign, nil
}

func (s *Service) FindEditathon(ctx context.Context, campaignID int64, sitename string) (*models.Editathon, error) {
	editathon, err := s.Store.FindEditathon(ctx, campaignID, sitename)
	if err != nil {
		return nil, err
	}
	if editathon == nil {
		return nil, fmt.Errorf("editathon %s in campaign %d: %w", sitename, campaignID, ErrNotFound)
	}
	return editathon, nil
}

func (s *Service) CampaignOverview(ctx context.Context, name string, year int64) (*CampaignOverview, error) {
	campaign, err := s.FindCampaign(ctx, name, year)
	if err != nil {
		return nil, err
	}
	return s.campaignOverview(ctx, campaign)
}

func (s *Service) CampaignDetail(ctx context.Context, id int64) (*CampaignOverview, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.campaignOverview(ctx, campaign)
}

func (s *Service) CampaignEditathons(ctx context.Context, id int64) ([]models.Editathon, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Store.ListEditathons(ctx, campaign.ID)
}

func (s *Service) EditathonOverview(ctx context.Context, name string, year int64, sitename string) (*EditathonOverview, error) {
	campaign, err := s.FindCampaign(ctx, name, year)
	if err != nil {
		return nil, err
	}

	editathon, err := s.FindEditathon(ctx, campaign.ID, sitename)
	if err != nil {
		return nil, err
	}

	stats, err := s.editathonStats(ctx, editathon.ID)
	if err != nil {
		return nil, err
	}

	return &EditathonOverview{Campaign: campaign, Editathon: editathon, Stats: *stats}, nil
}

// EditathonDetail resolves the editathon by campaign id without loading the campaign row.
func (s *Service) EditathonDetail(ctx context.Context, campaignID int64, sitename string) (*EditathonOverview, error) {
	editathon, err := s.FindEditathon(ctx, campaignID, sitename)
	if err != nil {
		return nil, err
	}

	stats, err := s.editathonStats(ctx, editathon.ID)
	if err != nil {
		return nil, err
	}

	return &EditathonOverview{Editathon: editathon, Stats: *stats}, nil
}

func (s *Service) campaignOverview(ctx context.Context, campaign *models.Campaign) (*CampaignOverview, error) {
	editathons, err := s.Store.ListEditathons(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}

	var stats Stats
	err = observe(store.ScopeCampaign, "project", func() (err error) {
		stats.Projects, err = s.Store.CampaignProjectStats(ctx, campaign.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = observe(store.ScopeCampaign, "user", func() (err error) {
		stats.Users, err = s.Store.CampaignUserStats(ctx, campaign.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &CampaignOverview{
		Campaign:   campaign,
		Editathons: nonNil(editathons),
		Stats:      stats.normalized(),
	}, nil
}

func (s *Service) editathonStats(ctx context.Context, editathonID int64) (*Stats, error) {
	var stats Stats
	err := observe(store.ScopeEditathon, "project", func() (err error) {
		stats.Projects, err = s.Store.EditathonProjectStats(ctx, editathonID)
		return err
	})
	if err != nil {
		return nil, err
	}

	err = observe(store.ScopeEditathon, "user", func() (err error) {
		stats.Users, err = s.Store.EditathonUserStats(ctx, editathonID)
		return err
	})
	if err != nil {
		return nil, err
	}

	stats = stats.normalized()
	return &stats, nil
}

func observe(scope store.Scope, kind string, query func() error) error {
	start := time.Now()
	err := query()
	metrics.StatsQueryDuration.WithLabelValues(string(scope), kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StatsQueryErrors.WithLabelValues(string(scope), kind).Inc()
	}
	return err
}

// normalized keeps empty scopes serialized as [] rather than null.
func (st Stats) normalized() Stats {
	return Stats{Projects: nonNil(st.Projects), Users: nonNil(st.Users)}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (s *Service) Ping(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

func (s *Service) Close() error {
	if err := s.Store.Close(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
