package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/editathons/internal/store/sqlite"
	"github.com/shrimpsizemoose/editathons/internal/store/storetest"
)

func setupService(t *testing.T) *Service {
	s, err := sqlite.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.ApplyMigrations("../../migrations"))
	storetest.Seed(t, s.DB)

	return &Service{Config: &Config{}, Store: s}
}

func TestCampaignOverview(t *testing.T) {
	service := setupService(t)
	ctx := context.Background()

	overview, err := service.CampaignOverview(ctx, "Art+Feminism", 2024)
	require.NoError(t, err)
	assert.Equal(t, storetest.ArtFeminismID, overview.Campaign.ID)
	assert.Len(t, overview.Editathons, 2)
	assert.Len(t, overview.Projects, 2)
	assert.Len(t, overview.Users, 3)

	_, err = service.CampaignOverview(ctx, "Art+Feminism", 1999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEmptyCampaignDetail(t *testing.T) {
	service := setupService(t)

	overview, err := service.CampaignDetail(context.Background(), storetest.EmptyCampaignID)
	require.NoError(t, err)
	assert.NotNil(t, overview.Editathons)
	assert.NotNil(t, overview.Projects)
	assert.NotNil(t, overview.Users)
	assert.Empty(t, overview.Projects)
	assert.Empty(t, overview.Users)
}

func TestEditathonOverview(t *testing.T) {
	service := setupService(t)
	ctx := context.Background()

	overview, err := service.EditathonOverview(ctx, "Art+Feminism", 2024, "commons")
	require.NoError(t, err)
	assert.Equal(t, storetest.CommonsEditathonID, overview.Editathon.ID)
	assert.Equal(t, "Art+Feminism", overview.Campaign.Name)

	campaign, err := service.CampaignDetail(ctx, storetest.ArtFeminismID)
	require.NoError(t, err)
	campaignArticles := map[string]int64{}
	for _, u := range campaign.Users {
		campaignArticles[u.User] = u.Articles
	}
	for _, u := range overview.Users {
		assert.Contains(t, campaignArticles, u.User)
		assert.GreaterOrEqual(t, campaignArticles[u.User], u.Articles)
	}

	_, err = service.EditathonOverview(ctx, "Art+Feminism", 2024, "Commons")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = service.EditathonOverview(ctx, "Empty", 2024, "commons")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditathonDetailByCampaignID(t *testing.T) {
	service := setupService(t)
	ctx := context.Background()

	overview, err := service.EditathonDetail(ctx, storetest.OtherCampaignID, "commons")
	require.NoError(t, err)
	assert.Equal(t, storetest.OtherEditathonID, overview.Editathon.ID)
	require.Len(t, overview.Users, 1)
	assert.Equal(t, "Carol", overview.Users[0].User)

	_, err = service.CampaignEditathons(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
