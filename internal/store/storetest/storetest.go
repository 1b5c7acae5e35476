// Package storetest holds fixtures and assertions shared by the store
// dialect tests, so postgres and sqlite are held to the same results.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/editathons/internal/models"
	"github.com/shrimpsizemoose/editathons/internal/store"
)

const (
	ArtFeminismID   int64 = 1
	EmptyCampaignID int64 = 2
	OtherCampaignID int64 = 3
	CommaCampaignID int64 = 4

	CommonsEditathonID  int64 = 10
	WikidataEditathonID int64 = 11
	OtherEditathonID    int64 = 12
	CommaEditathonID    int64 = 13
)

func ptr[T any](v T) *T { return &v }

var (
	Campaigns = []models.Campaign{
		{ID: ArtFeminismID, Name: "Art+Feminism", Year: ptr(int64(2024)), Description: ptr("Closing the gender gap")},
		{ID: EmptyCampaignID, Name: "Empty", Year: ptr(int64(2024))},
		{ID: OtherCampaignID, Name: "Art+Feminism", Year: ptr(int64(2023))},
		{ID: CommaCampaignID, Name: "Wiki Loves Delimiters", Year: ptr(int64(2024))},
	}

	Editathons = []models.Editathon{
		{ID: CommonsEditathonID, CampaignID: ArtFeminismID, Sitename: "commons"},
		{ID: WikidataEditathonID, CampaignID: ArtFeminismID, Sitename: "wikidata", Description: ptr("Items for artists")},
		{ID: OtherEditathonID, CampaignID: OtherCampaignID, Sitename: "commons"},
		{ID: CommaEditathonID, CampaignID: CommaCampaignID, Sitename: "enwiki"},
	}

	Users = []models.User{
		{ID: "Alice"},
		{ID: "Bob"},
		{ID: "Carol"},
		{ID: "Dave"},
	}

	submitted = time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC)

	Contributions = []models.Contribution{
		// the commons editathon
		{UserID: "Alice", EditathonID: CommonsEditathonID, Project: "commons", ArticleTitle: "File:Portrait.jpg", AcceptanceStatus: true},
		{UserID: "Bob", EditathonID: CommonsEditathonID, Project: "wikidata", ArticleTitle: "Q42", AcceptanceStatus: false},
		// the wikidata editathon
		{UserID: "Alice", EditathonID: WikidataEditathonID, Project: "wikidata", ArticleTitle: "Q1", AcceptanceStatus: true},
		{UserID: "Alice", EditathonID: WikidataEditathonID, Project: "commons", ArticleTitle: "File:Sculpture.jpg", AcceptanceStatus: false},
		{UserID: "Carol", EditathonID: WikidataEditathonID, Project: "wikidata", ArticleTitle: "Q2", AcceptanceStatus: false},
		// previous year, must never leak into 2024 stats
		{UserID: "Carol", EditathonID: OtherEditathonID, Project: "commons", ArticleTitle: "File:Old.jpg", AcceptanceStatus: true},
		// project names may contain the comma a joined list would split on
		{UserID: "Dave", EditathonID: CommaEditathonID, Project: "en,wiki", ArticleTitle: "Ada Lovelace", AcceptanceStatus: true},
		{UserID: "Dave", EditathonID: CommaEditathonID, Project: "en,wiki", ArticleTitle: "Hedy Lamarr", AcceptanceStatus: false},
		{UserID: "Dave", EditathonID: CommaEditathonID, Project: "wikidata", ArticleTitle: "Q7259", AcceptanceStatus: false},
	}
)

// Seed inserts the fixture rows. Named queries are rebound for the driver by sqlx.
func Seed(t *testing.T, db *sqlx.DB) {
	t.Helper()

	for _, c := range Campaigns {
		_, err := db.NamedExec(`
			INSERT INTO campaigns (campaign_id, name, year, description)
			VALUES (:campaign_id, :name, :year, :description)
		`, c)
		require.NoError(t, err, "Failed to insert campaign")
	}

	for _, e := range Editathons {
		_, err := db.NamedExec(`
			INSERT INTO editathons (editathon_id, campaign_id, sitename, start_date, end_date, description)
			VALUES (:editathon_id, :campaign_id, :sitename, :start_date, :end_date, :description)
		`, e)
		require.NoError(t, err, "Failed to insert editathon")
	}

	for _, u := range Users {
		_, err := db.NamedExec(`
			INSERT INTO users (user_id, registration_date)
			VALUES (:user_id, :registration_date)
		`, u)
		require.NoError(t, err, "Failed to insert user")
	}

	for _, c := range Contributions {
		c.SubmissionTimestamp = submitted
		_, err := db.NamedExec(`
			INSERT INTO contributions (user_id, editathon_id, project, article_title, submission_timestamp, acceptance_status)
			VALUES (:user_id, :editathon_id, :project, :article_title, :submission_timestamp, :acceptance_status)
		`, c)
		require.NoError(t, err, "Failed to insert contribution")
	}
}

// RunStatsTests checks lookups and aggregations against the seeded fixture.
func RunStatsTests(t *testing.T, s store.StatsStore) {
	ctx := context.Background()

	t.Run("list campaigns", func(t *testing.T) {
		campaigns, err := s.ListCampaigns(ctx)
		require.NoError(t, err)
		require.Len(t, campaigns, len(Campaigns))
		assert.Equal(t, "Art+Feminism", campaigns[0].Name)
		assert.Equal(t, int64(2024), *campaigns[0].Year)
	})

	t.Run("find campaign by name and year", func(t *testing.T) {
		got, err := s.FindCampaign(ctx, "Art+Feminism", 2024)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, ArtFeminismID, got.ID)
		assert.Equal(t, "Closing the gender gap", *got.Description)

		got, err = s.FindCampaign(ctx, "Art+Feminism", 2023)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, OtherCampaignID, got.ID)
	})

	t.Run("campaign lookups miss without error", func(t *testing.T) {
		got, err := s.FindCampaign(ctx, "art+feminism", 2024)
		require.NoError(t, err)
		assert.Nil(t, got, "lookup is case-sensitive")

		got, err = s.FindCampaign(ctx, "Art+Feminism", 1999)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = s.GetCampaign(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("editathons of a campaign", func(t *testing.T) {
		editathons, err := s.ListEditathons(ctx, ArtFeminismID)
		require.NoError(t, err)
		require.Len(t, editathons, 2)
		assert.Equal(t, "commons", editathons[0].Sitename)
		assert.Equal(t, "wikidata", editathons[1].Sitename)

		editathons, err = s.ListEditathons(ctx, EmptyCampaignID)
		require.NoError(t, err)
		assert.Empty(t, editathons)
	})

	t.Run("find editathon", func(t *testing.T) {
		got, err := s.FindEditathon(ctx, ArtFeminismID, "commons")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, CommonsEditathonID, got.ID)

		got, err = s.FindEditathon(ctx, EmptyCampaignID, "commons")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("editathon project stats", func(t *testing.T) {
		stats, err := s.EditathonProjectStats(ctx, CommonsEditathonID)
		require.NoError(t, err)
		assert.Equal(t, []models.ProjectStats{
			{Project: "commons", Users: 1, Articles: 1, AcceptedArticles: 1},
			{Project: "wikidata", Users: 1, Articles: 1, AcceptedArticles: 0},
		}, stats)
	})

	t.Run("editathon user stats", func(t *testing.T) {
		stats, err := s.EditathonUserStats(ctx, CommonsEditathonID)
		require.NoError(t, err)
		assert.Equal(t, []models.UserStats{
			{User: "Alice", Articles: 1, AcceptedArticles: 1, Projects: []string{"commons"}},
			{User: "Bob", Articles: 1, AcceptedArticles: 0, Projects: []string{"wikidata"}},
		}, stats)
	})

	t.Run("campaign project stats", func(t *testing.T) {
		stats, err := s.CampaignProjectStats(ctx, ArtFeminismID)
		require.NoError(t, err)
		assert.Equal(t, []models.ProjectStats{
			{Project: "commons", Users: 1, Articles: 2, AcceptedArticles: 1},
			{Project: "wikidata", Users: 3, Articles: 3, AcceptedArticles: 1},
		}, stats)
	})

	t.Run("campaign user stats", func(t *testing.T) {
		stats, err := s.CampaignUserStats(ctx, ArtFeminismID)
		require.NoError(t, err)
		assert.Equal(t, []models.UserStats{
			{User: "Alice", Articles: 3, AcceptedArticles: 2, Projects: []string{"commons", "wikidata"}},
			{User: "Bob", Articles: 1, AcceptedArticles: 0, Projects: []string{"wikidata"}},
			{User: "Carol", Articles: 1, AcceptedArticles: 0, Projects: []string{"wikidata"}},
		}, stats)
	})

	t.Run("project names containing commas stay whole", func(t *testing.T) {
		users, err := s.EditathonUserStats(ctx, CommaEditathonID)
		require.NoError(t, err)
		assert.Equal(t, []models.UserStats{
			{User: "Dave", Articles: 3, AcceptedArticles: 1, Projects: []string{"en,wiki", "wikidata"}},
		}, users)

		campaignUsers, err := s.CampaignUserStats(ctx, CommaCampaignID)
		require.NoError(t, err)
		require.Len(t, campaignUsers, 1)
		assert.Equal(t, []string{"en,wiki", "wikidata"}, campaignUsers[0].Projects)

		projects, err := s.EditathonProjectStats(ctx, CommaEditathonID)
		require.NoError(t, err)
		assert.Equal(t, []models.ProjectStats{
			{Project: "en,wiki", Users: 1, Articles: 2, AcceptedArticles: 1},
			{Project: "wikidata", Users: 1, Articles: 1, AcceptedArticles: 0},
		}, projects)
	})

	t.Run("campaign without editathons has empty stats", func(t *testing.T) {
		projects, err := s.CampaignProjectStats(ctx, EmptyCampaignID)
		require.NoError(t, err)
		assert.Empty(t, projects)

		users, err := s.CampaignUserStats(ctx, EmptyCampaignID)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("aggregates are consistent", func(t *testing.T) {
		totals := map[int64]int64{}
		for _, c := range Contributions {
			for _, e := range Editathons {
				if e.ID == c.EditathonID {
					totals[e.CampaignID]++
				}
			}
		}

		projects, err := s.CampaignProjectStats(ctx, ArtFeminismID)
		require.NoError(t, err)
		var sum int64
		for _, p := range projects {
			assert.LessOrEqual(t, p.AcceptedArticles, p.Articles)
			sum += p.Articles
		}
		assert.Equal(t, totals[ArtFeminismID], sum)

		campaignUsers, err := s.CampaignUserStats(ctx, ArtFeminismID)
		require.NoError(t, err)
		byUser := map[string]models.UserStats{}
		sum = 0
		for _, u := range campaignUsers {
			assert.LessOrEqual(t, u.AcceptedArticles, u.Articles)
			byUser[u.User] = u
			sum += u.Articles
		}
		assert.Equal(t, totals[ArtFeminismID], sum)

		for _, id := range []int64{CommonsEditathonID, WikidataEditathonID} {
			users, err := s.EditathonUserStats(ctx, id)
			require.NoError(t, err)
			for _, u := range users {
				parent, ok := byUser[u.User]
				require.True(t, ok, "%s missing from campaign stats", u.User)
				assert.GreaterOrEqual(t, parent.Articles, u.Articles)
			}
		}
	})
}
