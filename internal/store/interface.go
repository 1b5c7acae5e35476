package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/editathons/internal/models"
)

type StatsStore interface {
	Close() error
	Ping(ctx context.Context) error
	ApplyMigrations(dir string) error

	ListCampaigns(ctx context.Context) ([]models.Campaign, error)
	GetCampaign(ctx context.Context, id int64) (*models.Campaign, error)
	FindCampaign(ctx context.Context, name string, year int64) (*models.Campaign, error)
	ListEditathons(ctx context.Context, campaignID int64) ([]models.Editathon, error)
	FindEditathon(ctx context.Context, campaignID int64, sitename string) (*models.Editathon, error)

	CampaignProjectStats(ctx context.Context, campaignID int64) ([]models.ProjectStats, error)
	CampaignUserStats(ctx context.Context, campaignID int64) ([]models.UserStats, error)
	EditathonProjectStats(ctx context.Context, editathonID int64) ([]models.ProjectStats, error)
	EditathonUserStats(ctx context.Context, editathonID int64) ([]models.UserStats, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *BaseStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed.
// Applied files are recorded in schema_migrations and skipped on later runs.
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	if translateSQL == nil {
		translateSQL = func(sql string) string { return sql }
	}

	_, err := s.DB.Exec(translateSQL(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT now()
		)
	`))
	if err != nil {
		return fmt.Errorf("failed to ensure schema_migrations: %w", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		applied, err := s.applyMigration(file.Name(), translateSQL(string(content)))
		if err != nil {
			return err
		}
		if !applied {
			logger.Debug.Printf("Migration %s already applied", file.Name())
		}
	}

	return nil
}

// applyMigration claims name in schema_migrations and runs sql in the same
// transaction. A name already claimed, even by a concurrent runner whose
// transaction commits first, is skipped.
func (s *BaseStore) applyMigration(name, sql string) (bool, error) {
	tx, err := s.DB.Beginx()
	if err != nil {
		return false, fmt.Errorf("failed to begin migration %s: %w", name, err)
	}

	res, err := tx.Exec(s.Converter(`
		INSERT INTO schema_migrations (name) VALUES (?)
		ON CONFLICT (name) DO NOTHING
	`), name)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("failed to record migration %s: %w", name, err)
	}

	claimed, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("failed to record migration %s: %w", name, err)
	}
	if claimed == 0 {
		return false, tx.Rollback()
	}

	logger.Info.Printf("Applying migration: %s", name)
	if _, err := tx.Exec(sql); err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("failed to apply migration %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit migration %s: %w", name, err)
	}
	return true, nil
}

func (s *BaseStore) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	campaigns := []models.Campaign{}
	err := s.DB.SelectContext(ctx, &campaigns, `
		SELECT campaign_id, name, year, description
		FROM campaigns
		ORDER BY campaign_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *BaseStore) GetCampaign(ctx context.Context, id int64) (*models.Campaign, error) {
	var campaign models.Campaign
	query := s.Converter(`
		SELECT campaign_id, name, year, description
		FROM campaigns
		WHERE campaign_id = ?
	`)

	err := s.DB.GetContext(ctx, &campaign, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign %d: %w", id, err)
	}
	return &campaign, nil
}

func (s *BaseStore) FindCampaign(ctx context.Context, name string, year int64) (*models.Campaign, error) {
	var campaign models.Campaign
	query := s.Converter(`
		SELECT campaign_id, name, year, description
		FROM campaigns
		WHERE name = ?
		AND year = ?
		ORDER BY campaign_id
		LIMIT 1
	`)

	err := s.DB.GetContext(ctx, &campaign, query, name, year)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find campaign %s/%d: %w", name, year, err)
	}
	return &campaign, nil
}

func (s *BaseStore) ListEditathons(ctx context.Context, campaignID int64) ([]models.Editathon, error) {
	editathons := []models.Editathon{}
	query := s.Converter(`
		SELECT editathon_id, campaign_id, sitename, start_date, end_date, description
		FROM editathons
		WHERE campaign_id = ?
		ORDER BY editathon_id
	`)

	err := s.DB.SelectContext(ctx, &editathons, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list editathons of campaign %d: %w", campaignID, err)
	}
	return editathons, nil
}

func (s *BaseStore) FindEditathon(ctx context.Context, campaignID int64, sitename string) (*models.Editathon, error) {
	var editathon models.Editathon
	query := s.Converter(`
		SELECT editathon_id, campaign_id, sitename, start_date, end_date, description
		FROM editathons
		WHERE campaign_id = ?
		AND sitename = ?
		ORDER BY editathon_id
		LIMIT 1
	`)

	err := s.DB.GetContext(ctx, &editathon, query, campaignID, sitename)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find editathon %s in campaign %d: %w", sitename, campaignID, err)
	}
	return &editathon, nil
}

func (s *BaseStore) CampaignProjectStats(ctx context.Context, campaignID int64) ([]models.ProjectStats, error) {
	return s.selectProjectStats(ctx, ScopeCampaign, campaignID)
}

func (s *BaseStore) EditathonProjectStats(ctx context.Context, editathonID int64) ([]models.ProjectStats, error) {
	return s.selectProjectStats(ctx, ScopeEditathon, editathonID)
}

func (s *BaseStore) selectProjectStats(ctx context.Context, scope Scope, id int64) ([]models.ProjectStats, error) {
	stats := []models.ProjectStats{}
	err := s.DB.SelectContext(ctx, &stats, s.Converter(ProjectStatsQuery(scope)), id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s project stats: %w", scope, err)
	}
	return stats, nil
}
