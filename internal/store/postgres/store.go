package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/shrimpsizemoose/editathons/internal/models"
	"github.com/shrimpsizemoose/editathons/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &PostgresStore{BaseStore: store.BaseStore{
		DB:        db,
		Converter: convertPlaceholders,
	}}, nil
}

// convertPlaceholders rewrites ? placeholders to $1, $2, ...
func convertPlaceholders(query string) string {
	out := query
	for i := 1; strings.Contains(out, "?"); i++ {
		out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
	}
	return out
}

// migrationLockKey is the advisory lock held while migrating, so servers
// starting together do not race on creating schema_migrations.
const migrationLockKey int64 = 0x6564697468

func (s *PostgresStore) ApplyMigrations(dir string) error {
	ctx := context.Background()

	conn, err := s.DB.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire migration connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("failed to take migration lock: %w", err)
	}
	defer conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", migrationLockKey)

	return s.BaseStore.ApplyMigrations(dir, nil)
}

const projectsAgg = "ARRAY_AGG(DISTINCT c.project ORDER BY c.project)"

type userStatsRow struct {
	User             string         `db:"user_id"`
	Articles         int64          `db:"articles"`
	AcceptedArticles int64          `db:"accepted_articles"`
	Projects         pq.StringArray `db:"projects"`
}

func (s *PostgresStore) CampaignUserStats(ctx context.Context, campaignID int64) ([]models.UserStats, error) {
	return s.selectUserStats(ctx, store.ScopeCampaign, campaignID)
}

func (s *PostgresStore) EditathonUserStats(ctx context.Context, editathonID int64) ([]models.UserStats, error) {
	return s.selectUserStats(ctx, store.ScopeEditathon, editathonID)
}

func (s *PostgresStore) selectUserStats(ctx context.Context, scope store.Scope, id int64) ([]models.UserStats, error) {
	var rows []userStatsRow
	query := s.Converter(store.UserStatsQuery(scope, projectsAgg))
	if err := s.DB.SelectContext(ctx, &rows, query, id); err != nil {
		return nil, fmt.Errorf("failed to fetch %s user stats: %w", scope, err)
	}

	stats := make([]models.UserStats, 0, len(rows))
	for _, r := range rows {
		stats = append(stats, models.UserStats{
			User:             r.User,
			Articles:         r.Articles,
			AcceptedArticles: r.AcceptedArticles,
			Projects:         []string(r.Projects),
		})
	}
	return stats, nil
}
