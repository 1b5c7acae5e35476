package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shrimpsizemoose/editathons/internal/models"
	"github.com/shrimpsizemoose/editathons/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", strings.TrimPrefix(dsn, "sqlite://"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	// every connection to :memory: opens its own empty database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
	}}, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

var sqliteReplacer = strings.NewReplacer(
	"SERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT",
	"now()", "CURRENT_TIMESTAMP",
	"TRUE", "1",
	"FALSE", "0",
)

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	return sqliteReplacer.Replace(sql)
}

const projectsAgg = "json_group_array(DISTINCT c.project)"

type userStatsRow struct {
	User             string `db:"user_id"`
	Articles         int64  `db:"articles"`
	AcceptedArticles int64  `db:"accepted_articles"`
	Projects         string `db:"projects"`
}

func (s *SQLiteStore) CampaignUserStats(ctx context.Context, campaignID int64) ([]models.UserStats, error) {
	return s.selectUserStats(ctx, store.ScopeCampaign, campaignID)
}

func (s *SQLiteStore) EditathonUserStats(ctx context.Context, editathonID int64) ([]models.UserStats, error) {
	return s.selectUserStats(ctx, store.ScopeEditathon, editathonID)
}

func (s *SQLiteStore) selectUserStats(ctx context.Context, scope store.Scope, id int64) ([]models.UserStats, error) {
	var rows []userStatsRow
	if err := s.DB.SelectContext(ctx, &rows, store.UserStatsQuery(scope, projectsAgg), id); err != nil {
		return nil, fmt.Errorf("failed to fetch %s user stats: %w", scope, err)
	}

	stats := make([]models.UserStats, 0, len(rows))
	for _, r := range rows {
		var projects []string
		if err := json.Unmarshal([]byte(r.Projects), &projects); err != nil {
			return nil, fmt.Errorf("failed to decode projects of %s: %w", r.User, err)
		}
		// json_group_array keeps no order
		sort.Strings(projects)

		stats = append(stats, models.UserStats{
			User:             r.User,
			Articles:         r.Articles,
			AcceptedArticles: r.AcceptedArticles,
			Projects:         projects,
		})
	}
	return stats, nil
}
