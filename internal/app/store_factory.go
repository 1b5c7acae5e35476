package app

import (
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/editathons/internal/store"
	"github.com/shrimpsizemoose/editathons/internal/store/postgres"
	"github.com/shrimpsizemoose/editathons/internal/store/sqlite"
)

func DetectDBType(dsn string) store.DatabaseType {
	if strings.HasPrefix(dsn, "postgres") {
		return store.DBTypePostgres
	}
	return store.DBTypeSQLite
}

func NewStore(dsn string) (store.StatsStore, error) {
	switch dbType := DetectDBType(dsn); dbType {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(dsn)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}
