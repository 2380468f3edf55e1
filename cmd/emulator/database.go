package main

import (
	"database/sql"
	"fmt"

	"github.com/MAYANKpandey14/do-it-with-ease/internal/config"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/db"
)

func openDatabase(cfg config.Config) (*sql.DB, error) {
	database, err := db.OpenSQLite(cfg.Emulator.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.RunMigrations(database, db.Migrations()); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return database, nil
}
