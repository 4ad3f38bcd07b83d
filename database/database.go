package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"navibu-api/internal/domain/transit"
	"navibu-api/internal/domain/users"
	"navibu-api/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to Postgres. The returned handle is shared by every service.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Config is the gorm configuration used for every dialect, tests included.
// TranslateError turns unique violations into gorm.ErrDuplicatedKey.
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// Migrate creates or updates the users, routes and user_routes tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&transit.Route{},
		&transit.UserRoute{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// SeedRoutesFromFile upserts the reference routes listed in a JSON file:
//
//	[{"route_short_name": "500T", "route_long_name": "Tuzla - Cevizlibag"}]
//
// Rows are matched on route_short_name.
func SeedRoutesFromFile(ctx context.Context, db *gorm.DB, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read routes seed: %w", err)
	}

	var routes []transit.Route
	if err := json.Unmarshal(raw, &routes); err != nil {
		return 0, fmt.Errorf("parse routes seed %s: %w", path, err)
	}
	return SeedRoutes(ctx, db, routes)
}

// SeedRoutes upserts routes in one statement. A short name listed more than once
// is collapsed to its last entry; Postgres rejects an upsert touching a row twice.
func SeedRoutes(ctx context.Context, db *gorm.DB, routes []transit.Route) (int, error) {
	if len(routes) == 0 {
		return 0, nil
	}

	index := make(map[string]int, len(routes))
	unique := make([]transit.Route, 0, len(routes))
	for i, r := range routes {
		if r.RouteShortName == "" {
			return 0, fmt.Errorf("route #%d has no route_short_name", i)
		}
		r.ID = 0
		if at, seen := index[r.RouteShortName]; seen {
			unique[at] = r
			continue
		}
		index[r.RouteShortName] = len(unique)
		unique = append(unique, r)
	}
	routes = unique

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "route_short_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"route_long_name"}),
	}).Create(&routes).Error
	if err != nil {
		return 0, fmt.Errorf("seed routes: %w", err)
	}

	logger.Log.Infow("routes seeded", "count", len(routes))
	return len(routes), nil
}
