// Package dbtest provides an in-memory SQLite database with the production schema.
package dbtest

import (
	"context"
	"testing"

	"navibu-api/database"
	"navibu-api/internal/domain/transit"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New opens a fresh migrated database. A single connection is used so that
// every query sees the same :memory: database.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := database.Config()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// SeedRoutes inserts one route per short name and returns them in order.
func SeedRoutes(t testing.TB, db *gorm.DB, shortNames ...string) []transit.Route {
	t.Helper()

	routes := make([]transit.Route, 0, len(shortNames))
	for _, name := range shortNames {
		routes = append(routes, transit.Route{RouteShortName: name, RouteLongName: name + " line"})
	}
	if _, err := database.SeedRoutes(context.Background(), db, routes); err != nil {
		t.Fatalf("failed to seed routes: %v", err)
	}

	var stored []transit.Route
	if err := db.Where("route_short_name IN ?", shortNames).Order("id").Find(&stored).Error; err != nil {
		t.Fatalf("failed to load seeded routes: %v", err)
	}
	return stored
}
