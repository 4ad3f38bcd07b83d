package transit

import (
	"context"
	"errors"
	"fmt"

	"navibu-api/internal/domain/apperr"
	"navibu-api/internal/domain/users"
	"navibu-api/internal/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service manages the user <-> route association.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// AddFavorite marks routeID as a favorite of userID. Adding the same pair twice
// leaves a single association row.
func (s *Service) AddFavorite(ctx context.Context, userID, routeID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, userID); err != nil {
			return err
		}
		if err := ensureRoute(tx, routeID); err != nil {
			return err
		}

		ur := UserRoute{UserID: userID, RouteID: routeID, IsFavorite: true}
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "route_id"}},
			DoUpdates: clause.Assignments(map[string]any{"is_favorite": true}),
		}).Create(&ur).Error
	})
}

// ListFavorites returns one entry per association of the user, oldest first.
func (s *Service) ListFavorites(ctx context.Context, userID uint) ([]Favorite, error) {
	db := s.db.WithContext(ctx)
	if err := ensureUser(db, userID); err != nil {
		return nil, err
	}

	favorites := []Favorite{}
	err := db.Table("user_routes").
		Select("routes.id AS id, routes.route_short_name AS name").
		Joins("JOIN routes ON routes.id = user_routes.route_id").
		Where("user_routes.user_id = ?", userID).
		Order("user_routes.id").
		Scan(&favorites).Error
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (s *Service) GetUserRoutes(ctx context.Context, userID uint) ([]Route, error) {
	db := s.db.WithContext(ctx)
	if err := ensureUser(db, userID); err != nil {
		return nil, err
	}

	routes := []Route{}
	err := db.Model(&Route{}).
		Select("routes.*").
		Joins("JOIN user_routes ON user_routes.route_id = routes.id").
		Where("user_routes.user_id = ?", userID).
		Order("user_routes.id").
		Find(&routes).Error
	if err != nil {
		return nil, err
	}
	return routes, nil
}

// ReplaceUserRoutes swaps the user's whole selection for routeIDs, all or nothing.
// Ids that do not resolve to a route are skipped; repeated ids are stored once.
func (s *Service) ReplaceUserRoutes(ctx context.Context, userID uint, routeIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, userID); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&UserRoute{}).Error; err != nil {
			return err
		}

		ids := dedupe(routeIDs)
		if len(ids) == 0 {
			return nil
		}

		var existing []uint
		if err := tx.Model(&Route{}).Where("id IN ?", ids).Pluck("id", &existing).Error; err != nil {
			return err
		}
		known := make(map[uint]bool, len(existing))
		for _, id := range existing {
			known[id] = true
		}

		rows := make([]UserRoute, 0, len(existing))
		for _, id := range ids {
			if known[id] {
				rows = append(rows, UserRoute{UserID: userID, RouteID: id})
			}
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&rows).Error
	})
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		logger.Log.Errorw("failed to replace user routes", "user_id", userID, "err", err)
	}
	return err
}

func (s *Service) ListAllRoutes(ctx context.Context) ([]Route, error) {
	routes := []Route{}
	if err := s.db.WithContext(ctx).Order("id").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

// HasSelectedRoutes is a plain count; an unknown user simply has none.
func (s *Service) HasSelectedRoutes(ctx context.Context, userID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&UserRoute{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func ensureUser(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&users.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("user %d %w", id, apperr.ErrNotFound)
	}
	return nil
}

func ensureRoute(db *gorm.DB, id uint) error {
	var count int64
	if err := db.Model(&Route{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("route %d %w", id, apperr.ErrNotFound)
	}
	return nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
