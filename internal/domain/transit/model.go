package transit

import (
	"time"

	"navibu-api/internal/domain/users"
)

// Route is reference data. It is seeded, never created through the API.
type Route struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	RouteShortName string `gorm:"size:50;not null;uniqueIndex:idx_routes_short_name" json:"route_short_name"`
	RouteLongName  string `gorm:"size:200;not null" json:"route_long_name"`
}

func (Route) TableName() string {
	return "routes"
}

// UserRoute is the association between a user and a route they selected or favorited.
// (user_id, route_id) is unique, so each side sees a route at most once.
type UserRoute struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     uint       `gorm:"not null;index;uniqueIndex:idx_user_routes_pair"`
	User       users.User `gorm:"constraint:OnDelete:CASCADE"`
	RouteID    uint       `gorm:"not null;index;uniqueIndex:idx_user_routes_pair"`
	Route      Route      `gorm:"constraint:OnDelete:CASCADE"`
	IsFavorite bool       `gorm:"not null;default:false"`
	CreatedAt  time.Time
}

func (UserRoute) TableName() string {
	return "user_routes"
}

// Favorite is the compact shape returned by the favorites listing.
type Favorite struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
