package favorites

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"navibu-api/internal/api/response"
	"navibu-api/internal/app/http/middleware"
	"navibu-api/internal/domain/apperr"
	"navibu-api/internal/domain/transit"

	"github.com/gin-gonic/gin"
)

// RouteService is the part of transit.Service these endpoints use.
type RouteService interface {
	AddFavorite(ctx context.Context, userID, routeID uint) error
	ListFavorites(ctx context.Context, userID uint) ([]transit.Favorite, error)
	GetUserRoutes(ctx context.Context, userID uint) ([]transit.Route, error)
	ReplaceUserRoutes(ctx context.Context, userID uint, routeIDs []uint) error
	ListAllRoutes(ctx context.Context) ([]transit.Route, error)
	HasSelectedRoutes(ctx context.Context, userID uint) (bool, error)
}

type Handler struct {
	routes RouteService
}

func NewHandler(routes RouteService) *Handler {
	return &Handler{routes: routes}
}

type addFavoriteRequest struct {
	UserID  uint `json:"user_id" binding:"required"`
	RouteID uint `json:"route_id" binding:"required"`
}

type updateRoutesRequest struct {
	RouteIDs []uint `json:"route_ids"`
}

// AddFavorite takes the user from the body, so the ownership check happens here
// rather than in RequireSelf.
func (h *Handler) AddFavorite(c *gin.Context) {
	var input addFavoriteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, "user_id and route_id are required")
		return
	}
	if !middleware.IsSelf(c, input.UserID) {
		response.Error(c, apperr.ErrForbidden)
		return
	}

	if err := h.routes.AddFavorite(c.Request.Context(), input.UserID, input.RouteID); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route added to favorites"})
}

func (h *Handler) GetFavoriteRoutes(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	favorites, err := h.routes.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, favorites)
}

func (h *Handler) GetUserRoutes(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	routes, err := h.routes.GetUserRoutes(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"routes":              routes,
		"has_selected_routes": len(routes) > 0,
	})
}

// UpdateUserRoutes replaces the whole selection. A missing route_ids clears it.
func (h *Handler) UpdateUserRoutes(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var input updateRoutesRequest
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "route_ids must be a list of route ids")
		return
	}

	if err := h.routes.ReplaceUserRoutes(c.Request.Context(), userID, input.RouteIDs); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Routes updated successfully"})
}

func (h *Handler) GetAllRoutes(c *gin.Context) {
	routes, err := h.routes.ListAllRoutes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

func (h *Handler) CheckRouteSelection(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	has, err := h.routes.HasSelectedRoutes(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_selected_routes": has})
}

func userIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid user_id")
		return 0, false
	}
	return uint(id), true
}
