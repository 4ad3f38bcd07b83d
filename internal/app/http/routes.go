package routes

import (
	authapi "navibu-api/internal/api/auth"
	"navibu-api/internal/api/favorites"
	"navibu-api/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Accounts authapi.AccountService
	Routes   favorites.RouteService
	Tokens   middleware.TokenParser
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	authHandler := authapi.NewHandler(deps.Accounts)
	favHandler := favorites.NewHandler(deps.Routes)
	requireAuth := middleware.AuthMiddleware(deps.Tokens)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Sanitization applies to the public account endpoints only
	public := r.Group("/auth")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/register", authHandler.Register)
	public.POST("/verify", authHandler.Verify)
	public.POST("/login", authHandler.Login)
	public.POST("/forgot-password", authHandler.ForgotPassword)
	public.POST("/reset-password", authHandler.ResetPassword)
	public.POST("/resend-verification", authHandler.ResendVerification)

	account := r.Group("/auth")
	account.Use(requireAuth)
	account.GET("/home", authHandler.Home)
	account.POST("/logout", authHandler.Logout)
	account.GET("/check-routes", middleware.RequireSelf("user_id"), authHandler.CheckRoutes)

	api := r.Group("/api")
	api.GET("/routes", favHandler.GetAllRoutes)

	// Authenticated, scoped to the token's own user
	self := api.Group("/")
	self.Use(requireAuth)
	self.POST("/add_favorite_route", favHandler.AddFavorite)
	self.GET("/get_favorite_routes/:user_id", middleware.RequireSelf("user_id"), favHandler.GetFavoriteRoutes)
	self.GET("/user/:user_id/routes", middleware.RequireSelf("user_id"), favHandler.GetUserRoutes)
	self.POST("/user/:user_id/routes", middleware.RequireSelf("user_id"), favHandler.UpdateUserRoutes)
	self.GET("/user/check_route_selection/:user_id", middleware.RequireSelf("user_id"), favHandler.CheckRouteSelection)
}
