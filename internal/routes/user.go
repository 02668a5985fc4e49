package routes

import (
	"github.com/Corvynix/PromptLibrary-sub000/internal/handlers"
	"github.com/Corvynix/PromptLibrary-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterUserRoutes(r gin.IRouter) {
	users := r.Group("/users")
	{
		users.GET("/:username", handlers.GetProfile)
		users.GET("/:username/badges", handlers.GetUserBadges)
		users.GET("/:username/karma", handlers.GetUserKarma)

		protected := users.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/:username/follow", handlers.FollowUser)
			protected.DELETE("/:username/follow", handlers.UnfollowUser)
		}
	}

	r.GET("/leaderboard", handlers.GetLeaderboard)
}
