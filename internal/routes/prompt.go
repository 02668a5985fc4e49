package routes

import (
	"github.com/Corvynix/PromptLibrary-sub000/internal/handlers"
	"github.com/Corvynix/PromptLibrary-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterPromptRoutes(r gin.IRouter) {
	prompts := r.Group("/prompts")
	{
		// Public browsing (viewer context is optional)
		prompts.GET("", handlers.GetPrompts)
		prompts.GET("/:id", handlers.GetPrompt)
		prompts.POST("/:id/use", handlers.UsePrompt)
		prompts.POST("/preview-score", handlers.PreviewScore)

		protected := prompts.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("", handlers.CreatePrompt)
			protected.POST("/:id/versions", handlers.CreateVersion)
			protected.POST("/:id/remix", handlers.RemixPrompt)
			protected.POST("/:id/vote", handlers.VotePrompt)
		}
	}
}
