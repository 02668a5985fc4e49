package routes

import (
	"github.com/Corvynix/PromptLibrary-sub000/internal/handlers"
	"github.com/Corvynix/PromptLibrary-sub000/internal/middleware"
	"github.com/gin-gonic/gin"
)

func RegisterAdminRoutes(r gin.IRouter) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/karma/recalculate", handlers.RecalculateAllKarma)
		admin.POST("/badges/seed", handlers.SeedBadgeCatalogue)
	}
}
