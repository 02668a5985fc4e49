package routes

import (
	"github.com/Corvynix/PromptLibrary-sub000/internal/handlers"
	"github.com/gin-gonic/gin"
)

func RegisterAuthRoutes(r gin.IRouter) {
	r.POST("/register", handlers.Register)
	r.POST("/login", handlers.Login)
}
