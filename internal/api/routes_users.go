package api

import (
	"github.com/gin-gonic/gin"

	"github.com/charlesng35/usercache/internal/handlers"
)

func registerUserRoutes(r *gin.Engine, users handlers.UserLister) error {
	userHandler, err := handlers.NewUserHandler(users)
	if err != nil {
		return err
	}

	r.GET("/users", userHandler.List)
	return nil
}
