package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/usercache/internal/database"
	"github.com/charlesng35/usercache/internal/middleware"
	apperrors "github.com/charlesng35/usercache/pkg/errors"
	"github.com/charlesng35/usercache/pkg/logger"
	"github.com/charlesng35/usercache/pkg/response"
)

// UserLister returns the current user rows.
type UserLister interface {
	List(ctx context.Context) ([]database.Row, error)
}

type UserHandler struct {
	users UserLister
}

func NewUserHandler(users UserLister) (*UserHandler, error) {
	if users == nil {
		return nil, errors.New("user handler: lister is required")
	}
	return &UserHandler{users: users}, nil
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	rows, err := h.users.List(requestContext(c))
	if err != nil {
		logger.WithModule("handlers").Error("list users failed",
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
		response.Error(c, apperrors.ErrInternalServer.WithInternal(err))
		return
	}
	if rows == nil {
		rows = []database.Row{}
	}
	response.JSON(c, http.StatusOK, rows)
}
