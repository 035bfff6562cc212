package http

import (
	"context"

	"shop-crud/internal/model"
	"shop-crud/internal/query"

	"github.com/gin-gonic/gin"
)

type UserService interface {
	ResourceService[model.User]
	List(ctx context.Context, f query.UserFilter) ([]model.User, error)
}

type UserHandler struct {
	resourceHandler[model.User]
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{
		resourceHandler: newResourceHandler[model.User]("UserHandler", service),
		service:         service,
	}
}

// List accepts account, email, name, agegte and agelte.
func (h *UserHandler) List(c *gin.Context) {
	ctx, span := h.start(c, "List")
	defer span.End()

	users, err := h.service.List(ctx, query.ParseUserFilter(c.Request.URL.Query()))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, users)
}

func (h *UserHandler) RegisterRoutes(r gin.IRouter) {
	h.register(r.Group("/users"), h.List)
}
