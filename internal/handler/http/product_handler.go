package http

import (
	"context"

	"shop-crud/internal/model"
	"shop-crud/internal/query"

	"github.com/gin-gonic/gin"
)

type ProductService interface {
	ResourceService[model.Product]
	List(ctx context.Context, f query.ProductFilter) ([]model.Product, error)
}

type ProductHandler struct {
	resourceHandler[model.Product]
	service ProductService
}

func NewProductHandler(service ProductService) *ProductHandler {
	return &ProductHandler{
		resourceHandler: newResourceHandler[model.Product]("ProductHandler", service),
		service:         service,
	}
}

// List accepts pricegte, pricelte and keywords.
func (h *ProductHandler) List(c *gin.Context) {
	ctx, span := h.start(c, "List")
	defer span.End()

	products, err := h.service.List(ctx, query.ParseProductFilter(c.Request.URL.Query()))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, products)
}

func (h *ProductHandler) RegisterRoutes(r gin.IRouter) {
	h.register(r.Group("/products"), h.List)
}
