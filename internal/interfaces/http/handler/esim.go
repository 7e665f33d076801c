package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/globoesim/gateway/internal/domain/esim"
	"github.com/globoesim/gateway/internal/interfaces/http/dto"
	"github.com/globoesim/gateway/internal/interfaces/http/middleware"
)

const (
	msgCatalogFailed = "Error fetching packages"
	msgOrderFailed   = "Error creating eSIM order"
)

// CatalogProvider returns the plan catalog for a country
type CatalogProvider interface {
	GetCatalog(ctx context.Context, country string) (esim.Catalog, error)
}

// OrderCreator places an eSIM order
type OrderCreator interface {
	CreateOrder(ctx context.Context, req esim.OrderRequest) (esim.Order, error)
}

// EsimHandler serves the storefront's catalog and order endpoints
type EsimHandler struct {
	BaseHandler
	catalog CatalogProvider
	orders  OrderCreator
}

// NewEsimHandler creates a new EsimHandler
func NewEsimHandler(catalog CatalogProvider, orders OrderCreator) *EsimHandler {
	return &EsimHandler{
		catalog: catalog,
		orders:  orders,
	}
}

// GetPackages godoc
// @ID           listEsimPackages
// @Summary      List eSIM plans for a country
// @Description  Returns the local plans of the first operator serving the country. The country defaults to the configured storefront country.
// @Tags         esim
// @Produce      json
// @Param        country query string false "ISO 3166-1 alpha-2 country code" minlength(2) maxlength(2)
// @Success      200 {object} APIResponse[dto.CatalogResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Router       /api/v1/esim/packages [get]
func (h *EsimHandler) GetPackages(c *gin.Context) {
	var query dto.CatalogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	catalog, err := h.catalog.GetCatalog(c.Request.Context(), query.Country)
	if err != nil {
		h.HandleError(c, err, msgCatalogFailed)
		return
	}

	h.Success(c, dto.NewCatalogResponse(catalog))
}

// CreateOrder godoc
// @ID           createEsimOrder
// @Summary      Buy an eSIM
// @Description  Places a single eSIM order. A repeated Idempotency-Key replays the first completed order.
// @Tags         esim
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Deduplicates retries of the same purchase"
// @Param        request body dto.CreateOrderRequest true "Order request"
// @Success      200 {object} APIResponse[dto.CreateOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Router       /api/v1/esim/orders [post]
func (h *EsimHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	orderReq := req.ToOrderRequest()
	orderReq.IdempotencyKey = c.GetHeader(middleware.HeaderIdempotencyKey)

	order, err := h.orders.CreateOrder(c.Request.Context(), orderReq)
	if err != nil {
		h.HandleError(c, err, msgOrderFailed)
		return
	}

	h.Success(c, dto.NewCreateOrderResponse(order))
}

// RegisterRoutes mounts the eSIM endpoints under rg
func (h *EsimHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/esim")
	group.GET("/packages", h.GetPackages)
	group.POST("/orders", h.CreateOrder)
}
