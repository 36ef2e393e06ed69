package api

import (
	"github.com/gin-gonic/gin"
	"github.com/safar/stonecart/internal/auth"
	"go.uber.org/zap"
)

type Deps struct {
	Carts    CartService
	Orders   OrderService
	Queries  OrderQueries
	Products ProductCatalog
	DB       Database
	Verifier *auth.Verifier
	Logger   *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	h := &Handler{
		carts:    d.Carts,
		orders:   d.Orders,
		queries:  d.Queries,
		products: d.Products,
		db:       d.DB,
	}

	r := gin.New()
	r.Use(RequestID(), RequestLogger(d.Logger), Recovery(d.Logger))

	r.GET("/health", h.Health)

	public := r.Group("/api")
	public.GET("/products", h.ListProducts)
	public.GET("/products/:slug", h.GetProduct)

	optional := r.Group("/api", Authenticate(d.Verifier, false))
	optional.POST("/orders", h.CreateOrder)
	optional.GET("/orders/:id", h.GetOrder)

	user := r.Group("/api", Authenticate(d.Verifier, true))
	user.GET("/cart", h.GetCart)
	user.DELETE("/cart", h.ClearCart)
	user.POST("/cart/items", h.AddCartItem)
	user.PUT("/cart/items/:id", h.UpdateCartItem)
	user.DELETE("/cart/items/:id", h.RemoveCartItem)
	user.GET("/orders", h.ListMyOrders)

	admin := r.Group("/admin", Authenticate(d.Verifier, true), RequireAdmin())
	admin.GET("/orders", h.AdminListOrders)
	admin.POST("/orders/claim", h.AdminClaimOrder)
	admin.PATCH("/orders/:id/status", h.AdminUpdateStatus)
	admin.GET("/db-status", h.AdminDatabaseStatus)

	return r
}
