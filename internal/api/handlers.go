// Package api exposes the cart, order and catalog components over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/safar/stonecart/internal/cart"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/models"
	"github.com/safar/stonecart/internal/orders"
	"github.com/safar/stonecart/internal/store"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req cart.AddItemRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, req orders.CreateOrderRequest) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next models.OrderStatus) (*models.Order, error)
	ClaimNextPending(ctx context.Context) (*models.Order, error)
}

type OrderQueries interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	GetOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListOrdersCursor(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*store.CursorPage, error)
	ListOrders(ctx context.Context, status models.OrderStatus, page, pageSize int) (*store.OffsetPage, error)
}

type ProductCatalog interface {
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, category string, limit int) ([]models.Product, error)
}

// Database is the pool as seen by the health and status endpoints.
type Database interface {
	store.DBTX
	PingContext(ctx context.Context) error
}

type Handler struct {
	carts    CartService
	orders   OrderService
	queries  OrderQueries
	products ProductCatalog
	db       Database
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

type updateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) GetCart(c *gin.Context) {
	userID, _ := currentUserID(c)

	result, err := h.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	userID, _ := currentUserID(c)

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.carts.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	userID, _ := currentUserID(c)

	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.carts.UpdateItem(c.Request.Context(), userID, itemID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	userID, _ := currentUserID(c)

	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.carts.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ClearCart(c *gin.Context) {
	userID, _ := currentUserID(c)

	result, err := h.carts.ClearCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateOrder accepts guests; a signed-in caller's cart is emptied on success.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req orders.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if userID, ok := currentUserID(c); ok {
		req.UserID = uuid.NullUUID{UUID: userID, Valid: true}
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder serves guest orders to anyone holding the id. An order with an
// owner is visible to that owner and to admins only; others get 404.
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	order, err := h.queries.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	if order.UserID.Valid {
		claims, ok := currentClaims(c)
		if !ok || (claims.UserID != order.UserID.UUID && !claims.IsAdmin()) {
			respondError(c, database.ErrOrderNotFound)
			return
		}
	}
	c.JSON(http.StatusOK, order)
}

// ListMyOrders returns the full history, or one keyset page when cursor or
// limit is given.
func (h *Handler) ListMyOrders(c *gin.Context) {
	userID, _ := currentUserID(c)
	ctx := c.Request.Context()

	cursor, hasCursor := c.GetQuery("cursor")
	limitParam, hasLimit := c.GetQuery("limit")

	if !hasCursor && !hasLimit {
		list, err := h.queries.GetOrdersByUser(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
		return
	}

	limit, _ := strconv.Atoi(limitParam)
	page, err := h.queries.ListOrdersCursor(ctx, userID, cursor, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListProducts serves a single product when slug is given, as the storefront
// product page expects.
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if slug := c.Query("slug"); slug != "" {
		product, err := h.products.GetBySlug(ctx, slug)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.products.List(ctx, c.Query("category"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": list})
}

func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) AdminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	result, err := h.queries.ListOrders(c.Request.Context(), models.OrderStatus(c.Query("status")), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) AdminUpdateStatus(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) AdminClaimOrder(c *gin.Context) {
	order, err := h.orders.ClaimNextPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *Handler) AdminDatabaseStatus(c *gin.Context) {
	status, err := store.GetDatabaseStatus(c.Request.Context(), h.db)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, models.NewValidationError(name, "must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}
