package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/safar/stonecart/internal/database"
	"github.com/safar/stonecart/internal/models"
	"github.com/safar/stonecart/internal/store"
)

// respondError maps err to a status and a message safe to show the client.
// Storage failures never expose their cause.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": describeValidation(verrs)})
	case models.IsValidation(err), errors.Is(err, store.ErrInvalidCursor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrOrderNotFound),
		errors.Is(err, database.ErrCartNotFound),
		errors.Is(err, database.ErrNoPendingOrders):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(err)})
	case errors.Is(err, database.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case database.IsRetryable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable, please try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error, please try again"})
	}
}

// badRequest reports a body or query that could not be decoded or bound.
func badRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		respondError(c, err)
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

func describeValidation(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, database.ErrProductNotFound):
		return "product not found"
	case errors.Is(err, database.ErrOrderNotFound):
		return "order not found"
	case errors.Is(err, database.ErrUserNotFound):
		return "user not found"
	case errors.Is(err, database.ErrNoPendingOrders):
		return "no pending orders"
	default:
		return "not found"
	}
}
