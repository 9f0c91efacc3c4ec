package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Arihant25/Treasure-Trove/internal/auth"
	"github.com/Arihant25/Treasure-Trove/internal/cart"
	"github.com/Arihant25/Treasure-Trove/pkg/ctxmanage"
	"github.com/Arihant25/Treasure-Trove/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddToCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var request struct {
		ID string `json:"id"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.ID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Item ID is required"})
		return
	}

	err := h.c.AddToCart(c.Request.Context(), claims.Subject, request.ID)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrItemNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Item not found"})
		case errors.Is(err, cart.ErrOwnItem):
			c.AbortWithStatusJSON(http.StatusTeapot, gin.H{"message": "Trying to buy your own goods?"})
		case errors.Is(err, cart.ErrAlreadyInCart):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Item already in cart"})
		default:
			slog.Error("error adding item to cart", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ItemID, request.ID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to add item to cart"})
		}
		return
	}

	slog.Info("item added to cart", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.ItemID, request.ID), slog.String(logkey.UserID, claims.Subject))
	c.JSON(http.StatusOK, gin.H{"message": "Item added to cart successfully"})
}

func (h *Handler) GetCartItems(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	cartItems, err := h.c.GetCartItems(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error fetching cart items", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, claims.Subject), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch cart items"})
		return
	}

	c.JSON(http.StatusOK, cartItems)
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	itemID := c.Param("itemId")
	if err := h.c.RemoveFromCart(c.Request.Context(), claims.Subject, itemID); err != nil {
		slog.Error("error removing item from cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ItemID, itemID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to remove item from cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart successfully"})
}
