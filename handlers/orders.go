package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Arihant25/Treasure-Trove/internal/auth"
	"github.com/Arihant25/Treasure-Trove/internal/orders"
	"github.com/Arihant25/Treasure-Trove/pkg/ctxmanage"
	"github.com/Arihant25/Treasure-Trove/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var request struct {
		Items []string `json:"items"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || len(request.Items) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Items are required"})
		return
	}

	orderId := uuid.NewString()
	order, err := h.o.CreateOrder(c.Request.Context(), orderId, claims.Subject, request.Items)
	if err != nil {
		if errors.Is(err, orders.ErrItemNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Item not found"})
			return
		}
		slog.Error("error creating order", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to create order"})
		return
	}

	slog.Info("order created", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, order.ID), slog.String(logkey.UserID, claims.Subject))
	c.JSON(http.StatusCreated, gin.H{"message": "Order created successfully", "order": order})
}

func (h *Handler) MyOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	myOrders, err := h.o.OrdersByBuyer(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error fetching orders", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, claims.Subject), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, myOrders)
}

func (h *Handler) PendingDeliveries(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	deliveries, err := h.o.PendingDeliveries(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error fetching pending deliveries", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, claims.Subject), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch pending deliveries"})
		return
	}

	c.JSON(http.StatusOK, deliveries)
}

func (h *Handler) UserHistory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	history, err := h.o.UserHistory(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error fetching user history", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, claims.Subject), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch user history"})
		return
	}

	c.JSON(http.StatusOK, history)
}
