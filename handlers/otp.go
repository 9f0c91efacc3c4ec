package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Arihant25/Treasure-Trove/internal/auth"
	"github.com/Arihant25/Treasure-Trove/internal/orders"
	"github.com/Arihant25/Treasure-Trove/internal/stores/kafka"
	"github.com/Arihant25/Treasure-Trove/pkg/ctxmanage"
	"github.com/Arihant25/Treasure-Trove/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// GenerateOTP stores the salted hash of a seller's delivery PIN on an order.
// The otp field carries the SHA-256 digest of the PIN, computed by the web
// client before it leaves the browser; the raw PIN is never sent here.
func (h *Handler) GenerateOTP(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		OrderID  string `json:"orderId"`
		SellerID string `json:"sellerId"`
		OTP      string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": http.StatusText(http.StatusBadRequest)})
		return
	}
	if request.OrderID == "" || request.SellerID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Order ID and seller ID are required"})
		return
	}
	if !orders.ValidDigest(request.OTP) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid OTP digest"})
		return
	}

	err := h.o.GenerateSellerOTP(c.Request.Context(), request.OrderID, request.SellerID, request.OTP)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		case errors.Is(err, orders.ErrSellerNotOnOrder):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Seller has no items on this order"})
		case errors.Is(err, orders.ErrSellerShareCompleted):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": "Delivery already confirmed for this seller"})
		default:
			slog.Error("error generating otp", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.OrderID, request.OrderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to save OTP"})
		}
		return
	}

	slog.Info("otp saved", slog.String(logkey.TraceID, traceId), slog.String(logkey.OrderID, request.OrderID))
	c.JSON(http.StatusOK, gin.H{"message": "OTP saved successfully"})
}

// VerifyOTP checks the raw PIN presented by the seller and, on success,
// confirms that seller's share of the order. The caller's identity is the
// seller id; there is no way to verify on another seller's behalf.
func (h *Handler) VerifyOTP(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var request struct {
		OrderID string `json:"orderId"`
		OTP     string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.OrderID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Order ID is required"})
		return
	}
	if !orders.ValidPIN(request.OTP) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "OTP must be a 6-digit code"})
		return
	}

	order, result, err := h.o.VerifySellerOTP(c.Request.Context(), request.OrderID, claims.Subject, request.OTP)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		case errors.Is(err, orders.ErrSellerOTPNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Seller OTP not found"})
		case errors.Is(err, orders.ErrInvalidOTP):
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid OTP"})
		default:
			slog.Error("error verifying otp", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.OrderID, request.OrderID), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to verify OTP"})
		}
		return
	}

	if !result.AlreadyCompleted {
		go h.publishDeliveryEvents(order, claims.Subject, result.OrderCompleted)
	}

	slog.Info("delivery confirmed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, order.ID), slog.String(logkey.UserID, claims.Subject),
		slog.Bool("Order Completed", result.OrderCompleted))
	c.JSON(http.StatusOK, gin.H{"message": "Order updated successfully", "status": order.Status})
}

// publishDeliveryEvents mirrors a confirmed delivery onto the event bus.
// Emission is best effort; failures are logged and never affect the caller.
func (h *Handler) publishDeliveryEvents(order orders.Order, sellerID string, orderCompleted bool) {
	now := time.Now().UTC()

	jsonData, err := json.Marshal(kafka.SellerDeliveredEvent{
		OrderID:   order.ID,
		SellerID:  sellerID,
		CreatedAt: now,
	})
	if err != nil {
		slog.Error("failed to marshal seller delivered event", slog.String(logkey.ERROR, err.Error()))
		return
	}
	if err := h.k.ProduceMessage(kafka.TopicSellerDelivered, []byte(order.ID), jsonData); err != nil {
		slog.Error("failed to produce seller delivered event", slog.String(logkey.ERROR, err.Error()))
	}

	if !orderCompleted {
		return
	}

	jsonData, err = json.Marshal(kafka.OrderCompletedEvent{
		OrderID:     order.ID,
		BuyerID:     order.BuyerID,
		TotalAmount: order.TotalAmount,
		CreatedAt:   now,
	})
	if err != nil {
		slog.Error("failed to marshal order completed event", slog.String(logkey.ERROR, err.Error()))
		return
	}
	if err := h.k.ProduceMessage(kafka.TopicOrderCompleted, []byte(order.ID), jsonData); err != nil {
		slog.Error("failed to produce order completed event", slog.String(logkey.ERROR, err.Error()))
	}
}
