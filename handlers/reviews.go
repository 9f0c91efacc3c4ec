package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Arihant25/Treasure-Trove/internal/auth"
	"github.com/Arihant25/Treasure-Trove/internal/reviews"
	"github.com/Arihant25/Treasure-Trove/pkg/ctxmanage"
	"github.com/Arihant25/Treasure-Trove/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) MyReviews(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	list, err := h.r.ReviewsByReviewer(c.Request.Context(), claims.Subject)
	if err != nil {
		slog.Error("error fetching reviews", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.UserID, claims.Subject), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateReview(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var newReview reviews.NewReview
	if err := c.ShouldBindJSON(&newReview); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(newReview); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Rating must be between 1 and 5 and comment is required"})
		return
	}

	review, err := h.r.InsertReview(c.Request.Context(), claims.Subject, c.Param("userId"), newReview)
	if err != nil {
		if errors.Is(err, reviews.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		slog.Error("error inserting review", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to create review"})
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *Handler) UpdateReview(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var update reviews.UpdateReview
	if err := c.ShouldBindJSON(&update); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(update); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Rating must be between 1 and 5"})
		return
	}

	review, err := h.r.UpdateReview(c.Request.Context(), claims.Subject, c.Param("reviewId"), update)
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrReviewNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Review not found"})
		case errors.Is(err, reviews.ErrNotOwner):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		default:
			slog.Error("error updating review", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update review"})
		}
		return
	}

	c.JSON(http.StatusOK, review)
}

func (h *Handler) DeleteReview(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	err := h.r.DeleteReview(c.Request.Context(), claims.Subject, c.Param("reviewId"))
	if err != nil {
		switch {
		case errors.Is(err, reviews.ErrReviewNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Review not found"})
		case errors.Is(err, reviews.ErrNotOwner):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
		default:
			slog.Error("error deleting review", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete review"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Review removed"})
}
