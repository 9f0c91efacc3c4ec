package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Arihant25/Treasure-Trove/internal/auth"
	"github.com/Arihant25/Treasure-Trove/internal/items"
	"github.com/Arihant25/Treasure-Trove/pkg/ctxmanage"
	"github.com/Arihant25/Treasure-Trove/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListItems(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	filter := items.Filter{
		Search: c.Query("search"),
	}
	if categories := c.Query("categories"); categories != "" {
		filter.Categories = strings.Split(categories, ",")
	}
	if minPrice := c.Query("minPrice"); minPrice != "" {
		v, err := strconv.ParseInt(minPrice, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid minPrice parameter"})
			return
		}
		filter.MinPrice = &v
	}
	if maxPrice := c.Query("maxPrice"); maxPrice != "" {
		v, err := strconv.ParseInt(maxPrice, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid maxPrice parameter"})
			return
		}
		filter.MaxPrice = &v
	}

	list, err := h.i.ListItems(c.Request.Context(), filter)
	if err != nil {
		slog.Error("error fetching items", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch items"})
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	itemID := c.Param("id")

	item, err := h.i.GetItemByID(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, items.ErrItemNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "Item not found"})
			return
		}
		slog.Error("error fetching item", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ItemID, itemID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Request body too large."})
		return
	}

	var newItem items.NewItem
	if err := c.ShouldBindJSON(&newItem); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": http.StatusText(http.StatusBadRequest)})
		return
	}

	if err := h.validate.Struct(newItem); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": http.StatusText(http.StatusBadRequest)})
		return
	}

	item, err := h.i.InsertItem(c.Request.Context(), claims.Subject, newItem)
	if err != nil {
		slog.Error("error inserting item", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Item creation failed"})
		return
	}

	slog.Info("item listed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.ItemID, item.ID), slog.String(logkey.UserID, claims.Subject))
	c.JSON(http.StatusCreated, item)
}
