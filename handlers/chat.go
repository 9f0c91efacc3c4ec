package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Arihant25/Treasure-Trove/internal/chat"
	"github.com/Arihant25/Treasure-Trove/pkg/ctxmanage"
	"github.com/Arihant25/Treasure-Trove/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// Chat forwards the support conversation to the language model and returns
// its reply.
func (h *Handler) Chat(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		Messages []chat.Message `json:"messages"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || len(request.Messages) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Messages are required"})
		return
	}

	reply, err := h.chat.Complete(c.Request.Context(), request.Messages)
	if err != nil {
		slog.Error("error calling chat upstream", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"message": "Support chat is unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": reply})
}
