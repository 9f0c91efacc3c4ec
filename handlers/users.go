package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Arihant25/Treasure-Trove/internal/auth"
	"github.com/Arihant25/Treasure-Trove/internal/stores/kafka"
	"github.com/Arihant25/Treasure-Trove/internal/users"
	"github.com/Arihant25/Treasure-Trove/pkg/ctxmanage"
	"github.com/Arihant25/Treasure-Trove/pkg/logkey"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func (h *Handler) Signup(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	// Check if the size of the request body exceeds 5 KB
	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Request body too large."})
		return
	}

	var newUser users.NewUser
	if err := c.ShouldBindJSON(&newUser); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": http.StatusText(http.StatusBadRequest)})
		return
	}

	if err := h.validate.Struct(newUser); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			for _, vErr := range vErrs {
				switch vErr.Tag() {
				case "required":
					c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": vErr.Field() + " value missing"})
					return
				case "min":
					c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": vErr.Field() + " value is less than " + vErr.Param()})
					return
				case "email":
					c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid email address"})
					return
				}
			}
		}
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": http.StatusText(http.StatusBadRequest)})
		return
	}

	user, err := h.u.InsertUser(c.Request.Context(), newUser)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Email already registered"})
			return
		}
		slog.Error("error inserting user", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "User registration failed"})
		return
	}

	// Let the rest of the platform know a new account exists.
	go func(user users.User) {
		jsonData, err := json.Marshal(kafka.AccountCreatedEvent{
			ID:        user.ID,
			Name:      user.FullName,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			slog.Error("failed to marshal account created event", slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicAccountCreated, []byte(user.ID), jsonData); err != nil {
			slog.Error("failed to produce account created event", slog.String(logkey.ERROR, err.Error()))
		}
	}(user)

	slog.Info("user registered", slog.String(logkey.TraceID, traceId), slog.String(logkey.UserID, user.ID))
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "userId": user.ID})
}

func (h *Handler) Login(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": http.StatusText(http.StatusBadRequest)})
		return
	}

	user, err := h.u.Authenticate(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}
		slog.Error("error authenticating user", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	token, err := h.keys.GenerateToken(user.ID, []string{auth.RoleUser})
	if err != nil {
		slog.Error("error generating token", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) Profile(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	user, err := h.u.GetUserByID(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		slog.Error("error fetching profile", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateAge(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var request struct {
		Age int `json:"age"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.Age <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid age."})
		return
	}

	if err := h.u.UpdateAge(c.Request.Context(), claims.Subject, request.Age); err != nil {
		slog.Error("error updating age", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update age"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Age updated successfully"})
}

func (h *Handler) UpdateContactNumber(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var request struct {
		ContactNumber string `json:"contactNumber"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.ContactNumber == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Contact number is required"})
		return
	}

	if err := h.u.UpdateContactNumber(c.Request.Context(), claims.Subject, request.ContactNumber); err != nil {
		slog.Error("error updating contact number", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update contact number"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Contact number updated successfully"})
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var request struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword" validate:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": http.StatusText(http.StatusBadRequest)})
		return
	}
	if err := h.validate.Struct(request); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "New password must be at least 8 characters"})
		return
	}

	err := h.u.UpdatePassword(c.Request.Context(), claims.Subject, request.CurrentPassword, request.NewPassword)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Current password is incorrect"})
			return
		}
		slog.Error("error updating password", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
