package handlers

import (
	"net/http"
	"os"

	"github.com/Arihant25/Treasure-Trove/internal/auth"
	"github.com/Arihant25/Treasure-Trove/internal/cart"
	"github.com/Arihant25/Treasure-Trove/internal/chat"
	"github.com/Arihant25/Treasure-Trove/internal/items"
	"github.com/Arihant25/Treasure-Trove/internal/orders"
	"github.com/Arihant25/Treasure-Trove/internal/reviews"
	"github.com/Arihant25/Treasure-Trove/internal/stores/kafka"
	"github.com/Arihant25/Treasure-Trove/internal/users"
	"github.com/Arihant25/Treasure-Trove/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	keys     *auth.Keys
	u        *users.Conf
	i        *items.Conf
	c        *cart.Conf
	o        *orders.Conf
	r        *reviews.Conf
	chat     *chat.Conf
	k        *kafka.Conf
	validate *validator.Validate
}

func NewHandler(keys *auth.Keys, u *users.Conf, i *items.Conf, c *cart.Conf, o *orders.Conf,
	r *reviews.Conf, chatConf *chat.Conf, k *kafka.Conf) *Handler {
	return &Handler{
		keys:     keys,
		u:        u,
		i:        i,
		c:        c,
		o:        o,
		r:        r,
		chat:     chatConf,
		k:        k,
		validate: validator.New(),
	}
}

// API wires every route group of the marketplace onto one engine.
func API(keys *auth.Keys, u *users.Conf, i *items.Conf, c *cart.Conf, o *orders.Conf,
	r *reviews.Conf, chatConf *chat.Conf, k *kafka.Conf) *gin.Engine {

	engine := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(keys)
	if err != nil {
		panic(err)
	}

	h := NewHandler(keys, u, i, c, o, r, chatConf, k)
	engine.Use(middleware.Logger(), gin.Recovery())

	engine.GET("/ping", healthCheck)

	authGroup := engine.Group("/api/auth")
	{
		authGroup.POST("/register", h.Signup)
		authGroup.POST("/login", h.Login)

		authGroup.Use(m.Authentication())
		authGroup.GET("/profile", h.Profile)
		authGroup.PUT("/update/age", h.UpdateAge)
		authGroup.PUT("/update/contactNumber", h.UpdateContactNumber)
		authGroup.PUT("/update/password", h.UpdatePassword)
	}

	itemsGroup := engine.Group("/api/items")
	{
		itemsGroup.GET("", h.ListItems)
		itemsGroup.GET("/:id", h.GetItem)

		itemsGroup.Use(m.Authentication())
		itemsGroup.POST("", m.Authorize(h.CreateItem, auth.RoleUser))
	}

	cartGroup := engine.Group("/api/cart")
	{
		cartGroup.Use(m.Authentication())
		cartGroup.POST("/add", m.Authorize(h.AddToCart, auth.RoleUser))
		cartGroup.GET("", m.Authorize(h.GetCartItems, auth.RoleUser))
		cartGroup.DELETE("/remove/:itemId", m.Authorize(h.RemoveFromCart, auth.RoleUser))
	}

	ordersGroup := engine.Group("/api/orders")
	{
		ordersGroup.Use(m.Authentication())
		ordersGroup.POST("", m.Authorize(h.CreateOrder, auth.RoleUser))
		ordersGroup.POST("/generate-otp", m.Authorize(h.GenerateOTP, auth.RoleUser))
		ordersGroup.POST("/verify-otp", m.Authorize(h.VerifyOTP, auth.RoleUser))
		ordersGroup.GET("/my-orders", m.Authorize(h.MyOrders, auth.RoleUser))
		ordersGroup.GET("/pending-deliveries", m.Authorize(h.PendingDeliveries, auth.RoleUser))
		ordersGroup.GET("/user-history", m.Authorize(h.UserHistory, auth.RoleUser))
	}

	reviewsGroup := engine.Group("/api/reviews")
	{
		reviewsGroup.Use(m.Authentication())
		reviewsGroup.GET("/user", h.MyReviews)
		reviewsGroup.POST("/:userId", m.Authorize(h.CreateReview, auth.RoleUser))
		reviewsGroup.PUT("/:reviewId", m.Authorize(h.UpdateReview, auth.RoleUser))
		reviewsGroup.DELETE("/:reviewId", m.Authorize(h.DeleteReview, auth.RoleUser))
	}

	chatGroup := engine.Group("/api/chat")
	{
		chatGroup.Use(m.Authentication())
		chatGroup.POST("", h.Chat)
	}

	return engine
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
