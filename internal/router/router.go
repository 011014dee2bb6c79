package router

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sudo-init-do/lotengo/internal/admin"
	"github.com/sudo-init-do/lotengo/internal/alerts"
	"github.com/sudo-init-do/lotengo/internal/auth"
	"github.com/sudo-init-do/lotengo/internal/config"
	"github.com/sudo-init-do/lotengo/internal/db"
	"github.com/sudo-init-do/lotengo/internal/marketplace"
	"github.com/sudo-init-do/lotengo/internal/messaging"
	mware "github.com/sudo-init-do/lotengo/internal/middleware"
	"github.com/sudo-init-do/lotengo/internal/user"
)

const (
	buyer  = string(db.RoleBuyer)
	seller = string(db.RoleSeller)
)

// pinger is implemented by blob backends with a remote connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// New wires every route onto a fresh echo instance.
func New(cfg *config.Config, store *db.Store, ledger *alerts.Ledger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.Logger())

	authH := auth.NewHandler(auth.NewService(store, []byte(cfg.JWTSecret)), cfg.ExposeOTP)
	userH := user.NewHandler(user.NewService(store))
	market := marketplace.NewHandler(marketplace.NewService(store, ledger))
	chats := messaging.NewHandler(messaging.NewService(store, ledger))
	notes := alerts.NewHandler(ledger)
	adminH := admin.NewHandler(admin.NewService(store))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if p, ok := store.Blobs().(pinger); ok {
			if err := p.Ping(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "store unreachable"})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public routes
	// Auth routes with per-IP rate limiting to protect register/login from abuse
	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/register", authH.Register)
	authGroup.POST("/login", authH.Login)
	authGroup.POST("/password/request", authH.RequestPasswordReset)
	authGroup.POST("/password/verify", authH.VerifyOTP)
	authGroup.POST("/password/reset", authH.ResetPassword)

	e.GET("/user/:id/profile", userH.GetPublicProfile)
	e.GET("/users/:id/ratings", market.UserRatings)
	e.GET("/sellers/:id/products", market.SellerProducts)

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(mware.AdminGuard(cfg.AdminKey))
	adminGroup.GET("/stats", adminH.Stats)
	adminGroup.GET("/users", adminH.ListUsers)
	adminGroup.POST("/reset", adminH.Reset)

	// Protected routes
	api := e.Group("")
	api.Use(mware.JWTMiddleware([]byte(cfg.JWTSecret)))

	api.GET("/auth/me", authH.Me)
	api.POST("/auth/password/change", authH.ChangePassword)

	api.PATCH("/user/profile", userH.UpdateProfile)
	api.POST("/user/addresses", userH.AddFrequentAddress)

	api.POST("/requests", market.CreateRequest, mware.RequireRoles(buyer))
	api.GET("/requests/me", market.MyRequests, mware.RequireRoles(buyer))
	api.GET("/requests/open", market.OpenRequests, mware.RequireRoles(seller))
	api.GET("/requests/:id", market.GetRequest)
	api.POST("/requests/:id/status", market.UpdateRequestStatus, mware.RequireRoles(buyer))

	api.GET("/requests/:id/offers", market.ListOffers)
	api.POST("/requests/:id/offers", market.CreateOffer, mware.RequireRoles(seller))
	api.GET("/offers/me", market.MyOffers, mware.RequireRoles(seller))
	api.GET("/offers/:id", market.GetOffer)
	api.POST("/offers/:id/accept", market.AcceptOffer, mware.RequireRoles(buyer))
	api.POST("/offers/:id/reject", market.RejectOffer, mware.RequireRoles(buyer))
	api.POST("/offers/:id/withdraw", market.WithdrawOffer, mware.RequireRoles(seller))

	api.POST("/requests/:id/ratings", market.CreateRating)
	api.GET("/requests/:id/ratings", market.RequestRatings)

	api.GET("/requests/:id/chat", chats.ChatForRequest)
	api.GET("/chats", chats.ListChats)
	api.GET("/chats/:id/messages", chats.ListMessages)
	api.POST("/chats/:id/messages", chats.SendMessage)

	api.GET("/notifications", notes.ListNotifications)
	api.GET("/notifications/unread", notes.UnreadCount)
	api.POST("/notifications/:id/read", notes.MarkNotificationRead)
	api.POST("/notifications/read-all", notes.MarkAllRead)

	api.POST("/products", market.CreateProduct, mware.RequireRoles(seller))
	api.GET("/products/me", market.MyProducts, mware.RequireRoles(seller))
	api.PATCH("/products/:id", market.UpdateProduct, mware.RequireRoles(seller))
	api.DELETE("/products/:id", market.DeleteProduct, mware.RequireRoles(seller))

	return e
}
