// Package httpapi exposes the application over HTTP: the account lifecycle
// routes, the owner-scoped listings area and the public property endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/bienesraices/internal/logging"
	"github.com/dmitrijs2005/bienesraices/internal/server/config"
	"github.com/dmitrijs2005/bienesraices/internal/server/models"
	"github.com/dmitrijs2005/bienesraices/internal/server/services"
	"github.com/labstack/echo/v4"
)

// AccountService is the account lifecycle surface the handlers call.
type AccountService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Confirm(ctx context.Context, token string) error
	RequestReset(ctx context.Context, email string) error
	CheckResetToken(ctx context.Context, token string) error
	CompleteReset(ctx context.Context, token, newPassword string) error
	Authenticate(ctx context.Context, email, password string) (string, error)
}

// PropertyService is the listings surface the handlers call.
type PropertyService interface {
	Create(ctx context.Context, userID string, in *services.PropertyInput) (*models.Property, error)
	Get(ctx context.Context, userID, id string) (*models.Property, error)
	Update(ctx context.Context, userID, id string, in *services.PropertyInput) (*models.Property, error)
	Delete(ctx context.Context, userID, id string) error
	ListByOwner(ctx context.Context, userID string, limit, offset int) (*services.PropertyPage, error)
	TogglePublish(ctx context.Context, userID, id string) (*models.Property, error)
	GetPublished(ctx context.Context, id string) (*models.Property, error)
	Categories(ctx context.Context) ([]*models.Category, error)
	PriceRanges(ctx context.Context) ([]*models.PriceRange, error)
	ListPublished(ctx context.Context) ([]*models.Listing, error)
	RequestImageUpload(ctx context.Context, userID, id string) (url, key string, err error)
	ConfirmImageUpload(ctx context.Context, userID, id, key string) error
	GetImageURL(ctx context.Context, key string) (string, error)
}

// MessageService is the messaging surface the handlers call.
type MessageService interface {
	Send(ctx context.Context, senderID, propertyID, text string) (*models.Message, error)
	ListForOwner(ctx context.Context, userID, propertyID string) ([]*models.Message, error)
}

// HTTPServer serves the JSON API.
type HTTPServer struct {
	address         string
	logger          logging.Logger
	accounts        AccountService
	properties      PropertyService
	messages        MessageService
	secretKey       []byte
	sessionValidity time.Duration
	authRateLimit   int
	authRateBurst   int
}

// NewHTTPServer wires the services into a server listening on the configured
// address.
func NewHTTPServer(cfg *config.Config, l logging.Logger, as AccountService, ps PropertyService, ms MessageService) *HTTPServer {
	return &HTTPServer{
		address:         cfg.EndpointAddrHTTP,
		logger:          l.With("module", "http_server"),
		accounts:        as,
		properties:      ps,
		messages:        ms,
		secretKey:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionTokenValidityDuration,
		authRateLimit:   cfg.AuthRateLimit,
		authRateBurst:   cfg.AuthRateBurst,
	}
}

// newEcho builds the router with all routes and middleware registered.
func (s *HTTPServer) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	authGroup := e.Group("/auth", s.rateLimitMiddleware())
	authGroup.POST("/register", s.handleRegister)
	authGroup.GET("/confirm/:token", s.handleConfirm)
	authGroup.POST("/login", s.handleLogin)
	authGroup.POST("/logout", s.handleLogout)
	authGroup.POST("/forgot-password", s.handleForgotPassword)
	authGroup.GET("/reset-password/:token", s.handleCheckResetToken)
	authGroup.POST("/reset-password/:token", s.handleCompleteReset)

	owned := e.Group("/properties", s.requireAuth)
	owned.GET("", s.handleListOwnProperties)
	owned.POST("", s.handleCreateProperty)
	owned.GET("/:id", s.handleGetOwnProperty)
	owned.PUT("/:id", s.handleUpdateProperty)
	owned.DELETE("/:id", s.handleDeleteProperty)
	owned.PUT("/:id/publish", s.handleTogglePublish)
	owned.POST("/:id/image", s.handleRequestImageUpload)
	owned.PUT("/:id/image", s.handleConfirmImageUpload)
	owned.GET("/:id/messages", s.handleListMessages)

	e.GET("/property/:id", s.handlePublicProperty, s.identifyUser)
	e.POST("/property/:id/messages", s.handleSendMessage, s.requireAuth)
	e.GET("/api/properties", s.handlePublishedListings)
	e.GET("/api/categories", s.handleCategories)
	e.GET("/api/prices", s.handlePriceRanges)

	return e
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *HTTPServer) Run(ctx context.Context) error {
	e := s.newEcho()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(shutdownCtx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := e.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
