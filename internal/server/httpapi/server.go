// Package httpapi exposes the REST route surface over the user and message
// services. Handlers stay thin: token checks, request decoding, the access
// rules, and error-to-status mapping all live here; the domain rules live in
// the services.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/services"
	"github.com/gin-gonic/gin"
)

// UserProvider is the slice of UserService the routes need.
type UserProvider interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	TokenFor(username string) (string, error)
	UpdateLoginTimestamp(ctx context.Context, username string) (time.Time, error)
	Get(ctx context.Context, username string) (*models.User, error)
	All(ctx context.Context) ([]models.UserSummary, error)
	MessagesFrom(ctx context.Context, username string) ([]models.ConversationMessage, error)
	MessagesTo(ctx context.Context, username string) ([]models.ConversationMessage, error)
}

// MessageProvider is the slice of MessageService the routes need.
type MessageProvider interface {
	Create(ctx context.Context, from, to, body string) (*models.Message, error)
	Get(ctx context.Context, id string) (*models.MessageDetail, error)
	MarkRead(ctx context.Context, id string) (*models.ReadReceipt, error)
}

type HTTPServer struct {
	address   string
	logger    logging.Logger
	users     UserProvider
	messages  MessageProvider
	jwtSecret []byte
}

func NewHTTPServer(a string, l logging.Logger, us UserProvider, ms MessageProvider, secretKey string) (*HTTPServer, error) {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		messages:  ms,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *HTTPServer) newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	auth := r.Group("/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
	}

	api := r.Group("/", s.requireToken)
	{
		api.GET("/users", s.handleListUsers)
		api.GET("/users/:username", s.handleGetUser)
		api.GET("/users/:username/from", s.handleMessagesFrom)
		api.GET("/users/:username/to", s.handleMessagesTo)

		api.POST("/messages", s.handleCreateMessage)
		api.GET("/messages/:id", s.handleGetMessage)
		api.POST("/messages/:id/read", s.handleMarkRead)
	}

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.newRouter(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
