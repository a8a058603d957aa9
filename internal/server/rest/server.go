// Package rest exposes the identity service over HTTP/JSON. Handlers parse
// the request, delegate to IdentityService, and map its typed failures to
// status codes; no business rules live here.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vpetrenko/accountd/internal/logging"
	"github.com/vpetrenko/accountd/internal/server/services"
)

type Server struct {
	addr     string
	identity *services.IdentityService
	logger   logging.Logger
}

func NewServer(addr string, l logging.Logger, identity *services.IdentityService) *Server {
	return &Server{
		addr:     addr,
		identity: identity,
		logger:   l.With("module", "rest_server"),
	}
}

// Routes builds the gin engine. Register, login, and logout are open;
// everything else sits behind the token gate.
func (s *Server) Routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/users", s.registerUser)
	r.POST("/login", s.loginUser)
	r.PUT("/logout/:id", s.logoutUser)

	protected := r.Group("/", s.requireAuth())
	protected.GET("/users", s.listUsers)
	protected.GET("/users/:id", s.getUser)
	protected.PUT("/users/:id", s.updateUser)

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	srv := &http.Server{Addr: s.addr, Handler: s.Routes()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
