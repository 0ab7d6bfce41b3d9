package server

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/ovenworks/go-backoffice-auth/accounts"
	"github.com/ovenworks/go-backoffice-auth/auth"
	"github.com/ovenworks/go-backoffice-auth/internal/config"
	"github.com/ovenworks/go-backoffice-auth/realtime"
	"github.com/ovenworks/go-backoffice-auth/token"
	"github.com/pkg/errors"
)

// Server is the HTTP boundary. Every dependency is injected at construction;
// handlers never reach for package-level singletons.
type Server struct {
	engine   *gin.Engine
	config   config.Config
	auth     *auth.Service
	tokens   *token.Service
	accounts accounts.Repo
	gateway  *realtime.Gateway
}

func New(cfg config.Config, authService *auth.Service, tokens *token.Service, repo accounts.Repo, gateway *realtime.Gateway) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[server.New] auth service is required")
	}
	if tokens == nil {
		return nil, errors.New("[server.New] token service is required")
	}
	if repo == nil {
		return nil, errors.New("[server.New] accounts repo is required")
	}
	if gateway == nil {
		return nil, errors.New("[server.New] realtime gateway is required")
	}

	if cfg.GetEnv() == "PRODUCTION" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:   gin.New(),
		config:   cfg,
		auth:     authService,
		tokens:   tokens,
		accounts: repo,
		gateway:  gateway,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(CORSMiddleware(cfg.GetAllowedOrigin()))
	s.engine.Use(requestid.New(requestid.WithCustomHeaderStrKey("X-Request-Id")))
	s.engine.Use(RequestLogger())
	s.engine.Use(gzip.Gzip(gzip.DefaultCompression))

	s.routes()
	return s, nil
}

// Handler exposes the engine for http.Server and for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}
