package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lintangjaya/go-storefront/audit"
	"github.com/lintangjaya/go-storefront/auth"
	"github.com/lintangjaya/go-storefront/captcha"
	"github.com/lintangjaya/go-storefront/internal/config"
	"github.com/lintangjaya/go-storefront/products"
	"github.com/lintangjaya/go-storefront/sessions"
	"github.com/lintangjaya/go-storefront/users"
)

// Deps holds all dependencies for the Server.
type Deps struct {
	Auth     *auth.Service
	Users    users.UserRepo
	Products products.Repo
	Sessions sessions.Repo
	Audit    *audit.Logger
	Captcha  *captcha.Generator

	// TokenIssuer is set when the stateless signed-token CAPTCHA scheme is
	// configured; the /api/captcha response then carries the issued token.
	TokenIssuer *auth.SignedTokenVerifier

	// AuditCounts is set when the audit sink can report its row count; the
	// admin dashboard then includes it.
	AuditCounts AuditCounter
}

// AuditCounter reports how many audit events have been persisted.
type AuditCounter interface {
	Count() (int64, error)
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	deps    Deps
	nowTime func() time.Time
}

// Option defines a function type to modify the Server instance.
type Option func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(cfg config.Config, deps Deps, options ...Option) (*Server, error) {
	if deps.Auth == nil {
		return nil, fmt.Errorf("[Server New] auth service is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("[Server New] users repo is required")
	}
	if deps.Products == nil {
		return nil, fmt.Errorf("[Server New] products repo is required")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("[Server New] sessions repo is required")
	}
	if deps.Audit == nil {
		return nil, fmt.Errorf("[Server New] audit logger is required")
	}
	if deps.Captcha == nil {
		return nil, fmt.Errorf("[Server New] captcha generator is required")
	}

	s := &Server{
		mux:     http.NewServeMux(),
		config:  cfg,
		deps:    deps,
		env:     cfg.GetEnv(),
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
