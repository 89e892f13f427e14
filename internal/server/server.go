// Package server exposes the site pages and the contact form API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/goliatone/go-contactform/internal/logging"
	"github.com/goliatone/go-contactform/internal/session"
	"github.com/goliatone/go-contactform/pkg/model"
	"github.com/goliatone/go-contactform/pkg/render"
	"github.com/goliatone/go-contactform/pkg/render/pages"
	"github.com/goliatone/go-contactform/pkg/schema"
	"github.com/goliatone/go-contactform/pkg/site"
	"github.com/goliatone/go-contactform/pkg/storage"
	"github.com/goliatone/go-contactform/pkg/validation"
)

// CSRFHeader carries the session token on API calls.
const CSRFHeader = "X-CSRF-Token"

// prefersColorSchemeHeader is the client hint for the OS colour scheme.
const prefersColorSchemeHeader = "Sec-CH-Prefers-Color-Scheme"

// Options wires the server to the rest of the application.
type Options struct {
	Form            model.Form
	Sessions        *session.Registry
	Pages           pages.Renderer
	Content         *site.Content
	Themes          *site.Selector
	DefaultTheme    site.Theme
	Contract        *schema.Contract
	Validator       *validation.Validator
	Newsletter      storage.Storage
	Static          fs.FS
	AllowAllOrigins bool
	Logger          *zap.Logger
}

// Server serves the site.
type Server struct {
	form         model.Form
	sessions     *session.Registry
	pages        pages.Renderer
	content      *site.Content
	themes       *site.Selector
	defaultTheme site.Theme
	contract     *schema.Contract
	validator    *validation.Validator
	newsletter   storage.Storage
	static       fs.FS
	allowAll     bool
	logger       *zap.Logger

	router chi.Router
}

// New builds the server and its router.
func New(opts Options) (*Server, error) {
	if opts.Sessions == nil {
		return nil, errors.New("server: session registry is required")
	}
	if opts.Pages == nil {
		return nil, errors.New("server: page renderer is required")
	}
	if opts.Content == nil {
		return nil, errors.New("server: site content is required")
	}
	if opts.Themes == nil {
		return nil, errors.New("server: theme selector is required")
	}
	if opts.Contract == nil {
		return nil, errors.New("server: payload contract is required")
	}
	if len(opts.Form.Fields) == 0 {
		opts.Form = model.ContactForm()
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	if opts.Newsletter == nil {
		opts.Newsletter = storage.NewMemory()
	}
	if opts.DefaultTheme == "" {
		opts.DefaultTheme = site.ThemeLight
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Server{
		form:         opts.Form,
		sessions:     opts.Sessions,
		pages:        opts.Pages,
		content:      opts.Content,
		themes:       opts.Themes,
		defaultTheme: opts.DefaultTheme,
		contract:     opts.Contract,
		validator:    opts.Validator,
		newsletter:   opts.Newsletter,
		static:       opts.Static,
		allowAll:     opts.AllowAllOrigins,
		logger:       opts.Logger,
	}
	s.router = s.buildRouter()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Requests(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/openapi.yaml", s.handleContract)
	if s.static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(s.static)))
	}

	r.Group(func(r chi.Router) {
		r.Use(s.withWorkspace)
		r.Get("/", s.handlePage("home"))
		r.Get("/services", s.handlePage("services"))
		r.Get("/about", s.handlePage("about"))
		r.Get("/contact", s.handlePage("contact"))
		r.Post("/contact", s.handleContactPost)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(s.corsOptions()))
		r.Use(s.withWorkspace)
		r.Get("/contact/draft", s.handleDraft)
		r.Get("/contact/attachments", s.handleAttachments)

		r.Group(func(r chi.Router) {
			r.Use(s.requireCSRF)
			r.Post("/contact", s.handleSubmit)
			r.Put("/contact/fields/{name}", s.handleFieldInput)
			r.Post("/contact/fields/{name}/blur", s.handleFieldBlur)
			r.Post("/contact/attachments", s.handleAttach)
			r.Delete("/contact/attachments/{name}", s.handleDetach)
			r.Post("/theme/toggle", s.handleThemeToggle)
			r.Post("/menu/toggle", s.handleMenuToggle)
			r.Post("/faq/{id}/toggle", s.handleFAQToggle)
			r.Post("/newsletter", s.handleNewsletter)
			r.Post("/schedule/{kind}", s.handleSchedule)
		})
	})

	return r
}

// corsOptions only opens the API to other origins when configured to.
func (s *Server) corsOptions() cors.Options {
	allowAll := s.allowAll
	return cors.Options{
		AllowOriginFunc: func(_ *http.Request, _ string) bool {
			return allowAll
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", CSRFHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

type workspaceKey struct{}

func (s *Server) withWorkspace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws := s.sessions.Get(w, r)
		ctx := context.WithValue(r.Context(), workspaceKey{}, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func workspaceFrom(ctx context.Context) *session.Workspace {
	ws, _ := ctx.Value(workspaceKey{}).(*session.Workspace)
	return ws
}

func (s *Server) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws := workspaceFrom(r.Context())
		if ws == nil || !render.VerifyToken(r.Header.Get(CSRFHeader), ws.CSRF) {
			writeError(w, http.StatusForbidden, "missing or invalid csrf token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

func (s *Server) handleContract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(schema.Document())
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests
// for at most grace.
func (s *Server) Run(ctx context.Context, addr string, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("contact site listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	s.logger.Info("contact site shutting down", zap.Duration("grace", grace))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
