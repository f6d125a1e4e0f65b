package http

import (
	"bytes"
	"context"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/tracker"
	appweb "expensetracker/web"
)

const pageTitle = "Expense Tracker"

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configure a Server.
type Options struct {
	Pinger Pinger
	Logger *log.Logger
}

// Server is the local window of the tracker: one page with the form and the
// table, driven by HTMX posts that each dispatch one tracker action.
type Server struct {
	http.Server
	templates *template.Template
	app       *tracker.App
	pinger    Pinger
	tracer    *trace.Middleware
	limiter   *ratelimit.Limiter
	logger    *log.Logger

	shutdownOnce sync.Once
}

func NewServer(addr string, app *tracker.App, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		templates: template.Must(template.ParseFS(appweb.TemplatesFS, "templates/*.html")),
		app:       app,
		pinger:    opts.Pinger,
		tracer:    trace.NewMiddleware(clientIP),
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(log.Middleware(logger))
	r.Use(s.tracer.Middleware)
	r.Use(log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	}))
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Handle("/static/*", security.StaticAssetMiddleware(3600)(http.FileServer(http.FS(appweb.StaticFS))))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Get("/", s.handleIndex)
	r.Get("/ui/table", s.handleTable)

	r.Route("/expenses", func(r chi.Router) {
		r.Use(s.limiter.Middleware(clientIP, func(w http.ResponseWriter, r *http.Request) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded", log.FieldClientIP, clientIP(r))
			ErrorResponse(http.StatusTooManyRequests, "Too many requests").
				Header("Retry-After", "60").
				Write(w)
		}))
		r.Post("/", s.handleCreateExpense)
		r.Post("/select", s.handleSelectCell)
		r.Post("/delete", s.handleDeleteExpense)
		r.Post("/edit", s.handleEditExpense)
		r.Post("/sort", s.handleSortExpenses)
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server",
			log.FieldOperation, log.OpShutdown,
			"total_requests", s.tracer.GetMetrics().TotalRequests,
			"rate_limited", s.limiter.GetMetrics().TotalHits)
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	body, err := s.render("index", newPageData(s.app.Snapshot(), tracker.Result{}))
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template render error",
			log.FieldOperation, log.OpRender, log.FieldError, err.Error())
		InternalServerError("Template error").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

// handleTable re-reads the store and returns the workspace partial.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, tracker.Action{Kind: tracker.ActionReload})
}

func (s *Server) render(name string, data pageData) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// clientIP returns the peer address. The window only listens on loopback so
// forwarding headers are ignored.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
