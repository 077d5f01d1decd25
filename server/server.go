package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
	"github.com/gorilla/websocket"

	"github.com/umputun/newsdesk/pkg/config"
	"github.com/umputun/newsdesk/pkg/domain"
	"github.com/umputun/newsdesk/pkg/edit"
	"github.com/umputun/newsdesk/pkg/feed"
	"github.com/umputun/newsdesk/pkg/journal"
	"github.com/umputun/newsdesk/pkg/listing"
	"github.com/umputun/newsdesk/pkg/publish"
	"github.com/umputun/newsdesk/pkg/schedule"
)

//go:generate moq -out mocks/config.go -pkg mocks -skip-ensure -fmt goimports . ConfigProvider
//go:generate moq -out mocks/store.go -pkg mocks -skip-ensure -fmt goimports . Store
//go:generate moq -out mocks/generator.go -pkg mocks -skip-ensure -fmt goimports . Generator
//go:generate moq -out mocks/journal.go -pkg mocks -skip-ensure -fmt goimports . Journal

//go:embed templates static
var embedFS embed.FS

var (
	errJournalDisabled = errors.New("activity journal is disabled")
	errInvalidLimit    = errors.New("limit must be a positive number")
)

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	store     Store
	generator Generator
	journal   Journal
	version   string
	debug     bool

	news      *listing.Synchronizer[domain.NewsItem, domain.NewsFilter]
	schedules *listing.Synchronizer[domain.Schedule, struct{}]
	editor    *edit.Controller
	publisher *publish.Workflow
	modal     *publish.Modal
	fragments *fragmentHub
	planner   *schedule.Manager
	rss       *feed.Generator
	upgrader  websocket.Upgrader

	templates     *template.Template
	pageTemplates map[string]*template.Template

	bgCtx    context.Context // base context of background publish runs
	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// Store is the remote news store
type Store interface {
	ListNews(ctx context.Context, filter domain.NewsFilter) ([]domain.NewsItem, error)
	UpdateNewsField(ctx context.Context, id domain.ID, field domain.Field, value string) error
	DeleteNews(ctx context.Context, id domain.ID) error
	DeleteAllNews(ctx context.Context) error
	PublishNews(ctx context.Context, id domain.ID) error
	ListSchedules(ctx context.Context) ([]domain.Schedule, error)
	CreateSchedule(ctx context.Context, req domain.CreateScheduleRequest) error
	ToggleSchedule(ctx context.Context, id domain.ID) error
	DeleteSchedule(ctx context.Context, id domain.ID) error
	RunSchedule(ctx context.Context, id domain.ID) error
}

// Generator requests news generation for an asset
type Generator interface {
	Generate(ctx context.Context, req domain.GenerateRequest) (domain.GenerateResult, error)
}

// Journal records console writes
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
	GetFullConfig() *config.Config
}

// Deps are the collaborators of the server. Generator and Journal may be nil.
type Deps struct {
	Config    ConfigProvider
	Store     Store
	Generator Generator
	Journal   Journal
	Version   string
	Debug     bool
}

// New initializes a new server instance
func New(deps Deps) (*Server, error) {
	cfg := deps.Config.GetFullConfig()
	s := &Server{
		config:    deps.Config,
		store:     deps.Store,
		generator: deps.Generator,
		journal:   deps.Journal,
		version:   deps.Version,
		debug:     deps.Debug,
		router:    routegroup.New(http.NewServeMux()),
		upgrader:  websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096},
	}
	s.bgCtx, s.bgCancel = context.WithCancel(context.Background())

	s.news = listing.New[domain.NewsItem, domain.NewsFilter]("news", deps.Store.ListNews,
		func(f domain.NewsFilter) string { return f.Query().Encode() })
	s.schedules = listing.New[domain.Schedule, struct{}]("schedules", func(ctx context.Context, _ struct{}) ([]domain.Schedule, error) {
		return deps.Store.ListSchedules(ctx)
	}, func(struct{}) string { return "" })

	s.editor = edit.NewController(deps.Store, s.isEditable, cfg.Edit.SavedIndicator)
	s.news.OnReplace(func(snap listing.Snapshot[domain.NewsItem, domain.NewsFilter]) {
		s.editor.Sync(snap.Items)
	})

	s.modal = publish.NewModal()
	s.fragments = newFragmentHub()
	s.publisher = publish.NewWorkflow(deps.Store, s.modal, publish.NewScript(cfg.Publish.Steps, cfg.Publish.Settle),
		s.pushNewsList)

	s.planner = schedule.NewManager(deps.Store,
		schedule.Defaults{Mode: domain.ScheduleMode(cfg.Schedule.DefaultMode), Impacts: cfg.Schedule.DefaultImpacts,
			Language: cfg.DefaultLanguage()},
		schedule.Options{Days: cfg.Schedule.Days, Times: cfg.Schedule.Times, Impacts: cfg.Schedule.Impacts},
		func(ctx context.Context) error { _, err := s.schedules.Reload(ctx); return err },
		func(ctx context.Context) error { _, err := s.news.Reload(ctx); return err },
	)

	s.rss = feed.NewGenerator(cfg.Server.BaseURL, cfg.Server.PageTitle)

	if err := s.loadTemplates(); err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: timeout,
		IdleTimeout:       timeout,
		// no write timeout, the publish stream is a long-lived connection
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		s.bgCancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	s.bgWG.Wait()
	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newsdesk", "umputun", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	// static files
	staticFS, err := fs.Sub(embedFS, "static")
	if err != nil {
		log.Printf("[ERROR] can't open embedded static files: %v", err)
	} else {
		s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	}

	// pages and news fragments
	s.router.HandleFunc("GET /{$}", s.indexHandler)
	s.router.HandleFunc("GET /news", s.newsListHandler)
	s.router.HandleFunc("DELETE /news/{id}", s.deleteNewsHandler)
	s.router.HandleFunc("DELETE /news", s.clearNewsHandler)
	s.router.HandleFunc("POST /news/{id}/fields/{field}/focus", s.focusFieldHandler)
	s.router.HandleFunc("POST /news/{id}/fields/{field}/blur", s.blurFieldHandler)
	s.router.HandleFunc("POST /news/{id}/fields/{field}/cancel", s.cancelFieldHandler)
	s.router.HandleFunc("POST /generate", s.generateHandler)
	s.router.HandleFunc("GET /activity", s.activityHandler)

	// publish workflow
	s.router.HandleFunc("POST /news/{id}/publish", s.publishHandler)
	s.router.HandleFunc("GET /publish/modal", s.publishModalHandler)
	s.router.HandleFunc("GET /publish/ws", s.publishStreamHandler)
	s.router.HandleFunc("POST /publish/dismiss", s.publishDismissHandler)

	// schedules
	s.router.HandleFunc("GET /schedules", s.scheduleListHandler)
	s.router.HandleFunc("POST /schedules/draft/mode/{mode}", s.draftModeHandler)
	s.router.HandleFunc("POST /schedules/draft/{kind}/{value}", s.draftToggleHandler)
	s.router.HandleFunc("POST /schedules", s.createScheduleHandler)
	s.router.HandleFunc("POST /schedules/{id}/run", s.runScheduleHandler)
	s.router.HandleFunc("POST /schedules/{id}/toggle", s.toggleScheduleHandler)
	s.router.HandleFunc("DELETE /schedules/{id}", s.deleteScheduleHandler)

	// RSS of published news
	s.router.HandleFunc("GET /rss", s.rssHandler)

	// API routes
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /activity", s.activityAPIHandler)
	})
}

// loadTemplates parses shared components and one template set per page
func (s *Server) loadTemplates() error {
	funcs := templateFuncs()

	components, err := template.New("").Funcs(funcs).ParseFS(embedFS, "templates/components/*.html")
	if err != nil {
		return fmt.Errorf("parse components: %w", err)
	}
	s.templates = components

	s.pageTemplates = map[string]*template.Template{}
	for _, page := range []string{"index.html", "activity.html"} {
		tmpl, err := template.New("").Funcs(funcs).ParseFS(embedFS, "templates/base.html", "templates/"+page,
			"templates/components/*.html")
		if err != nil {
			return fmt.Errorf("parse page %s: %w", page, err)
		}
		s.pageTemplates[page] = tmpl
	}
	return nil
}

// isEditable reports whether the item is in the current news snapshot and not published
func (s *Server) isEditable(id domain.ID) bool {
	item, ok := s.news.Find(func(it domain.NewsItem) bool { return it.ID == id })
	return ok && item.Editable()
}

// reloadNews refreshes the news list with the last filter, failures are logged by the synchronizer
func (s *Server) reloadNews(ctx context.Context) {
	_, _ = s.news.Reload(ctx)
}

// record stores a write in the activity journal, if configured
func (s *Server) record(ctx context.Context, op journal.Op, target string, opErr error) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Record(context.WithoutCancel(ctx), journal.EntryFor(op, target, opErr)); err != nil {
		log.Printf("[WARN] can't record %s for %q: %v", op, target, err)
	}
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}

// respondWithError logs the error and sends a plain text response
func (s *Server) respondWithError(w http.ResponseWriter, code int, msg string, err error) {
	log.Printf("[ERROR] %s: %v", msg, err)
	http.Error(w, msg, code)
}

// alert asks the page to show a modal alert and skips the swap
func alert(w http.ResponseWriter, msg string) {
	payload, err := json.Marshal(map[string]string{"showAlert": msg})
	if err != nil {
		log.Printf("[WARN] can't encode alert: %v", err)
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
	w.Header().Set("HX-Reswap", "none")
	w.WriteHeader(http.StatusOK)
}
