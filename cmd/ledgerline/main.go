// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ledgerline/site/internal/cache"
	"github.com/ledgerline/site/internal/config"
	"github.com/ledgerline/site/internal/geoip"
	"github.com/ledgerline/site/internal/handler"
	"github.com/ledgerline/site/internal/handler/api"
	"github.com/ledgerline/site/internal/logging"
	"github.com/ledgerline/site/internal/middleware"
	"github.com/ledgerline/site/internal/model"
	"github.com/ledgerline/site/internal/render"
	"github.com/ledgerline/site/internal/scheduler"
	"github.com/ledgerline/site/internal/service"
	"github.com/ledgerline/site/internal/session"
	"github.com/ledgerline/site/internal/store"
	"github.com/ledgerline/site/internal/version"
	"github.com/ledgerline/site/web"
)

// Housekeeping schedules on top of the scheduler's own jobs.
const (
	loginPruneSchedule  = "@every 10m"
	geoipReloadSchedule = "@daily"
)

// crudRoutes are the JSON handlers of one API resource.
type crudRoutes struct {
	List   http.HandlerFunc
	Get    http.HandlerFunc
	Create http.HandlerFunc
	Update http.HandlerFunc
	Delete http.HandlerFunc
}

// registerReads registers GET / and GET /{id} for a resource.
func registerReads(r chi.Router, base string, h crudRoutes) {
	r.Get(base, h.List)
	r.Get(base+handler.RouteParamID, h.Get)
}

// registerWrites registers POST /, PUT /{id}, PATCH /{id} and DELETE /{id}.
func registerWrites(r chi.Router, base string, h crudRoutes) {
	r.Post(base, h.Create)
	r.Put(base+handler.RouteParamID, h.Update)
	r.Patch(base+handler.RouteParamID, h.Update)
	r.Delete(base+handler.RouteParamID, h.Delete)
}

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Ledgerline - website and blog for an accounting firm\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEDGERLINE_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEDGERLINE_DB_PATH          SQLite database path (default: ./data/ledgerline.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEDGERLINE_SERVER_PORT      Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEDGERLINE_ENV              development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEDGERLINE_REDIS_URL        Redis URL for the menu cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LEDGERLINE_DO_SEED          Create the first admin and default menus\n")
	}
	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("ledgerline %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLevel(cfg.LogLevel)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// WARN and above also land in the events table from here on.
	logger := slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("database ready", "version", version.Get().String())

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, store.SeedOptions{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
		}); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	sessionManager := session.New(db, cfg.IsDevelopment())

	cacher := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.CacheTTLDuration(),
		MaxSize:    cfg.CacheMaxSize,
	}, logger)
	defer func() { _ = cacher.Close() }()

	// Services
	events := service.NewEventService(db)
	users := service.NewUserService(db, logger)
	posts := service.NewPostService(db, logger)
	pages := service.NewPageService(db, logger)
	categories := service.NewCategoryService(db, logger)
	contacts := service.NewContactService(db, logger)
	menus := service.NewMenuService(db, cache.NewMenuTreeCache(cacher), logger)
	files := service.NewFileService(db, cfg.UploadsDir, logger)
	content := service.NewContentService(db, cfg.ShortcodeAutoProcess, logger)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		Menus:          menus,
		SiteName:       cfg.SiteName,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	geo := geoip.New()
	if err := geo.Open(cfg.GeoIPDBPath); err != nil {
		slog.Warn("geoip disabled", "category", model.EventCategorySystem, "error", err)
	}
	defer func() { _ = geo.Close() }()
	contacts.SetCountryLookup(geo)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())

	sched := scheduler.New(db, logger)
	if err := sched.Every(loginPruneSchedule, "prune login counters", func(context.Context) error {
		loginProtection.Prune()
		return nil
	}); err != nil {
		return err
	}
	if geo.Enabled() {
		if err := sched.Every(geoipReloadSchedule, "reload geoip database", func(context.Context) error {
			return geo.Reload()
		}); err != nil {
			return err
		}
	}
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	contactLimiter := middleware.NewHourlyRateLimiter("contact", cfg.ContactRateLimit)

	// Handlers
	frontendHandler := handler.NewFrontendHandler(handler.FrontendConfig{
		Posts:            posts,
		Pages:            pages,
		Categories:       categories,
		Content:          content,
		Contacts:         contacts,
		Renderer:         renderer,
		Sessions:         sessionManager,
		SiteURL:          cfg.BaseURL(),
		DisallowIndexing: cfg.IsDevelopment(),
	})
	authHandler := handler.NewAuthHandler(users, events, renderer, sessionManager, loginProtection)
	adminHandler := handler.NewAdminHandler(db, posts, pages, content, events, renderer)
	healthHandler := handler.NewHealthHandler(db, cfg.UploadsDir)
	healthHandler.SetCache(cacher)
	apiHandler := api.NewHandler(api.Config{
		Posts:      posts,
		Pages:      pages,
		Categories: categories,
		Contacts:   contacts,
		Menus:      menus,
		Users:      users,
		Files:      files,
		Content:    content,
		Events:     events,
	})

	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.SiteURL, cfg.IsDevelopment()))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.BehindProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, users))
	r.Use(csrfMiddleware)

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// Public site
	r.Group(func(r chi.Router) {
		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteBlog, frontendHandler.Blog)
		r.Get(handler.RouteBlogPost, frontendHandler.Post)
		r.Get(handler.RouteCategorySlug, frontendHandler.Category)
		r.Get(handler.RouteContact, frontendHandler.ContactForm)
		r.With(contactLimiter.Middleware).Post(handler.RouteContact, frontendHandler.ContactSubmit)
		r.Get(handler.RouteSitemap, frontendHandler.Sitemap)
		r.Get(handler.RouteRobots, frontendHandler.Robots)
		// catch-all last
		r.Get(handler.RouteParamSlug, frontendHandler.Page)
	})

	// Auth
	r.Group(func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.RateLimiter().Middleware).Post(handler.RouteLogin, authHandler.Login)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(middleware.NoStore)
		r.Use(middleware.RequireUser)
		r.Get(handler.RouteRoot, adminHandler.Dashboard)
		r.Get(handler.RouteAdminContent, adminHandler.ContentPreview)
	})

	r.With(middleware.RequireUser).Get(handler.RouteFileDownload, apiHandler.DownloadFile)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", apiHandler.Status)

		postRoutes := crudRoutes{List: apiHandler.ListPosts, Get: apiHandler.GetPost, Create: apiHandler.CreatePost, Update: apiHandler.UpdatePost, Delete: apiHandler.DeletePost}
		pageRoutes := crudRoutes{List: apiHandler.ListPages, Get: apiHandler.GetPage, Create: apiHandler.CreatePage, Update: apiHandler.UpdatePage, Delete: apiHandler.DeletePage}
		categoryRoutes := crudRoutes{List: apiHandler.ListCategories, Get: apiHandler.GetCategory, Create: apiHandler.CreateCategory, Update: apiHandler.UpdateCategory, Delete: apiHandler.DeleteCategory}
		menuRoutes := crudRoutes{List: apiHandler.ListMenus, Get: apiHandler.GetMenu, Create: apiHandler.CreateMenu, Update: apiHandler.UpdateMenu, Delete: apiHandler.DeleteMenu}

		// Public reads; signed-in callers also see drafts.
		registerReads(r, "/posts", postRoutes)
		registerReads(r, "/pages", pageRoutes)
		registerReads(r, "/categories", categoryRoutes)
		registerReads(r, "/menus", menuRoutes)
		r.Get("/menus/{id}/tree", apiHandler.MenuTree)
		r.Get("/menus/{id}/items", apiHandler.MenuItems)
		r.With(contactLimiter.Middleware).Post("/contacts", apiHandler.SubmitContact)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			registerWrites(r, "/posts", postRoutes)
			registerWrites(r, "/pages", pageRoutes)
			registerWrites(r, "/categories", categoryRoutes)
			registerWrites(r, "/menus", menuRoutes)
			r.Post("/menus/{id}/items", apiHandler.CreateMenuItem)
			r.Get("/menu-items/{id}", apiHandler.GetMenuItem)
			r.Put("/menu-items/{id}", apiHandler.UpdateMenuItem)
			r.Patch("/menu-items/{id}", apiHandler.UpdateMenuItem)
			r.Delete("/menu-items/{id}", apiHandler.DeleteMenuItem)

			r.Get("/contacts", apiHandler.ListContacts)
			r.Get("/contacts/{id}", apiHandler.GetContact)
			r.Delete("/contacts/{id}", apiHandler.DeleteContact)

			r.Get("/files", apiHandler.ListFiles)
			r.Post("/files", apiHandler.UploadFile)
			r.Get("/files/{id}", apiHandler.GetFile)
			r.Delete("/files/{id}", apiHandler.DeleteFile)

			// original and processed bodies, drafts included
			r.Get("/posts/{id}/content", apiHandler.PostContent)
			r.Get("/pages/{id}/content", apiHandler.PageContent)
			r.Post("/shortcodes/preview", apiHandler.PreviewShortcodes)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(events))
				registerReads(r, "/users", crudRoutes{List: apiHandler.ListUsers, Get: apiHandler.GetUser})
				registerWrites(r, "/users", crudRoutes{Create: apiHandler.CreateUser, Update: apiHandler.UpdateUser, Delete: apiHandler.DeleteUser})
			})
		})
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	// one year for bundled assets, one week for uploads
	r.Handle("/static/*", middleware.StaticCache(31536000)(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))
	r.Handle("/uploads/*", middleware.StaticCache(604800)(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))))

	r.NotFound(frontendHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
	if err := serve(srv, quit); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// serve runs srv until a signal arrives on quit, then shuts it down
// gracefully. A listener failure such as a port in use is returned at once.
func serve(srv *http.Server, quit <-chan os.Signal) error {
	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
