package http

import (
	"log/slog"
	"time"

	"resume-builder/internal/auth"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Verifier  auth.Verifier
	Registry  *prometheus.Registry
	RateLimit *RateLimiter
	BodyLimit int
	Logger    *slog.Logger
	Tracing   bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp builds the fiber app with middleware and every route attached.
func NewApp(h *Handler, opts Options) (*fiber.App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := fiber.Config{
		ErrorHandler:          ErrorHandler(),
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
	}
	if opts.BodyLimit > 0 {
		cfg.BodyLimit = opts.BodyLimit
	}
	app := fiber.New(cfg)

	app.Use(RequestID())
	if opts.Tracing {
		app.Use(otelfiber.Middleware())
	}
	app.Use(Logger(logger))
	if opts.Registry != nil {
		prom, err := NewPrometheus(opts.Registry)
		if err != nil {
			return nil, err
		}
		app.Use(prom.Handler())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}
	app.Get("/healthz", h.Health)

	api := app.Group("/api", Auth(opts.Verifier))
	limited := []fiber.Handler{}
	if opts.RateLimit != nil {
		limited = append(limited, opts.RateLimit.Handler())
	}

	api.Get("/resumes", h.ListResumes)
	api.Post("/resumes", h.CreateResume)
	api.Get("/resumes/:id", h.GetResume)
	api.Put("/resumes/:id", h.UpdateResume)
	api.Delete("/resumes/:id", h.DeleteResume)
	api.Post("/resumes/:id/edits", h.EditResume)
	api.Post("/resumes/:id/improve", append(limited, h.ImproveResume)...)
	api.Get("/resumes/:id/layout", h.LayoutResume)
	api.Get("/resumes/:id/preview", h.PreviewResume)
	api.Post("/resumes/:id/export", h.ExportResume)
	api.Get("/resumes/:id/exports", h.ListExports)
	api.Post("/export", h.ExportDocument)
	api.Post("/improve-text", append(limited, h.ImproveText)...)

	if h.local != nil {
		local := api.Group("/local/resumes")
		local.Get("/", h.ListLocal)
		local.Post("/", h.CreateLocal)
		local.Get("/:id", h.GetLocal)
		local.Put("/:id", h.UpdateLocal)
		local.Delete("/:id", h.DeleteLocal)
	}
	return app, nil
}
