package httpapi

import (
	"net/http"

	"cloud-agent/internal/application/port/input"
	"cloud-agent/internal/application/port/output"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog"
)

const defaultMaxUploadBytes = 32 << 20

type Config struct {
	ServiceName string
	// AccessLog enables httplog request logging.
	AccessLog      bool
	LogLevel       string
	JSONLogs       bool
	MaxUploadBytes int64
}

type Deps struct {
	Chat    input.ChatStreamer
	Tools   output.ToolRegistry
	Storage output.StoragePort
	Logger  output.LoggerPort
}

type handlers struct {
	chat    input.ChatStreamer
	tools   output.ToolRegistry
	storage output.StoragePort
	logger  output.LoggerPort
	cfg     Config
}

func NewRouter(deps Deps, cfg Config) http.Handler {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "cloud-agent"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	h := &handlers{
		chat:    deps.Chat,
		tools:   deps.Tools,
		storage: deps.Storage,
		logger:  deps.Logger.WithField("component", "http"),
		cfg:     cfg,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.AccessLog {
		r.Use(httplog.RequestLogger(httplog.NewLogger(cfg.ServiceName, httplog.Options{
			JSON:     cfg.JSONLogs,
			Concise:  true,
			LogLevel: cfg.LogLevel,
		})))
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", h.handleStatus)
	r.Get("/tools", h.handleTools)
	r.Post("/chat/stream", h.handleChatStream)

	r.Get("/s3/objects", h.handleListObjects)
	r.Post("/s3/objects", h.handleUploadObject)
	r.Delete("/s3/objects", h.handleDeleteObject)

	return r
}

type statusResponse struct {
	Status string `json:"status"`
}

func (h *handlers) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "Cloud agent is running"})
}

func (h *handlers) handleTools(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.tools.Definitions())
}
