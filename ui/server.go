package ui

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"datadash/adapters/excel"
	"datadash/internal/dashboard"
	"datadash/internal/errors"
	"datadash/internal/logging"
	"datadash/internal/metrics"
	"datadash/internal/session"
	"datadash/ui/middleware"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is the allowance for form framing around the file
const multipartOverhead = 1 << 20

//go:embed templates/*.html templates/fragments/*/*.html static content
var embeddedFiles embed.FS

// Config holds the UI settings taken from the application config
type Config struct {
	GinMode    string
	CookieName string
	MaxBytes   int64
}

// Server is the dashboard web UI
type Server struct {
	router     *gin.Engine
	templates  *template.Template
	help       template.HTML
	config     Config
	reader     *excel.DataReader
	controller *dashboard.Controller
	sessions   *session.Store
	metrics    *metrics.Metrics
	log        *logging.Logger
}

// NewServer wires the handlers, templates and middleware
func NewServer(config Config, reader *excel.DataReader, controller *dashboard.Controller,
	sessions *session.Store, m *metrics.Metrics, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	if config.GinMode != "" {
		gin.SetMode(config.GinMode)
	}

	templates, err := parseTemplates(embeddedFiles)
	if err != nil {
		return nil, err
	}
	help, err := renderMarkdown(embeddedFiles, "content/help.md")
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:     gin.New(),
		templates:  templates,
		help:       help,
		config:     config,
		reader:     reader,
		controller: controller,
		sessions:   sessions,
		metrics:    m,
		log:        logger.Component("UI"),
	}
	// uploads up to the size cap are parsed in memory, never spooled to disk
	s.router.MaxMultipartMemory = config.MaxBytes + multipartOverhead

	if err := s.setupMiddleware(logger); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware(logger *logging.Logger) error {
	s.router.Use(gin.CustomRecovery(s.recoverPanic))
	s.router.Use(middleware.RequestLogger(logger))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return err
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	pages := s.router.Group("/", middleware.EnsureSession(s.config.CookieName))
	pages.GET("/", s.handleIndex)
	pages.GET("/chart.svg", s.handleChartSVG)
	pages.POST("/upload", s.handleUpload)
	pages.POST("/reset", s.handleReset)
}

// Handler returns the HTTP handler serving the UI
func (s *Server) Handler() http.Handler {
	return s.router
}

// acceptAttr is the file picker's accept attribute
func acceptAttr() string {
	return strings.Join(excel.AllowedExtensions, ",")
}

// recoverPanic answers a panicking request with a plain INTERNAL_ERROR
func (s *Server) recoverPanic(c *gin.Context, recovered any) {
	s.log.Error("Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
	err := errors.InternalError("unexpected server error")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Message, "code": err.Code})
}
