// Package httpserver serves the data screens as server-rendered HTML pages.
package httpserver

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/tablescope/internal/logger"
	"github.com/KaramelBytes/tablescope/internal/screen"
)

//go:embed templates/*.html
var templates embed.FS

const (
	defaultAddr     = ":8501"
	shutdownTimeout = 5 * time.Second
)

// Config describes the server's dependencies.
type Config struct {
	Addr string
	Env  *screen.Env
	// MaxUploadBytes caps a single multipart request. Zero means 200 MiB.
	MaxUploadBytes int64
}

// Server wraps the gin router and its listen address.
type Server struct {
	addr      string
	router    *gin.Engine
	env       *screen.Env
	maxUpload int64
}

// NewServer builds the router with every screen route registered.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Env == nil {
		return nil, errors.New("http server requires a screen environment")
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 200 << 20
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.MaxMultipartMemory = 32 << 20

	tmpl, err := template.New("pages").Funcs(templateFuncs).ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	s := &Server{addr: cfg.Addr, router: router, env: cfg.Env, maxUpload: cfg.MaxUploadBytes}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router
	r.GET("/", s.index)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cached_sources": s.env.Cache.Len()})
	})
	r.GET("/greeting", s.greeting)
	r.GET("/mbti/careers", s.careers)
	r.GET("/mbti/media", s.media)
	r.GET("/spots", s.spots)
	r.GET("/mbti/countries", s.countries)
	r.GET("/mbti/rank", s.rank)
	r.GET("/subway", s.subway)
	r.POST("/subway", s.upload("/subway", "subway"))
	r.GET("/subway/export", s.subwayExport)
	r.GET("/alcohol", s.alcohol)
	r.POST("/alcohol", s.upload("/alcohol", "alcohol"))
	r.POST("/sources/:id/invalidate", s.invalidate)
}

// requestLogger logs every request at debug level.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", c.Request.Method, path, c.Writer.Status(), c.ClientIP(), time.Since(start))
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Infof("shutting down")
		return srv.Shutdown(shCtx)
	case err := <-errCh:
		return err
	}
}
