// Package server exposes dashboard views over HTTP.
package server

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"airbnb-dashboard/chart"
	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

//go:embed index.html
var indexHTML []byte

const (
	sessionCookie = "dashboard_session"
	sessionKey    = "session"
	pngSuffix     = ".png"
)

var errBadYear = errors.New("year must be a whole number or \"all\"")

// Server routes dashboard requests to per-user sessions.
type Server struct {
	store    *services.SessionStore
	renderer chart.Renderer
	logger   *utils.Logger
	engine   *gin.Engine
}

// New builds a Server. Callers should set gin's mode before calling.
func New(store *services.SessionStore, renderer chart.Renderer, logger *utils.Logger) *Server {
	s := &Server{
		store:    store,
		renderer: renderer,
		logger:   logger,
		engine:   gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestLogger(logger))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.index)
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api")
	api.Use(s.withSession())
	{
		api.GET("/views", s.listViews)
		api.GET("/views/:view", s.renderView)
		api.GET("/views/:view/options", s.viewOptions)
		api.GET("/views/:view/charts/:chart", s.renderChartPNG)
		api.GET("/session", s.sessionInfo)
		api.DELETE("/session", s.endSession)
	}
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, sweeping idle sessions every
// sweepEvery.
func (s *Server) Run(ctx context.Context, addr string, sweepEvery time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if sweepEvery > 0 {
		go s.sweep(ctx, sweepEvery)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[server] Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("[server] Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.store.CloseAll()
		if err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.store.Sweep(); n > 0 {
				s.logger.Info("[server] Expired %d idle sessions", n)
			}
		}
	}
}

func requestLogger(l *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Info("[http] %s %s %d %s", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

// withSession attaches the caller's session, starting one when the cookie is
// missing or stale.
func (s *Server) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(sessionCookie)
		sess, created := s.store.Acquire(id)
		if created {
			s.logger.Debug("[server] New session %s", sess.ID)
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sess.ID, 0, "/", "", false, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func session(c *gin.Context) *services.Session {
	return c.MustGet(sessionKey).(*services.Session)
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.store.Len()})
}

func (s *Server) listViews(c *gin.Context) {
	c.JSON(http.StatusOK, session(c).Dashboard().Views())
}

func (s *Server) viewOptions(c *gin.Context) {
	sel, err := parseSelection(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	choices, err := session(c).Options(c.Param("view"), sel)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, choices)
}

func (s *Server) renderView(c *gin.Context) {
	sel, err := parseSelection(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := session(c).Render(c.Param("view"), sel)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) renderChartPNG(c *gin.Context) {
	id, ok := strings.CutSuffix(c.Param("chart"), pngSuffix)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "charts are served as .png"})
		return
	}
	sel, err := parseSelection(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ch, err := session(c).RenderChart(c.Param("view"), id, sel)
	if err != nil {
		s.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, ch); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) sessionInfo(c *gin.Context) {
	sess := session(c)
	info := gin.H{
		"id":         sess.ID,
		"created_at": sess.CreatedAt,
		"last_used":  sess.LastUsed(),
	}
	if ds := sess.Dataset(); ds != nil {
		info["source"] = ds.Source
		info["loaded_at"] = ds.LoadedAt
		info["listings"] = ds.Len()
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) endSession(c *gin.Context) {
	s.store.Release(session(c).ID)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

// fail maps pipeline errors to HTTP statuses.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnknownView), errors.Is(err, services.ErrUnknownChart):
		status = http.StatusNotFound
	case errors.Is(err, chart.ErrUnsupportedKind):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSessionClosed):
		status = http.StatusGone
	default:
		s.logger.Error("[server] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// parseSelection reads the selector query parameters. Missing values and
// "All" leave a field unconstrained.
func parseSelection(c *gin.Context) (models.FilterSelection, error) {
	sel := models.FilterSelection{
		Country:      c.Query(string(models.DimCountry)),
		RoomType:     c.Query(string(models.DimRoomType)),
		Market:       c.Query(string(models.DimMarket)),
		PropertyType: c.Query(string(models.DimPropertyType)),
	}
	if y := c.Query(string(models.DimYear)); !models.IsAll(y) {
		year, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil || year < 0 {
			return sel, errBadYear
		}
		sel.Year = year
	}
	return sel, nil
}
