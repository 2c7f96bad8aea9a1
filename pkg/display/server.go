package display

import (
	"context"
	"errors"
	"net/http"
	"time"

	"battle-display/pkg/arena"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const VERSION = "1.0.0"

// Source is what the HTTP surface reads from; *Driver implements it
type Source interface {
	Frame() []byte
	Snapshot() arena.Snapshot
	ForceTurn(ctx context.Context) (bool, error)
}

type Server struct {
	engine *gin.Engine
	source Source
	hub    *Hub
	log    *zap.Logger
}

func NewServer(source Source, hub *Hub, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: gin.New(),
		source: source,
		hub:    hub,
		log:    log.Named("http"),
	}

	s.engine.Use(gin.Recovery(), s.requestLog())
	s.engine.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Next()
	})

	s.engine.GET("/", s.info)
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/frame.png", s.frame)
	s.engine.GET("/ws", s.stream)

	api := s.engine.Group("/api")
	{
		api.GET("/state", s.state)
		api.POST("/turn", s.turn)
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) info(c *gin.Context) {
	snap := s.source.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "battle-display",
		"version": VERSION,
		"mode":    snap.Mode,
	})
}

func (s *Server) frame(c *gin.Context) {
	frame := s.source.Frame()
	if frame == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no frame yet"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", frame)
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.source.Snapshot())
}

func (s *Server) turn(c *gin.Context) {
	ok, err := s.source.ForceTurn(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"accepted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": true})
}

func (s *Server) stream(c *gin.Context) {
	s.hub.Serve(c.Writer, c.Request, func(ctx context.Context) bool {
		ok, err := s.source.ForceTurn(ctx)
		return err == nil && ok
	})
}
