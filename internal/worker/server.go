package worker

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/autocaps/renderd/internal/logging"
)

// Server is the worker's HTTP surface: a health check and the single
// authenticated render endpoint. Jobs are processed synchronously, one per
// request.
type Server struct {
	engine *gin.Engine
	orch   *Orchestrator
	secret string
	logger *logging.Logger
}

func NewServer(orch *Orchestrator, secret string, logger *logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: gin.New(),
		orch:   orch,
		secret: secret,
		logger: logger,
	}

	s.engine.Use(gin.Recovery())
	s.engine.GET("/", s.handleHealth)
	s.engine.HEAD("/", s.handleHealth)
	s.engine.GET("/health", s.handleHealth)
	s.engine.HEAD("/health", s.handleHealth)
	s.engine.POST("/render", s.handleRender)
	s.engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Not found")
	})

	return s
}

// Handler exposes the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(port int) error {
	s.logger.Infow("render worker listening", "port", port)
	return s.engine.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"route":     c.Request.URL.Path,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRender(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.String(http.StatusUnauthorized, "Missing token")
		return
	}
	if err := verifyToken(strings.TrimPrefix(authHeader, "Bearer "), s.secret); err != nil {
		c.String(http.StatusUnauthorized, "Invalid token")
		return
	}

	var payload Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.String(http.StatusBadRequest, "Malformed payload")
		return
	}

	// temp files and caption object paths are keyed by job id
	if payload.JobID == "" {
		payload.JobID = uuid.NewString()
	}

	if err := s.orch.Process(c.Request.Context(), payload); err != nil {
		if errors.Is(err, ErrUnsupportedResolution) {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Errorw("worker failed", "job_id", payload.JobID, "error", err)
		c.String(http.StatusInternalServerError, "Worker error")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": true, "jobId": payload.JobID})
}

// auth is stateless: the bearer token must verify against the shared
// secret before any job state is looked at
func verifyToken(token, secret string) error {
	_, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	return err
}
