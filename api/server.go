// Package api wires the HTTP routes of duedeck-server.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/kutbudev/duedeck/api/handlers"
	"github.com/kutbudev/duedeck/internal/service"
)

// Options configures NewRouter.
type Options struct {
	// APIToken enables bearer-token auth on /v1 when set.
	APIToken string
	// Health reports database health for /healthz. Nil means always healthy.
	Health func() error
	Log    *logrus.Logger
}

// NewRouter builds the gin engine serving store.
func NewRouter(store service.Store, opts Options) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(log))

	// Ping endpoint for health check
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health(); err != nil {
				log.WithError(err).Warn("health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := handlers.New(store, log)

	// API v1 routes
	v1 := r.Group("/v1")
	if opts.APIToken != "" {
		v1.Use(BearerAuth(opts.APIToken))
	}
	{
		v1.GET("/tasks", h.ListTasks)
		v1.POST("/tasks", h.CreateTask)
		v1.GET("/tasks/grouped", h.GroupTasks)
		v1.GET("/tasks/:id", h.GetTask)
		v1.PUT("/tasks/:id", h.UpdateTask)
		v1.DELETE("/tasks/:id", h.DeleteTask)
		v1.PUT("/tasks/:id/status", h.SetTaskStatus)

		// List routes
		v1.GET("/lists", h.ListLists)
		v1.POST("/lists", h.CreateList)
		v1.PUT("/lists/:id", h.UpdateList)
		v1.DELETE("/lists/:id", h.DeleteList)

		// Tag routes
		v1.GET("/tags", h.ListTags)
		v1.POST("/tags", h.CreateTag)
		v1.DELETE("/tags/:id", h.DeleteTag)
	}

	return r
}

// RequestLogger logs one line per request through logrus.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// BearerAuth rejects requests whose Authorization header does not carry token.
// token may be a bcrypt hash (see `duedeck-server hash-token`).
func BearerAuth(token string) gin.HandlerFunc {
	match := func(got string) bool {
		return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
	}
	if IsHashedToken(token) {
		hash := []byte(token)
		match = func(got string) bool {
			return bcrypt.CompareHashAndPassword(hash, []byte(got)) == nil
		}
	}
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || !match(got) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// IsHashedToken reports whether token looks like a bcrypt hash.
func IsHashedToken(token string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(token, prefix) {
			return true
		}
	}
	return false
}

// HashToken hashes token for use as server.api_token.
func HashToken(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
