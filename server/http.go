// Package server exposes the tutor pipeline over two thin transports: a
// JSON HTTP API for render frontends and an MCP tool server for agent
// frontends. All math lives below; this package only maps requests and the
// typed error taxonomy onto the wire.
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stepwise-org/stepwise/engine"
	"github.com/stepwise-org/stepwise/intent"
	"github.com/stepwise-org/stepwise/parser"
	"github.com/stepwise-org/stepwise/tutor"
)

type queryRequest struct {
	Text     string `json:"text" binding:"required"`
	Modality string `json:"modality"`
}

// NewRouter builds the HTTP API.
//
//	POST /api/v1/query  {text, modality} -> tutor.Response
//	GET  /healthz
func NewRouter(t *tutor.Tutor, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/query", handleQuery(t))
	}
	return router
}

func handleQuery(t *tutor.Tutor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req queryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "bad-request"})
			return
		}

		resp, err := t.Ask(c.Request.Context(), req.Text, intent.Modality(req.Modality))
		if err != nil {
			status, code := classifyError(err)
			c.JSON(status, gin.H{"error": err.Error(), "code": code})
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// classifyError maps the typed error taxonomy onto HTTP statuses: rejected
// input is 400, input understood but out of reach is 422.
func classifyError(err error) (int, string) {
	var (
		perr *parser.ParseError
		ierr *intent.UnrecognizedIntentError
		aerr *intent.AmbiguousVariableError
		ferr *engine.UnsupportedFormError
		nerr *engine.NoClosedFormError
	)
	switch {
	case errors.As(err, &perr):
		return http.StatusBadRequest, "parse-error"
	case errors.As(err, &ierr):
		return http.StatusBadRequest, "unrecognized-intent"
	case errors.As(err, &aerr):
		return http.StatusBadRequest, "ambiguous-variable"
	case errors.As(err, &ferr):
		return http.StatusUnprocessableEntity, "unsupported-form"
	case errors.As(err, &nerr):
		return http.StatusUnprocessableEntity, "no-closed-form"
	}
	return http.StatusInternalServerError, "internal"
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
