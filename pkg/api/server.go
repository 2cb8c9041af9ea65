// Package api serves the coding rules browser over HTTP with gin.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	config "github.com/mwantia/codingrules/internal/config/server"
	"github.com/mwantia/codingrules/pkg/db/store"
	"github.com/mwantia/codingrules/pkg/l10n"
	"github.com/mwantia/codingrules/pkg/log"
	"github.com/mwantia/codingrules/pkg/metrics"
	"gorm.io/gorm"
)

type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	Version         string
	AccessLog       config.LogAccessConfig
}

type Server struct {
	store   store.RuleStore
	log     log.LoggerService
	metrics *metrics.Collector
	l10n    *l10n.Bundle
	opts    Options
}

func NewServer(s store.RuleStore, logger log.LoggerService, collector *metrics.Collector, opts Options) *Server {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 100
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}

	return &Server{
		store:   s,
		log:     logger,
		metrics: collector,
		l10n:    l10n.English(),
		opts:    opts,
	}
}

// Router builds the gin engine with middleware and all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AccessLog(s.log, s.opts.AccessLog), Metrics(s.metrics), Recovery(s.log))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api")
	{
		rules := api.Group("/rules")
		rules.GET("/search", s.searchRules)
		rules.GET("/show", s.showRule)

		rules.GET("/filters", s.listFilters)
		rules.POST("/filters", s.createFilter)
		rules.GET("/filters/:id", s.getFilter)
		rules.DELETE("/filters/:id", s.deleteFilter)

		api.GET("/qualityprofiles/search", s.searchProfiles)
	}

	return r
}

// fail maps err to a response. Missing records become 404.
func (s *Server) fail(c *gin.Context, err error, notFound string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, notFound))
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, err.Error()))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, NewErrorResponse(ErrorCodeValidation, message))
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}
