package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// health reports store connectivity and refreshes the catalog size gauge.
func (s *Server) health(c *gin.Context) {
	ctx := c.Request.Context()

	if err := s.store.Health(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, "store is not reachable"))
		return
	}

	count, err := s.store.CountRules(ctx)
	if err != nil {
		s.fail(c, err, "")
		return
	}
	s.metrics.SetCatalogRules(count)

	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   s.opts.Version,
		"rules":     count,
	}))
}
