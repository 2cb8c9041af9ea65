package api

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mwantia/codingrules/pkg/db/models"
	"github.com/mwantia/codingrules/pkg/db/store"
	"github.com/mwantia/codingrules/pkg/query"
)

// FilterResponse is a saved search. Query holds the canonical raw query.
type FilterResponse struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Query       string      `json:"query"`
	Parsed      query.Query `json:"parsed"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// filterResponse parses whatever part of a stored query still decodes and
// logs the rest. The raw Query is returned unchanged.
func (s *Server) filterResponse(f models.Filter) FilterResponse {
	raw, err := url.ParseQuery(f.Query)
	if err != nil {
		s.log.With("filter_id", f.ID).Warn("Stored filter query does not decode: %v", err)
	}
	return FilterResponse{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Query:       f.Query,
		Parsed:      query.Parse(raw),
		CreatedAt:   f.CreatedAt,
	}
}

func (s *Server) listFilters(c *gin.Context) {
	filters, err := s.store.ListFilters(c.Request.Context())
	if err != nil {
		s.fail(c, err, "")
		return
	}

	result := make([]FilterResponse, 0, len(filters))
	for _, f := range filters {
		result = append(result, s.filterResponse(f))
	}

	c.JSON(http.StatusOK, NewSuccessResponse(result))
}

func (s *Server) createFilter(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Query       string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	raw, err := url.ParseQuery(req.Query)
	if err != nil {
		badRequest(c, "query must be a URL-encoded query string")
		return
	}
	canonical := query.Serialize(query.Parse(raw))

	filter := &models.Filter{
		Name:        req.Name,
		Description: req.Description,
		Query:       canonical.Encode(),
	}

	var duplicate *store.DuplicateFilterError
	if err := s.store.CreateFilter(c.Request.Context(), filter); errors.As(err, &duplicate) {
		c.JSON(http.StatusConflict, NewErrorResponseWithDetails(ErrorCodeConflict,
			"an equal filter already exists", map[string]any{"id": duplicate.Existing.ID, "name": duplicate.Existing.Name}))
		return
	} else if err != nil {
		s.fail(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, NewSuccessResponse(s.filterResponse(*filter)))
}

func (s *Server) getFilter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	filter, err := s.store.GetFilter(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "filter not found")
		return
	}

	c.JSON(http.StatusOK, NewSuccessResponse(s.filterResponse(*filter)))
}

func (s *Server) deleteFilter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteFilter(c.Request.Context(), id); err != nil {
		s.fail(c, err, "filter not found")
		return
	}

	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"message": "Filter deleted successfully"}))
}
