package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"job-insights/models"
	"job-insights/services"
	"job-insights/storage"
)

const defaultListLimit = 1000

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type viewInfo struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

func (s *Server) listViews(c *gin.Context) {
	views := services.Views()
	out := make([]viewInfo, 0, len(views))
	for _, v := range views {
		out = append(out, viewInfo{Key: v, Title: services.ViewTitle(v)})
	}
	c.JSON(http.StatusOK, gin.H{"views": out})
}

// analytics is GET /api/v1/analytics/:view
func (s *Server) analytics(c *gin.Context) {
	view := c.Param("view")
	if !knownView(view) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown view", "code": "unknown_view"})
		return
	}

	records, ok := s.fetch(c, s.analyticsQuery())
	if !ok {
		return
	}

	result, err := s.analyzer.Analyze(view, records)
	if errors.Is(err, services.ErrUnknownView) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "unknown_view"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metricAnalyses.WithLabelValues(view).Inc()
	c.JSON(http.StatusOK, gin.H{
		"view":    view,
		"title":   services.ViewTitle(view),
		"records": len(records),
		"data":    result,
	})
}

// jobs is GET /api/v1/jobs?search=&level=&limit=
func (s *Server) jobs(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	// limit caps the matches, not the rows searched
	records, ok := s.fetch(c, storage.ListQuery(storage.MaxFetchLimit))
	if !ok {
		return
	}

	filter := services.JobFilter{Term: c.Query("search"), ExperienceLevel: c.Query("level")}
	rows := s.analyzer.ListJobs(records, filter, limit)
	c.JSON(http.StatusOK, gin.H{"total": len(rows), "jobs": rows})
}

func (s *Server) analyticsQuery() storage.Query {
	q := storage.AnalyticsQuery()
	if s.opts.FetchLimit > 0 {
		q.Limit = s.opts.FetchLimit
	}
	return q
}

// fetch loads records for one request. On failure it writes the error
// response and returns false.
func (s *Server) fetch(c *gin.Context, q storage.Query) ([]*models.JobRecord, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.FetchTimeout)
	defer cancel()

	records, err := s.store.Fetch(ctx, q)
	if err != nil {
		code := "unknown"
		var se *storage.StoreError
		if errors.As(err, &se) {
			code = se.Code
		}
		metricStoreErrors.WithLabelValues(code).Inc()
		s.logger.Error("[api] fetch failed: %v", err)
		msg := err.Error()
		if se != nil {
			msg = se.Message
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msg, "code": code})
		return nil, false
	}
	metricRecordsFetched.Observe(float64(len(records)))
	return records, true
}

func knownView(view string) bool {
	for _, v := range services.Views() {
		if v == view {
			return true
		}
	}
	return false
}
