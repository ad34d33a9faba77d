package ui

import (
	"fmt"
	"net/http"
	"strconv"

	"reactorviz/domain/reactor"
	"reactorviz/internal/errors"
	"reactorviz/ui/middleware"

	"github.com/gin-gonic/gin"
)

// newAPI builds the JSON API. Routes carry the /api prefix because the
// engine is mounted under chi without path stripping.
func (a *App) newAPI() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(a.logger))

	api := r.Group("/api")
	api.GET("/reactors", a.handleReactors)
	api.GET("/buckets/:metric", a.handleBuckets)
	api.GET("/timeline", a.handleTimeline)
	api.POST("/reload", a.handleReload)
	api.GET("/runs/latest", a.handleLatestRun)

	r.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, errors.NotFound(fmt.Sprintf("route %s", c.Request.URL.Path)))
	})
	return r
}

func (a *App) handleReactors(c *gin.Context) {
	data, err := a.services.Pipeline.Dataset(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	entries := data.Entries
	if s := c.Query("status"); s != "" {
		entries = reactor.ByStatus(entries, reactor.Status(s))
	}
	if country := c.Query("country"); country != "" {
		var filtered []reactor.Entry
		for _, e := range entries {
			if e.Reactor.Country == country {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	if entries == nil {
		entries = []reactor.Entry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"source":  data.Source,
		"now":     data.Now,
		"count":   len(entries),
		"entries": entries,
	})
}

func (a *App) handleBuckets(c *gin.Context) {
	m, err := reactor.ParseMetric(c.Param("metric"))
	if err != nil {
		middleware.AbortWithError(c, errors.WithCode(errors.CodeNotFound, err))
		return
	}
	chart, err := a.services.Buckets.Build(c.Request.Context(), m)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

// handleTimeline re-filters the dashboard timeline to ?start=&end=. Either
// bound defaults to the dashboard range.
func (a *App) handleTimeline(c *gin.Context) {
	window, err := a.parseWindow(c.Query("start"), c.Query("end"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	chart, err := a.services.Timeline.Build(c.Request.Context(), timelineRequest(window))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"window": chart.Window,
		"count":  chart.Layout.Count,
		"figure": chart.Figure,
	})
}

func (a *App) handleReload(c *gin.Context) {
	data, err := a.services.Pipeline.Reload(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source":      data.Source,
		"count":       len(data.Entries),
		"fingerprint": data.Fingerprint,
		"loaded_at":   data.LoadedAt,
	})
}

func (a *App) handleLatestRun(c *gin.Context) {
	if a.services.Publish == nil {
		middleware.AbortWithError(c, errors.NotFound("publication database"))
		return
	}
	run, entries, err := a.services.Publish.Latest(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "count": len(entries)})
}

func (a *App) parseWindow(start, end string) (reactor.YearWindow, error) {
	w := a.services.Timeline.DashboardWindow()
	if start != "" {
		v, err := strconv.Atoi(start)
		if err != nil {
			return w, errors.InvalidInput(fmt.Sprintf("start must be a year, got %q", start))
		}
		w.Start = v
	}
	if end != "" {
		v, err := strconv.Atoi(end)
		if err != nil {
			return w, errors.InvalidInput(fmt.Sprintf("end must be a year, got %q", end))
		}
		w.End = v
	}
	if err := w.Validate(); err != nil {
		return w, errors.WithCode(errors.CodeInvalidInput, err)
	}
	return w, nil
}
