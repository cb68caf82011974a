package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"coke_oven/internal/cycle"
	"coke_oven/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errFromInvalid = "invalid 'from' time; use YYYY-MM-DD, 'YYYY-MM-DD HH:MM' or 'YYYY-MM-DD HH:MM:SS'"
	errToInvalid   = "invalid 'to' time; use YYYY-MM-DD, 'YYYY-MM-DD HH:MM' or 'YYYY-MM-DD HH:MM:SS'"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.Contains(strings.TrimSpace(s), " ")
}

// parseTimeRange reads optional 'from' and 'to'. A date-only 'to' covers
// the whole day. It writes a 400 and returns false on bad input.
func parseTimeRange(c *gin.Context) (from, to time.Time, ok bool) {
	var err error
	if qs := c.Query("from"); qs != "" {
		from, err = cycle.ParseTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errFromInvalid})
			return time.Time{}, time.Time{}, false
		}
	}
	if qs := c.Query("to"); qs != "" {
		to, err = cycle.ParseTime(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errToInvalid})
			return time.Time{}, time.Time{}, false
		}
		if isDateOnly(qs) {
			to = to.Add(24*time.Hour - time.Second)
		}
	}
	return from, to, true
}

// parseIntQuery reads an optional integer parameter; absent means 0.
func parseIntQuery(c *gin.Context, name string) (int, bool) {
	qs := strings.TrimSpace(c.Query(name))
	if qs == "" {
		return 0, true
	}
	v, err := strconv.Atoi(qs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid '" + name + "'; must be an integer"})
		return 0, false
	}
	return v, true
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List coking cycles
// @Description  Newest push first. Range filters apply to the push time.
// @Tags         cycles
// @Produce      json
// @Param        oven     query  int     false  "Oven id"  example(1)
// @Param        chamber  query  string  false  "Chamber label"  example(12#)
// @Param        from     query  string  false  "Earliest push time"  example(2025-06-01)
// @Param        to       query  string  false  "Latest push time; date-only covers the whole day"  example(2025-06-30)
// @Param        limit    query  int     false  "Page size (default 100, max 1000)"
// @Success      200  {object}  map[string]interface{}  "count, cycles"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/cycles [get]
// @Security     BearerAuth
func (h *Handler) listCycles(c *gin.Context) {
	oven, ok := parseIntQuery(c, "oven")
	if !ok {
		return
	}
	limit, ok := parseIntQuery(c, "limit")
	if !ok {
		return
	}
	from, to, ok := parseTimeRange(c)
	if !ok {
		return
	}
	cycles, err := h.services.Cycles(c.Request.Context(), service.CycleFilter{
		Oven:    oven,
		Chamber: c.Query("chamber"),
		From:    from,
		To:      to,
		Limit:   limit,
	})
	if err != nil {
		h.respondError(c, "cycles_list_failed", err, "oven", oven)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(cycles),
		"cycles": cycles,
	})
}

// @Summary      List temperature samples
// @Tags         history
// @Produce      json
// @Param        oven  query  int     true   "Oven id"  example(1)
// @Param        from  query  string  false  "Start of range"  example(2025-06-18)
// @Param        to    query  string  false  "End of range; date-only covers the whole day"  example(2025-06-18)
// @Success      200  {object}  map[string]interface{}  "count, samples"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/temperatures [get]
// @Security     BearerAuth
func (h *Handler) listTemperatures(c *gin.Context) {
	oven, ok := parseIntQuery(c, "oven")
	if !ok {
		return
	}
	from, to, ok := parseTimeRange(c)
	if !ok {
		return
	}
	samples, err := h.services.Temperatures(c.Request.Context(), service.TemperatureFilter{
		Oven: oven,
		From: from,
		To:   to,
	})
	if err != nil {
		h.respondError(c, "temperatures_list_failed", err, "oven", oven)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(samples),
		"samples": samples,
	})
}

// @Summary      List LOAD/PUSH events
// @Tags         history
// @Produce      json
// @Param        oven     query  int     false  "Oven id"
// @Param        chamber  query  string  false  "Chamber label"
// @Param        type     query  string  false  "Event type"  Enums(LOAD,PUSH)
// @Param        from     query  string  false  "Start of range"
// @Param        to       query  string  false  "End of range; date-only covers the whole day"
// @Success      200  {object}  map[string]interface{}  "count, operations"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/operations [get]
// @Security     BearerAuth
func (h *Handler) listOperations(c *gin.Context) {
	oven, ok := parseIntQuery(c, "oven")
	if !ok {
		return
	}
	from, to, ok := parseTimeRange(c)
	if !ok {
		return
	}
	ops, err := h.services.Operations(c.Request.Context(), service.OperationFilter{
		Oven:    oven,
		Chamber: c.Query("chamber"),
		Type:    c.Query("type"),
		From:    from,
		To:      to,
	})
	if err != nil {
		h.respondError(c, "operations_list_failed", err, "oven", oven)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":      len(ops),
		"operations": ops,
	})
}

// @Summary      Oven overview
// @Description  Latest sample and latest cycle per configured oven.
// @Tags         cycles
// @Produce      json
// @Success      200  {array}   models.OvenStatus
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/overview [get]
// @Security     BearerAuth
func (h *Handler) overview(c *gin.Context) {
	st, err := h.services.Overview(c.Request.Context())
	if err != nil {
		h.respondError(c, "overview_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
