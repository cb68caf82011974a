package handlers

import (
	"net/http"

	"coke_oven/internal/service"

	"github.com/gin-gonic/gin"
)

const statusRecorded = "recorded"

// TemperatureRequest is one two-sided reading of an oven.
type TemperatureRequest struct {
	Oven int `json:"oven" example:"1"`
	// "YYYY-MM-DD HH:MM:SS", "YYYY-MM-DD HH:MM" or "YYYY-MM-DD"
	Time        string   `json:"time" binding:"required" example:"2025-06-18 08:00"`
	MachineSide *float64 `json:"machine_side" binding:"required" example:"1350.5"`
	CokeSide    *float64 `json:"coke_side" binding:"required" example:"1362"`
}

// OperationRequest is a LOAD or PUSH of one chamber.
type OperationRequest struct {
	Oven    int    `json:"oven" example:"1"`
	Chamber string `json:"chamber" binding:"required" example:"12#"`
	// LOAD or PUSH
	Type string `json:"type" binding:"required" example:"PUSH"`
	Time string `json:"time" binding:"required" example:"2025-06-19 12:45"`
}

// @Summary      Record temperature
// @Tags         ingest
// @Accept       json
// @Produce      json
// @Param        body  body      TemperatureRequest  true  "Reading"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/temperatures [post]
// @Security     BearerAuth
func (h *Handler) recordTemperature(c *gin.Context) {
	var req TemperatureRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	err := h.services.RecordTemperature(c.Request.Context(), service.TemperatureInput{
		Oven:        req.Oven,
		Time:        req.Time,
		MachineSide: *req.MachineSide,
		CokeSide:    *req.CokeSide,
	})
	if err != nil {
		h.respondError(c, "record_temperature_failed", err, "oven", req.Oven, "time", req.Time)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": statusRecorded})
}

// @Summary      Record LOAD/PUSH
// @Description  A PUSH derives the chamber's coking cycle before the response is sent.
// @Tags         ingest
// @Accept       json
// @Produce      json
// @Param        body  body      OperationRequest  true  "Operation"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/operations [post]
// @Security     BearerAuth
func (h *Handler) recordOperation(c *gin.Context) {
	var req OperationRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	err := h.services.RecordOperation(c.Request.Context(), service.OperationInput{
		Oven:    req.Oven,
		Chamber: req.Chamber,
		Type:    req.Type,
		Time:    req.Time,
	})
	if err != nil {
		h.respondError(c, "record_operation_failed", err,
			"oven", req.Oven, "chamber", req.Chamber, "type", req.Type, "time", req.Time)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": statusRecorded})
}
