package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RecalculateAll runs synchronously; a concurrent run yields 409.
func (h *Handler) RecalculateAll(c *gin.Context) {
	res, err := h.Recalc.RecalculateAll(c.Request.Context(), "manual", actor(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RecalculateOne(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	profile, err := h.Recalc.RecalculateOne(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) ListRecalculations(c *gin.Context) {
	runs, err := h.Recalc.ListRuns(c.Request.Context(), queryInt(c, "limit"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": runs, "running": h.Recalc.Running()})
}
