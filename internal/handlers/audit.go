package handlers

import (
	"net/http"
	"time"

	"reward-admin/internal/audit"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs supports actor_id, action, resource, from and to (RFC 3339
// or YYYY-MM-DD) filters.
func (h *Handler) ListAuditLogs(c *gin.Context) {
	f := audit.Filter{
		ActorID:  queryUint(c, "actor_id"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	}

	var ok bool
	if f.From, ok = queryTime(c, "from"); !ok {
		return
	}
	if f.To, ok = queryTime(c, "to"); !ok {
		return
	}

	logs, total, err := h.Audit.List(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs, "total": total})
}

func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}
	badRequest(c, "invalid "+name)
	return nil, false
}
