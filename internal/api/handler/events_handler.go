package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"shiftdesk/pkg/redis"
	"shiftdesk/pkg/response"
)

// EventsHandler streams change events to live views over server-sent events.
type EventsHandler struct {
	rdb *redis.Client
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(rdb *redis.Client) *EventsHandler {
	return &EventsHandler{rdb: rdb}
}

// Stream relays the change event feed for one table until the client
// disconnects. Without Redis the subscription is empty and the stream ends
// immediately; clients reconnect and re-fetch on their own.
// GET /api/v1/events/:table
func (h *EventsHandler) Stream(c *gin.Context) {
	table := c.Param("table")
	if table != "shifts" && table != "swap_requests" {
		response.BadRequest(c, 15001, "unknown event table")
		return
	}

	events := h.rdb.SubscribeChanges(c.Request.Context(), table)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		ev, ok := <-events
		if !ok {
			return false
		}
		c.SSEvent("change", ev)
		return true
	})
}
