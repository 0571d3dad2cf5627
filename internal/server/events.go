package server

import (
	"io"

	"github.com/gin-gonic/gin"

	"todo/internal/services"
)

// eventBuffer is how many overviews may queue for one slow client.
const eventBuffer = 8

// handleEvents streams a "state" event with the current overview, then one
// per committed change, until the client goes away.
func (s *Server) handleEvents(c *gin.Context) {
	ctx := c.Request.Context()
	updates := make(chan *services.Overview, eventBuffer)
	unsubscribe := s.api.Subscribe(func(o *services.Overview) {
		offer(updates, o)
	})
	defer unsubscribe()

	initial, err := s.api.Overview(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("state", initial)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case o := <-updates:
			c.SSEvent("state", o)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// offer queues o, dropping the oldest queued overview when the buffer is full
// so the newest state always gets through.
func offer(ch chan *services.Overview, o *services.Overview) {
	for {
		select {
		case ch <- o:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
