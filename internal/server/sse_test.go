package server

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"todo/internal/services"
)

// readEvents decodes the data lines of "state" events from an SSE stream.
func readEvents(r io.Reader) <-chan *services.Overview {
	out := make(chan *services.Overview, 16)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		event := ""
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:") && event == "state":
				var o services.Overview
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &o); err == nil {
					out <- &o
				}
			case line == "":
				event = ""
			}
		}
	}()
	return out
}

func nextEvent(t *testing.T, events <-chan *services.Overview) *services.Overview {
	t.Helper()
	select {
	case o, ok := <-events:
		require.True(t, ok, "event stream closed")
		return o
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}
