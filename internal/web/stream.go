package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cryptoguard/walletwatch/internal/orchestrator"
	"github.com/cryptoguard/walletwatch/internal/render"
)

// handleStream pushes a "state" event after every dashboard change and a "clock"
// event every second.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	b, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	updates, unsubscribe := b.dashboard.Subscribe()
	defer unsubscribe()

	ticks := make(chan string, 1)
	clock := orchestrator.NewClock(func(now string) {
		select {
		case ticks <- now:
		default:
		}
	})
	clock.Start(r.Context())
	defer clock.Stop()

	// send a comment heartbeat so proxies keep the connection
	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	send := func(event string, v any) bool {
		payload, err := json.Marshal(v)
		if err != nil {
			s.logger.Error("encode stream event", zap.String("event", event), zap.Error(err))
			return false
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	sendState := func() bool {
		return send("state", render.Dashboard(b.dashboard.Snapshot(), s.loc))
	}

	if !sendState() || !send("clock", clock.Current()) {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-updates:
			if !sendState() {
				return
			}
		case now := <-ticks:
			if !send("clock", now) {
				return
			}
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
