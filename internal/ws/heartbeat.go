package ws

import (
	"log"
	"time"

	"github.com/gobwas/ws"
)

// HeartbeatConfig controls the server-side liveness probe.
type HeartbeatConfig struct {
	Interval time.Duration // how often to ping all connections
	Timeout  time.Duration // how long to wait before declaring a connection dead
}

// DefaultHeartbeatConfig returns the standard heartbeat settings.
func DefaultHeartbeatConfig() HeartbeatConfig {
	return HeartbeatConfig{
		Interval: 30 * time.Second,
		Timeout:  10 * time.Second,
	}
}

// StartHeartbeat launches a background goroutine that periodically pings
// all connections and evicts those that have not shown any activity
// within Interval+Timeout. Eviction goes through RemoveConnection so the
// lifecycle controller unwinds presence state for dead clients.
func StartHeartbeat(s *Server, config HeartbeatConfig) {
	go func() {
		ticker := time.NewTicker(config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				s.pingConnections(config)
			}
		}
	}()
}

// pingConnections sends a WebSocket ping control frame to every live
// connection and removes connections whose last activity is older than
// the allowed window. A failed ping write is treated as a dead
// connection immediately.
func (s *Server) pingConnections(config HeartbeatConfig) {
	deadline := time.Now().Add(-(config.Interval + config.Timeout))

	for _, c := range s.conns.All() {
		if c.LastActive().Before(deadline) {
			log.Printf("ws: heartbeat timeout, evicting conn %s user=%s", c.ID, c.Identity.Username)
			s.RemoveConnection(c)
			continue
		}

		c.writeMu.Lock()
		err := ws.WriteFrame(c.Conn, ws.NewPingFrame(nil))
		c.writeMu.Unlock()
		if err != nil {
			log.Printf("ws: heartbeat ping failed for conn %s: %v", c.ID, err)
			s.RemoveConnection(c)
			continue
		}

		if s.onHeartbeat != nil {
			s.onHeartbeat(c.ID)
		}
	}
}
