// Package nettransport implements the TCP sink writer: a bounded send queue
// with adaptive TCP_NODELAY hysteresis and a global token-bucket rate limit.
package nettransport

import (
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"wparse/internal/metrics"
)

// NetWriter owns a TCP stream and its send queue, adaptively toggling
// TCP_NODELAY based on queue occupancy.
type NetWriter struct {
	name    string
	conn    *net.TCPConn
	queue   chan []byte
	cap     int
	state   nodelayState
	limiter *TokenBucket

	mu sync.Mutex
}

// NewNetWriter wraps conn with a send queue of the given capacity and an
// optional global rate limiter (nil disables limiting).
func NewNetWriter(name string, conn *net.TCPConn, capacity int, limiter *TokenBucket) *NetWriter {
	return &NetWriter{
		name:    name,
		conn:    conn,
		queue:   make(chan []byte, capacity),
		cap:     capacity,
		limiter: limiter,
	}
}

// Enqueue offers b to the send queue and re-evaluates the NODELAY hysteresis
// based on current occupancy.
func (w *NetWriter) Enqueue(b []byte) bool {
	select {
	case w.queue <- b:
	default:
		return false
	}
	w.adjustNodelay()
	return true
}

func (w *NetWriter) adjustNodelay() {
	avg := len(w.queue)
	desired, changed := w.state.maybeToggle(w.cap, avg, time.Now())
	if !changed {
		return
	}
	if err := w.conn.SetNoDelay(desired); err != nil {
		logrus.WithFields(logrus.Fields{"component": "nettransport.writer", "conn": w.name}).
			WithError(err).Warn("failed to set TCP_NODELAY")
		return
	}
	direction := "off_to_on"
	if !desired {
		direction = "on_to_off"
	}
	metrics.NodelayToggleTotal.WithLabelValues(w.name, direction).Inc()
}

// Drain flushes the queue to the connection in FIFO order, honoring the
// rate limiter between writes. It returns on the first write error or when
// the queue is empty.
func (w *NetWriter) Drain() error {
	for {
		select {
		case b := <-w.queue:
			if w.limiter != nil {
				w.limiter.Take(1)
			}
			if _, err := w.conn.Write(b); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (w *NetWriter) Close() error {
	return w.conn.Close()
}
