package hostserver

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// limiterEntry tracks one remote address's token bucket and last-seen
// time, so an idle peer's limiter can be garbage collected.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PacketLimiter rate-limits inbound input packets per remote address,
// adapted from the teacher's HTTP IP rate limiter to the UDP transport:
// the identity key is "host:port" instead of a stripped client IP, since
// a game peer's address doesn't go through a reverse proxy.
type PacketLimiter struct {
	limiters sync.Map // map[string]*limiterEntry
	rps      float64
	burst    int
	stopChan chan struct{}
	stopOnce sync.Once

	rejectedCount uint64
	allowedCount  uint64
}

// NewPacketLimiter returns a limiter allowing rps packets/second per
// address, with the given burst, and starts its background cleanup loop.
func NewPacketLimiter(rps float64, burst int) *PacketLimiter {
	l := &PacketLimiter{rps: rps, burst: burst, stopChan: make(chan struct{})}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a packet from addr may be processed right now.
func (l *PacketLimiter) Allow(addr string) bool {
	entryAny, _ := l.limiters.LoadOrStore(addr, &limiterEntry{
		limiter:  rate.NewLimiter(rate.Limit(l.rps), l.burst),
		lastSeen: time.Now(),
	})
	entry := entryAny.(*limiterEntry)
	entry.lastSeen = time.Now()

	if entry.limiter.Allow() {
		atomic.AddUint64(&l.allowedCount, 1)
		return true
	}
	atomic.AddUint64(&l.rejectedCount, 1)
	return false
}

// Stats returns (allowed, rejected) packet counts since creation.
func (l *PacketLimiter) Stats() (allowed, rejected uint64) {
	return atomic.LoadUint64(&l.allowedCount), atomic.LoadUint64(&l.rejectedCount)
}

// Stop halts the cleanup loop.
func (l *PacketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
}

func (l *PacketLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-10 * time.Minute)
			l.limiters.Range(func(key, value any) bool {
				if value.(*limiterEntry).lastSeen.Before(cutoff) {
					l.limiters.Delete(key)
				}
				return true
			})
		case <-l.stopChan:
			return
		}
	}
}
