package phone

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiter 按用户限制验证码申请频率
type limiter struct {
	limit   rate.Limit
	burst   int
	window  time.Duration
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// newLimiter interval <= 0 时不限流，返回 nil
func newLimiter(interval time.Duration, burst int) *limiter {
	if interval <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	window := interval * time.Duration(burst)
	if window < 5*time.Minute {
		window = 5 * time.Minute
	}
	return &limiter{
		limit:   rate.Every(interval),
		burst:   burst,
		window:  window,
		clients: make(map[string]*clientLimiter),
	}
}

// reserve 占用一次申请额度；ok 为 false 时未占用。
// 返回的 release 用于在投递失败时归还额度，按预留时刻撤销。
func (l *limiter) reserve(key string, now time.Time) (release func(), ok bool) {
	if l == nil {
		return func() {}, true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.clients[key]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
		l.clients[key] = entry
		l.cleanupLocked(now)
	}
	entry.lastSeen = now

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return nil, false
	}
	if r.DelayFrom(now) > 0 {
		r.CancelAt(now)
		return nil, false
	}
	return func() { r.CancelAt(now) }, true
}

func (l *limiter) cleanupLocked(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.window {
			delete(l.clients, key)
		}
	}
}
