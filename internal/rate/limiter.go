package rate

import (
	"context"
	"sync"
	"time"
)

// Config defines pacing parameters for outbound requests to one host.
type Config struct {
	RequestsPerSecond float64
	Burst             int
}

// Limiter implements a token bucket.
type Limiter struct {
	mu     sync.Mutex
	tokens float64
	last   time.Time
	rate   float64
	burst  float64
	now    func() time.Time
}

// New creates a limiter with a full bucket. A non-positive rate disables limiting.
func New(cfg Config) *Limiter {
	burst := float64(cfg.Burst)
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		tokens: burst,
		last:   time.Now(),
		rate:   cfg.RequestsPerSecond,
		burst:  burst,
		now:    time.Now,
	}
}

// reserve takes a token if one is available; otherwise it returns how long
// until the next token is due.
func (l *Limiter) reserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rate <= 0 {
		return 0, true
	}

	now := l.now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	l.last = now
	if l.tokens > l.burst {
		l.tokens = l.burst
	}

	if l.tokens >= 1 {
		l.tokens--
		return 0, true
	}
	missing := 1 - l.tokens
	return time.Duration(missing / l.rate * float64(time.Second)), false
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (l *Limiter) Allow() bool {
	_, ok := l.reserve()
	return ok
}

// Wait blocks until a token becomes available or ctx is canceled.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.Allow() {
		return nil
	}
	for {
		delay, ok := l.reserve()
		if ok {
			return nil
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// Manager holds one limiter per key (host).
type Manager struct {
	mu       sync.Mutex
	limiters map[string]*Limiter
	defaults Config
}

// NewManager creates a Manager handing out limiters built from defaults.
func NewManager(defaults Config) *Manager {
	return &Manager{
		limiters: make(map[string]*Limiter),
		defaults: defaults,
	}
}

// GetLimiter returns the limiter for key, creating it on first use.
func (m *Manager) GetLimiter(key string) *Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	lim, ok := m.limiters[key]
	if !ok {
		lim = New(m.defaults)
		m.limiters[key] = lim
	}
	return lim
}

// Wait blocks until a request for key may proceed.
func (m *Manager) Wait(ctx context.Context, key string) error {
	return m.GetLimiter(key).Wait(ctx)
}
