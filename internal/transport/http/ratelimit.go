package http

import "time"

// frameLimiter caps inbound frames per connection per minute. It is
// only touched from the connection's read loop, so it carries no lock.
type frameLimiter struct {
	limit       int
	counter     int
	windowStart time.Time
}

func newFrameLimiter(limit int) *frameLimiter {
	return &frameLimiter{limit: limit, windowStart: time.Now()}
}

func (l *frameLimiter) allow() bool {
	if l == nil || l.limit <= 0 {
		return true
	}

	now := time.Now()
	if now.Sub(l.windowStart) >= time.Minute {
		l.windowStart = now
		l.counter = 0
	}

	l.counter++
	return l.counter <= l.limit
}
