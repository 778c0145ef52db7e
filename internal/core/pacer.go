package core

import "time"

// Pacer reports when a fixed wall-clock interval has passed. Headless runs use
// it to throttle progress output.
type Pacer struct {
	interval time.Duration
	next     time.Time
	now      func() time.Time
}

// NewPacer returns a pacer firing perSecond times a second. The first call to
// Due fires immediately.
func NewPacer(perSecond float64) *Pacer {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Pacer{interval: time.Duration(float64(time.Second) / perSecond), now: time.Now}
}

// Due reports whether the interval has elapsed since it last returned true.
func (p *Pacer) Due() bool {
	now := p.now()
	if now.Before(p.next) {
		return false
	}
	p.next = now.Add(p.interval)
	return true
}
