// Package liveness implements blink-based anti-spoofing.
//
// Each verification attempt owns one Session. The caller feeds it an
// eye-openness signal per frame (an eye-aspect-ratio-style value, higher
// means more open). A blink is a run of at least MinConsecutive frames
// below ClosureThreshold followed by a recovery. A confirmed blink stays
// valid for ValidityFrames observations, after which the proof goes stale.
//
// Sessions are never shared: one employee's blink must not satisfy another
// employee's attempt.
package liveness

// Config holds the blink detection tunables.
type Config struct {
	// ClosureThreshold is the signal value below which the eyes count as
	// closed for the frame.
	ClosureThreshold float64
	// MinConsecutive is the minimum run of closed frames that qualifies as
	// a blink once the eyes reopen.
	MinConsecutive int
	// ValidityFrames bounds how long a confirmed blink stays valid,
	// measured in frames observed since the blink. Zero means no bound.
	ValidityFrames int
}

// DefaultConfig mirrors the tuning used for a webcam capture at ~15fps.
func DefaultConfig() Config {
	return Config{
		ClosureThreshold: 0.25,
		MinConsecutive:   3,
		ValidityFrames:   30,
	}
}

func (c Config) sanitized() Config {
	if c.ClosureThreshold <= 0 {
		c.ClosureThreshold = DefaultConfig().ClosureThreshold
	}
	if c.MinConsecutive < 1 {
		c.MinConsecutive = DefaultConfig().MinConsecutive
	}
	if c.ValidityFrames < 0 {
		c.ValidityFrames = 0
	}
	return c
}

// Session tracks blink state for a single verification attempt.
type Session struct {
	cfg            Config
	framesObserved int
	closedRun      int
	lastBlinkFrame int
	confirmed      bool
}

// NewSession creates a fresh session. Invalid config fields fall back to
// their defaults.
func NewSession(cfg Config) *Session {
	return &Session{cfg: cfg.sanitized()}
}

// Observe consumes one per-frame eye-openness signal and reports whether a
// blink event fired on this frame.
func (s *Session) Observe(signal float64) bool {
	s.framesObserved++

	if signal < s.cfg.ClosureThreshold {
		s.closedRun++
		return false
	}

	// Eyes open: a sufficiently long closure run ending now is a blink.
	fired := false
	if s.closedRun >= s.cfg.MinConsecutive {
		s.confirmed = true
		s.lastBlinkFrame = s.framesObserved
		fired = true
	}
	s.closedRun = 0

	return fired
}

// Confirmed reports whether a blink has been confirmed and is still within
// the validity window.
func (s *Session) Confirmed() bool {
	if !s.confirmed {
		return false
	}
	if s.cfg.ValidityFrames > 0 && s.framesObserved-s.lastBlinkFrame > s.cfg.ValidityFrames {
		return false
	}
	return true
}

// FramesObserved returns the number of frames fed into the session.
func (s *Session) FramesObserved() int {
	return s.framesObserved
}

// Reset clears all counters. Must be called (or the session discarded)
// before state could leak into another verification attempt.
func (s *Session) Reset() {
	s.framesObserved = 0
	s.closedRun = 0
	s.lastBlinkFrame = 0
	s.confirmed = false
}
