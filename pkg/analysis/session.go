package analysis

import (
	"sync"
	"time"

	"github.com/visagekit/visage/pkg/detect"
	"github.com/visagekit/visage/pkg/frame"
	"github.com/visagekit/visage/pkg/storage"
)

// SessionState is the capture session lifecycle.
type SessionState int

const (
	// SessionIdle means no capture is in progress.
	SessionIdle SessionState = iota
	// SessionArmed means the countdown is running and the best frame is
	// being tracked.
	SessionArmed
	// SessionCaptured means the countdown completed and a result was
	// produced.
	SessionCaptured
	// SessionAborted means the user quit. Terminal; a countdown that
	// expires without a face returns to SessionIdle with Failed set.
	SessionAborted
)

// String returns the display label.
func (s SessionState) String() string {
	switch s {
	case SessionArmed:
		return "armed"
	case SessionCaptured:
		return "captured"
	case SessionAborted:
		return "aborted"
	default:
		return "idle"
	}
}

// Capture is the frame selected when an armed countdown expires.
type Capture struct {
	Frame  frame.Frame
	Region detect.Region
}

// Session is the single-shot capture state machine. The analysis worker
// drives it with observed frames; the render loop reads it for the countdown
// overlay. While armed it keeps the frame with the largest detected face,
// replacing only when a strictly larger face shows up.
type Session struct {
	mu        sync.Mutex
	state     SessionState
	failed    bool
	countdown time.Duration
	deadline  time.Time
	now       func() time.Time

	best    frame.Frame
	region  detect.Region
	hasBest bool

	result    storage.SessionResult
	hasResult bool
}

// NewSession returns an idle session with the given countdown.
func NewSession(countdown time.Duration) *Session {
	return &Session{countdown: countdown, now: time.Now}
}

// Trigger arms the countdown. It is a no-op while a countdown is already
// running; a finished session can be re-armed.
func (s *Session) Trigger() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SessionArmed || s.state == SessionAborted {
		return false
	}
	s.state = SessionArmed
	s.failed = false
	s.deadline = s.now().Add(s.countdown)
	s.best = frame.Frame{}
	s.region = detect.Region{}
	s.hasBest = false
	return true
}

// State reports the current state and, while armed, the time remaining.
func (s *Session) State() (SessionState, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionArmed {
		return s.state, 0
	}
	remaining := s.deadline.Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	return s.state, remaining
}

// Note records one observed frame. While armed with the countdown still
// running, a detected face becomes the tracked best when its area beats the
// current one. When the countdown has expired, Note returns the best capture
// and true exactly once; with no face ever seen the session aborts instead.
func (s *Session) Note(f frame.Frame, r detect.Region, found bool) (Capture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionArmed {
		return Capture{}, false
	}

	if s.now().Before(s.deadline) {
		if found && (!s.hasBest || r.Area() > s.region.Area()) {
			s.best = f.Clone()
			s.region = r
			s.hasBest = true
		}
		return Capture{}, false
	}

	if !s.hasBest {
		// Countdown ran out without a single detection.
		s.state = SessionIdle
		s.failed = true
		return Capture{}, false
	}

	s.state = SessionCaptured
	return Capture{Frame: s.best, Region: s.region}, true
}

// SetResult stores the analysis of the captured frame.
func (s *Session) SetResult(r storage.SessionResult) {
	s.mu.Lock()
	s.result = r
	s.hasResult = true
	s.mu.Unlock()
}

// Fail marks the captured frame as unusable. The session returns to idle and
// can be re-armed.
func (s *Session) Fail() {
	s.mu.Lock()
	s.state = SessionIdle
	s.failed = true
	s.mu.Unlock()
}

// Failed reports whether the most recent countdown ended without a usable
// capture. Cleared by the next Trigger.
func (s *Session) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

// Abort marks the session terminally aborted on user quit. A completed
// capture keeps its state so the result stays readable.
func (s *Session) Abort() {
	s.mu.Lock()
	if s.state == SessionIdle || s.state == SessionArmed {
		s.state = SessionAborted
	}
	s.mu.Unlock()
}

// Result returns the most recent captured session result.
func (s *Session) Result() (storage.SessionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.hasResult
}
