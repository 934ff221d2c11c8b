package analysis

import (
	"testing"
	"time"

	"github.com/visagekit/visage/pkg/detect"
	"github.com/visagekit/visage/pkg/frame"
)

func testFrame(seq uint64) frame.Frame {
	return frame.Frame{Data: []byte{1, 2, 3}, Width: 1, Height: 1, Seq: seq}
}

func region(w, h int) detect.Region {
	return detect.Region{W: w, H: h, Confidence: 0.9}
}

func newTestSession(countdown time.Duration) (*Session, *time.Time) {
	clock := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s := NewSession(countdown)
	s.now = func() time.Time { return clock }
	return s, &clock
}

func TestSessionTrigger(t *testing.T) {
	s, _ := newTestSession(3 * time.Second)

	state, _ := s.State()
	if state != SessionIdle {
		t.Fatalf("new session state = %v, want idle", state)
	}
	if !s.Trigger() {
		t.Fatal("first trigger should arm")
	}
	if s.Trigger() {
		t.Error("trigger while armed should be a no-op")
	}

	state, remaining := s.State()
	if state != SessionArmed {
		t.Errorf("state = %v, want armed", state)
	}
	if remaining != 3*time.Second {
		t.Errorf("remaining = %v, want 3s", remaining)
	}
}

func TestSessionKeepsLargestFace(t *testing.T) {
	s, clock := newTestSession(3 * time.Second)
	s.Trigger()

	// A larger face replaces the tracked best; a smaller one does not.
	s.Note(testFrame(1), region(100, 100), true)
	*clock = clock.Add(time.Second)
	s.Note(testFrame(2), region(200, 200), true)
	*clock = clock.Add(time.Second)
	s.Note(testFrame(3), region(50, 50), true)

	*clock = clock.Add(2 * time.Second)
	capture, ok := s.Note(testFrame(4), detect.Region{}, false)
	if !ok {
		t.Fatal("expired countdown with a tracked face should yield a capture")
	}
	if capture.Frame.Seq != 2 {
		t.Errorf("captured frame seq = %d, want 2 (largest face)", capture.Frame.Seq)
	}
	if capture.Region.W != 200 {
		t.Errorf("captured region width = %d, want 200", capture.Region.W)
	}

	state, _ := s.State()
	if state != SessionCaptured {
		t.Errorf("state = %v, want captured", state)
	}
}

func TestSessionFailsToIdleWithoutAnyFace(t *testing.T) {
	s, clock := newTestSession(3 * time.Second)
	s.Trigger()

	s.Note(testFrame(1), detect.Region{}, false)
	*clock = clock.Add(4 * time.Second)
	if _, ok := s.Note(testFrame(2), detect.Region{}, false); ok {
		t.Fatal("no face was ever seen, must not capture")
	}

	state, _ := s.State()
	if state != SessionIdle {
		t.Errorf("state = %v, want idle", state)
	}
	if !s.Failed() {
		t.Error("faceless countdown must report failure")
	}
	if _, ok := s.Result(); ok {
		t.Error("failed session must not report a result")
	}

	// The failure is a report, not a lockout: the session re-arms and the
	// flag clears.
	if !s.Trigger() {
		t.Fatal("failed session should re-arm")
	}
	if s.Failed() {
		t.Error("re-arming must clear the failure flag")
	}
}

func TestSessionAbortOnQuit(t *testing.T) {
	s, clock := newTestSession(3 * time.Second)
	s.Trigger()
	s.Abort()

	state, _ := s.State()
	if state != SessionAborted {
		t.Errorf("state = %v, want aborted", state)
	}
	if s.Trigger() {
		t.Error("aborted session must not re-arm")
	}
	*clock = clock.Add(4 * time.Second)
	if _, ok := s.Note(testFrame(1), region(80, 80), true); ok {
		t.Error("aborted session must not capture")
	}
}

func TestSessionAbortKeepsCapturedState(t *testing.T) {
	s, clock := newTestSession(time.Second)
	s.Trigger()
	s.Note(testFrame(1), region(80, 80), true)
	*clock = clock.Add(2 * time.Second)
	if _, ok := s.Note(testFrame(2), detect.Region{}, false); !ok {
		t.Fatal("expected capture")
	}

	s.Abort()
	state, _ := s.State()
	if state != SessionCaptured {
		t.Errorf("state = %v, want captured", state)
	}
}

func TestSessionRearmAfterCapture(t *testing.T) {
	s, clock := newTestSession(time.Second)
	s.Trigger()
	s.Note(testFrame(1), region(80, 80), true)
	*clock = clock.Add(2 * time.Second)
	if _, ok := s.Note(testFrame(2), detect.Region{}, false); !ok {
		t.Fatal("expected capture")
	}

	if !s.Trigger() {
		t.Fatal("captured session should re-arm")
	}
	// The previous best must not leak into the new countdown.
	*clock = clock.Add(2 * time.Second)
	if _, ok := s.Note(testFrame(3), detect.Region{}, false); ok {
		t.Error("re-armed countdown saw no face, must not reuse old best frame")
	}
}

func TestSessionNoteIgnoredWhileIdle(t *testing.T) {
	s, _ := newTestSession(time.Second)
	if _, ok := s.Note(testFrame(1), region(10, 10), true); ok {
		t.Error("idle session must ignore frames")
	}
}
