package render

import (
	"errors"
	"fmt"
	"testing"

	"github.com/visagekit/visage/internal/config"
	"github.com/visagekit/visage/pkg/capture"
	"github.com/visagekit/visage/pkg/frame"
	"github.com/visagekit/visage/pkg/metrics"
)

type stubReader struct {
	frame frame.Frame
	err   error
}

func (r *stubReader) Read() (frame.Frame, error) {
	if r.err != nil {
		return frame.Frame{}, r.err
	}
	return r.frame, nil
}

func TestIngestFailureEndsLoop(t *testing.T) {
	src := &stubReader{err: fmt.Errorf("%w: device 0 read", capture.ErrCapture)}
	mets := metrics.New()
	l := NewLoop(src, frame.NewSlot(), nil, nil, mets, config.Default())

	_, _, err := l.ingest()
	if err == nil {
		t.Fatal("a failed read must end the loop, not be retried")
	}
	if !errors.Is(err, capture.ErrCapture) {
		t.Errorf("error = %v, want wrapped ErrCapture", err)
	}
	if got := mets.CaptureErrors.Load(); got != 1 {
		t.Errorf("capture errors = %d, want 1", got)
	}
	if _, ok := l.slot.TakeLatest(); ok {
		t.Error("failed read must not publish a frame")
	}
}

func TestIngestPublishesFrame(t *testing.T) {
	src := &stubReader{frame: frame.Frame{Width: 4, Height: 4, Seq: 7, Data: make([]byte, 48)}}
	mets := metrics.New()
	l := NewLoop(src, frame.NewSlot(), nil, nil, mets, config.Default())

	f, _, err := l.ingest()
	if err != nil {
		t.Fatal(err)
	}
	if f.Seq != 7 {
		t.Errorf("frame seq = %d, want 7", f.Seq)
	}
	published, ok := l.slot.TakeLatest()
	if !ok || published.Seq != 7 {
		t.Errorf("slot frame = %+v ok=%v, want seq 7", published, ok)
	}
	if got := mets.FramesCaptured.Load(); got != 1 {
		t.Errorf("frames captured = %d, want 1", got)
	}
}
