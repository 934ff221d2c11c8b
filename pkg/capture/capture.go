// Package capture wraps the camera device behind a pull-based frame source.
package capture

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/visagekit/visage/pkg/frame"
)

var (
	// ErrDeviceUnavailable means the camera could not be opened. Fatal at startup.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrCapture means a single read failed (device disconnected, end of stream).
	// The source does not retry; callers decide whether a failed read ends the loop.
	ErrCapture = errors.New("frame capture failed")
)

// Reader is the narrow frame-reading interface consumed by the render loop.
type Reader interface {
	Read() (frame.Frame, error)
}

// Source owns a camera device and reads frames from it.
// Not safe for concurrent Read; the render loop is the only reader.
type Source struct {
	device int

	mu     sync.Mutex
	vc     *gocv.VideoCapture
	buf    gocv.Mat
	seq    uint64
	closed bool
}

// Open opens the camera at the given device index and requests 1280x720.
// The resolution request is advisory; the driver may pick something else.
func Open(device int) (*Source, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrDeviceUnavailable, device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %d", ErrDeviceUnavailable, device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, 1280)
	vc.Set(gocv.VideoCaptureFrameHeight, 720)

	return &Source{
		device: device,
		vc:     vc,
		buf:    gocv.NewMat(),
	}, nil
}

// Read pulls the next frame from the device and returns it as an owned copy.
func (s *Source) Read() (frame.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return frame.Frame{}, fmt.Errorf("%w: source closed", ErrCapture)
	}
	if ok := s.vc.Read(&s.buf); !ok || s.buf.Empty() {
		return frame.Frame{}, fmt.Errorf("%w: device %d read", ErrCapture, s.device)
	}

	data := s.buf.ToBytes()
	out := make([]byte, len(data))
	copy(out, data)

	s.seq++
	return frame.Frame{
		Data:     out,
		Width:    s.buf.Cols(),
		Height:   s.buf.Rows(),
		Seq:      s.seq,
		Captured: time.Now(),
	}, nil
}

// Close releases the device. Idempotent and safe to call multiple times.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.buf.Close()
	return s.vc.Close()
}

// ToMat reconstructs a gocv Mat from a frame. The caller owns the Mat and must
// close it.
func ToMat(f frame.Frame) (gocv.Mat, error) {
	if f.Empty() {
		return gocv.Mat{}, errors.New("empty frame")
	}
	return gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Data)
}
