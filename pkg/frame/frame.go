// Package frame defines the pixel buffer passed through the pipeline and the
// single-slot handoff used between the capture and analysis tasks.
package frame

import "time"

// Frame is a BGR pixel buffer read from the capture source.
// Ownership transfers fully to whichever component copies it out of the slot;
// the producer never mutates a published frame.
type Frame struct {
	Data     []byte // packed BGR, row-major
	Width    int
	Height   int
	Seq      uint64
	Captured time.Time
}

// Empty reports whether the frame holds no pixels.
func (f Frame) Empty() bool {
	return len(f.Data) == 0
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	out := f
	out.Data = make([]byte, len(f.Data))
	copy(out.Data, f.Data)
	return out
}
