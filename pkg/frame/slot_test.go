package frame

import (
	"sync"
	"testing"
	"time"
)

func TestSlot_EmptyBeforeFirstPublish(t *testing.T) {
	s := NewSlot()
	if _, ok := s.TakeLatest(); ok {
		t.Fatal("expected empty slot before first publish")
	}
}

func TestSlot_MostRecentWins(t *testing.T) {
	s := NewSlot()
	for i := 1; i <= 5; i++ {
		s.Publish(Frame{Data: []byte{byte(i)}, Seq: uint64(i)})
	}

	got, ok := s.TakeLatest()
	if !ok {
		t.Fatal("expected a frame")
	}
	if got.Seq != 5 {
		t.Errorf("got seq %d, want 5 (most recent publish wins)", got.Seq)
	}
}

func TestSlot_TakeReturnsCopy(t *testing.T) {
	s := NewSlot()
	s.Publish(Frame{Data: []byte{1, 2, 3}, Width: 3, Height: 1})

	a, _ := s.TakeLatest()
	a.Data[0] = 99

	b, _ := s.TakeLatest()
	if b.Data[0] != 1 {
		t.Errorf("reader mutation leaked into the slot: got %d, want 1", b.Data[0])
	}
}

func TestSlot_TakeIsRepeatable(t *testing.T) {
	// The slot hands out the latest frame, it does not consume it.
	s := NewSlot()
	s.Publish(Frame{Seq: 7})

	for i := 0; i < 3; i++ {
		got, ok := s.TakeLatest()
		if !ok || got.Seq != 7 {
			t.Fatalf("take %d: got (%v, %v), want seq 7", i, got.Seq, ok)
		}
	}
}

func TestSlot_ConcurrentPublishTake(t *testing.T) {
	s := NewSlot()
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var seq uint64
		for {
			select {
			case <-done:
				return
			default:
				seq++
				s.Publish(Frame{Data: []byte{0, 1}, Seq: seq, Captured: time.Now()})
			}
		}
	}()

	var last uint64
	for i := 0; i < 1000; i++ {
		f, ok := s.TakeLatest()
		if !ok {
			continue
		}
		if f.Seq < last {
			t.Fatalf("sequence went backwards: %d after %d", f.Seq, last)
		}
		last = f.Seq
	}
	close(done)
	wg.Wait()
}
