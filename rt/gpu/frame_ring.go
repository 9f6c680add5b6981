package gpu

import "sync"

const (
	DefaultFramesInFlight = 3
	MaxFramesInFlight     = 3
)

type frameSlot struct {
	busy     bool
	uploaded bool
	tick     uint64
}

// FrameRing hands out frame slots in order and refuses to reuse one until the
// GPU has reported the submission that used it as done. Releases may arrive
// from the queue's work-done callback, so access is locked.
type FrameRing struct {
	mu    sync.Mutex
	slots []frameSlot
	next  int
}

func NewFrameRing(n int) *FrameRing {
	if n < 1 {
		n = 1
	}
	if n > MaxFramesInFlight {
		n = MaxFramesInFlight
	}
	return &FrameRing{slots: make([]frameSlot, n)}
}

func (r *FrameRing) Len() int {
	return len(r.slots)
}

// Acquire reserves the next slot. ok is false when that slot is still in
// flight; the caller should skip the frame instead of waiting.
func (r *FrameRing) Acquire() (slot int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &r.slots[r.next]
	if s.busy {
		return -1, false
	}
	s.busy = true
	slot = r.next
	r.next = (r.next + 1) % len(r.slots)
	return slot, true
}

// Release marks a slot free. Releasing a free or unknown slot is a no-op.
func (r *FrameRing) Release(slot int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slot < 0 || slot >= len(r.slots) {
		return
	}
	r.slots[slot].busy = false
}

func (r *FrameRing) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.slots {
		if s.busy {
			n++
		}
	}
	return n
}

// IsCurrent reports whether the slot's buffers already hold the given
// simulation tick.
func (r *FrameRing) IsCurrent(slot int, tick uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slot < 0 || slot >= len(r.slots) {
		return false
	}
	s := r.slots[slot]
	return s.uploaded && s.tick == tick
}

func (r *FrameRing) MarkUploaded(slot int, tick uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slot < 0 || slot >= len(r.slots) {
		return
	}
	r.slots[slot].uploaded = true
	r.slots[slot].tick = tick
}

// Invalidate forces every slot to be rewritten on its next use.
func (r *FrameRing) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.slots {
		r.slots[i].uploaded = false
	}
}
