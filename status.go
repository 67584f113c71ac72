package bollywood

import "sync/atomic"

// Status word constants. The literal values are load-bearing: Closed is
// encoded as the single low bit so that any mailbox in any
// suspended/scheduled combination can be tested for closedness with one
// comparison, and the zero value of the packed word is the Open, idle,
// not-suspended state — matching the zero-initialized storage of a struct
// containing a Status.
const (
	StatusOpen        uint32 = 0
	StatusClosed      uint32 = 1
	StatusScheduled   uint32 = 2
	StatusSuspendUnit uint32 = 4
)

// Status is the single packed atomic word: bit 0 is the Closed flag, bit 1
// is the Scheduled flag, and bits 2..31 are a non-negative count of
// outstanding suspend requests. Every transition is a CAS retry loop;
// Status never takes a lock.
//
// The zero value is a valid, Open, unscheduled, non-suspended Status.
type Status struct {
	word atomic.Uint32
}

// Load returns the current packed status word.
func (s *Status) Load() uint32 {
	return s.word.Load()
}

// IsClosed reports whether the mailbox has permanently closed.
func (s *Status) IsClosed() bool {
	return s.word.Load() == StatusClosed
}

// IsScheduled reports whether the Scheduled bit is currently set.
func (s *Status) IsScheduled() bool {
	return s.word.Load()&StatusScheduled != 0
}

// IsSuspended reports whether any suspend-count bits are set.
func (s *Status) IsSuspended() bool {
	v := s.word.Load()
	return v&^StatusScheduled&^StatusClosed != 0
}

// ShouldProcessMessage reports whether the mailbox is Open (possibly
// Scheduled) and not suspended, not closed.
func (s *Status) ShouldProcessMessage() bool {
	return s.word.Load()&^StatusScheduled == 0
}

// Suspend increments the suspend count by one unit. It is a no-op once the
// mailbox is Closed. Returns true iff this call transitioned the mailbox
// from not-suspended to suspended.
func (s *Status) Suspend() bool {
	for {
		cur := s.word.Load()
		if cur == StatusClosed {
			return false
		}
		next := cur + StatusSuspendUnit
		if s.word.CompareAndSwap(cur, next) {
			return cur&^StatusScheduled&^StatusClosed == 0
		}
	}
}

// Resume decrements the suspend count by one unit, if positive. It is a
// no-op once the mailbox is Closed. Returns true iff the resulting suspend
// count is zero.
func (s *Status) Resume() bool {
	for {
		cur := s.word.Load()
		if cur == StatusClosed {
			return false
		}
		suspendBits := cur &^ StatusScheduled &^ StatusClosed
		if suspendBits == 0 {
			return false
		}
		next := cur - StatusSuspendUnit
		if s.word.CompareAndSwap(cur, next) {
			return next&^StatusScheduled&^StatusClosed == 0
		}
	}
}

// BecomeClosed transitions the mailbox to the terminal Closed state,
// wiping the scheduled bit and the suspend count. Returns true iff this
// call performed the transition; an already-closed mailbox returns false.
func (s *Status) BecomeClosed() bool {
	for {
		cur := s.word.Load()
		if cur == StatusClosed {
			// Idempotent publish: a second BecomeClosed on an
			// already-closed mailbox still orders its write after
			// whatever the draining code performed before it.
			s.word.Store(StatusClosed)
			return false
		}
		if s.word.CompareAndSwap(cur, StatusClosed) {
			return true
		}
	}
}

// SetAsScheduled sets the Scheduled bit, but only when the mailbox is
// purely Open or purely Suspended (no Scheduled bit already set, not
// Closed). Returns true iff this caller set the bit.
func (s *Status) SetAsScheduled() bool {
	for {
		cur := s.word.Load()
		if cur == StatusClosed {
			return false
		}
		if cur&StatusScheduled != 0 {
			return false
		}
		if s.word.CompareAndSwap(cur, cur|StatusScheduled) {
			return true
		}
	}
}

// SetAsIdle clears the Scheduled bit regardless of primary state. It
// always eventually succeeds via CAS retry. On an already-closed mailbox
// it performs the idempotent volatile store documented above for
// BecomeClosed.
func (s *Status) SetAsIdle() {
	for {
		cur := s.word.Load()
		if cur == StatusClosed {
			s.word.Store(StatusClosed)
			return
		}
		if s.word.CompareAndSwap(cur, cur&^StatusScheduled) {
			return
		}
	}
}
