// ABOUTME: Request sequencing for store slices
// ABOUTME: Drops responses that resolve after a newer response was already applied

package state

// sequence orders requests against one slice. Callers hold the owning
// store's mutex.
type sequence struct {
	issued   uint64
	applied  uint64
	inflight int
}

// begin reserves the next sequence number.
func (s *sequence) begin() uint64 {
	s.issued++
	s.inflight++
	return s.issued
}

// finish marks seq resolved and reports whether its result may be applied.
func (s *sequence) finish(seq uint64) bool {
	s.inflight--
	if seq <= s.applied {
		return false
	}
	s.applied = seq
	return true
}

func (s *sequence) loading() bool {
	return s.inflight > 0
}
