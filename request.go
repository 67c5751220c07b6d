package vtpe

// DefaultPriority implements spec.md §3's default priority curve:
// max(0, 100 - 10*mip), so coarse mips (visible over a larger screen
// area) preempt fine ones when both are pending in the same tick.
func DefaultPriority(mip uint32) int {
	p := 100 - 10*int(mip)
	if p < 0 {
		return 0
	}
	return p
}

// PageRequest is an outstanding page fault the Scheduler owns while it
// is enqueued: a caller records an access, and the engine holds the
// request until it is satisfied or purged.
type PageRequest struct {
	texture  *VirtualTexture
	pageX    uint32
	pageY    uint32
	mip      uint32
	priority int
}

// Priority returns the request's effective priority; higher wins.
func (r *PageRequest) Priority() int { return r.priority }
