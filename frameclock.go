package vtpe

// FrameClock supplies the monotonically non-decreasing frame counter the
// engine uses for LRU timestamps. The core does not own a clock itself —
// it is a thin collaborator, exactly like the log sink and file reader.
type FrameClock interface {
	CurrentFrame() uint32
}

// manualClock is the FrameClock Scheduler drives internally: Tick advances
// it once per call, matching PhysicalSpace.advance_frame's "exactly once
// per frame" contract from spec.md §4.1.
type manualClock struct {
	frame uint32
}

func (c *manualClock) CurrentFrame() uint32 { return c.frame }

func (c *manualClock) advance() uint32 {
	c.frame++
	return c.frame
}
