package vtpe

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/NOT-REAL-GAMES/vtpe/asyncio"
	"github.com/NOT-REAL-GAMES/vtpe/vtlog"
)

// MaxRequestsPerFrame bounds the work a single Tick performs, preventing
// frame-time spikes on cache misses. Residual requests bleed into
// subsequent frames with no additional scheduling machinery — spec.md
// §4.3's "bounded work per frame" rationale.
const MaxRequestsPerFrame = 32

// Stats is a snapshot of Scheduler activity plus PhysicalSpace occupancy,
// the spec.md §4.3 stats() return value.
type Stats struct {
	PageFaults      uint64
	PageEvictions   uint64
	TotalRequests   uint64
	PendingRequests int
	CurrentFrame    uint32
	Physical        PhysicalSpaceStats
}

// Scheduler is the per-frame request processor: it holds a
// priority-ordered queue of outstanding page faults, drains a bounded
// number per Tick, coordinates with PhysicalSpace for allocation and
// eviction, and kicks off payload loads through a FileReader.
type Scheduler struct {
	mu      sync.Mutex
	pending []*PageRequest

	space  *PhysicalSpace
	loader FileReader
	sink   vtlog.Sink
	clock  manualClock

	liveMu   sync.Mutex
	textures map[*VirtualTexture]bool

	pageFaults    atomic.Uint64
	pageEvictions atomic.Uint64
	totalRequests atomic.Uint64
}

// NewScheduler builds a Scheduler driving space for allocation/eviction
// and loader for payload fetches.
func NewScheduler(space *PhysicalSpace, loader FileReader, sink vtlog.Sink) *Scheduler {
	if sink == nil {
		sink = vtlog.Nop{}
	}
	return &Scheduler{
		space:    space,
		loader:   loader,
		sink:     sink,
		textures: make(map[*VirtualTexture]bool),
	}
}

// trackTexture registers vt as live so purge (run at the top of Tick)
// does not drop requests targeting it. Called by VTSystem on creation.
func (s *Scheduler) trackTexture(vt *VirtualTexture) {
	s.liveMu.Lock()
	s.textures[vt] = true
	s.liveMu.Unlock()
}

// untrackTexture marks vt no longer live; pending requests against it
// are purged on the next Tick, per spec.md §5's cancellation rule.
func (s *Scheduler) untrackTexture(vt *VirtualTexture) {
	s.liveMu.Lock()
	delete(s.textures, vt)
	s.liveMu.Unlock()
}

func (s *Scheduler) isLive(vt *VirtualTexture) bool {
	s.liveMu.Lock()
	defer s.liveMu.Unlock()
	return s.textures[vt]
}

// CurrentFrame implements FrameClock for diagnostics and tests.
func (s *Scheduler) CurrentFrame() uint32 { return s.clock.CurrentFrame() }

// Request validates (x, y, m) against texture, and either refreshes an
// already-resident page's LRU timestamp or enqueues a PageRequest.
// priorityOverride, if non-nil, replaces DefaultPriority(m) — the
// prefetch-request seam spec.md §3 describes.
func (s *Scheduler) Request(texture *VirtualTexture, x, y, m uint32, priorityOverride *int) error {
	if texture == nil {
		return newErr(ErrInvalidArgument, "nil texture")
	}
	if m >= texture.NumMips() {
		return newErrf(ErrInvalidArgument, "mip %d >= num_mips %d", m, texture.NumMips())
	}
	if _, ok := texture.entryIndex(x, y, m); !ok {
		return newErrf(ErrInvalidArgument, "page (%d,%d) out of range at mip %d", x, y, m)
	}

	if idx, ok := texture.PhysicalIndex(x, y, m); ok {
		s.space.Touch(idx)
		return nil
	}

	priority := DefaultPriority(m)
	if priorityOverride != nil {
		priority = *priorityOverride
	}

	s.mu.Lock()
	s.pending = append(s.pending, &PageRequest{texture: texture, pageX: x, pageY: y, mip: m, priority: priority})
	s.mu.Unlock()

	s.pageFaults.Add(1)
	s.totalRequests.Add(1)
	return nil
}

// RecordAccess is the render-side entry point: identical to Request with
// the default priority, kept distinct for statistics and callsite clarity.
func (s *Scheduler) RecordAccess(texture *VirtualTexture, x, y, m uint32) error {
	return s.Request(texture, x, y, m, nil)
}

// purgePendingLocked drops queued requests whose target texture is no
// longer live. Must be called with s.mu held.
func (s *Scheduler) purgePendingLocked() {
	kept := s.pending[:0]
	for _, r := range s.pending {
		if s.isLive(r.texture) {
			kept = append(kept, r)
		}
	}
	s.pending = kept
}

// Tick advances the frame counter, purges requests against dropped
// textures, sorts the queue by priority (stable, so equal-priority
// requests keep insertion order), and processes up to
// MaxRequestsPerFrame of them. A request that cannot be satisfied this
// frame (PhysicalSpace reports CapacityExhausted) stops processing for
// the remainder of the tick and stays enqueued.
func (s *Scheduler) Tick() {
	frame := s.clock.advance()
	s.space.AdvanceFrame(frame)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgePendingLocked()

	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.pending[i].priority > s.pending[j].priority
	})

	processed := 0
	remaining := s.pending[:0]
	stop := false
	for _, r := range s.pending {
		if stop || processed >= MaxRequestsPerFrame {
			remaining = append(remaining, r)
			continue
		}

		va, err := EncodeVirtualAddress(r.pageX, r.pageY, r.mip)
		if err != nil {
			s.sink.Emitf(vtlog.Texture, vtlog.Error, "dropping unrequestable page: %v", err)
			continue // programmer error: drop rather than requeue forever
		}

		idx, ok, evicted := s.space.Map(va, r.mip)
		if !ok {
			remaining = append(remaining, r)
			stop = true
			continue
		}
		if evicted {
			s.pageEvictions.Add(1)
		}

		r.texture.installMapping(r.pageX, r.pageY, r.mip, idx)
		s.issueLoad(r.texture, r.pageX, r.pageY, r.mip, idx)
		processed++
	}
	s.pending = remaining
}

// issueLoad, if the texture has a PayloadLocator configured that yields a
// payload fitting the page buffer, pins the target page and submits an
// async read into its pixel buffer; otherwise it returns without pinning.
// The pin is released on completion. On IOFailure the page is unmapped
// (left claimed-but-unmapped, per spec.md §7) and the page-table entry
// cleared.
func (s *Scheduler) issueLoad(vt *VirtualTexture, x, y, mip, physicalIndex uint32) {
	locator := vt.payloadLocator()
	if locator == nil {
		return // runtime-generated content: resident with whatever pixels it got
	}

	path, offset, size, ok := locator(x, y, mip)
	if !ok {
		return
	}

	buf := s.space.PageData(physicalIndex)
	if size <= 0 || size > len(buf) {
		s.sink.Emitf(vtlog.Texture, vtlog.Error, "payload size %d invalid for page buffer of %d bytes", size, len(buf))
		return
	}
	dest := buf[:size]

	s.space.Lock(physicalIndex)
	s.loader.ReadAsync(asyncio.ReadRequest{
		FilePath: path,
		Offset:   offset,
		Dest:     dest,
		OnComplete: func(success bool, bytesRead int) {
			s.space.Unlock(physicalIndex)
			if !success {
				s.sink.Emitf(vtlog.IO, vtlog.Warning, "page load failed for (%d,%d,mip=%d): %d/%d bytes", x, y, mip, bytesRead, size)
				s.space.Unmap(physicalIndex)
				vt.clearMapping(x, y, mip)
			}
		},
	})
}

// Stats snapshots the scheduler's counters plus PhysicalSpace occupancy.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	pending := len(s.pending)
	s.mu.Unlock()

	return Stats{
		PageFaults:      s.pageFaults.Load(),
		PageEvictions:   s.pageEvictions.Load(),
		TotalRequests:   s.totalRequests.Load(),
		PendingRequests: pending,
		CurrentFrame:    s.clock.CurrentFrame(),
		Physical:        s.space.Stats(),
	}
}

// Shutdown clears the pending queue and drops the live-texture set. It
// does not release the textures themselves or the PhysicalSpace — that
// is VTSystem's responsibility since it owns those handles.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()

	s.liveMu.Lock()
	s.textures = make(map[*VirtualTexture]bool)
	s.liveMu.Unlock()
}
