package vtpe

import (
	"sync"

	"github.com/NOT-REAL-GAMES/vtpe/vtlog"
)

// PhysicalPage is a resident, fixed-size RGBA8 tile owned exclusively by
// a PhysicalSpace. Index p in [0, NumPages) identifies it; callers never
// hold a pointer to one directly — they go through PhysicalSpace so the
// space's lock stays the only thing that can touch the state below.
type PhysicalPage struct {
	pixels         []byte // tile_size * tile_size * 4 bytes, RGBA8
	virtualAddress uint32
	hasVirtual     bool // virtualAddress is meaningful only when this is true
	mipLevel       uint32
	lastUsedFrame  uint32
	lockCount      uint32
}

// Resident reports whether the page currently owns a virtual mapping.
func (p *PhysicalPage) Resident() bool { return p.hasVirtual }

// Pinned reports whether the page is locked against eviction.
func (p *PhysicalPage) Pinned() bool { return p.lockCount > 0 }

// PhysicalSpace is the fixed-capacity array of physical pages the whole
// engine budgets against. One serializing mutex guards every mutable
// field, matching spec.md §5's "PhysicalSpace has one lock guarding all
// of: page array, free list, reverse map, frame counter."
type PhysicalSpace struct {
	tileSize  uint32
	numPages  uint32
	pages     []PhysicalPage
	freeList  []uint32          // LIFO stack of free page indices
	resident  map[uint32]uint32 // virtual address -> physical index
	frame     uint32
	mu        sync.Mutex
	sink      vtlog.Sink
	evictions uint64
}

// PhysicalSpaceStats is a point-in-time snapshot of PhysicalSpace
// occupancy, extended with the byte-level accounting the original C++
// FPhysicalSpaceStats reported (SPEC_FULL.md §5.1).
type PhysicalSpaceStats struct {
	TotalPages       uint32
	AllocatedPages   uint32
	FreePages        uint32
	TotalMemoryBytes uint64
	UsedMemoryBytes  uint64
	Evictions        uint64
}

// NewPhysicalSpace allocates numPages page buffers of tileSize²·4 bytes
// each and pushes every index onto the free list, LIFO, so the first
// pages handed out are the highest indices — this is what scenario 1 in
// spec.md §8 (three allocations from a 256-page space return 255, 254,
// 253) pins down.
func NewPhysicalSpace(tileSize, numPages uint32, sink vtlog.Sink) (*PhysicalSpace, error) {
	if sink == nil {
		sink = vtlog.Nop{}
	}
	if tileSize == 0 || tileSize&(tileSize-1) != 0 || tileSize < 32 {
		return nil, newErrf(ErrInvalidArgument, "tile_size must be a power of two >= 32, got %d", tileSize)
	}
	if numPages == 0 {
		return nil, newErrf(ErrInvalidArgument, "num_pages must be >= 1, got %d", numPages)
	}

	bytesPerPage := int(tileSize) * int(tileSize) * 4
	pages := make([]PhysicalPage, numPages)
	freeList := make([]uint32, 0, numPages)
	for i := range pages {
		pages[i].pixels = make([]byte, bytesPerPage)
		freeList = append(freeList, uint32(i))
	}

	sink.Emitf(vtlog.Memory, vtlog.Log, "PhysicalSpace: allocated %d pages of %dx%d", numPages, tileSize, tileSize)

	return &PhysicalSpace{
		tileSize: tileSize,
		numPages: numPages,
		pages:    pages,
		freeList: freeList,
		resident: make(map[uint32]uint32, numPages),
		sink:     sink,
	}, nil
}

// TileSize returns the immutable tile side length in pixels.
func (s *PhysicalSpace) TileSize() uint32 { return s.tileSize }

// NumPages returns the immutable page capacity.
func (s *PhysicalSpace) NumPages() uint32 { return s.numPages }

// AdvanceFrame sets the monotonic frame counter subsequent Touch calls
// stamp pages with. Must be called exactly once per frame, by the
// Scheduler, per spec.md §4.1.
func (s *PhysicalSpace) AdvanceFrame(f uint32) {
	s.mu.Lock()
	s.frame = f
	s.mu.Unlock()
}

// NumFree returns the number of pages currently on the free list. Like
// NumAllocated this takes the lock — it's a snapshot, not a hot path.
func (s *PhysicalSpace) NumFree() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint32(len(s.freeList))
}

// NumAllocated returns the number of pages currently resident.
func (s *PhysicalSpace) NumAllocated() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint32(len(s.resident))
}

// Stats returns a point-in-time snapshot of occupancy and byte accounting.
func (s *PhysicalSpace) Stats() PhysicalSpaceStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	bytesPerPage := uint64(s.tileSize) * uint64(s.tileSize) * 4
	return PhysicalSpaceStats{
		TotalPages:       s.numPages,
		AllocatedPages:   uint32(len(s.resident)),
		FreePages:        uint32(len(s.freeList)),
		TotalMemoryBytes: uint64(s.numPages) * bytesPerPage,
		UsedMemoryBytes:  uint64(len(s.resident)) * bytesPerPage,
		Evictions:        s.evictions,
	}
}

// allocateLocked returns a free page index, evicting an LRU victim if the
// free list is empty. Must be called with s.mu held. Returns (idx, true,
// evicted) on success — evicted reports whether the index came from the
// eviction scan rather than the free list — or (0, false, false) when
// every resident page is pinned (ErrCapacityExhausted at the caller).
func (s *PhysicalSpace) allocateLocked() (uint32, bool, bool) {
	if n := len(s.freeList); n > 0 {
		idx := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		return idx, true, false
	}
	idx, ok := s.evictLocked()
	return idx, ok, ok
}

// Allocate returns a free physical page index, evicting an LRU victim if
// none is free. Returns ok=false only when every resident page is
// pinned — the CapacityExhausted condition spec.md §4.1 describes.
func (s *PhysicalSpace) Allocate() (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok, _ := s.allocateLocked()
	return idx, ok
}

// evictLocked scans the page array once for the resident, unpinned page
// with the smallest last_used_frame, ties broken by lowest index. This
// is deliberately O(N): spec.md §4.1 pins the scan semantics so eviction
// victims are deterministic, and N (hundreds to low thousands) makes a
// heap not worth the decrease-key complexity a touch would otherwise need.
func (s *PhysicalSpace) evictLocked() (uint32, bool) {
	victim := -1
	var victimFrame uint32
	for i := range s.pages {
		p := &s.pages[i]
		if !p.hasVirtual || p.lockCount > 0 {
			continue
		}
		if victim == -1 || p.lastUsedFrame < victimFrame {
			victim = i
			victimFrame = p.lastUsedFrame
		}
	}
	if victim == -1 {
		return 0, false
	}

	p := &s.pages[victim]
	delete(s.resident, p.virtualAddress)
	p.hasVirtual = false
	p.mipLevel = 0
	s.evictions++
	s.sink.Emitf(vtlog.Memory, vtlog.Verbose, "PhysicalSpace: evicted page %d (last_used_frame=%d)", victim, victimFrame)
	return uint32(victim), true
}

// Free clears the page's virtual mapping, resets its lock count, and
// returns it to the free list. Double-free is a no-op; an out-of-range
// index is a logged error, not a panic.
func (s *PhysicalSpace) Free(p uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p >= s.numPages {
		s.sink.Emitf(vtlog.Memory, vtlog.Error, "PhysicalSpace.Free: page index %d out of range [0,%d)", p, s.numPages)
		return
	}
	page := &s.pages[p]
	for _, free := range s.freeList {
		if free == p {
			return // already free: double-free is a no-op
		}
	}
	if page.hasVirtual {
		delete(s.resident, page.virtualAddress)
		page.hasVirtual = false
	}
	page.lockCount = 0
	page.mipLevel = 0
	s.freeList = append(s.freeList, p)
}

// Map installs (or idempotently refreshes) a virtual-address -> physical
// page mapping. If virtualAddress is already resident, the existing page
// is touched and returned with no allocation — the "hot path: a page
// requested in a subsequent frame" case spec.md §4.1 calls out. ok is
// false only if the underlying allocation is; evicted reports whether
// satisfying this call replaced a different resident page.
func (s *PhysicalSpace) Map(virtualAddress uint32, mip uint32) (idx uint32, ok bool, evicted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, exists := s.resident[virtualAddress]; exists {
		s.pages[idx].lastUsedFrame = s.frame
		return idx, true, false
	}

	idx, ok, evicted = s.allocateLocked()
	if !ok {
		return 0, false, false
	}

	page := &s.pages[idx]
	page.virtualAddress = virtualAddress
	page.hasVirtual = true
	page.mipLevel = mip
	page.lastUsedFrame = s.frame
	s.resident[virtualAddress] = idx
	return idx, true, evicted
}

// Unmap removes the reverse-map entry and clears the virtual mapping for
// p, but does NOT return it to the free list — the page stays claimed
// until an explicit Free. Neither Map nor the eviction scan reclaims it:
// both consider only pages on the free list or holding a virtual mapping.
func (s *PhysicalSpace) Unmap(p uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p >= s.numPages {
		return
	}
	page := &s.pages[p]
	if page.hasVirtual {
		delete(s.resident, page.virtualAddress)
		page.hasVirtual = false
	}
}

// Touch refreshes the page's last-used-frame to the space's current
// frame. No-op on an out-of-range index.
func (s *PhysicalSpace) Touch(p uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p >= s.numPages {
		return
	}
	s.pages[p].lastUsedFrame = s.frame
}

// Lock increments the page's pin count, preventing eviction.
func (s *PhysicalSpace) Lock(p uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p >= s.numPages {
		return
	}
	s.pages[p].lockCount++
}

// Unlock decrements the page's pin count, saturating at zero with a
// logged error if it was already zero.
func (s *PhysicalSpace) Unlock(p uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p >= s.numPages {
		return
	}
	page := &s.pages[p]
	if page.lockCount == 0 {
		s.sink.Emitf(vtlog.Memory, vtlog.Error, "PhysicalSpace.Unlock: page %d already at lock_count 0", p)
		return
	}
	page.lockCount--
}

// PageData returns the pixel buffer for p. The contract from spec.md
// §4.1 holds: callers may only hold onto the slice while the page is
// locked, or while no other goroutine can evict it.
func (s *PhysicalSpace) PageData(p uint32) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p >= s.numPages {
		return nil
	}
	return s.pages[p].pixels
}

// PageInfo is a read-only snapshot of a physical page's bookkeeping
// fields, used by tests and diagnostics that need more than PageData.
type PageInfo struct {
	VirtualAddress uint32
	Resident       bool
	MipLevel       uint32
	LastUsedFrame  uint32
	LockCount      uint32
}

// Info snapshots page p's bookkeeping fields under the space lock.
func (s *PhysicalSpace) Info(p uint32) (PageInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p >= s.numPages {
		return PageInfo{}, false
	}
	page := &s.pages[p]
	return PageInfo{
		VirtualAddress: page.virtualAddress,
		Resident:       page.hasVirtual,
		MipLevel:       page.mipLevel,
		LastUsedFrame:  page.lastUsedFrame,
		LockCount:      page.lockCount,
	}, true
}

// IndexOf returns the physical page index currently holding
// virtualAddress, if any. Exposed for tests that need to assert on a
// specific eviction victim without threading indices through by hand.
func (s *PhysicalSpace) IndexOf(virtualAddress uint32) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.resident[virtualAddress]
	return idx, ok
}
