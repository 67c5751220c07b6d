package vtpe

import (
	"sync"

	"github.com/NOT-REAL-GAMES/vtpe/vtlog"
)

const (
	maxPageCoord = 1 << 14 // page_x, page_y each fit in 14 bits
	maxMip       = 16      // mip fits in 4 bits
)

// EncodeVirtualAddress packs (x, y, mip) into the 32-bit layout spec.md
// §3 fixes: (mip << 28) | (page_y << 14) | page_x. The encoding is
// opaque to callers; PhysicalSpace indexes its reverse map by it, so it
// must stay stable across versions of this package.
func EncodeVirtualAddress(x, y, mip uint32) (uint32, error) {
	if x >= maxPageCoord {
		return 0, newErrf(ErrInvalidArgument, "page_x %d exceeds 14-bit range", x)
	}
	if y >= maxPageCoord {
		return 0, newErrf(ErrInvalidArgument, "page_y %d exceeds 14-bit range", y)
	}
	if mip >= maxMip {
		return 0, newErrf(ErrInvalidArgument, "mip %d exceeds 4-bit range", mip)
	}
	return (mip << 28) | (y << 14) | x, nil
}

// DecodeVirtualAddress is the exact inverse of EncodeVirtualAddress,
// satisfying spec.md §8's P7 round-trip property.
func DecodeVirtualAddress(v uint32) (x, y, mip uint32) {
	x = v & (maxPageCoord - 1)
	y = (v >> 14) & (maxPageCoord - 1)
	mip = v >> 28
	return
}

// pageTableEntry is one cell of a mip level's dense page table.
type pageTableEntry struct {
	physicalIndex uint32
	hasPhysical   bool
	resident      bool
}

// VirtualTexture is a logical texture of arbitrary dimensions, tiled
// across a mip pyramid. It owns only integer physical-page indices,
// never pointers into PhysicalSpace — spec.md's Design Notes insist on
// this to keep ownership acyclic.
type VirtualTexture struct {
	width, height uint32
	tileSize      uint32
	numMips       uint32

	mu     sync.Mutex
	tables [][]pageTableEntry // tables[mip][j*pagesX(mip)+i]

	space   *PhysicalSpace
	sink    vtlog.Sink
	locator PayloadLocator

	released bool
}

// PayloadLocator resolves a virtual page to the byte range in a backing
// file that holds its pixel payload. spec.md §1 deliberately leaves the
// on-disk container format out of scope; this is the seam a caller fills
// in to tell the Scheduler what to hand the AsyncLoader. ok is false
// when no payload is available (e.g. runtime-generated content instead
// of a file-backed texture) — the Scheduler leaves such pages resident
// with whatever pixels PhysicalSpace handed back, unmodified.
type PayloadLocator func(x, y, mip uint32) (path string, offset int64, size int, ok bool)

// SetPayloadLocator installs the function the Scheduler will call to
// resolve payload locations for this texture's faults.
func (vt *VirtualTexture) SetPayloadLocator(fn PayloadLocator) {
	vt.mu.Lock()
	vt.locator = fn
	vt.mu.Unlock()
}

func (vt *VirtualTexture) payloadLocator() PayloadLocator {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	return vt.locator
}

// NewVirtualTexture builds the per-mip dense page tables, all entries
// starting non-resident. space is the PhysicalSpace this texture's pages
// will be allocated from; Release() unmaps and frees every resident page
// back to it.
func NewVirtualTexture(width, height, tileSize, numMips uint32, space *PhysicalSpace, sink vtlog.Sink) (*VirtualTexture, error) {
	if sink == nil {
		sink = vtlog.Nop{}
	}
	if width == 0 || height == 0 {
		return nil, newErrf(ErrInvalidArgument, "virtual texture dimensions must be nonzero, got %dx%d", width, height)
	}
	if tileSize == 0 {
		return nil, newErrf(ErrInvalidArgument, "tile_size must be nonzero")
	}
	if numMips == 0 || numMips > maxMip {
		return nil, newErrf(ErrInvalidArgument, "num_mips must be in [1,%d], got %d", maxMip, numMips)
	}

	vt := &VirtualTexture{
		width:    width,
		height:   height,
		tileSize: tileSize,
		numMips:  numMips,
		space:    space,
		sink:     sink,
		tables:   make([][]pageTableEntry, numMips),
	}
	for m := uint32(0); m < numMips; m++ {
		px, py := vt.pagesXY(m)
		vt.tables[m] = make([]pageTableEntry, px*py)
	}
	return vt, nil
}

func ceilDiv(a, b uint32) uint32 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// pagesXY computes pages_x(m) and pages_y(m) = ceil((dim >> m) / tile_size).
func (vt *VirtualTexture) pagesXY(m uint32) (uint32, uint32) {
	w := vt.width >> m
	h := vt.height >> m
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return ceilDiv(w, vt.tileSize), ceilDiv(h, vt.tileSize)
}

// PagesX returns pages_x(m), or 0 if m is out of range.
func (vt *VirtualTexture) PagesX(m uint32) uint32 {
	if m >= vt.numMips {
		return 0
	}
	x, _ := vt.pagesXY(m)
	return x
}

// PagesY returns pages_y(m), or 0 if m is out of range.
func (vt *VirtualTexture) PagesY(m uint32) uint32 {
	if m >= vt.numMips {
		return 0
	}
	_, y := vt.pagesXY(m)
	return y
}

// NumMips returns the immutable mip count.
func (vt *VirtualTexture) NumMips() uint32 { return vt.numMips }

// TileSize returns the immutable tile side length.
func (vt *VirtualTexture) TileSize() uint32 { return vt.tileSize }

// entryIndex returns the row-major index into tables[m] for (x, y), and
// whether (x, y, m) is in range at all.
func (vt *VirtualTexture) entryIndex(x, y, m uint32) (int, bool) {
	if m >= vt.numMips {
		return 0, false
	}
	px, py := vt.pagesXY(m)
	if x >= px || y >= py {
		return 0, false
	}
	return int(y*px + x), true
}

// IsResident reports whether (x, y, m) currently maps to a physical page.
// Returns false for out-of-range coordinates rather than erroring —
// spec.md §4.2 specifies this as a plain bool query.
func (vt *VirtualTexture) IsResident(x, y, m uint32) bool {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	idx, ok := vt.entryIndex(x, y, m)
	if !ok {
		return false
	}
	return vt.tables[m][idx].resident
}

// PhysicalIndex returns the physical page index mapped to (x, y, m), if
// resident.
func (vt *VirtualTexture) PhysicalIndex(x, y, m uint32) (uint32, bool) {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	idx, ok := vt.entryIndex(x, y, m)
	if !ok {
		return 0, false
	}
	e := &vt.tables[m][idx]
	if !e.resident {
		return 0, false
	}
	return e.physicalIndex, true
}

// installMapping is called by the Scheduler once PhysicalSpace.Map has
// succeeded: it stores the physical index in the page-table entry and
// sets resident = true, satisfying invariant V1.
func (vt *VirtualTexture) installMapping(x, y, m, physicalIndex uint32) bool {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	idx, ok := vt.entryIndex(x, y, m)
	if !ok {
		return false
	}
	vt.tables[m][idx] = pageTableEntry{physicalIndex: physicalIndex, hasPhysical: true, resident: true}
	return true
}

// clearMapping marks (x, y, m) non-resident without touching
// PhysicalSpace; used when an async load fails and the page must be
// reported back to non-resident even though the physical page stays
// claimed-but-unmapped (spec.md §7 IOFailure policy).
func (vt *VirtualTexture) clearMapping(x, y, m uint32) {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	idx, ok := vt.entryIndex(x, y, m)
	if !ok {
		return
	}
	vt.tables[m][idx] = pageTableEntry{}
}

// Release unmaps and frees every resident page this texture holds,
// returning them to the PhysicalSpace free list. Must be called exactly
// once, when the last holder of this VirtualTexture drops it — Go has no
// destructors, so unlike the teacher's Vulkan Destroy() methods this is
// purely an explicit call, never deferred to a finalizer.
func (vt *VirtualTexture) Release() {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	if vt.released {
		return
	}
	vt.released = true

	freed := 0
	for m := range vt.tables {
		for i := range vt.tables[m] {
			e := &vt.tables[m][i]
			if e.resident {
				vt.space.Unmap(e.physicalIndex)
				vt.space.Free(e.physicalIndex)
				freed++
			}
			*e = pageTableEntry{}
		}
	}
	vt.sink.Emitf(vtlog.Texture, vtlog.Log, "VirtualTexture released, freed %d resident pages", freed)
}

// Released reports whether Release has already run.
func (vt *VirtualTexture) Released() bool {
	vt.mu.Lock()
	defer vt.mu.Unlock()
	return vt.released
}
