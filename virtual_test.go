package vtpe

import (
	"testing"

	"github.com/NOT-REAL-GAMES/vtpe/vtlog"
)

// property P7: encode/decode round-trips for valid inputs.
func TestVirtualAddress_RoundTrip(t *testing.T) {
	cases := []struct{ x, y, mip uint32 }{
		{0, 0, 0},
		{1, 2, 3},
		{16383, 16383, 15},
		{42, 7, 9},
	}
	for _, c := range cases {
		va, err := EncodeVirtualAddress(c.x, c.y, c.mip)
		if err != nil {
			t.Fatalf("Encode(%d,%d,%d): %v", c.x, c.y, c.mip, err)
		}
		x, y, mip := DecodeVirtualAddress(va)
		if x != c.x || y != c.y || mip != c.mip {
			t.Errorf("round trip (%d,%d,%d) -> %#x -> (%d,%d,%d)", c.x, c.y, c.mip, va, x, y, mip)
		}
	}
}

func TestVirtualAddress_RejectsOutOfRange(t *testing.T) {
	if _, err := EncodeVirtualAddress(1<<14, 0, 0); !IsKind(err, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument for oversize x")
	}
	if _, err := EncodeVirtualAddress(0, 1<<14, 0); !IsKind(err, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument for oversize y")
	}
	if _, err := EncodeVirtualAddress(0, 0, 16); !IsKind(err, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument for oversize mip")
	}
}

func newTestTexture(t *testing.T, space *PhysicalSpace, w, h, tile, mips uint32) *VirtualTexture {
	t.Helper()
	vt, err := NewVirtualTexture(w, h, tile, mips, space, vtlog.Nop{})
	if err != nil {
		t.Fatalf("NewVirtualTexture: %v", err)
	}
	return vt
}

func TestVirtualTexture_PagesXY(t *testing.T) {
	space := newTestSpace(t, 64, 16)
	vt := newTestTexture(t, space, 1024, 512, 64, 4)

	// mip 0: 1024/64=16, 512/64=8
	if px, py := vt.PagesX(0), vt.PagesY(0); px != 16 || py != 8 {
		t.Errorf("mip0 pages = %dx%d, want 16x8", px, py)
	}
	// mip 1: 512/64=8, 256/64=4
	if px, py := vt.PagesX(1), vt.PagesY(1); px != 8 || py != 4 {
		t.Errorf("mip1 pages = %dx%d, want 8x4", px, py)
	}
	if vt.PagesX(99) != 0 {
		t.Error("out-of-range mip should return 0 pages")
	}
}

func TestVirtualTexture_ResidencyRoundTrip(t *testing.T) {
	space := newTestSpace(t, 64, 16)
	vt := newTestTexture(t, space, 640, 640, 64, 1)

	if vt.IsResident(2, 3, 0) {
		t.Error("fresh page table entry should not be resident")
	}
	if _, ok := vt.PhysicalIndex(2, 3, 0); ok {
		t.Error("fresh page table entry should have no physical index")
	}

	if !vt.installMapping(2, 3, 0, 7) {
		t.Fatal("installMapping should succeed for an in-range entry")
	}
	if !vt.IsResident(2, 3, 0) {
		t.Error("installed mapping should be resident")
	}
	if idx, ok := vt.PhysicalIndex(2, 3, 0); !ok || idx != 7 {
		t.Errorf("PhysicalIndex = (%d,%v), want (7,true)", idx, ok)
	}

	vt.clearMapping(2, 3, 0)
	if vt.IsResident(2, 3, 0) {
		t.Error("cleared mapping should not be resident")
	}
}

func TestVirtualTexture_OutOfRangeIsFalse(t *testing.T) {
	space := newTestSpace(t, 64, 16)
	vt := newTestTexture(t, space, 128, 128, 64, 1)

	if vt.IsResident(99, 99, 0) {
		t.Error("out-of-range coordinates should report non-resident")
	}
	if vt.installMapping(99, 99, 0, 0) {
		t.Error("installMapping should fail for out-of-range coordinates")
	}
}

// scenario 6: dropping the last reference to a VirtualTexture returns its
// resident pages to the free list.
func TestVirtualTexture_ReleaseFreesPages(t *testing.T) {
	space := newTestSpace(t, 64, 32)
	vt := newTestTexture(t, space, 640, 640, 64, 1)

	for i := uint32(0); i < 10; i++ {
		va, err := EncodeVirtualAddress(i, 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		idx, ok, _ := space.Map(va, 0)
		if !ok {
			t.Fatalf("Map(%d) failed", i)
		}
		vt.installMapping(i, 0, 0, idx)
	}

	before := space.NumFree()
	vt.Release()
	after := space.NumFree()

	if after-before != 10 {
		t.Errorf("NumFree increased by %d, want 10", after-before)
	}
	if !vt.Released() {
		t.Error("Released() should report true after Release")
	}

	// Release must be idempotent.
	vt.Release()
	if got := space.NumFree(); got != after {
		t.Errorf("second Release changed NumFree to %d, want %d", got, after)
	}
}
