package vtpe

import (
	"testing"

	"github.com/NOT-REAL-GAMES/vtpe/vtlog"
)

func newTestSpace(t *testing.T, tileSize, numPages uint32) *PhysicalSpace {
	t.Helper()
	s, err := NewPhysicalSpace(tileSize, numPages, vtlog.Nop{})
	if err != nil {
		t.Fatalf("NewPhysicalSpace: %v", err)
	}
	return s
}

// scenario 1: three allocations from a 256-page space return 255, 254, 253.
func TestPhysicalSpace_ThreeAllocations(t *testing.T) {
	s := newTestSpace(t, 128, 256)

	want := []uint32{255, 254, 253}
	for _, w := range want {
		got, ok := s.Allocate()
		if !ok {
			t.Fatalf("Allocate() failed, want %d", w)
		}
		if got != w {
			t.Errorf("Allocate() = %d, want %d", got, w)
		}
	}
	if got := s.NumFree(); got != 253 {
		t.Errorf("NumFree() = %d, want 253", got)
	}
}

// scenario 2 / property P2: idempotent remap.
func TestPhysicalSpace_IdempotentRemap(t *testing.T) {
	s := newTestSpace(t, 128, 256)

	p1, ok, evicted := s.Map(1000, 0)
	if !ok {
		t.Fatal("first Map failed")
	}
	if evicted {
		t.Error("first Map of a fresh address should not evict")
	}
	p2, ok, evicted := s.Map(1000, 0)
	if !ok {
		t.Fatal("second Map failed")
	}
	if evicted {
		t.Error("idempotent remap should not evict")
	}
	if p1 != p2 {
		t.Errorf("Map(1000) returned %d then %d, want same index", p1, p2)
	}
	if got := s.NumAllocated(); got != 1 {
		t.Errorf("NumAllocated() = %d, want 1", got)
	}
}

// scenario 3: LRU eviction picks the oldest resident page.
func TestPhysicalSpace_LRUEviction(t *testing.T) {
	s := newTestSpace(t, 128, 4)

	indices := make(map[uint32]uint32) // virtual address -> physical index
	for i := uint32(0); i < 4; i++ {
		s.AdvanceFrame(i + 1)
		va := 100 + i
		idx, ok, _ := s.Map(va, 0)
		if !ok {
			t.Fatalf("Map(%d) failed", va)
		}
		indices[va] = idx
	}

	s.AdvanceFrame(5)
	_, ok, evicted := s.Map(200, 0)
	if !ok {
		t.Fatal("Map(200) should succeed by evicting")
	}
	if !evicted {
		t.Error("Map(200) should report an eviction")
	}

	// virtual address 100 was touched at frame 1, the oldest; it must be gone.
	if _, stillResident := s.IndexOf(100); stillResident {
		t.Error("virtual address 100 (oldest) should have been evicted")
	}
	for _, va := range []uint32{101, 102, 103} {
		if _, ok := s.IndexOf(va); !ok {
			t.Errorf("virtual address %d should still be resident", va)
		}
	}
}

// scenario 4 / property P5: a pinned page is never evicted even with the
// smallest last_used_frame.
func TestPhysicalSpace_PinBlocksEviction(t *testing.T) {
	s := newTestSpace(t, 128, 4)

	for i := uint32(0); i < 4; i++ {
		s.AdvanceFrame(i + 1)
		if _, ok, _ := s.Map(100+i, 0); !ok {
			t.Fatalf("Map(%d) failed", 100+i)
		}
	}

	idx100, _ := s.IndexOf(100)
	s.Lock(idx100)

	s.AdvanceFrame(5)
	_, ok, evicted := s.Map(200, 0)
	if !ok || !evicted {
		t.Fatal("Map(200) should succeed by evicting an unpinned page")
	}

	if _, stillResident := s.IndexOf(100); !stillResident {
		t.Error("pinned virtual address 100 must not be evicted")
	}
	if _, stillResident := s.IndexOf(101); stillResident {
		t.Error("virtual address 101 (next-oldest, unpinned) should have been evicted instead")
	}
}

// property P3: N+K distinct addresses mapped without locking any page
// produce exactly K evictions and an empty free list.
func TestPhysicalSpace_EvictionCount(t *testing.T) {
	const n, k = 8, 5
	s := newTestSpace(t, 64, n)

	evictions := 0
	for i := uint32(0); i < n+k; i++ {
		s.AdvanceFrame(i + 1)
		_, ok, evicted := s.Map(i, 0)
		if !ok {
			t.Fatalf("Map(%d) failed", i)
		}
		if evicted {
			evictions++
		}
	}

	if evictions != k {
		t.Errorf("evictions = %d, want %d", evictions, k)
	}
	if got := s.NumFree(); got != 0 {
		t.Errorf("NumFree() = %d, want 0", got)
	}
}

func TestPhysicalSpace_CapacityExhaustedWhenAllPinned(t *testing.T) {
	s := newTestSpace(t, 64, 2)

	for i := uint32(0); i < 2; i++ {
		idx, ok, _ := s.Map(i, 0)
		if !ok {
			t.Fatalf("Map(%d) failed", i)
		}
		s.Lock(idx)
	}

	if _, ok, _ := s.Map(99, 0); ok {
		t.Error("Map should fail when every resident page is pinned")
	}
}

func TestPhysicalSpace_DoubleFreeIsNoOp(t *testing.T) {
	s := newTestSpace(t, 64, 4)
	idx, _ := s.Allocate()
	s.Free(idx)
	before := s.NumFree()
	s.Free(idx) // double free
	if after := s.NumFree(); after != before {
		t.Errorf("double free changed NumFree from %d to %d", before, after)
	}
}

func TestPhysicalSpace_UnlockSaturatesAtZero(t *testing.T) {
	s := newTestSpace(t, 64, 4)
	idx, _ := s.Allocate()
	s.Unlock(idx) // never locked; must not panic or underflow
	info, _ := s.Info(idx)
	if info.LockCount != 0 {
		t.Errorf("LockCount = %d, want 0", info.LockCount)
	}
}

func TestPhysicalSpace_OutOfRangeIsSilentlyIgnored(t *testing.T) {
	s := newTestSpace(t, 64, 4)
	s.Free(999)
	s.Touch(999)
	s.Lock(999)
	s.Unlock(999)
	if data := s.PageData(999); data != nil {
		t.Error("PageData for out-of-range index should be nil")
	}
}

func TestPhysicalSpace_NewRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name             string
		tileSize, pages  uint32
	}{
		{"zero tile size", 0, 4},
		{"non power of two", 100, 4},
		{"below minimum", 16, 4},
		{"zero pages", 64, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewPhysicalSpace(tc.tileSize, tc.pages, vtlog.Nop{}); err == nil {
				t.Error("expected error, got nil")
			} else if !IsKind(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}
