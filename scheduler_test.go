package vtpe

import (
	"testing"

	"github.com/NOT-REAL-GAMES/vtpe/asyncio"
	"github.com/NOT-REAL-GAMES/vtpe/vtlog"
)

// fakeLoader is a FileReader double that completes every read synchronously
// and successfully, without touching the filesystem.
type fakeLoader struct {
	reads int
}

func (f *fakeLoader) ReadAsync(req asyncio.ReadRequest) asyncio.RequestID {
	f.reads++
	if req.OnComplete != nil {
		req.OnComplete(true, len(req.Dest))
	}
	return asyncio.RequestID(f.reads)
}
func (f *fakeLoader) Wait(asyncio.RequestID) bool      { return true }
func (f *fakeLoader) WaitAll()                         {}
func (f *fakeLoader) IsComplete(asyncio.RequestID) bool { return true }
func (f *fakeLoader) Stats() asyncio.IOStats           { return asyncio.IOStats{} }
func (f *fakeLoader) Shutdown()                        {}

func newTestScheduler(t *testing.T, space *PhysicalSpace) (*Scheduler, *fakeLoader) {
	t.Helper()
	fl := &fakeLoader{}
	return NewScheduler(space, fl, vtlog.Nop{}), fl
}

func TestScheduler_RecordAccessResidentTouchesOnly(t *testing.T) {
	space := newTestSpace(t, 64, 16)
	sched, _ := newTestScheduler(t, space)
	vt := newTestTexture(t, space, 640, 640, 64, 1)
	sched.trackTexture(vt)

	va, _ := EncodeVirtualAddress(1, 1, 0)
	idx, _, _ := space.Map(va, 0)
	vt.installMapping(1, 1, 0, idx)

	if err := sched.RecordAccess(vt, 1, 1, 0); err != nil {
		t.Fatalf("RecordAccess: %v", err)
	}
	if got := sched.Stats().PageFaults; got != 0 {
		t.Errorf("PageFaults = %d, want 0 for a resident access", got)
	}
}

func TestScheduler_RecordAccessNonResidentEnqueues(t *testing.T) {
	space := newTestSpace(t, 64, 16)
	sched, _ := newTestScheduler(t, space)
	vt := newTestTexture(t, space, 640, 640, 64, 1)
	sched.trackTexture(vt)

	if err := sched.RecordAccess(vt, 0, 0, 0); err != nil {
		t.Fatalf("RecordAccess: %v", err)
	}
	stats := sched.Stats()
	if stats.PageFaults != 1 || stats.PendingRequests != 1 {
		t.Errorf("stats = %+v, want 1 fault and 1 pending", stats)
	}
}

func TestScheduler_InvalidCoordinatesRejected(t *testing.T) {
	space := newTestSpace(t, 64, 16)
	sched, _ := newTestScheduler(t, space)
	vt := newTestTexture(t, space, 128, 128, 64, 1)
	sched.trackTexture(vt)

	if err := sched.RecordAccess(vt, 99, 99, 0); !IsKind(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if err := sched.RecordAccess(vt, 0, 0, 5); !IsKind(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for mip >= num_mips, got %v", err)
	}
}

// scenario 5: 100 equal-priority requests, one Tick satisfies exactly 32.
func TestScheduler_BoundedTick(t *testing.T) {
	space := newTestSpace(t, 32, 256)
	sched, _ := newTestScheduler(t, space)
	vt := newTestTexture(t, space, 32*200, 32, 32, 1)
	sched.trackTexture(vt)

	for i := uint32(0); i < 100; i++ {
		if err := sched.RecordAccess(vt, i, 0, 0); err != nil {
			t.Fatalf("RecordAccess(%d): %v", i, err)
		}
	}

	sched.Tick()

	resident := 0
	for i := uint32(0); i < 100; i++ {
		if vt.IsResident(i, 0, 0) {
			resident++
		}
	}
	if resident != MaxRequestsPerFrame {
		t.Errorf("resident after one Tick = %d, want %d", resident, MaxRequestsPerFrame)
	}
	if got := sched.Stats().PendingRequests; got != 100-MaxRequestsPerFrame {
		t.Errorf("PendingRequests = %d, want %d", got, 100-MaxRequestsPerFrame)
	}
}

func TestScheduler_TickStopsAtCapacityExhausted(t *testing.T) {
	space := newTestSpace(t, 32, 4)
	sched, _ := newTestScheduler(t, space)
	vt := newTestTexture(t, space, 32*8, 32, 32, 1)
	sched.trackTexture(vt)

	// Pin all 4 pages so nothing can be evicted.
	for i := uint32(0); i < 4; i++ {
		idx, _, _ := space.Map(1000+i, 0)
		space.Lock(idx)
	}

	for i := uint32(0); i < 3; i++ {
		if err := sched.RecordAccess(vt, i, 0, 0); err != nil {
			t.Fatal(err)
		}
	}

	sched.Tick()

	if got := sched.Stats().PendingRequests; got != 3 {
		t.Errorf("PendingRequests = %d, want 3 (nothing satisfiable)", got)
	}
}

func TestScheduler_PurgesRequestsForDroppedTexture(t *testing.T) {
	space := newTestSpace(t, 32, 16)
	sched, _ := newTestScheduler(t, space)
	vt := newTestTexture(t, space, 32*8, 32, 32, 1)
	sched.trackTexture(vt)

	if err := sched.RecordAccess(vt, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	sched.untrackTexture(vt)

	sched.Tick()

	if got := sched.Stats().PendingRequests; got != 0 {
		t.Errorf("PendingRequests = %d, want 0 after dropping the target texture", got)
	}
}

func TestScheduler_PriorityOrdering(t *testing.T) {
	space := newTestSpace(t, 32, 1) // only one page: only the highest-priority request gets it
	sched, _ := newTestScheduler(t, space)
	vt := newTestTexture(t, space, 32*4, 32, 32, 3)
	sched.trackTexture(vt)

	// mip 2 has lower default priority than mip 0; enqueue low-priority first.
	if err := sched.RecordAccess(vt, 0, 0, 2); err != nil {
		t.Fatal(err)
	}
	if err := sched.RecordAccess(vt, 0, 0, 0); err != nil {
		t.Fatal(err)
	}

	sched.Tick()

	if !vt.IsResident(0, 0, 0) {
		t.Error("mip 0 (higher default priority) should be satisfied first")
	}
	if vt.IsResident(0, 0, 2) {
		t.Error("mip 2 should remain pending: only one page was available")
	}
}
