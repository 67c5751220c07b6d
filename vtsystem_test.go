package vtpe

import (
	"testing"

	"github.com/NOT-REAL-GAMES/vtpe/vtlog"
)

func testConfig() VTSystemConfig {
	return VTSystemConfig{
		PhysicalPageSize: 64,
		NumPhysicalPages: 32,
		NumAsyncWorkers:  2,
		Sink:             vtlog.Nop{},
	}
}

func TestVTSystem_UninitializedUseReturnsErrors(t *testing.T) {
	v := NewVTSystem()

	if _, err := v.CreateVirtualTexture(128, 128, 1); !IsKind(err, ErrUninitializedUse) {
		t.Errorf("CreateVirtualTexture before Init: got %v, want ErrUninitializedUse", err)
	}
	if err := v.RequestPage(nil, 0, 0, 0); !IsKind(err, ErrUninitializedUse) {
		t.Errorf("RequestPage before Init: got %v, want ErrUninitializedUse", err)
	}
	if err := v.RecordAccess(nil, 0, 0, 0); !IsKind(err, ErrUninitializedUse) {
		t.Errorf("RecordAccess before Init: got %v, want ErrUninitializedUse", err)
	}

	// Update and Stats and Shutdown before Init must not panic.
	v.Update(0.016)
	if stats := v.Stats(); stats.NumPhysicalPages != 0 {
		t.Errorf("Stats before Init = %+v, want zero value", stats)
	}
	v.Shutdown()
}

func TestVTSystem_DoubleInitIsIdempotent(t *testing.T) {
	v := NewVTSystem()
	if ok := v.Init(testConfig()); !ok {
		t.Fatal("first Init failed")
	}
	defer v.Shutdown()

	if ok := v.Init(testConfig()); !ok {
		t.Fatal("second Init should report success without re-initializing")
	}
	if stats := v.Stats(); stats.NumPhysicalPages != 32 {
		t.Errorf("NumPhysicalPages = %d, want 32 after double Init", stats.NumPhysicalPages)
	}
}

func TestVTSystem_EndToEndAccessFlow(t *testing.T) {
	v := NewVTSystem()
	if ok := v.Init(testConfig()); !ok {
		t.Fatal("Init failed")
	}
	defer v.Shutdown()

	vt, err := v.CreateVirtualTexture(256, 256, 2)
	if err != nil {
		t.Fatalf("CreateVirtualTexture: %v", err)
	}

	if err := v.RecordAccess(vt, 0, 0, 0); err != nil {
		t.Fatalf("RecordAccess: %v", err)
	}
	if stats := v.Stats(); stats.NumPageFaults != 1 {
		t.Errorf("NumPageFaults = %d, want 1", stats.NumPageFaults)
	}

	v.Update(0.016)

	if !vt.IsResident(0, 0, 0) {
		t.Error("page should be resident after one Update/Tick")
	}

	stats := v.Stats()
	if stats.NumVirtualTextures != 1 {
		t.Errorf("NumVirtualTextures = %d, want 1", stats.NumVirtualTextures)
	}
	if stats.NumFreePages != 31 {
		t.Errorf("NumFreePages = %d, want 31", stats.NumFreePages)
	}
}

func TestVTSystem_ReleaseVirtualTextureFreesPages(t *testing.T) {
	v := NewVTSystem()
	v.Init(testConfig())
	defer v.Shutdown()

	vt, err := v.CreateVirtualTexture(256, 256, 1)
	if err != nil {
		t.Fatalf("CreateVirtualTexture: %v", err)
	}
	v.RecordAccess(vt, 0, 0, 0)
	v.Update(0.016)

	before := v.Stats().NumFreePages
	v.ReleaseVirtualTexture(vt)
	after := v.Stats().NumFreePages

	if after <= before {
		t.Errorf("NumFreePages = %d after release, want > %d", after, before)
	}
	if v.Stats().NumVirtualTextures != 0 {
		t.Error("released texture should be dropped from the live registry")
	}
}

// property P6: after Shutdown, every physical page has been returned.
func TestVTSystem_ShutdownFreesAllPages(t *testing.T) {
	v := NewVTSystem()
	cfg := testConfig()
	v.Init(cfg)

	vt1, _ := v.CreateVirtualTexture(256, 256, 1)
	vt2, _ := v.CreateVirtualTexture(256, 256, 1)
	v.RecordAccess(vt1, 0, 0, 0)
	v.RecordAccess(vt2, 1, 0, 0)
	v.Update(0.016)

	space := v.PhysicalSpace()
	v.Shutdown()

	if got := space.NumFree(); got != cfg.NumPhysicalPages {
		t.Errorf("NumFree after Shutdown = %d, want %d", got, cfg.NumPhysicalPages)
	}
}

func TestDefault_ReturnsSameInstance(t *testing.T) {
	a := Default()
	b := Default()
	if a != b {
		t.Error("Default() should return the same singleton instance across calls")
	}
}
