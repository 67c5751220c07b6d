package vtpe

import (
	"sync"

	"github.com/NOT-REAL-GAMES/vtpe/asyncio"
	"github.com/NOT-REAL-GAMES/vtpe/vtlog"
)

// VTSystemConfig holds the tunables spec.md §6 lists as constructor
// arguments: physical page size, page count, and worker pool size.
type VTSystemConfig struct {
	PhysicalPageSize uint32 // pixels per tile side; power of two >= 32
	NumPhysicalPages uint32
	NumAsyncWorkers  int // default 2 if <= 0
	Sink             vtlog.Sink
}

// VTStats is the public API surface's statistics snapshot, spec.md §6,
// extended with the AsyncLoader's own counters (SPEC_FULL.md §4).
type VTStats struct {
	NumVirtualTextures  int
	NumPhysicalPages    uint32
	NumFreePages        uint32
	NumPageFaults       uint64
	NumPageEvictions    uint64
	TotalPageRequests   uint64
	NumAsyncWorkers     int
	UptimeFrames        uint32
	AsyncLoader         asyncio.IOStats
}

// VTSystem is the engine facade spec.md §6 names: one PhysicalSpace, one
// Scheduler, one AsyncLoader, and the registry of live VirtualTexture
// handles, behind a single mutex. The Design Notes prefer an explicit
// constructed handle over a process-wide singleton; VTSystem is an
// ordinary type for exactly that reason. Default() below offers a
// process-wide instance on top, for callers that want UE-style global
// access; it still needs Init like any other VTSystem.
type VTSystem struct {
	mu          sync.Mutex
	initialized bool

	space     *PhysicalSpace
	scheduler *Scheduler
	loader    *asyncio.Loader
	sink      vtlog.Sink

	textures map[*VirtualTexture]bool

	numWorkers int
}

// NewVTSystem constructs an uninitialized VTSystem. Call Init before use.
func NewVTSystem() *VTSystem {
	return &VTSystem{textures: make(map[*VirtualTexture]bool)}
}

// Init wires up PhysicalSpace, Scheduler, and AsyncLoader per cfg.
// Idempotent: a second call is a logged Warning that returns true
// without re-initializing, per spec.md §7's DoubleInit policy.
func (v *VTSystem) Init(cfg VTSystemConfig) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.initialized {
		if v.sink != nil {
			v.sink.Emit(vtlog.Core, vtlog.Warning, "VTSystem already initialized")
		}
		return true
	}

	sink := cfg.Sink
	if sink == nil {
		sink = vtlog.Nop{}
	}
	v.sink = sink

	space, err := NewPhysicalSpace(cfg.PhysicalPageSize, cfg.NumPhysicalPages, sink)
	if err != nil {
		sink.Emitf(vtlog.Core, vtlog.Error, "VTSystem.Init: %v", err)
		return false
	}
	v.space = space

	v.loader = asyncio.NewLoader(sink)
	workers := cfg.NumAsyncWorkers
	if workers <= 0 {
		workers = 2
	}
	v.numWorkers = workers
	v.loader.Init(workers)

	v.scheduler = NewScheduler(v.space, v.loader, sink)
	v.textures = make(map[*VirtualTexture]bool)
	v.initialized = true

	sink.Emitf(vtlog.Core, vtlog.Display, "VTSystem initialized: %d pages of %dx%d, %d workers",
		cfg.NumPhysicalPages, cfg.PhysicalPageSize, cfg.PhysicalPageSize, workers)
	return true
}

// requireInit logs and reports UninitializedUse when called before Init.
func (v *VTSystem) requireInit() bool {
	if v.initialized {
		return true
	}
	if v.sink != nil {
		v.sink.Emit(vtlog.Core, vtlog.Error, "VTSystem used before Init")
	}
	return false
}

// CreateVirtualTexture creates a VirtualTexture of the given dimensions
// backed by this system's PhysicalSpace, and registers it as live with
// the scheduler. Returns nil before Init.
func (v *VTSystem) CreateVirtualTexture(width, height, numMips uint32) (*VirtualTexture, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.requireInit() {
		return nil, newErr(ErrUninitializedUse, "CreateVirtualTexture before Init")
	}

	vt, err := NewVirtualTexture(width, height, v.space.TileSize(), numMips, v.space, v.sink)
	if err != nil {
		return nil, err
	}
	v.textures[vt] = true
	v.scheduler.trackTexture(vt)
	return vt, nil
}

// ReleaseVirtualTexture unmaps and frees vt's resident pages and drops
// it from the live set, matching spec.md §3's Lifecycle contract for
// when the last holder of a VirtualTexture releases it.
func (v *VTSystem) ReleaseVirtualTexture(vt *VirtualTexture) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if vt == nil {
		return
	}
	if v.initialized {
		v.scheduler.untrackTexture(vt)
	}
	delete(v.textures, vt)
	vt.Release()
}

// RequestPage enqueues (or refreshes) a page fault at default priority.
func (v *VTSystem) RequestPage(vt *VirtualTexture, x, y, m uint32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.requireInit() {
		return newErr(ErrUninitializedUse, "RequestPage before Init")
	}
	return v.scheduler.Request(vt, x, y, m, nil)
}

// RecordAccess is the render-side sampling report entry point.
func (v *VTSystem) RecordAccess(vt *VirtualTexture, x, y, m uint32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.requireInit() {
		return newErr(ErrUninitializedUse, "RecordAccess before Init")
	}
	return v.scheduler.RecordAccess(vt, x, y, m)
}

// Update ticks the scheduler once. deltaTime is accepted for API parity
// with spec.md §6 but the engine's own pacing is entirely frame-counted,
// not wall-clock — LRU timestamps key off frame number, never time.
func (v *VTSystem) Update(deltaTime float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.requireInit() {
		return
	}
	v.scheduler.Tick()
}

// Stats returns a snapshot covering the whole engine.
func (v *VTSystem) Stats() VTStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.requireInit() {
		return VTStats{}
	}
	schedStats := v.scheduler.Stats()
	return VTStats{
		NumVirtualTextures: len(v.textures),
		NumPhysicalPages:   schedStats.Physical.TotalPages,
		NumFreePages:       schedStats.Physical.FreePages,
		NumPageFaults:      schedStats.PageFaults,
		NumPageEvictions:   schedStats.PageEvictions,
		TotalPageRequests:  schedStats.TotalRequests,
		NumAsyncWorkers:    v.numWorkers,
		UptimeFrames:       schedStats.CurrentFrame,
		AsyncLoader:        v.loader.Stats(),
	}
}

// Shutdown releases every live VirtualTexture, shuts down the scheduler
// and AsyncLoader, and marks the system uninitialized. After Shutdown,
// NumFreePages on the underlying PhysicalSpace equals NumPhysicalPages
// (spec.md §8 P6).
func (v *VTSystem) Shutdown() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.initialized {
		return
	}

	for vt := range v.textures {
		vt.Release()
	}
	v.textures = make(map[*VirtualTexture]bool)

	v.scheduler.Shutdown()
	v.loader.Shutdown()
	v.initialized = false
	v.sink.Emit(vtlog.Core, vtlog.Display, "VTSystem shut down")
}

// PhysicalSpace exposes the underlying PhysicalSpace for callers that
// need direct access (tests, diagnostics). Returns nil before Init.
func (v *VTSystem) PhysicalSpace() *PhysicalSpace {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.space
}

var (
	defaultMu   sync.Mutex
	defaultInst *VTSystem
)

// Default returns the process-wide VTSystem singleton, constructing it
// on first use. The Design Notes treat a singleton as acceptable only if
// initialization and teardown stay idempotent and serialize access to
// the interior PhysicalSpace — Init/Shutdown above already guarantee
// both, so Default just wraps the ordinary constructor.
func Default() *VTSystem {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultInst == nil {
		defaultInst = NewVTSystem()
	}
	return defaultInst
}
