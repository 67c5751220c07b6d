// Package asyncio implements the VTPE's AsyncLoader: a fixed-size worker
// pool that drains a FIFO of positional file reads into caller-supplied
// buffers, reporting completion through a callback and a blocking wait
// handle. It is the module's own FileReader, built to the contract
// spec.md §4.4 and §6 describe.
package asyncio

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NOT-REAL-GAMES/vtpe/vtlog"
)

// RequestID identifies a submitted read, monotonically increasing from 1.
type RequestID uint64

// ReadRequest describes one positional read: open FilePath, seek to
// Offset, read len(Dest) bytes into Dest, close, report via OnComplete.
// The caller owns Dest and must keep it alive until completion is
// observed — for the VTPE this is always a PhysicalSpace page buffer,
// pinned by the Scheduler for the duration of the load.
type ReadRequest struct {
	FilePath   string
	Offset     int64
	Dest       []byte
	OnComplete func(success bool, bytesRead int)
}

// IOStats is a snapshot of AsyncLoader activity.
type IOStats struct {
	Total           uint64
	Completed       uint64
	Failed          uint64
	Pending         uint64
	TotalBytes      uint64
	AvgBandwidthMBs float64
}

type internalRequest struct {
	id        RequestID
	req       ReadRequest
	done      chan struct{}
	success   bool
	bytesRead int
}

// Loader is a fixed-size pool of worker goroutines draining a FIFO of
// read requests. The zero value is not usable; construct with NewLoader.
type Loader struct {
	sink vtlog.Sink

	queueMu sync.Mutex
	queueCV *sync.Cond
	queue   []*internalRequest

	activeMu sync.Mutex
	active   map[RequestID]*internalRequest

	nextID atomic.Uint64

	totalRequests atomic.Uint64
	completed     atomic.Uint64
	failed        atomic.Uint64
	totalBytes    atomic.Uint64

	initMu      sync.Mutex
	initialized bool
	shuttingDown atomic.Bool
	group       *errgroup.Group
	cancel      context.CancelFunc
	startedAt   time.Time
}

// NewLoader constructs a Loader bound to sink for diagnostics. Call Init
// to spawn workers before submitting reads.
func NewLoader(sink vtlog.Sink) *Loader {
	if sink == nil {
		sink = vtlog.Nop{}
	}
	l := &Loader{
		sink:   sink,
		active: make(map[RequestID]*internalRequest),
	}
	l.queueCV = sync.NewCond(&l.queueMu)
	return l
}

// Init spawns numWorkers worker goroutines under an errgroup.Group so
// Shutdown can cancel and join them deterministically. Idempotent: a
// second call is a logged no-op that still reports success, matching
// spec.md §7's DoubleInit policy.
func (l *Loader) Init(numWorkers int) bool {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	if l.initialized {
		l.sink.Emit(vtlog.IO, vtlog.Warning, "AsyncLoader already initialized")
		return true
	}
	if numWorkers <= 0 {
		numWorkers = 2
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	g, gctx := errgroup.WithContext(ctx)
	l.group = g

	for i := 0; i < numWorkers; i++ {
		g.Go(func() error {
			l.workerLoop(gctx)
			return nil
		})
	}

	l.startedAt = time.Now()
	l.initialized = true
	l.sink.Emitf(vtlog.IO, vtlog.Log, "AsyncLoader initialized with %d workers", numWorkers)
	return true
}

// ReadAsync enqueues req and returns its assigned request ID immediately;
// the caller does not block on I/O.
func (l *Loader) ReadAsync(req ReadRequest) RequestID {
	id := RequestID(l.nextID.Add(1))
	ir := &internalRequest{id: id, req: req, done: make(chan struct{})}

	l.activeMu.Lock()
	l.active[id] = ir
	l.activeMu.Unlock()

	l.queueMu.Lock()
	l.queue = append(l.queue, ir)
	l.queueMu.Unlock()
	l.queueCV.Signal()

	l.totalRequests.Add(1)
	return id
}

// Wait blocks until request id completes, or returns false immediately
// if id is unknown (already completed and garbage-collected, or never
// issued) — matching spec.md §4.4's wait contract.
func (l *Loader) Wait(id RequestID) bool {
	l.activeMu.Lock()
	ir, ok := l.active[id]
	l.activeMu.Unlock()
	if !ok {
		return false
	}
	<-ir.done
	return ir.success
}

// WaitAll blocks until no requests remain active.
func (l *Loader) WaitAll() {
	for {
		l.activeMu.Lock()
		n := len(l.active)
		l.activeMu.Unlock()
		if n == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

// IsComplete is the non-blocking form of Wait's existence check: an id
// absent from the active set has completed (or never existed).
func (l *Loader) IsComplete(id RequestID) bool {
	l.activeMu.Lock()
	defer l.activeMu.Unlock()
	_, ok := l.active[id]
	return !ok
}

// Stats returns a snapshot of loader activity. AvgBandwidthMBs is total
// bytes transferred divided by wall-clock seconds since Init — spec.md
// §9's Open Question flags the original bytes/completed-requests formula
// as a bug; this is the defensible replacement the spec recommends.
func (l *Loader) Stats() IOStats {
	l.queueMu.Lock()
	pending := len(l.queue)
	l.queueMu.Unlock()

	totalBytes := l.totalBytes.Load()
	elapsed := time.Since(l.startedAt).Seconds()
	var bw float64
	if elapsed > 0 {
		bw = (float64(totalBytes) / (1024 * 1024)) / elapsed
	}

	return IOStats{
		Total:           l.totalRequests.Load(),
		Completed:       l.completed.Load(),
		Failed:          l.failed.Load(),
		Pending:         uint64(pending),
		TotalBytes:      totalBytes,
		AvgBandwidthMBs: bw,
	}
}

// Shutdown signals workers, joins them, and drains pending/active state.
func (l *Loader) Shutdown() {
	l.initMu.Lock()
	if !l.initialized {
		l.initMu.Unlock()
		return
	}
	l.initialized = false
	cancel := l.cancel
	group := l.group
	l.initMu.Unlock()

	l.shuttingDown.Store(true)
	cancel()
	l.queueMu.Lock()
	l.queueCV.Broadcast()
	l.queueMu.Unlock()

	_ = group.Wait()

	l.queueMu.Lock()
	drained := l.queue
	l.queue = nil
	l.queueMu.Unlock()
	for _, ir := range drained {
		close(ir.done)
	}

	l.activeMu.Lock()
	l.active = make(map[RequestID]*internalRequest)
	l.activeMu.Unlock()

	l.shuttingDown.Store(false)
	l.sink.Emit(vtlog.IO, vtlog.Log, "AsyncLoader shut down")
}

// workerLoop blocks on the queue, processes one request per wakeup, and
// exits once ctx is cancelled and the queue has drained.
func (l *Loader) workerLoop(ctx context.Context) {
	for {
		l.queueMu.Lock()
		for len(l.queue) == 0 && ctx.Err() == nil {
			l.queueCV.Wait()
		}
		if len(l.queue) == 0 {
			l.queueMu.Unlock()
			return
		}
		ir := l.queue[0]
		l.queue = l.queue[1:]
		l.queueMu.Unlock()

		l.process(ir)
	}
}

// process performs the positional read and fires completion exactly
// once, per spec.md §4.4's worker loop.
func (l *Loader) process(ir *internalRequest) {
	success, n := l.readInto(ir.req)

	l.totalBytes.Add(uint64(n))
	if success {
		l.completed.Add(1)
	} else {
		l.failed.Add(1)
		l.sink.Emitf(vtlog.IO, vtlog.Warning, "async read failed: %s (%d/%d bytes)", ir.req.FilePath, n, len(ir.req.Dest))
	}

	l.activeMu.Lock()
	delete(l.active, ir.id)
	l.activeMu.Unlock()

	ir.success = success
	ir.bytesRead = n
	close(ir.done)

	if ir.req.OnComplete != nil {
		ir.req.OnComplete(success, n)
	}
}

func (l *Loader) readInto(req ReadRequest) (success bool, bytesRead int) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		l.sink.Emitf(vtlog.IO, vtlog.Error, "failed to open %s: %v", req.FilePath, err)
		return false, 0
	}
	defer f.Close()

	if _, err := f.Seek(req.Offset, io.SeekStart); err != nil {
		l.sink.Emitf(vtlog.IO, vtlog.Error, "failed to seek %s to %d: %v", req.FilePath, req.Offset, err)
		return false, 0
	}

	n, err := io.ReadFull(f, req.Dest)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		l.sink.Emitf(vtlog.IO, vtlog.Error, "failed to read %s: %v", req.FilePath, err)
	}
	return n == len(req.Dest), n
}
