package asyncio

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/NOT-REAL-GAMES/vtpe/vtlog"
)

func writeTempFile(t *testing.T, contents []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "page.bin")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoader_ReadAsyncSucceeds(t *testing.T) {
	payload := []byte("0123456789abcdef")
	path := writeTempFile(t, payload)

	l := NewLoader(vtlog.Nop{})
	if ok := l.Init(2); !ok {
		t.Fatal("Init failed")
	}
	defer l.Shutdown()

	dest := make([]byte, len(payload))
	var wg sync.WaitGroup
	wg.Add(1)
	var gotSuccess bool
	var gotN int
	id := l.ReadAsync(ReadRequest{
		FilePath: path,
		Offset:   0,
		Dest:     dest,
		OnComplete: func(success bool, n int) {
			gotSuccess, gotN = success, n
			wg.Done()
		},
	})

	if ok := l.Wait(id); !ok {
		t.Error("Wait returned false for a successful read")
	}
	wg.Wait()

	if !gotSuccess || gotN != len(payload) {
		t.Errorf("OnComplete(%v, %d), want (true, %d)", gotSuccess, gotN, len(payload))
	}
	if string(dest) != string(payload) {
		t.Errorf("dest = %q, want %q", dest, payload)
	}
}

func TestLoader_ReadAsyncOffset(t *testing.T) {
	path := writeTempFile(t, []byte("HEADER:payload-bytes"))

	l := NewLoader(vtlog.Nop{})
	l.Init(1)
	defer l.Shutdown()

	dest := make([]byte, len("payload-bytes"))
	id := l.ReadAsync(ReadRequest{FilePath: path, Offset: int64(len("HEADER:")), Dest: dest})
	l.Wait(id)

	if string(dest) != "payload-bytes" {
		t.Errorf("dest = %q, want %q", dest, "payload-bytes")
	}
}

func TestLoader_ReadAsyncFailsOnMissingFile(t *testing.T) {
	l := NewLoader(vtlog.Nop{})
	l.Init(1)
	defer l.Shutdown()

	dest := make([]byte, 4)
	id := l.ReadAsync(ReadRequest{FilePath: "/nonexistent/path/does-not-exist.bin", Dest: dest})
	if ok := l.Wait(id); ok {
		t.Error("Wait should report false for a missing file")
	}
}

func TestLoader_ReadAsyncFailsOnShortFile(t *testing.T) {
	path := writeTempFile(t, []byte("short"))

	l := NewLoader(vtlog.Nop{})
	l.Init(1)
	defer l.Shutdown()

	dest := make([]byte, 100) // longer than file
	id := l.ReadAsync(ReadRequest{FilePath: path, Dest: dest})
	if ok := l.Wait(id); ok {
		t.Error("Wait should report false for a short read")
	}
}

func TestLoader_WaitUnknownIDReturnsFalse(t *testing.T) {
	l := NewLoader(vtlog.Nop{})
	l.Init(1)
	defer l.Shutdown()

	if ok := l.Wait(RequestID(99999)); ok {
		t.Error("Wait on an unknown id should return false")
	}
}

func TestLoader_IsCompleteAndWaitAll(t *testing.T) {
	path := writeTempFile(t, []byte("data"))

	l := NewLoader(vtlog.Nop{})
	l.Init(4)
	defer l.Shutdown()

	ids := make([]RequestID, 10)
	for i := range ids {
		dest := make([]byte, 4)
		ids[i] = l.ReadAsync(ReadRequest{FilePath: path, Dest: dest})
	}

	l.WaitAll()

	for _, id := range ids {
		if !l.IsComplete(id) {
			t.Errorf("request %d should be complete after WaitAll", id)
		}
	}
}

func TestLoader_InitIsIdempotent(t *testing.T) {
	l := NewLoader(vtlog.Nop{})
	if !l.Init(2) {
		t.Fatal("first Init failed")
	}
	if !l.Init(4) {
		t.Fatal("second Init should report success without re-initializing")
	}
	l.Shutdown()
}

func TestLoader_StatsBandwidth(t *testing.T) {
	payload := make([]byte, 1024)
	path := writeTempFile(t, payload)

	l := NewLoader(vtlog.Nop{})
	l.Init(2)
	defer l.Shutdown()

	dest := make([]byte, len(payload))
	id := l.ReadAsync(ReadRequest{FilePath: path, Dest: dest})
	l.Wait(id)

	stats := l.Stats()
	if stats.Completed != 1 {
		t.Errorf("Completed = %d, want 1", stats.Completed)
	}
	if stats.TotalBytes != uint64(len(payload)) {
		t.Errorf("TotalBytes = %d, want %d", stats.TotalBytes, len(payload))
	}
	if stats.AvgBandwidthMBs <= 0 {
		t.Error("AvgBandwidthMBs should be positive once bytes have transferred")
	}
}

func TestLoader_ShutdownDrainsQueue(t *testing.T) {
	path := writeTempFile(t, []byte("data"))

	l := NewLoader(vtlog.Nop{})
	l.Init(1)

	dest := make([]byte, 4)
	l.ReadAsync(ReadRequest{FilePath: path, Dest: dest})

	done := make(chan struct{})
	go func() {
		l.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Shutdown did not return within 2s")
	}

	stats := l.Stats()
	if stats.Pending != 0 {
		t.Errorf("Pending = %d after Shutdown, want 0", stats.Pending)
	}
}
