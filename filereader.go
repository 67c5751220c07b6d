package vtpe

import "github.com/NOT-REAL-GAMES/vtpe/asyncio"

// FileReader is the async file-reading collaborator the Scheduler
// submits payload fetches to. asyncio.Loader is this module's own
// implementation; Scheduler is written against the interface so callers
// (and tests) can substitute a double, the way vala/canvas.Canvas is an
// interface with two concrete backings chosen by Config.
type FileReader interface {
	ReadAsync(req asyncio.ReadRequest) asyncio.RequestID
	Wait(id asyncio.RequestID) bool
	WaitAll()
	IsComplete(id asyncio.RequestID) bool
	Stats() asyncio.IOStats
	Shutdown()
}
