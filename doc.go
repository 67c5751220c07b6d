// Package vtpe implements a virtual texture paging engine: a demand-paged
// cache that makes textures larger than GPU or main memory usable by
// resolving sampled (x, y, mip) coordinates to a small set of resident
// physical pages, backed by LRU eviction under a hard page budget.
//
// The four pieces are PhysicalSpace (the fixed-capacity physical page
// array), VirtualTexture (the per-texture page table), Scheduler (the
// per-frame request processor), and asyncio.Loader (the worker-pool file
// reader that satisfies faults). VTSystem wires all four together behind
// the VTSystem facade described in SPEC_FULL.md §5.5.
package vtpe
