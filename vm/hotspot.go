package vm

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/aguila-lang/aguila/bytecode"
	"github.com/aguila-lang/aguila/value"
)

// compiledCacheSize bounds the JIT's compiled-function cache so a
// long-running VM that eventually makes thousands of distinct entry PCs hot
// doesn't grow it without limit; the teacher's own map-based caches are
// unbounded, but golang-lru is in the pack precisely for this PC/address
// keyed cache shape (see DESIGN.md).
const compiledCacheSize = 4096

// Tier thresholds, per spec.md's hotspot detector: a call counter per entry
// PC crosses tier1 well before it's hot enough to compile, and tier2 marks
// a site so hot a recompile (after a prior bailout) is worth retrying
// eagerly rather than waiting for the counter to climb from zero again.
const (
	tier1Threshold    uint64 = 100
	hotspotThreshold  uint64 = 1000
	tier2Threshold    uint64 = 5000
)

// compiledFn is the dispatch signature the JIT backend's compiled path
// exposes: given the call's first argument and a handle back to the chunk's
// constant pool, it returns a raw Value bit pattern. This mirrors the
// (entry_pc, first_arg, constants_base) -> bits contract spec.md's JIT
// section documents; entryPC is baked into the closure at compile time
// instead of passed, since compiledFn is already specific to one entry PC.
type compiledFn func(firstArg value.Value, constants []value.Value) value.Value

// HotspotDetector counts calls per bytecode entry PC and decides when a
// function is hot enough to hand to the JIT backend (jitBackend).
type HotspotDetector struct {
	callCounts map[uint32]uint64
	compiled   *lru.Cache
	backend    *jitBackend
}

// NewHotspotDetector returns a detector with a fresh JIT backend.
func NewHotspotDetector() *HotspotDetector {
	cache, err := lru.New(compiledCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// compiledCacheSize never is.
		panic(err)
	}
	return &HotspotDetector{
		callCounts: make(map[uint32]uint64),
		compiled:   cache,
		backend:    newJITBackend(),
	}
}

// RecordCall bumps entryPC's call counter and, on crossing hotspotThreshold,
// asks the backend to compile it. A prior failed compile attempt is retried
// once the counter reaches tier2Threshold, since a site that hot is worth a
// second attempt even if the first one bailed.
func (h *HotspotDetector) RecordCall(entryPC uint32, chunkCode []bytecode.Instruction, specialized func(pc int) bool) {
	h.callCounts[entryPC]++
	count := h.callCounts[entryPC]

	if h.compiled.Contains(entryPC) {
		return
	}
	if count == hotspotThreshold || count == tier2Threshold {
		if fn, ok := h.backend.compile(entryPC, chunkCode, specialized); ok {
			h.compiled.Add(entryPC, fn)
		}
	}
}

// Tier reports the coarse tier (0, 1, or 2) entryPC's call count has
// reached, for diagnostics. Nothing in the VM calls it.
func (h *HotspotDetector) Tier(entryPC uint32) int {
	count := h.callCounts[entryPC]
	switch {
	case count >= tier2Threshold:
		return 2
	case count >= tier1Threshold:
		return 1
	default:
		return 0
	}
}

// Lookup returns the compiled native path for entryPC, if the backend has
// produced one.
func (h *HotspotDetector) Lookup(entryPC uint32) (compiledFn, bool) {
	v, ok := h.compiled.Get(entryPC)
	if !ok {
		return nil, false
	}
	return v.(compiledFn), true
}

// CallCount returns the raw call counter for entryPC (tests and
// diagnostics).
func (h *HotspotDetector) CallCount(entryPC uint32) uint64 {
	return h.callCounts[entryPC]
}
