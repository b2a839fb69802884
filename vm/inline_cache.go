package vm

// cacheState is an inline cache's current regime, mirroring the classic
// monomorphic -> polymorphic -> megamorphic progression.
type cacheState uint8

const (
	cacheEmpty cacheState = iota
	cacheMonomorphic
	cachePolymorphic
	cacheMegamorphic
)

// polymorphicLimit is how many distinct receiver shapes a polymorphic cache
// tracks before degrading to megamorphic.
const polymorphicLimit = 4

// shapeEntry pairs a receiver "shape" (here, the object-table kind plus, for
// an Instance, its class handle) with the property's resolved slot.
type shapeEntry struct {
	classHandle uint32 // 0 for non-instance receivers
	entryPC     uint32
	isNative    bool
	nativeIdx   uint32
}

// InlineCacheSite is the per-(PC, property name) cache PropGet consults
// before falling back to a full class-chain lookup.
type InlineCacheSite struct {
	state   cacheState
	entries []shapeEntry

	hits   uint64
	misses uint64
}

// InlineCache indexes one InlineCacheSite per (PC, property name) pair seen
// so far. Chunks don't carry per-instruction scratch space, so the VM keeps
// this alongside the chunk rather than inside it.
type InlineCache struct {
	sites map[cacheKey]*InlineCacheSite
}

type cacheKey struct {
	pc   int
	name string
}

// NewInlineCache returns an empty cache.
func NewInlineCache() *InlineCache {
	return &InlineCache{sites: make(map[cacheKey]*InlineCacheSite)}
}

func (c *InlineCache) site(pc int, name string) *InlineCacheSite {
	key := cacheKey{pc, name}
	s, ok := c.sites[key]
	if !ok {
		s = &InlineCacheSite{}
		c.sites[key] = s
	}
	return s
}

// Lookup consults the cache for (pc, name, classHandle). It returns the
// cached resolution and true on a hit; otherwise false, and the caller is
// expected to do a full lookup and call Record.
func (c *InlineCache) Lookup(pc int, name string, classHandle uint32) (shapeEntry, bool) {
	s := c.site(pc, name)
	for _, e := range s.entries {
		if e.classHandle == classHandle {
			s.hits++
			return e, true
		}
	}
	s.misses++
	return shapeEntry{}, false
}

// Record stores a freshly resolved (classHandle -> slot) mapping, growing
// monomorphic -> polymorphic -> megamorphic as distinct shapes accumulate.
func (c *InlineCache) Record(pc int, name string, entry shapeEntry) {
	s := c.site(pc, name)
	switch s.state {
	case cacheEmpty:
		s.state = cacheMonomorphic
		s.entries = []shapeEntry{entry}
	case cacheMonomorphic:
		s.state = cachePolymorphic
		s.entries = append(s.entries, entry)
	case cachePolymorphic:
		if len(s.entries) >= polymorphicLimit {
			s.state = cacheMegamorphic
			s.entries = nil
			return
		}
		s.entries = append(s.entries, entry)
	case cacheMegamorphic:
		// Megamorphic sites stop caching shapes; every PropGet does a full
		// lookup. This matches spec.md's "clears the cache on the 5th
		// distinct type" rule (4 polymorphic slots already used).
	}
}

// HitRate returns (hits / (hits + misses)) for the site at (pc, name), or 0
// if it has never been consulted.
func (c *InlineCache) HitRate(pc int, name string) float64 {
	s := c.site(pc, name)
	total := s.hits + s.misses
	if total == 0 {
		return 0
	}
	return float64(s.hits) / float64(total)
}
