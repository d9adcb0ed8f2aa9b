// Package cachesim is a side-channel cache simulator for instruction
// and data memory accesses, per spec.md's external interface "to the
// cache (outbound)". It only counts hits and misses for the addresses
// passed to Observe; the a64pipe Machine does not call it, so a caller
// that wants statistics reports each access itself.
package cachesim

// Observer is notified of a memory access by calling Observe. It
// never influences the access itself.
type Observer interface {
	Observe(addr uint64, isWrite bool)
	Stats() Stats
}

// Stats is a snapshot of hit/miss counters.
type Stats struct {
	Hits, Misses uint64
}

// Nop is a no-op Observer for when cache statistics are not wanted.
type Nop struct{}

func (Nop) Observe(addr uint64, isWrite bool) {}
func (Nop) Stats() Stats                      { return Stats{} }

// DirectMapped is a minimal direct-mapped cache simulator: lineBytes
// must be a power of two, and sets is the number of cache lines.
type DirectMapped struct {
	lineBits uint
	setMask  uint64
	tags     []uint64
	valid    []bool
	stats    Stats
}

// NewDirectMapped builds a direct-mapped cache with the given number
// of sets (rounded down to a power of two, minimum 1) and line size
// in bytes (rounded down to a power of two, minimum 1).
func NewDirectMapped(sets, lineBytes int) *DirectMapped {
	sets = floorPow2(sets)
	lineBytes = floorPow2(lineBytes)

	lineBits := uint(0)
	for (1 << lineBits) < lineBytes {
		lineBits++
	}

	return &DirectMapped{
		lineBits: lineBits,
		setMask:  uint64(sets - 1),
		tags:     make([]uint64, sets),
		valid:    make([]bool, sets),
	}
}

func floorPow2(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

func (c *DirectMapped) Observe(addr uint64, isWrite bool) {
	line := addr >> c.lineBits
	set := line & c.setMask
	tag := line

	if c.valid[set] && c.tags[set] == tag {
		c.stats.Hits++
		return
	}

	c.stats.Misses++
	c.valid[set] = true
	c.tags[set] = tag
}

func (c *DirectMapped) Stats() Stats { return c.stats }
