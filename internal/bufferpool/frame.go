package bufferpool

import "github.com/arvindn/pagepool/internal/pagefile"

// noPage is the sentinel page number meaning "this frame is empty".
const noPage = -1

// Frame is one slot of the in-memory page cache.
type Frame struct {
	// PageNum is the page identity currently resident, or noPage.
	PageNum int

	// Data is the frame's owned buffer, always exactly
	// pagefile.PageSize bytes for the lifetime of the pool.
	Data []byte

	// Dirty is set when a client has modified the page since load or
	// last flush.
	Dirty bool

	// FixCount is the number of outstanding pins. A frame with
	// FixCount > 0 is never a valid eviction victim.
	FixCount int

	// LastUsed is the tick stamped at every pin (hit or load); LRU's
	// victim-selection key.
	LastUsed int64

	// FifoPos is the tick stamped only at load time (not on
	// subsequent hits); FIFO's victim-selection key.
	FifoPos int64

	// RefBit is CLOCK's second-chance flag: set on load or pin,
	// cleared by the CLOCK sweep.
	RefBit bool
}

func newFrame() *Frame {
	return &Frame{
		PageNum: noPage,
		Data:    make([]byte, pagefile.PageSize),
	}
}

// empty reports whether the frame holds no page.
func (f *Frame) empty() bool {
	return f.PageNum == noPage
}

// evictable reports whether the frame may be selected as a victim:
// resident and unpinned.
func (f *Frame) evictable() bool {
	return !f.empty() && f.FixCount == 0
}

func (f *Frame) reset() {
	f.PageNum = noPage
	f.Dirty = false
	f.FixCount = 0
	f.LastUsed = 0
	f.FifoPos = 0
	f.RefBit = false
	for i := range f.Data {
		f.Data[i] = 0
	}
}
