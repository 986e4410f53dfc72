// Package bufferpool implements a fixed-capacity in-memory cache of
// fixed-size disk pages: a frame table, a page-number-to-frame index,
// pluggable FIFO/LRU/CLOCK replacement, and the pin/unpin/dirty/flush
// protocol that keeps them consistent under a single coarse mutex.
package bufferpool

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/arvindn/pagepool/internal/pagefile"
)

const logPrefix = "bufferpool: "

// PageHandle is the client-facing result of Pin: a page number paired
// with a pointer into the frame's own buffer. The pointer aliases the
// frame's storage and stays valid until the matching Unpin — the pool
// never re-reads it before then, and the client is responsible for
// its own read/write discipline on it in the meantime.
type PageHandle struct {
	PageNum int
	Data    []byte
}

// Pool is the public buffer-pool coordinator. Every public method is
// serialized end-to-end by a single mutex.
type Pool struct {
	mu sync.Mutex

	file     *pagefile.File
	frames   []*Frame
	index    *pageIndex
	replacer replacer
	strategy Strategy

	tick int64

	numReadIO  int64
	numWriteIO int64

	snap *snapshot
}

// Open opens (creating if necessary) the page file at path and builds
// a Pool with the given frame capacity and replacement strategy.
// capacity must be >= 1.
func Open(path string, capacity int, strategy Strategy) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be >= 1, got %d", ErrBadArgs, capacity)
	}

	f, err := pagefile.OpenOrCreate(path)
	if err != nil {
		return nil, fmt.Errorf("%sopen page file: %w", logPrefix, err)
	}

	p := &Pool{
		file:     f,
		frames:   make([]*Frame, capacity),
		index:    newPageIndex(capacity),
		replacer: newReplacer(strategy),
		strategy: strategy,
		snap:     newSnapshot(capacity),
	}
	for i := range p.frames {
		p.frames[i] = newFrame()
	}
	p.refreshSnapshot()

	slog.Debug(logPrefix+"opened", "path", path, "capacity", capacity, "strategy", strategy.String())
	return p, nil
}

func (p *Pool) refreshSnapshot() {
	p.snap.refresh(p.frames)
}

// Shutdown flushes every dirty frame and releases the pool's file
// handle. It forces every frame's pin count to zero first rather than
// refusing to shut down with pages pinned: a page still pinned at
// shutdown is a caller bug, and clean resource release wins.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return ErrHandleNotInit
	}

	for _, f := range p.frames {
		f.FixCount = 0
	}
	for i := range p.frames {
		if err := p.flush(i); err != nil {
			slog.Error(logPrefix+"shutdown: flush failed, resources may leak", "frame", i, "err", err)
			return err
		}
	}

	err := p.file.Close()
	p.file = nil
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// ForceFlushPool flushes every dirty, unpinned frame. Pinned frames
// are left untouched; no frame is evicted and no pin count changes.
func (p *Pool) ForceFlushPool() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return ErrHandleNotInit
	}

	for i, f := range p.frames {
		if f.FixCount != 0 {
			continue
		}
		if err := p.flush(i); err != nil {
			return err
		}
	}
	p.refreshSnapshot()
	return nil
}

// flush writes frame i back to disk if it is dirty. Empty or clean
// frames are a no-op. The caller must hold p.mu.
func (p *Pool) flush(i int) error {
	f := p.frames[i]
	if f.empty() || !f.Dirty {
		return nil
	}

	if err := p.file.EnsureCapacity(f.PageNum + 1); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := p.file.Write(f.PageNum, f.Data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	p.numWriteIO++
	f.Dirty = false
	slog.Debug(logPrefix+"flushed frame", "frame", i, "page", f.PageNum)
	return nil
}

// Pin brings pageNum into a resident frame (if it isn't already) and
// increments its pin count. On a hit, it bumps LastUsed and RefBit;
// on a miss, it evicts (flushing if dirty) or claims a free frame,
// loads the page, and returns a handle aliasing the frame's buffer.
func (p *Pool) Pin(pageNum int) (*PageHandle, error) {
	if pageNum < 0 {
		return nil, fmt.Errorf("%w: negative page number %d", ErrBadArgs, pageNum)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return nil, ErrHandleNotInit
	}

	p.tick++

	if idx, ok := p.index.get(pageNum); ok {
		f := p.frames[idx]
		f.FixCount++
		f.LastUsed = p.tick
		f.RefBit = true
		p.refreshSnapshot()
		slog.Debug(logPrefix+"pin hit", "page", pageNum, "frame", idx, "fixCount", f.FixCount)
		return &PageHandle{PageNum: pageNum, Data: f.Data}, nil
	}

	target := p.findEmptyFrame()
	if target < 0 {
		victim, ok := p.replacer.SelectVictim(p.frames)
		if !ok {
			return nil, ErrNoFreeFrame
		}
		target = victim

		if err := p.flush(target); err != nil {
			return nil, err
		}
		if !p.frames[target].empty() {
			p.index.remove(p.frames[target].PageNum)
		}
	}

	if err := p.loadInto(target, pageNum); err != nil {
		return nil, err
	}

	f := p.frames[target]
	f.FixCount = 1
	f.LastUsed = p.tick
	f.RefBit = true
	p.index.put(pageNum, target)
	p.refreshSnapshot()

	slog.Debug(logPrefix+"pin miss loaded", "page", pageNum, "frame", target)
	return &PageHandle{PageNum: pageNum, Data: f.Data}, nil
}

// findEmptyFrame linearly scans for an unused frame. The caller must
// hold p.mu.
func (p *Pool) findEmptyFrame() int {
	for i, f := range p.frames {
		if f.empty() && f.FixCount == 0 {
			return i
		}
	}
	return -1
}

// loadInto reads pageNum into frame idx. The frame is reset first so
// a failed grow leaves it empty rather than claiming a page the index
// no longer maps. A failing read zero-fills the buffer and the load
// proceeds as a new page rather than failing outright; numReadIO
// counts only successful reads.
func (p *Pool) loadInto(idx, pageNum int) error {
	f := p.frames[idx]
	f.reset()

	if err := p.file.EnsureCapacity(pageNum + 1); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if err := p.file.Read(pageNum, f.Data); err != nil {
		slog.Debug(logPrefix+"read failed mid-miss, zero-filling", "page", pageNum, "err", err)
		for i := range f.Data {
			f.Data[i] = 0
		}
	} else {
		p.numReadIO++
	}

	f.PageNum = pageNum
	f.LastUsed = p.tick
	f.FifoPos = p.tick
	f.RefBit = true
	return nil
}

// Unpin decrements the pin count of the page in h. Decrementing below
// zero is silently clamped — documented leniency matching the
// defensive-shutdown policy, not a bug.
func (p *Pool) Unpin(h *PageHandle) error {
	if h == nil {
		return fmt.Errorf("%w: nil handle", ErrBadArgs)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return ErrHandleNotInit
	}

	idx, ok := p.index.get(h.PageNum)
	if !ok {
		return fmt.Errorf("%w: page %d", ErrPageNotResident, h.PageNum)
	}

	f := p.frames[idx]
	if f.FixCount > 0 {
		f.FixCount--
	}
	p.refreshSnapshot()
	return nil
}

// MarkDirty flags the page in h as modified. Marking an already-dirty
// page dirty again is a no-op.
func (p *Pool) MarkDirty(h *PageHandle) error {
	if h == nil {
		return fmt.Errorf("%w: nil handle", ErrBadArgs)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return ErrHandleNotInit
	}

	idx, ok := p.index.get(h.PageNum)
	if !ok {
		return fmt.Errorf("%w: page %d", ErrPageNotResident, h.PageNum)
	}
	p.frames[idx].Dirty = true
	p.refreshSnapshot()
	return nil
}

// ForcePage flushes the page in h immediately, even if it is pinned.
func (p *Pool) ForcePage(h *PageHandle) error {
	if h == nil {
		return fmt.Errorf("%w: nil handle", ErrBadArgs)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.file == nil {
		return ErrHandleNotInit
	}

	idx, ok := p.index.get(h.PageNum)
	if !ok {
		return fmt.Errorf("%w: page %d", ErrPageNotResident, h.PageNum)
	}
	if err := p.flush(idx); err != nil {
		return err
	}
	p.refreshSnapshot()
	return nil
}

// FrameContents returns the current page number resident in each
// frame (noPage for an empty frame), refreshed as of the last call
// into the pool.
func (p *Pool) FrameContents() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshSnapshot()
	out := make([]int, len(p.snap.pageNum))
	copy(out, p.snap.pageNum)
	return out
}

// DirtyFlags returns the dirty bit of each frame.
func (p *Pool) DirtyFlags() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshSnapshot()
	out := make([]bool, len(p.snap.dirty))
	copy(out, p.snap.dirty)
	return out
}

// FixCounts returns the pin count of each frame.
func (p *Pool) FixCounts() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshSnapshot()
	out := make([]int, len(p.snap.fixCount))
	copy(out, p.snap.fixCount)
	return out
}

// NumReadIO returns the count of successful page reads issued against
// the file adapter. Monotonic; read under the pool mutex.
func (p *Pool) NumReadIO() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numReadIO
}

// NumWriteIO returns the count of successful page writes issued
// against the file adapter.
func (p *Pool) NumWriteIO() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numWriteIO
}

// Capacity returns the number of frames in the pool.
func (p *Pool) Capacity() int {
	return len(p.frames)
}

// Strategy returns the pool's configured replacement strategy.
func (p *Pool) Strategy() Strategy {
	return p.strategy
}
