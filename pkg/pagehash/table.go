// Package pagehash implements a small open-addressing hash table
// mapping non-negative int32 keys to int values, sized for the buffer
// pool's page-number -> frame-index index: linear probing, tombstones
// on delete, power-of-two capacity fixed at construction.
package pagehash

const (
	stateEmpty = iota
	stateOccupied
	stateTombstone
)

// Table is a fixed-capacity (power-of-two), linear-probing hash table.
// It never grows: the buffer pool sizes it once at init time for a
// known number of frames.
type Table struct {
	keys  []int32
	vals  []int
	state []uint8
	cap   int
	count int
}

// New returns a table whose capacity is the smallest power of two
// that is at least approxEntries*3 (approxEntries is typically the
// buffer pool's frame count), with a minimum capacity of 8.
func New(approxEntries int) *Table {
	cap := 8
	target := approxEntries * 3
	for cap < target {
		cap <<= 1
	}
	return &Table{
		keys:  make([]int32, cap),
		vals:  make([]int, cap),
		state: make([]uint8, cap),
		cap:   cap,
	}
}

// mix is a 32-bit integer avalanche mixer (murmur3-style finalizer).
func mix(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

func (t *Table) slotFor(key int32) int {
	return int(mix(uint32(key))) & (t.cap - 1)
}

// findSlot returns the slot a key occupies (or would occupy if
// inserted): if the key is present, slot is its slot and found is
// true; otherwise found is false and slot is the first
// empty-or-tombstone slot probed, or -1 if the table has none.
func (t *Table) findSlot(key int32) (slot int, found bool) {
	idx := t.slotFor(key)
	firstTombstone := -1

	for probes := 0; probes < t.cap; probes++ {
		switch t.state[idx] {
		case stateEmpty:
			if firstTombstone >= 0 {
				return firstTombstone, false
			}
			return idx, false
		case stateTombstone:
			if firstTombstone < 0 {
				firstTombstone = idx
			}
		case stateOccupied:
			if t.keys[idx] == key {
				return idx, true
			}
		}
		idx = (idx + 1) & (t.cap - 1)
	}
	if firstTombstone >= 0 {
		return firstTombstone, false
	}
	return -1, false
}

// Get returns the value stored for key, or (0, false) if absent.
func (t *Table) Get(key int32) (int, bool) {
	slot, found := t.findSlot(key)
	if !found {
		return 0, false
	}
	return t.vals[slot], true
}

// Put inserts or overwrites the value for key. It reports false if
// the table is full and key was not already present (callers size
// the table generously at construction, so this should not happen in
// practice for this pool's usage).
func (t *Table) Put(key int32, val int) bool {
	slot, found := t.findSlot(key)
	if slot < 0 {
		return false
	}
	if found {
		t.vals[slot] = val
		return true
	}
	t.keys[slot] = key
	t.vals[slot] = val
	t.state[slot] = stateOccupied
	t.count++
	return true
}

// Delete removes key, if present, leaving a tombstone so later probes
// for different keys don't stop early.
func (t *Table) Delete(key int32) {
	slot, found := t.findSlot(key)
	if !found {
		return
	}
	t.state[slot] = stateTombstone
	t.count--
}

// Len returns the number of occupied (non-tombstone) entries.
func (t *Table) Len() int {
	return t.count
}
