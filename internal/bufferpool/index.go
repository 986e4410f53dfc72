package bufferpool

import "github.com/arvindn/pagepool/pkg/pagehash"

// pageIndex maps a page number to the frame index currently holding
// it. It never stores the noPage sentinel. Backed by pagehash.Table,
// sized to roughly 3x the frame count so probe chains stay short.
type pageIndex struct {
	tbl *pagehash.Table
}

func newPageIndex(capacity int) *pageIndex {
	return &pageIndex{tbl: pagehash.New(capacity)}
}

// get returns the frame index holding pageNum, or false if absent.
func (pi *pageIndex) get(pageNum int) (int, bool) {
	return pi.tbl.Get(int32(pageNum))
}

func (pi *pageIndex) put(pageNum, frameIdx int) {
	pi.tbl.Put(int32(pageNum), frameIdx)
}

func (pi *pageIndex) remove(pageNum int) {
	pi.tbl.Delete(int32(pageNum))
}

func (pi *pageIndex) len() int {
	return pi.tbl.Len()
}
