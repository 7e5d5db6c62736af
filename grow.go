// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

// grow requests one page from the page supplier, stitches it to the
// previous epilogue, and coalesces at the seam. It reports ErrOOM,
// leaving the heap in its previous, fully consistent state, if the
// page supplier refuses to grow.
func (h *Heap) grow() error {
	oldEnd := h.end

	if _, ok := h.pages.Grow(); !ok {
		return ErrOOM
	}
	h.end = h.pages.End()

	// epilogueBlock is the block-address representation of the old
	// epilogue: its header slot is exactly where the old epilogue word
	// lived, so prevAlloc(epilogueBlock) reads that word's PREV_ALLOC
	// bit, which malloc/free keep in sync like any other block's.
	epilogueBlock := oldEnd - 2*wordSize

	var region uintptr
	var regionSize uint64
	if !prevAlloc(epilogueBlock) {
		// The block before the old epilogue is free: extend it in
		// place to cover the new page instead of creating a separate
		// block. It may now belong to a different size class, so it
		// is unlinked here and reinserted by coalesce below.
		p := prev(epilogueBlock)
		h.remove(p)
		region = p
		regionSize = size(p) + PageSize
		setBlock(region, regionSize, prevAlloc(p), false)
	} else {
		region = epilogueBlock
		regionSize = PageSize
		setBlock(region, regionSize, true, false)
	}

	storeWord(h.end-wordSize, headerWord(0, false, true))

	h.coalesce(region)
	return nil
}
