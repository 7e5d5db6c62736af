// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

// ensureInit performs first-touch heap setup: one page from the page
// supplier, a 48-byte alignment preamble, the prologue, the epilogue,
// empty (self-linked) free-list sentinels, and the initial single free
// block. It is a no-op once the heap is already initialized, and
// reports false (leaving the heap untouched) if the first page cannot
// be obtained.
func (h *Heap) ensureInit() bool {
	if h.inited {
		return true
	}
	if _, ok := h.pages.Grow(); !ok {
		return false
	}

	h.start = h.pages.Start()
	h.end = h.pages.End()

	for class := range h.sentinels {
		a := h.sentinelAddr(class)
		setNodeNext(a, a)
		setNodePrev(a, a)
	}

	prologue := h.start + preambleSize
	setBlock(prologue, minBlockSize, true, true)

	storeWord(h.end-wordSize, headerWord(0, false, true))

	free := prologue + minBlockSize
	freeSize := uint64((h.end - 2*wordSize) - free)
	setBlock(free, freeSize, true, false)
	h.insert(free)

	h.inited = true
	return true
}
