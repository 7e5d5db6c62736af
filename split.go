// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

// split cleaves an already-allocated block b down to exactly sz bytes
// when the remainder would be at least minBlockSize; otherwise b is
// left intact (no splinter). sz must already be a 64-byte multiple of
// at least minBlockSize.
func (h *Heap) split(b uintptr, sz uint64) {
	total := size(b)
	if total-sz < minBlockSize {
		return
	}

	// Header only: b stays allocated, and a footer at b+sz would land
	// inside the payload that Realloc keeps.
	storeWord(headerAddr(b), headerWord(sz, prevAlloc(b), true))

	r := b + uintptr(sz)
	remSize := total - sz
	setBlock(r, remSize, true, false) // b is allocated, so PREV_ALLOC=1

	h.clearNextPrevAlloc(r)
	h.coalesce(r)
}

// clearNextPrevAlloc clears the PREV_ALLOC bit of the block following
// b, rewriting its footer too when that block is itself free. Shared by
// split (for the new remainder) and Free (module F) in the façade.
func (h *Heap) clearNextPrevAlloc(b uintptr) {
	n := next(b)
	setPrevAlloc(n, false)
}
