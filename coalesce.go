// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

// coalesce merges a just-freed block b (THIS_ALLOC already cleared,
// footer already written, neighbor's PREV_ALLOC already cleared) with
// any adjacent free neighbors, then inserts the result into the
// free-list index. It returns the address of the merged block.
func (h *Heap) coalesce(b uintptr) uintptr {
	if !prevAlloc(b) {
		p := prev(b)
		h.remove(p)
		merged := size(p) + size(b)
		setBlock(p, merged, prevAlloc(p), false)
		b = p
	}

	if n := next(b); isFree(n) {
		h.remove(n)
		merged := size(b) + size(n)
		// Preserve b's own PREV_ALLOC explicitly: the source this was
		// ported from relies on the bit already being set correctly
		// and skips re-OR'ing it here, which spec flags as fragile.
		setBlock(b, merged, prevAlloc(b), false)
	}

	h.insert(b)
	return b
}
