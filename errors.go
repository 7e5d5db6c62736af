// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "errors"

// ErrOOM is returned by Malloc and Realloc when the page supplier
// refuses to grow the heap further. The heap is left fully
// consistent; pages added before the refusal remain as free space.
var ErrOOM = errors.New("memory: out of memory")

// corrupt reports an invalid client pointer handed to Free or Realloc.
// Per the fail-stop discipline in spec §7.3, this terminates the
// process by default; tests install a recoverable onCorrupt to observe
// the failure instead of killing the test binary.
func (h *Heap) corrupt(msg string) {
	if h.onCorrupt != nil {
		h.onCorrupt(msg)
		return
	}
	panic("memory: " + msg)
}
