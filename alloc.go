// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"fmt"
	"reflect"
	"unsafe"
)

// roundUp rounds n up to the next multiple of m; m must be a power of
// two. Ported from the teacher's roundup helper.
func roundUp(n, m int) int { return (n + m - 1) &^ (m - 1) }

// mallocSize computes the effective, 64-byte-aligned block size for a
// payload request of n bytes: round_up(n+8, 64), at least minBlockSize.
func mallocSize(n int) uint64 {
	sz := roundUp(n+wordSize, alignment)
	if sz < minBlockSize {
		sz = minBlockSize
	}
	return uint64(sz)
}

func blockFromPayload(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0])) - 2*wordSize
}

func payloadSlice(b uintptr, n int, blockSize uint64) []byte {
	var out []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&out))
	sh.Data = bodyAddr(b)
	sh.Len = n
	sh.Cap = int(blockSize) - 2*wordSize
	return out
}

// Malloc allocates n bytes and returns a payload slice whose address is
// 64-byte aligned. Malloc panics for n < 0 and returns (nil, nil),
// without touching Errno, for n == 0. On heap exhaustion it returns
// (nil, ErrOOM) and sets Errno to ErrnoOutOfMemory; no block is
// allocated, and pages the heap gained while searching stay in it as
// free space.
func (h *Heap) Malloc(n int) (r []byte, err error) {
	if h.Trace != nil {
		defer func() {
			fmt.Fprintf(h.Trace, "Malloc(%#x) %p, %v\n", n, dataPtr(r), err)
		}()
	}
	if n < 0 {
		panic("memory: invalid malloc size")
	}
	if n == 0 {
		return nil, nil
	}

	if !h.ensureInit() {
		h.Errno = ErrnoOutOfMemory
		return nil, ErrOOM
	}

	sz := mallocSize(n)
	b, err := h.find(sz)
	if err != nil {
		h.Errno = ErrnoOutOfMemory
		return nil, err
	}

	setBlock(b, size(b), prevAlloc(b), true)
	setPrevAlloc(next(b), true)
	h.split(b, sz)

	return payloadSlice(b, n, size(b)), nil
}

// Free deallocates memory returned by Malloc or Realloc. If p is
// invalid — not the address a prior allocation returned, already free,
// or inconsistent with its recorded neighbor state — Free terminates
// the process (spec §7.3): silently returning an error here would let
// heap corruption propagate.
func (h *Heap) Free(p []byte) {
	if h.Trace != nil {
		defer fmt.Fprintf(h.Trace, "Free(%p)\n", dataPtr(p))
	}
	if len(p) == 0 {
		return
	}

	b := blockFromPayload(p)
	if !h.validate(b) {
		h.Errno = ErrnoInvalidArgument
		h.corrupt("free: invalid pointer")
		return
	}

	setBlock(b, size(b), prevAlloc(b), false)
	h.clearNextPrevAlloc(b)
	h.coalesce(b)
}

// Realloc resizes the allocation backing p to n bytes, preserving the
// contents up to the smaller of the old and new sizes. A size of 0 is
// equivalent to Free(p), returning (nil, nil). An invalid p terminates
// the process, as in Free.
func (h *Heap) Realloc(p []byte, n int) (r []byte, err error) {
	if h.Trace != nil {
		defer func() {
			fmt.Fprintf(h.Trace, "Realloc(%p, %#x) %p, %v\n", dataPtr(p), n, dataPtr(r), err)
		}()
	}
	if n == 0 {
		h.Free(p)
		return nil, nil
	}

	b := blockFromPayload(p)
	if !h.validate(b) {
		h.Errno = ErrnoInvalidArgument
		h.corrupt("realloc: invalid pointer")
		return nil, nil
	}

	cur := size(b)
	sz := mallocSize(n)

	switch {
	case sz < cur:
		h.split(b, sz)
		return payloadSlice(b, n, size(b)), nil
	case sz == cur:
		return payloadSlice(b, n, cur), nil
	default:
		nb, err := h.Malloc(n)
		if err != nil {
			return nil, err
		}
		copy(nb, p)
		h.Free(p)
		return nb, nil
	}
}

// validate rejects b unless it is the block of a currently allocated,
// in-bounds, correctly aligned payload whose PREV_ALLOC bit is
// consistent with its predecessor's actual state.
func (h *Heap) validate(b uintptr) bool {
	if b == 0 {
		return false
	}
	body := bodyAddr(b)
	if body%alignment != 0 {
		return false
	}
	if body < h.start+preambleSize {
		return false
	}
	if body > h.end-wordSize {
		return false
	}
	if isFree(b) {
		return false
	}
	if !prevAlloc(b) && !isFree(prev(b)) {
		return false
	}
	return true
}

func dataPtr(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}
