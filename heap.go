// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"io"
	"unsafe"
)

const (
	wordSize     = 8  // header and footer are one native word wide
	alignment    = 64 // required payload alignment
	minBlockSize = 64 // smallest block, in bytes
	preambleSize = 48 // alignment padding before the prologue

	// PageSize is the fixed growth increment requested from a
	// PageSource, matching the protocol constant in the allocator's
	// external interface.
	PageSize = 8192

	numFreeListClasses = 9
)

// Header/footer flag bits. The high bits (all but these two) hold the
// block size, always a multiple of 64.
const (
	flagThisAlloc uint64 = 1 << 0
	flagPrevAlloc uint64 = 1 << 1
	sizeMask      uint64 = ^uint64(flagThisAlloc | flagPrevAlloc)
)

// Heap is a single, growable, 64-byte-aligned dynamic memory heap. Its
// zero value is not usable; construct one with NewHeap. A Heap is not
// safe for concurrent use: the engine is single-threaded by design, the
// same way a single C process only ever has one sbrk-backed heap.
type Heap struct {
	pages PageSource

	start  uintptr // lowest heap address, fixed once initialized
	end    uintptr // one past the highest mapped address (epilogue end)
	inited bool

	sentinels [numFreeListClasses]freeNode

	// Errno mirrors the process-wide errno of the external interface:
	// left untouched on success, set on OOM, consulted by callers that
	// want the taxonomy from spec §7 instead of a bare error value.
	Errno int

	// Trace, if non-nil, receives a line of text for every Malloc,
	// Free and Realloc call, mirroring the teacher's trace-gated
	// debug logging.
	Trace io.Writer

	// onCorrupt is called instead of panicking when Free or Realloc
	// is handed an invalid pointer. Tests override it to observe
	// fail-stop behavior without killing the test binary.
	onCorrupt func(msg string)
}

// NewHeap creates a Heap backed by pages. The heap itself performs no
// I/O until the first Malloc.
func NewHeap(pages PageSource) *Heap {
	return &Heap{pages: pages}
}

// errno values for the Errno field, per the external interface's
// taxonomy (spec §6, §7).
const (
	ErrnoNone            = 0
	ErrnoOutOfMemory     = 1
	ErrnoInvalidArgument = 2
)

// --- Block encoding (module A) -------------------------------------
//
// These are the only functions that touch raw heap memory; every other
// component is expressed in terms of them. A block address B always
// refers to the start of its previous-footer slot: B+8 is the header,
// B+16 is the body (the payload address for an allocated block).

func loadWord(addr uintptr) uint64 {
	return *(*uint64)(unsafe.Pointer(addr))
}

func storeWord(addr uintptr, w uint64) {
	*(*uint64)(unsafe.Pointer(addr)) = w
}

func headerAddr(b uintptr) uintptr { return b + wordSize }
func bodyAddr(b uintptr) uintptr   { return b + 2*wordSize }

// headerWord packs a size and its two flag bits into one header (or
// footer) word.
func headerWord(size uint64, prevAlloc, thisAlloc bool) uint64 {
	w := size
	if prevAlloc {
		w |= flagPrevAlloc
	}
	if thisAlloc {
		w |= flagThisAlloc
	}
	return w
}

// size returns the block's size in bytes, with the flag bits cleared.
func size(b uintptr) uint64 {
	return loadWord(headerAddr(b)) & sizeMask
}

// isFree reports whether b is a free block. The size check rejects the
// epilogue (size 0) and any corrupt zero-size header.
func isFree(b uintptr) bool {
	hdr := loadWord(headerAddr(b))
	return hdr&flagThisAlloc == 0 && hdr&sizeMask >= minBlockSize
}

// thisAlloc reports the THIS_ALLOC bit of b's header.
func thisAlloc(b uintptr) bool {
	return loadWord(headerAddr(b))&flagThisAlloc != 0
}

// prevAlloc reports the PREV_ALLOC bit of b's header: whether the block
// immediately preceding b is allocated (or is the prologue).
func prevAlloc(b uintptr) bool {
	return loadWord(headerAddr(b))&flagPrevAlloc != 0
}

// next returns the address of the block immediately following b.
func next(b uintptr) uintptr {
	return b + uintptr(size(b))
}

// prev returns the address of the block immediately preceding b. Valid
// only when prevAlloc(b) is false, i.e. the predecessor is free and its
// footer (mirrored into b's previous-footer slot) is meaningful.
func prev(b uintptr) uintptr {
	prevSize := loadWord(b) & sizeMask
	return b - uintptr(prevSize)
}

// writeFooter writes w into the last 8 bytes of b's footprint, i.e.
// into next(b)'s previous-footer slot, using b's current size.
func writeFooter(b uintptr, w uint64) {
	storeWord(next(b), w)
}

// setBlock writes b's header (and, harmlessly, its footer slot) for the
// given size and flags. The footer write is meaningless but harmless
// when thisAlloc is true, since only the next block's PREV_ALLOC bit
// matters for an allocated block.
func setBlock(b uintptr, sz uint64, prevA, thisA bool) {
	w := headerWord(sz, prevA, thisA)
	storeWord(headerAddr(b), w)
	writeFooter(b, w)
}

// setPrevAlloc rewrites b's header (and footer, if b is free) with its
// PREV_ALLOC bit set to v, leaving size and THIS_ALLOC untouched.
func setPrevAlloc(b uintptr, v bool) {
	sz := size(b)
	alloc := thisAlloc(b)
	w := headerWord(sz, v, alloc)
	storeWord(headerAddr(b), w)
	if !alloc {
		writeFooter(b, w)
	}
}
