// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"sync"

	"github.com/cznic/mathutil"
)

// defaultMaxHeapBytes bounds the process-wide default heap. It is
// rounded up to a power-of-two page count using the same BitLen trick
// the teacher uses to pick a size-class log, so the reservation lands
// on a round number of pages instead of an arbitrary one.
const defaultMaxHeapBytes = 128 << 20 // 128MiB

func defaultPageCapacity(minBytes int) int {
	pages := roundUp(minBytes, PageSize) / PageSize
	if pages < 1 {
		pages = 1
	}
	log := uint(mathutil.BitLen(pages - 1))
	return 1 << log
}

var (
	defaultOnce sync.Once
	defaultHeap *Heap
)

func theDefaultHeap() *Heap {
	defaultOnce.Do(func() {
		pages := defaultPageCapacity(defaultMaxHeapBytes)
		src, err := NewOSPageSource(pages * PageSize)
		if err != nil {
			// A reservation failure here means the process is already
			// in trouble (address space exhaustion); fall back to a
			// small simulated source so the process can still report
			// ErrOOM through the normal Malloc path instead of dying
			// during package initialization.
			src2 := NewSimulatedPageSource(1)
			defaultHeap = NewHeap(src2)
			return
		}
		defaultHeap = NewHeap(src)
	})
	return defaultHeap
}

// Malloc allocates n bytes from the process-wide default heap. See
// (*Heap).Malloc.
func Malloc(n int) ([]byte, error) { return theDefaultHeap().Malloc(n) }

// Free deallocates memory returned by Malloc or Realloc on the
// process-wide default heap. See (*Heap).Free.
func Free(p []byte) { theDefaultHeap().Free(p) }

// Realloc resizes memory returned by Malloc or Realloc on the
// process-wide default heap. See (*Heap).Realloc.
func Realloc(p []byte, n int) ([]byte, error) { return theDefaultHeap().Realloc(p, n) }

// Errno reports the process-wide default heap's errno, per the
// external interface's taxonomy (spec §6).
func Errno() int { return theDefaultHeap().Errno }
