// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "unsafe"

// fibThresholds are the Fibonacci sequence bounds of classes 0..7,
// expressed as multiples of minBlockSize; class 8 is unbounded.
//
//	0: exactly 1      3: (3,5]      6: (13,21]
//	1: exactly 2      4: (5,8]      7: (21,34]
//	2: exactly 3      5: (8,13]     8: >34
var fibThresholds = [numFreeListClasses - 1]uint64{1, 2, 3, 5, 8, 13, 21, 34}

// classify returns the smallest index i such that fibThresholds[i] *
// minBlockSize >= sz, clamped to the last, unbounded class.
func classify(sz uint64) int {
	m := sz / minBlockSize
	for i, t := range fibThresholds {
		if t >= m {
			return i
		}
	}
	return numFreeListClasses - 1
}

// freeNode is the two-word (next, prev) link pair stored at the start
// of a free block's body, and also the shape of a list's sentinel.
// List nodes are named by block address, so the links of node addr sit
// at bodyAddr(addr); sentinelAddr returns the address that same offset
// below a sentinel, letting the free-list operations below treat a
// sentinel and a free block interchangeably.
type freeNode struct {
	next uint64
	prev uint64
}

func (h *Heap) sentinelAddr(class int) uintptr {
	return uintptr(unsafe.Pointer(&h.sentinels[class])) - 2*wordSize
}

func nodeNext(addr uintptr) uintptr { return uintptr(loadWord(bodyAddr(addr))) }
func nodePrev(addr uintptr) uintptr { return uintptr(loadWord(bodyAddr(addr) + wordSize)) }

func setNodeNext(addr, v uintptr) { storeWord(bodyAddr(addr), uint64(v)) }
func setNodePrev(addr, v uintptr) { storeWord(bodyAddr(addr)+wordSize, uint64(v)) }

// insert requires isFree(b) and threads b onto the head of the list for
// its size class (LIFO discipline): the sentinel's next becomes b.
func (h *Heap) insert(b uintptr) {
	class := classify(size(b))
	head := h.sentinelAddr(class)
	first := nodeNext(head)
	setNodePrev(first, b)
	setNodeNext(b, first)
	setNodePrev(b, head)
	setNodeNext(head, b)
}

// remove unlinks b from its free list in O(1) using its own next/prev
// fields; it performs no search and does not require knowing b's class.
func (h *Heap) remove(b uintptr) {
	p := nodePrev(b)
	n := nodeNext(b)
	setNodeNext(p, n)
	setNodePrev(n, p)
}

// find scans classes from classify(sz) upward, walking each list
// head-to-tail, and returns the first block with size >= sz, removing
// it from its list. On exhaustion it grows the heap and restarts the
// scan; it reports failure only when growth itself fails.
func (h *Heap) find(sz uint64) (uintptr, error) {
	for {
		for class := classify(sz); class < numFreeListClasses; class++ {
			head := h.sentinelAddr(class)
			for cur := nodeNext(head); cur != head; cur = nodeNext(cur) {
				if size(cur) >= sz {
					h.remove(cur)
					return cur, nil
				}
			}
		}
		if err := h.grow(); err != nil {
			return 0, err
		}
	}
}
