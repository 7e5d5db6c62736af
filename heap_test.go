// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestHeap(t *testing.T, maxPages int) *Heap {
	t.Helper()
	h := NewHeap(NewSimulatedPageSource(maxPages))
	h.onCorrupt = func(msg string) { t.Fatalf("unexpected corruption: %s", msg) }
	return h
}

func TestHeaderWordRoundTrip(t *testing.T) {
	cases := []struct {
		size         uint64
		prevA, thisA bool
	}{
		{64, false, false},
		{64, true, false},
		{64, false, true},
		{128, true, true},
		{8128, true, false},
	}
	for _, c := range cases {
		w := headerWord(c.size, c.prevA, c.thisA)
		require.Equal(t, c.size, w&sizeMask)
		require.Equal(t, c.prevA, w&flagPrevAlloc != 0)
		require.Equal(t, c.thisA, w&flagThisAlloc != 0)
	}
}

func TestBlockEncodingAfterInit(t *testing.T) {
	h := newTestHeap(t, 1)
	require.True(t, h.ensureInit())

	prologue := h.start + preambleSize
	require.Equal(t, uint64(minBlockSize), size(prologue))
	require.True(t, thisAlloc(prologue))

	free := prologue + minBlockSize
	require.True(t, isFree(free))
	require.False(t, isFree(prologue))
	require.True(t, prevAlloc(free), "free block follows the allocated prologue")

	// header and footer of a free block must be identical.
	require.Equal(t, loadWord(headerAddr(free)), loadWord(next(free)))
}

func TestIsFreeRejectsEpilogue(t *testing.T) {
	h := newTestHeap(t, 1)
	require.True(t, h.ensureInit())

	epilogue := h.end - wordSize
	storeWord(epilogue, headerWord(0, false, true))
	pseudoBlock := epilogue - wordSize
	require.False(t, isFree(pseudoBlock))
}

func TestNextPrevNavigation(t *testing.T) {
	h := newTestHeap(t, 1)
	require.True(t, h.ensureInit())

	prologue := h.start + preambleSize
	free := next(prologue)
	require.Equal(t, prologue+minBlockSize, free)
	require.Equal(t, uint64((h.end-2*wordSize)-free), size(free))
	require.Equal(t, free, prev(h.end-2*wordSize), "the epilogue's predecessor is the free block")
}
