// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMallocZeroSize(t *testing.T) {
	h := newTestHeap(t, 1)
	p, err := h.Malloc(0)
	require.NoError(t, err)
	require.Nil(t, p)
	require.Equal(t, ErrnoNone, h.Errno)
}

func TestMallocNegativeSizePanics(t *testing.T) {
	h := newTestHeap(t, 1)
	require.Panics(t, func() { h.Malloc(-1) })
}

func TestMallocReturnsAlignedUsablePayload(t *testing.T) {
	h := newTestHeap(t, 1)
	p, err := h.Malloc(100)
	require.NoError(t, err)
	require.Len(t, p, 100)
	require.Equal(t, uintptr(0), uintptr(blockFromPayload(p)+2*wordSize)%alignment)

	for i := range p {
		p[i] = byte(i)
	}
	for i := range p {
		require.Equal(t, byte(i), p[i])
	}
}

func TestFreeThenReallocateSameClassReusesSpace(t *testing.T) {
	h := newTestHeap(t, 1)
	a, err := h.Malloc(200)
	require.NoError(t, err)
	addr := blockFromPayload(a)

	h.Free(a)
	require.True(t, isFree(addr))

	b, err := h.Malloc(200)
	require.NoError(t, err)
	require.Equal(t, addr, blockFromPayload(b), "freed block should be recycled by an equal-size request")
}

func TestFreeCoalescesWithNeighbors(t *testing.T) {
	h := newTestHeap(t, 1)
	a, _ := h.Malloc(128)
	b, _ := h.Malloc(128)
	c, _ := h.Malloc(128)

	ba, bb, bc := blockFromPayload(a), blockFromPayload(b), blockFromPayload(c)
	require.Equal(t, bb, next(ba))
	require.Equal(t, bc, next(bb))

	h.Free(a)
	h.Free(c)
	require.True(t, isFree(ba))
	require.True(t, isFree(bc))
	require.True(t, thisAlloc(bb), "b is still allocated, so a and c cannot have merged with it")

	h.Free(b)
	// All three must now be one free block rooted at ba.
	require.True(t, isFree(ba))
	require.Equal(t, next(ba) > bc, true, "the merged block must extend past c's old start")
}

func TestFreeInvalidPointerCorrupts(t *testing.T) {
	h := newTestHeap(t, 1)
	var msg string
	h.onCorrupt = func(m string) { msg = m }

	garbage := make([]byte, 16)
	h.Free(garbage)

	require.NotEmpty(t, msg)
	require.Equal(t, ErrnoInvalidArgument, h.Errno)
}

func TestFreeDoubleFreeCorrupts(t *testing.T) {
	h := newTestHeap(t, 1)
	p, err := h.Malloc(64)
	require.NoError(t, err)

	var corrupted bool
	h.onCorrupt = func(string) { corrupted = true }

	h.Free(p)
	require.False(t, corrupted)
	h.Free(p)
	require.True(t, corrupted, "freeing an already-free block must be rejected")
}

func TestReallocShrinkSplitsInPlace(t *testing.T) {
	h := newTestHeap(t, 1)
	p, err := h.Malloc(1000)
	require.NoError(t, err)
	addr := blockFromPayload(p)
	copy(p, bytes.Repeat([]byte{0x42}, len(p)))

	q, err := h.Realloc(p, 64)
	require.NoError(t, err)
	require.Equal(t, addr, blockFromPayload(q), "shrinking must not move the block")
	require.Len(t, q, 64)
	for _, b := range q {
		require.Equal(t, byte(0x42), b)
	}
}

func TestReallocGrowMovesAndCopies(t *testing.T) {
	h := newTestHeap(t, 1)
	p, err := h.Malloc(64)
	require.NoError(t, err)
	for i := range p {
		p[i] = byte(i + 1)
	}

	q, err := h.Realloc(p, 2000)
	require.NoError(t, err)
	require.Len(t, q, 2000)
	for i := 0; i < 64; i++ {
		require.Equal(t, byte(i+1), q[i])
	}
}

func TestReallocToZeroFreesAndReturnsNil(t *testing.T) {
	h := newTestHeap(t, 1)
	p, err := h.Malloc(64)
	require.NoError(t, err)
	addr := blockFromPayload(p)

	q, err := h.Realloc(p, 0)
	require.NoError(t, err)
	require.Nil(t, q)
	require.True(t, isFree(addr))
}

func TestReallocInvalidPointerCorrupts(t *testing.T) {
	h := newTestHeap(t, 1)
	var msg string
	h.onCorrupt = func(m string) { msg = m }

	h.Realloc(make([]byte, 8), 32)
	require.NotEmpty(t, msg)
	require.Equal(t, ErrnoInvalidArgument, h.Errno)
}
