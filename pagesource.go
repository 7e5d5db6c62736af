// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memory

import "unsafe"

// PageSource is the external collaborator that supplies contiguous,
// 64-byte-aligned pages of memory (spec §1, §6). The heap engine never
// assumes anything about where the memory comes from beyond this
// interface: it may be OS-backed (OSPageSource) or simulated
// (SimulatedPageSource).
type PageSource interface {
	// Start returns the lowest heap address. Before the first Grow it
	// equals End.
	Start() uintptr

	// End returns one past the highest mapped heap address.
	End() uintptr

	// Grow extends the mapped region by exactly PageSize bytes and
	// returns the address of the new region (the old End()). It
	// reports ok=false, without growing, if the region cannot be
	// extended.
	Grow() (uintptr, bool)
}

// SimulatedPageSource is an in-process PageSource backed by a single,
// pre-allocated, fixed-capacity Go byte slice. Because the slice is
// allocated once at its final capacity and never reallocated, the
// addresses it hands out remain stable for the supplier's lifetime —
// the same contiguity guarantee a real mmap-reserved region provides,
// without depending on the OS. It is meant for tests and for callers
// who want a deterministic, boundable heap ceiling (e.g. to exercise
// out-of-memory scenarios).
type SimulatedPageSource struct {
	mem  []byte
	used int
}

// NewSimulatedPageSource creates a page source that can grow up to
// maxPages pages before refusing further growth.
func NewSimulatedPageSource(maxPages int) *SimulatedPageSource {
	return &SimulatedPageSource{mem: make([]byte, maxPages*PageSize)}
}

func (s *SimulatedPageSource) base() uintptr {
	if len(s.mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s.mem[0]))
}

func (s *SimulatedPageSource) Start() uintptr { return s.base() }
func (s *SimulatedPageSource) End() uintptr   { return s.base() + uintptr(s.used) }

func (s *SimulatedPageSource) Grow() (uintptr, bool) {
	if s.used+PageSize > len(s.mem) {
		return 0, false
	}
	old := s.End()
	s.used += PageSize
	return old, true
}
