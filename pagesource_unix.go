// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2026 The Dynamic Memory Allocator Authors.

//go:build darwin || dragonfly || freebsd || linux || openbsd || solaris || netbsd

package memory

import (
	"os"
	"syscall"
	"unsafe"
)

var osPageSize = os.Getpagesize()

// OSPageSource reserves one contiguous, anonymous, read-write mapping
// from the OS up front and doles it out in PageSize increments. A
// single up-front mmap, rather than one call per Grow, is what lets the
// heap engine rely on growth never moving existing blocks: no
// subsequent syscall can relocate memory already handed to a caller.
type OSPageSource struct {
	mem  []byte
	used int
}

// NewOSPageSource reserves a region able to grow up to maxBytes,
// rounded up to a whole number of OS pages.
func NewOSPageSource(maxBytes int) (*OSPageSource, error) {
	size := roundUp(maxBytes, osPageSize)
	b, err := mmapReserve(size)
	if err != nil {
		return nil, err
	}
	return &OSPageSource{mem: b}, nil
}

// Close releases the reserved mapping. It is not necessary to Close an
// OSPageSource when exiting a process.
func (s *OSPageSource) Close() error {
	if len(s.mem) == 0 {
		return nil
	}
	err := mmapRelease(unsafe.Pointer(&s.mem[0]), len(s.mem))
	s.mem = nil
	return err
}

func (s *OSPageSource) base() uintptr {
	if len(s.mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s.mem[0]))
}

func (s *OSPageSource) Start() uintptr { return s.base() }
func (s *OSPageSource) End() uintptr   { return s.base() + uintptr(s.used) }

func (s *OSPageSource) Grow() (uintptr, bool) {
	if s.used+PageSize > len(s.mem) {
		return 0, false
	}
	old := s.End()
	s.used += PageSize
	return old, true
}

func mmapReserve(size int) ([]byte, error) {
	flags := syscall.MAP_SHARED | syscall.MAP_ANON
	prot := syscall.PROT_READ | syscall.PROT_WRITE
	b, err := syscall.Mmap(-1, 0, size, prot, flags)
	if err != nil {
		return nil, err
	}

	if uintptr(unsafe.Pointer(&b[0]))&uintptr(osPageSize-1) != 0 {
		panic("memory: mmap returned a misaligned region")
	}

	return b, nil
}

func mmapRelease(addr unsafe.Pointer, size int) error {
	_, _, errno := syscall.Syscall(syscall.SYS_MUNMAP, uintptr(addr), uintptr(size), 0)
	if errno != 0 {
		return errno
	}
	return nil
}
