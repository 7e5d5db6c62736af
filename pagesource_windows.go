// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

// Modifications (c) 2026 The Dynamic Memory Allocator Authors.

//go:build windows

package memory

import (
	"errors"
	"os"
	"reflect"
	"syscall"
	"unsafe"
)

var osPageSize = os.Getpagesize()

// OSPageSource reserves one contiguous, anonymous, read-write mapping
// from the OS up front (via CreateFileMapping/MapViewOfFile) and doles
// it out in PageSize increments, the same contract as the unix variant.
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

// handleMap recovers the file-mapping handle backing a reserved region
// so Close can release it; Windows has no single syscall analogous to
// munmap that works from the address alone.
var handleMap = map[uintptr]syscall.Handle{}

func mmapReserve(size int) ([]byte, error) {
	flProtect := uint32(syscall.PAGE_READWRITE)
	dwDesiredAccess := uint32(syscall.FILE_MAP_WRITE)

	maxSizeHigh := uint32(int64(size) >> 32)
	maxSizeLow := uint32(int64(size) & 0xFFFFFFFF)
	h, errno := syscall.CreateFileMapping(syscall.Handle(^uintptr(0)), nil, flProtect, maxSizeHigh, maxSizeLow, nil)
	if h == 0 {
		return nil, os.NewSyscallError("CreateFileMapping", errno)
	}

	addr, errno := syscall.MapViewOfFile(h, dwDesiredAccess, 0, 0, uintptr(size))
	if addr == 0 {
		return nil, os.NewSyscallError("MapViewOfFile", errno)
	}

	if addr&uintptr(osPageSize-1) != 0 {
		panic("memory: mmap returned a misaligned region")
	}

	handleMap[addr] = h
	var b []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sh.Data = addr
	sh.Len = size
	sh.Cap = size
	return b, nil
}

func mmapRelease(addr unsafe.Pointer, size int) error {
	err := syscall.UnmapViewOfFile(uintptr(addr))
	if err != nil {
		return err
	}

	handle, ok := handleMap[uintptr(addr)]
	if !ok {
		return errors.New("memory: unknown reserved region address")
	}
	delete(handleMap, uintptr(addr))

	e := syscall.CloseHandle(handle)
	return os.NewSyscallError("CloseHandle", e)
}
