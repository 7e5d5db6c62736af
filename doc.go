// Copyright 2026 The Dynamic Memory Allocator Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memory implements a segregated-fit dynamic memory allocator.
//
// It manages a single, contiguous region of memory obtained from a
// PageSource in fixed-size page increments and exposes Malloc, Free and
// Realloc over byte slices, with every returned payload 64-byte aligned.
//
// Changelog
//
// 2026-07-30 Initial Fibonacci segregated free-list implementation.
package memory
