// elfdr: multiple-testing correction for variant calling pipelines.
// Copyright (c) 2020-2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

package compute

import (
	"runtime"
	"sort"

	"github.com/exascience/pargo/parallel"
	psort "github.com/exascience/pargo/sort"
)

// DefaultGrainSize is the number of elements below which the
// threaded backend falls back to sequential loops.
const DefaultGrainSize = 0x1000

// Threaded implements Backend with pargo's data-parallel constructs,
// using as many goroutines as GOMAXPROCS permits.
type Threaded struct {
	// GrainSize is the minimum number of elements handed to a single
	// goroutine. Zero means DefaultGrainSize.
	GrainSize int
}

func (t Threaded) grainSize() int {
	if t.GrainSize > 0 {
		return t.GrainSize
	}
	return DefaultGrainSize
}

// batches returns the number of pargo batches for n elements.
func (t Threaded) batches(n int) int {
	b := (n + t.grainSize() - 1) / t.grainSize()
	if procs := runtime.GOMAXPROCS(0); b > procs {
		b = procs
	}
	if b < 1 {
		return 1
	}
	return b
}

// Name implements the method of the Backend interface.
func (t Threaded) Name() string {
	return "threaded"
}

type keyPermSorter struct {
	keys []float64
	perm []int
}

func (s keyPermSorter) Swap(i, j int) {
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	s.perm[i], s.perm[j] = s.perm[j], s.perm[i]
}

func (s keyPermSorter) SequentialSort(i, j int) {
	sort.Stable(keyPermSorter{s.keys[i:j], s.perm[i:j]})
}

func (s keyPermSorter) NewTemp() psort.StableSorter {
	return keyPermSorter{make([]float64, len(s.keys)), make([]int, len(s.perm))}
}

func (s keyPermSorter) Len() int {
	return len(s.keys)
}

func (s keyPermSorter) Less(i, j int) bool {
	return s.keys[i] < s.keys[j]
}

func (s keyPermSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(keyPermSorter)
	return func(i, j, len int) {
		copy(dst.keys[i:i+len], src.keys[j:j+len])
		copy(dst.perm[i:i+len], src.perm[j:j+len])
	}
}

// Sort implements the method of the Backend interface.
func (t Threaded) Sort(keys []float64, perm []int) {
	checkLengths("Sort", len(keys), len(perm))
	parallel.Range(0, len(perm), t.batches(len(perm)), func(low, high int) {
		for i := low; i < high; i++ {
			perm[i] = i
		}
	})
	psort.StableSort(keyPermSorter{keys, perm})
}

// Scan implements the method of the Backend interface.
//
// The scan runs in three phases: each block is scanned locally in
// parallel, the block totals are scanned sequentially into carries,
// and each carry is then combined from the left into its block.
func (t Threaded) Scan(data []float64, op Monoid) {
	n := len(data)
	if n <= t.grainSize() {
		sequentialScan(data, op)
		return
	}
	size := (n + t.batches(n) - 1) / t.batches(n)
	blocks := (n + size - 1) / size
	carries := make([]float64, blocks)
	parallel.Range(0, blocks, blocks, func(low, high int) {
		for b := low; b < high; b++ {
			block := data[b*size : min((b+1)*size, n)]
			sequentialScan(block, op)
			carries[b] = block[len(block)-1]
		}
	})
	acc := op.Identity
	for b, total := range carries {
		carries[b] = acc
		acc = op.Combine(acc, total)
	}
	if blocks == 1 {
		return
	}
	parallel.Range(1, blocks, blocks-1, func(low, high int) {
		for b := low; b < high; b++ {
			carry := carries[b]
			block := data[b*size : min((b+1)*size, n)]
			for i, x := range block {
				block[i] = op.Combine(carry, x)
			}
		}
	})
}

// Transform implements the method of the Backend interface.
func (t Threaded) Transform(data []float64, f func(i int, x float64) float64) {
	parallel.Range(0, len(data), t.batches(len(data)), func(low, high int) {
		for i := low; i < high; i++ {
			data[i] = f(i, data[i])
		}
	})
}

// Gather implements the method of the Backend interface.
func (t Threaded) Gather(dst, src []float64, index []int) {
	checkLengths("Gather", len(dst), len(index))
	parallel.Range(0, len(dst), t.batches(len(dst)), func(low, high int) {
		for i := low; i < high; i++ {
			dst[i] = src[index[i]]
		}
	})
}

// Invert implements the method of the Backend interface.
func (t Threaded) Invert(dst, perm []int) {
	checkLengths("Invert", len(dst), len(perm))
	parallel.Range(0, len(perm), t.batches(len(perm)), func(low, high int) {
		for i := low; i < high; i++ {
			dst[perm[i]] = i
		}
	})
}
