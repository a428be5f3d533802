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
	"log"

	"gonum.org/v1/gonum/floats"
)

// Sequential implements Backend with plain loops. Every scan combines
// its elements strictly in ascending index order, so results are
// reproducible bit for bit across machines.
type Sequential struct{}

// Name implements the method of the Backend interface.
func (Sequential) Name() string {
	return "sequential"
}

// Sort implements the method of the Backend interface.
func (Sequential) Sort(keys []float64, perm []int) {
	checkLengths("Sort", len(keys), len(perm))
	floats.ArgsortStable(keys, perm)
}

// Scan implements the method of the Backend interface.
func (Sequential) Scan(data []float64, op Monoid) {
	sequentialScan(data, op)
}

// Transform implements the method of the Backend interface.
func (Sequential) Transform(data []float64, f func(i int, x float64) float64) {
	for i, x := range data {
		data[i] = f(i, x)
	}
}

// Gather implements the method of the Backend interface.
func (Sequential) Gather(dst, src []float64, index []int) {
	checkLengths("Gather", len(dst), len(index))
	for i, j := range index {
		dst[i] = src[j]
	}
}

// Invert implements the method of the Backend interface.
func (Sequential) Invert(dst, perm []int) {
	checkLengths("Invert", len(dst), len(perm))
	for i, j := range perm {
		dst[j] = i
	}
}

func checkLengths(primitive string, n, m int) {
	if n != m {
		log.Panicf("%v: mismatched lengths %v and %v", primitive, n, m)
	}
}
