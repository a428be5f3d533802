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

// A Backend provides the data-parallel primitives the correction
// algorithms are built from. Backends must not retain any of the
// slices passed to them.
type Backend interface {
	// Name identifies the backend in messages.
	Name() string

	// Sort stably sorts keys in ascending order. On return, perm[i]
	// holds the original index of the key now stored at keys[i].
	// perm must have the same length as keys.
	Sort(keys []float64, perm []int)

	// Scan replaces data with its inclusive scan under op, that is
	// data[i] = data[0] op data[1] op ... op data[i].
	Scan(data []float64, op Monoid)

	// Transform replaces each data[i] with f(i, data[i]). f must not
	// depend on other elements.
	Transform(data []float64, f func(i int, x float64) float64)

	// Gather sets dst[i] = src[index[i]].
	Gather(dst, src []float64, index []int)

	// Invert sets dst[perm[i]] = i. perm must be a permutation.
	Invert(dst, perm []int)
}
