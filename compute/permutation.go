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
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// A Permutation maps sorted positions to original positions: for a
// sort permutation p, keys[p[i]] is the i-th smallest key.
type Permutation []int

// Validate checks that p is a bijection on [0, len(p)).
func (p Permutation) Validate() error {
	seen := bitset.New(uint(len(p)))
	for i, j := range p {
		if j < 0 || j >= len(p) {
			return fmt.Errorf("permutation entry %v at position %v out of range [0, %v)", j, i, len(p))
		}
		if seen.Test(uint(j)) {
			return fmt.Errorf("permutation entry %v occurs more than once", j)
		}
		seen.Set(uint(j))
	}
	return nil
}

// Inverse returns the inverse permutation of p, computed with the
// given backend.
func (p Permutation) Inverse(backend Backend) Permutation {
	inv := make(Permutation, len(p))
	backend.Invert(inv, p)
	return inv
}
