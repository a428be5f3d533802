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

import "math"

// MostNegativeRepresentable is the neutral element of the scans over
// log-domain values. It takes the place of negative infinity, so that
// combining it with other values stays within finite arithmetic.
const MostNegativeRepresentable = -math.MaxFloat64

// A Monoid is an associative binary operator together with its neutral
// element. Combine does not need to be commutative, but
// Combine(Identity, x) must be x.
type Monoid struct {
	Combine  func(x, y float64) float64
	Identity float64
}

func logSumExp(x, y float64) float64 {
	if x > y {
		return x + math.Log1p(math.Exp(y-x))
	}
	return y + math.Log1p(math.Exp(x-y))
}

func maxFloat64(x, y float64) float64 {
	if x > y {
		return x
	}
	return y
}

var (
	// LogSumExp adds probabilities that are represented by their
	// natural logarithm, without leaving log space.
	LogSumExp = Monoid{Combine: logSumExp, Identity: MostNegativeRepresentable}

	// Max is the running maximum.
	Max = Monoid{Combine: maxFloat64, Identity: MostNegativeRepresentable}
)

func sequentialScan(data []float64, op Monoid) {
	acc := op.Identity
	for i, x := range data {
		acc = op.Combine(acc, x)
		data[i] = acc
	}
}
