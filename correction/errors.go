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

package correction

import (
	"errors"
	"fmt"
	"math"

	"github.com/exascience/pargo/parallel"
)

// ErrEmptyInput is returned when there are no quality scores at all.
var ErrEmptyInput = errors.New("no quality scores to correct")

// A ContractViolationError reports arguments that the caller
// guarantees never to pass.
type ContractViolationError struct {
	Op     string
	Reason string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%v: contract violation: %v", e.Op, e.Reason)
}

func validScore(q float64) bool {
	return q <= 0 && !math.IsInf(q, -1)
}

// checkScores verifies that every score is a finite log-probability.
// NaN fails the comparison in validScore as well.
func checkScores(op string, scores []float64) error {
	n := len(scores)
	if n == 0 {
		return nil
	}
	first := parallel.RangeReduceInt(0, n, 0, func(low, high int) int {
		for i := low; i < high; i++ {
			if !validScore(scores[i]) {
				return i
			}
		}
		return n
	}, minInt)
	if first < n {
		return &ContractViolationError{
			Op:     op,
			Reason: fmt.Sprintf("score %v at index %v is not a log-probability in (-Inf, 0]", scores[first], first),
		}
	}
	return nil
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}
