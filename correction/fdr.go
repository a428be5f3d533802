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
	"fmt"
	"math"
	"sort"

	"github.com/exascience/elfdr/compute"
)

// A Call is a statistical call that carries one or more quality
// scores, each the natural logarithm of an error probability.
type Call interface {
	Quals() []float64
}

// Quals is the simplest Call: a slice of quality scores.
type Quals []float64

// Quals implements the method of the Call interface.
func (q Quals) Quals() []float64 {
	return q
}

// A Threshold is a quality score together with the expected false
// discovery rate of accepting all scores up to and including it.
type Threshold struct {
	Quality     float64
	ExpectedFDR float64
}

// A ThresholdFinder determines quality thresholds for a target false
// discovery rate.
type ThresholdFinder struct {
	ctx *compute.Context
}

// NewThresholdFinder returns a ThresholdFinder that runs its kernels
// on the given context.
func NewThresholdFinder(ctx *compute.Context) *ThresholdFinder {
	return &ThresholdFinder{ctx: ctx}
}

// searchRight returns the number of entries in the ascending slice
// values that are less than or equal to target.
func searchRight(values []float64, target float64) int {
	return sort.Search(len(values), func(i int) bool {
		return values[i] > target
	})
}

// withCurve sorts the scores of all calls and computes the expected
// false discovery rate at every sorted position. The slices passed to
// use are released when withCurve returns.
func (f *ThresholdFinder) withCurve(op string, calls []Call, use func(sorted, expectedFDR []float64)) error {
	var n int
	for _, call := range calls {
		n += len(call.Quals())
	}
	if n == 0 {
		return ErrEmptyInput
	}

	ctx := f.ctx
	sorted := ctx.ReserveFloat64s(n)
	defer ctx.ReleaseFloat64s(sorted)
	expectedFDR := ctx.ReserveFloat64s(n)
	defer ctx.ReleaseFloat64s(expectedFDR)
	perm := ctx.ReserveInts(n)
	defer ctx.ReleaseInts(perm)

	var offset int
	for _, call := range calls {
		offset += copy(sorted[offset:], call.Quals())
	}
	if err := checkScores(op, sorted); err != nil {
		return err
	}

	backend := ctx.Backend()
	if err := compute.WaitAll(
		ctx.Submit("sort", func() error {
			backend.Sort(sorted, perm)
			return nil
		}),
		ctx.Submit("log-cumulative-sum", func() error {
			copy(expectedFDR, sorted)
			backend.Scan(expectedFDR, compute.LogSumExp)
			return nil
		}),
		ctx.Submit("exp", func() error {
			backend.Transform(expectedFDR, func(_ int, x float64) float64 {
				return math.Exp(x)
			})
			return nil
		}),
	); err != nil {
		return err
	}
	use(sorted, expectedFDR)
	return nil
}

/*
CalcMaxProb returns the least conservative quality threshold whose
expected false discovery rate does not exceed targetFDR.

All scores of all calls are sorted in ascending order, and the
expected false discovery rate at each sorted position is the sum of
the error probabilities of all scores up to that position. The sum is
accumulated in log space and exponentiated only at the end. The
selected position is the last one whose expected rate is at most
targetFDR; if there is none, it is the first position.

CalcMaxProb returns ErrEmptyInput if the calls carry no scores, and a
*ContractViolationError if targetFDR is not in (0, 1] or a score is
not a log-probability.
*/
func (f *ThresholdFinder) CalcMaxProb(calls []Call, targetFDR float64) (threshold Threshold, err error) {
	if !(targetFDR > 0 && targetFDR <= 1) {
		return Threshold{}, &ContractViolationError{
			Op:     "CalcMaxProb",
			Reason: fmt.Sprintf("target false discovery rate %v not in (0, 1]", targetFDR),
		}
	}
	err = f.withCurve("CalcMaxProb", calls, func(sorted, expectedFDR []float64) {
		i := searchRight(expectedFDR, targetFDR) - 1
		if i < 0 {
			i = 0
		}
		threshold = Threshold{Quality: sorted[i], ExpectedFDR: expectedFDR[i]}
	})
	return
}

// Curve returns the sorted scores of all calls together with the
// expected false discovery rate at each sorted position, as used by
// CalcMaxProb.
func (f *ThresholdFinder) Curve(calls []Call) (sorted, expectedFDR []float64, err error) {
	err = f.withCurve("Curve", calls, func(s, e []float64) {
		sorted = append([]float64(nil), s...)
		expectedFDR = append([]float64(nil), e...)
	})
	return
}

// FilterCalls returns the calls whose best (lowest) quality score
// passes the threshold. The result shares no memory with calls, but
// holds the same Call values.
func FilterCalls(calls []Call, threshold Threshold) (result []Call) {
	for _, call := range calls {
		for _, q := range call.Quals() {
			if q <= threshold.Quality {
				result = append(result, call)
				break
			}
		}
	}
	return
}
