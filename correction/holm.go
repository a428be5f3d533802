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

	"github.com/exascience/elfdr/compute"
	"github.com/exascience/elfdr/internal"
)

// A HolmAdjuster applies the Bonferroni-Holm step-down correction to
// quality scores.
type HolmAdjuster struct {
	ctx *compute.Context
}

// NewHolmAdjuster returns a HolmAdjuster that runs its kernels on the
// given context.
func NewHolmAdjuster(ctx *compute.Context) *HolmAdjuster {
	return &HolmAdjuster{ctx: ctx}
}

/*
Adjust returns the Holm-adjusted scores, in the same order as the
given scores, which are not modified.

multipleTestingCount is the total number of hypotheses in the
experiment, and may exceed len(scores) when the scores are a subset
of a larger study. In sorted order, the score at rank i is multiplied
by (multipleTestingCount - i) in probability space, clamped to a
probability of 1, and then raised to the maximum of all scores of
lower rank, so that adjusted scores never decrease with rank.

Adjust returns a *ContractViolationError if multipleTestingCount is
smaller than len(scores), or if a score is not a log-probability.
*/
func (h *HolmAdjuster) Adjust(scores []float64, multipleTestingCount int) ([]float64, error) {
	n := len(scores)
	if multipleTestingCount < n {
		return nil, &ContractViolationError{
			Op:     "Adjust",
			Reason: fmt.Sprintf("multiple testing count %v smaller than the number of scores %v", multipleTestingCount, n),
		}
	}
	if n == 0 {
		return []float64{}, nil
	}
	if err := checkScores("Adjust", scores); err != nil {
		return nil, err
	}

	ctx := h.ctx
	sorted := ctx.ReserveFloat64s(n)
	defer ctx.ReleaseFloat64s(sorted)
	sortPerm := ctx.ReserveInts(n)
	defer ctx.ReleaseInts(sortPerm)
	unsort := ctx.ReserveInts(n)
	defer ctx.ReleaseInts(unsort)
	result := make([]float64, n)

	copy(sorted, scores)
	backend := ctx.Backend()
	m := float64(multipleTestingCount)
	if err := compute.WaitAll(
		ctx.Submit("sort", func() error {
			backend.Sort(sorted, sortPerm)
			return nil
		}),
		ctx.Submit("invert", func() error {
			if internal.PedanticMode {
				if err := compute.Permutation(sortPerm).Validate(); err != nil {
					return err
				}
			}
			backend.Invert(unsort, sortPerm)
			return nil
		}),
		ctx.Submit("rank-factor", func() error {
			backend.Transform(sorted, func(i int, q float64) float64 {
				return math.Min(q+math.Log(m-float64(i)), 0)
			})
			return nil
		}),
		ctx.Submit("step-down", func() error {
			backend.Scan(sorted, compute.Max)
			return nil
		}),
		ctx.Submit("gather", func() error {
			backend.Gather(result, sorted, unsort)
			return nil
		}),
	); err != nil {
		return nil, err
	}
	return result, nil
}
