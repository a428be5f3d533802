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
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/exascience/elfdr/compute"
)

func TestAdjust(t *testing.T) {
	for _, backend := range testBackends {
		ctx := compute.NewContext(backend)
		holm := NewHolmAdjuster(ctx)

		adjusted, err := holm.Adjust([]float64{-5, -3, -1}, 3)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualApprox(adjusted, []float64{-5 + math.Log(3), -3 + math.Log(2), -1}, 1e-12) {
			t.Errorf("%v Adjust 1 failed: %v", backend.Name(), adjusted)
		}

		scores := []float64{-1, -5, -3}
		adjusted, err = holm.Adjust(scores, 3)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.EqualApprox(adjusted, []float64{-1, -5 + math.Log(3), -3 + math.Log(2)}, 1e-12) {
			t.Errorf("%v Adjust 2 failed: %v", backend.Name(), adjusted)
		}
		if !floats.Equal(scores, []float64{-1, -5, -3}) {
			t.Errorf("%v Adjust modified its input: %v", backend.Name(), scores)
		}

		// the second rank inherits the larger adjusted value of the first
		adjusted, err = holm.Adjust([]float64{-9.9, -10, -1}, 3)
		if err != nil {
			t.Fatal(err)
		}
		first := -10 + math.Log(3)
		if !floats.EqualApprox(adjusted, []float64{first, first, -1}, 1e-12) {
			t.Errorf("%v Adjust step-down failed: %v", backend.Name(), adjusted)
		}

		adjusted, err = holm.Adjust([]float64{-0.1, -0.2, -5}, 100)
		if err != nil {
			t.Fatal(err)
		}
		if !floats.Equal(adjusted, []float64{0, 0, -5 + math.Log(100)}) {
			t.Errorf("%v Adjust clamp failed: %v", backend.Name(), adjusted)
		}
		ctx.Close()
	}
}

func TestAdjustIdentity(t *testing.T) {
	ctx := compute.NewContext(nil)
	defer ctx.Close()
	adjusted, err := NewHolmAdjuster(ctx).Adjust([]float64{-4.25}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(adjusted) != 1 || adjusted[0] != -4.25 {
		t.Errorf("Adjust with a single hypothesis failed: %v", adjusted)
	}

	// a zero rank factor leaves sorted, monotone scores unchanged
	backend := ctx.Backend()
	scores := []float64{-7, -6, -6, -2, 0}
	result := append([]float64(nil), scores...)
	backend.Transform(result, func(_ int, q float64) float64 {
		return math.Min(q+math.Log(1), 0)
	})
	backend.Scan(result, compute.Max)
	if !floats.Equal(result, scores) {
		t.Errorf("identity adjustment failed: %v", result)
	}
}

func TestAdjustProperties(t *testing.T) {
	for _, backend := range testBackends {
		ctx := compute.NewContext(backend)
		scores := makeRandomScores(2000)
		adjusted, err := NewHolmAdjuster(ctx).Adjust(scores, 5000)
		if err != nil {
			t.Fatal(err)
		}
		if len(adjusted) != len(scores) {
			t.Fatalf("%v Adjust returned %v scores for %v", backend.Name(), len(adjusted), len(scores))
		}
		sorted := append([]float64(nil), scores...)
		perm := make([]int, len(sorted))
		compute.Sequential{}.Sort(sorted, perm)
		for i, j := range perm {
			if adjusted[j] > 0 {
				t.Errorf("%v Adjust result %v not clamped", backend.Name(), adjusted[j])
				break
			}
			if adjusted[j] < scores[j] {
				t.Errorf("%v Adjust result %v more significant than score %v", backend.Name(), adjusted[j], scores[j])
				break
			}
			if i > 0 && adjusted[j] < adjusted[perm[i-1]] {
				t.Errorf("%v Adjust result decreases with rank at %v", backend.Name(), i)
				break
			}
		}
		ctx.Close()
	}
}

func TestAdjustContract(t *testing.T) {
	ctx := compute.NewContext(nil)
	defer ctx.Close()
	holm := NewHolmAdjuster(ctx)
	var cerr *ContractViolationError
	if _, err := holm.Adjust([]float64{-5, -3, -1}, 2); !errors.As(err, &cerr) {
		t.Errorf("Adjust accepted a multiple testing count below the number of scores: %v", err)
	}
	if _, err := holm.Adjust([]float64{-5, 0.5}, 2); !errors.As(err, &cerr) {
		t.Errorf("Adjust accepted a positive score: %v", err)
	}
	if _, err := holm.Adjust([]float64{math.NaN()}, 1); !errors.As(err, &cerr) {
		t.Errorf("Adjust accepted NaN: %v", err)
	}
	adjusted, err := holm.Adjust(nil, 0)
	if err != nil || len(adjusted) != 0 {
		t.Errorf("empty Adjust failed: %v, %v", adjusted, err)
	}
}

func BenchmarkAdjust(b *testing.B) {
	ctx := compute.NewContext(nil)
	defer ctx.Close()
	holm := NewHolmAdjuster(ctx)
	scores := makeRandomScores(1 << 18)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := holm.Adjust(scores, len(scores)); err != nil {
			b.Fatal(err)
		}
	}
}
