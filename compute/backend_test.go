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
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

var testBackends = []Backend{Sequential{}, Threaded{GrainSize: 16}}

func makeRandomScores(n int) []float64 {
	result := make([]float64, n)
	for i := range result {
		result[i] = -20 * rand.Float64()
	}
	return result
}

func naiveScan(data []float64, op Monoid) []float64 {
	result := make([]float64, len(data))
	for i := range data {
		acc := op.Identity
		for j := 0; j <= i; j++ {
			acc = op.Combine(acc, data[j])
		}
		result[i] = acc
	}
	return result
}

func TestMonoidIdentity(t *testing.T) {
	for _, x := range []float64{0, -1e-300, -0.5, -7, -745, -1e300} {
		if y := LogSumExp.Combine(LogSumExp.Identity, x); y != x {
			t.Errorf("LogSumExp identity failed for %v: got %v", x, y)
		}
		if y := Max.Combine(Max.Identity, x); y != x {
			t.Errorf("Max identity failed for %v: got %v", x, y)
		}
	}
	if y := LogSumExp.Combine(MostNegativeRepresentable, MostNegativeRepresentable); y != MostNegativeRepresentable {
		t.Errorf("LogSumExp of two identities failed: got %v", y)
	}
}

func TestLogSumExp(t *testing.T) {
	if !scalar.EqualWithinAbs(LogSumExp.Combine(math.Log(0.25), math.Log(0.5)), math.Log(0.75), 1e-12) {
		t.Error("LogSumExp 1 failed")
	}
	// exp(-800) underflows, but the sum in log space does not
	if !scalar.EqualWithinAbs(LogSumExp.Combine(-800, -800), -800+math.Ln2, 1e-12) {
		t.Error("LogSumExp 2 failed")
	}
	if !scalar.EqualWithinAbs(LogSumExp.Combine(-1, -1000), -1, 1e-12) {
		t.Error("LogSumExp 3 failed")
	}
}

func TestScan(t *testing.T) {
	for _, backend := range testBackends {
		for _, n := range []int{0, 1, 2, 15, 16, 17, 100, 1000} {
			data := makeRandomScores(n)
			expectedMax := naiveScan(data, Max)
			expectedSum := naiveScan(data, LogSumExp)

			maxScan := append([]float64(nil), data...)
			backend.Scan(maxScan, Max)
			if !floats.Equal(maxScan, expectedMax) {
				t.Errorf("%v Max scan of length %v failed", backend.Name(), n)
			}

			sumScan := append([]float64(nil), data...)
			backend.Scan(sumScan, LogSumExp)
			if !floats.EqualApprox(sumScan, expectedSum, 1e-9) {
				t.Errorf("%v LogSumExp scan of length %v failed", backend.Name(), n)
			}
			for i := 1; i < len(sumScan); i++ {
				if sumScan[i] < sumScan[i-1] {
					t.Errorf("%v LogSumExp scan of length %v decreases at %v", backend.Name(), n, i)
					break
				}
			}
		}
	}
}

// concat joins the decimal digits of its arguments, which is
// associative but not commutative as long as no digit is zero.
func concat(x, y float64) float64 {
	if y == 0 {
		return x
	}
	return x*math.Pow(10, math.Floor(math.Log10(y))+1) + y
}

func TestScanNonCommutative(t *testing.T) {
	op := Monoid{Combine: concat, Identity: 0}
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 1, 2, 3}
	expected := []float64{1, 12, 123, 1234, 12345, 123456, 1234567, 12345678, 123456789, 1234567891, 12345678912, 123456789123}
	for _, backend := range []Backend{Sequential{}, Threaded{GrainSize: 2}} {
		result := append([]float64(nil), data...)
		backend.Scan(result, op)
		if !floats.Equal(result, expected) {
			t.Errorf("%v non-commutative scan failed: got %v, expected %v", backend.Name(), result, expected)
		}
	}
}

func TestSort(t *testing.T) {
	for _, backend := range testBackends {
		keys := []float64{-3, -1, -3, -2, -1, -3}
		perm := make([]int, len(keys))
		backend.Sort(keys, perm)
		if !floats.Equal(keys, []float64{-3, -3, -3, -2, -1, -1}) {
			t.Errorf("%v Sort keys failed: %v", backend.Name(), keys)
		}
		for i, p := range []int{0, 2, 5, 3, 1, 4} {
			if perm[i] != p {
				t.Errorf("%v Sort is not stable: %v", backend.Name(), perm)
				break
			}
		}

		data := makeRandomScores(1000)
		sorted := append([]float64(nil), data...)
		perm = make([]int, len(data))
		backend.Sort(sorted, perm)
		for i := range sorted {
			if i > 0 && sorted[i] < sorted[i-1] {
				t.Errorf("%v Sort of random data not ascending at %v", backend.Name(), i)
				break
			}
			if sorted[i] != data[perm[i]] {
				t.Errorf("%v Sort permutation does not match at %v", backend.Name(), i)
				break
			}
		}
	}
}

func TestPermutationRoundTrip(t *testing.T) {
	for _, backend := range testBackends {
		for _, n := range []int{1, 2, 33, 1000} {
			data := makeRandomScores(n)
			sorted := append([]float64(nil), data...)
			sort := make(Permutation, n)
			backend.Sort(sorted, sort)
			if err := sort.Validate(); err != nil {
				t.Errorf("%v sort permutation invalid: %v", backend.Name(), err)
			}
			unsort := sort.Inverse(backend)
			for i := range sort {
				if unsort[sort[i]] != i {
					t.Errorf("%v unsort[sort[%v]] != %v", backend.Name(), i, i)
					break
				}
			}
			restored := make([]float64, n)
			backend.Gather(restored, sorted, unsort)
			if !floats.Equal(restored, data) {
				t.Errorf("%v gather with inverse permutation of length %v failed", backend.Name(), n)
			}
		}
	}
}

func TestPermutationValidate(t *testing.T) {
	if err := (Permutation{}).Validate(); err != nil {
		t.Error("empty permutation rejected")
	}
	if err := (Permutation{2, 0, 1}).Validate(); err != nil {
		t.Error("valid permutation rejected")
	}
	if err := (Permutation{0, 1, 1}).Validate(); err == nil {
		t.Error("duplicate entry accepted")
	}
	if err := (Permutation{0, 3, 1}).Validate(); err == nil {
		t.Error("out of range entry accepted")
	}
	if err := (Permutation{0, -1}).Validate(); err == nil {
		t.Error("negative entry accepted")
	}
}

func TestTransform(t *testing.T) {
	for _, backend := range testBackends {
		data := makeRandomScores(500)
		result := append([]float64(nil), data...)
		backend.Transform(result, func(i int, x float64) float64 {
			return x + float64(i)
		})
		for i := range data {
			if result[i] != data[i]+float64(i) {
				t.Errorf("%v Transform failed at %v", backend.Name(), i)
				break
			}
		}
	}
}

func BenchmarkThreadedScan(b *testing.B) {
	data := makeRandomScores(1 << 20)
	work := make([]float64, len(data))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(work, data)
		Threaded{}.Scan(work, LogSumExp)
	}
}

func BenchmarkSequentialScan(b *testing.B) {
	data := makeRandomScores(1 << 20)
	work := make([]float64, len(data))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(work, data)
		Sequential{}.Scan(work, LogSumExp)
	}
}
