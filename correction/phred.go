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

import "math"

// PhredToLog converts a phred-scaled quality to the natural logarithm
// of the error probability it encodes.
func PhredToLog(phred float64) float64 {
	return phred * (-0.1 * math.Ln10)
}

// LogToPhred is the inverse of PhredToLog.
func LogToPhred(q float64) float64 {
	return q * (-10 * math.Log10E)
}
