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

/*
Package scores reads and writes quality scores as plain text.

A score file holds one call per line, each line listing the call's
scores separated by blanks or tabs. Empty lines and lines starting with
# are ignored. Scores are natural log error probabilities, or
phred-scaled qualities when requested.
*/
package scores

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/elfdr/correction"
)

// ParseLine parses the scores of a single call.
func ParseLine(line string, phred bool) (correction.Quals, error) {
	fields := strings.Fields(line)
	quals := make(correction.Quals, len(fields))
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		if phred {
			value = correction.PhredToLog(value)
		}
		quals[i] = value
	}
	return quals, nil
}

func skipLine(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || line[0] == '#'
}

// Parse reads calls from an already opened file, in file order.
func Parse(file *os.File, phred bool) ([]correction.Quals, error) {
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(bufio.NewReader(file)))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		calls := make([]correction.Quals, 0, len(lines))
		for _, line := range lines {
			if skipLine(line) {
				continue
			}
			quals, err := ParseLine(line, phred)
			if err != nil {
				p.SetErr(fmt.Errorf("%v, while parsing score line %v", err, line))
				return calls
			}
			calls = append(calls, quals)
		}
		return calls
	})))
	var calls []correction.Quals
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		calls = append(calls, data.([]correction.Quals)...)
		return data
	})))
	p.Run()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return calls, nil
}

// ParseFile reads calls from the named file, in file order.
func ParseFile(filename string, phred bool) (calls []correction.Quals, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	return Parse(file, phred)
}

// Calls converts parsed scores to the Call interface.
func Calls(quals []correction.Quals) []correction.Call {
	calls := make([]correction.Call, len(quals))
	for i, q := range quals {
		calls[i] = q
	}
	return calls
}

// Flatten concatenates the scores of all calls, in order.
func Flatten(quals []correction.Quals) []float64 {
	var n int
	for _, q := range quals {
		n += len(q)
	}
	result := make([]float64, 0, n)
	for _, q := range quals {
		result = append(result, q...)
	}
	return result
}

// Unflatten splits values into calls shaped like quals.
func Unflatten(values []float64, quals []correction.Quals) []correction.Quals {
	result := make([]correction.Quals, len(quals))
	var offset int
	for i, q := range quals {
		result[i] = values[offset : offset+len(q) : offset+len(q)]
		offset += len(q)
	}
	return result
}

// AppendQuals appends the textual form of a call to buf.
func AppendQuals(buf []byte, quals correction.Quals, phred bool) []byte {
	for i, q := range quals {
		if i > 0 {
			buf = append(buf, '\t')
		}
		if phred {
			q = correction.LogToPhred(q)
		}
		buf = strconv.AppendFloat(buf, q, 'g', -1, 64)
	}
	return append(buf, '\n')
}

// WriteFile writes calls to the named file, one call per line.
func WriteFile(filename string, calls []correction.Quals, phred bool) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	out := bufio.NewWriter(file)
	var buf []byte
	for _, quals := range calls {
		buf = AppendQuals(buf[:0], quals, phred)
		if _, err = out.Write(buf); err != nil {
			return err
		}
	}
	return out.Flush()
}
