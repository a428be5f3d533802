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

package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/exascience/elfdr/correction"
	"github.com/exascience/elfdr/internal"
	"github.com/exascience/elfdr/scores"
)

// HolmHelp is the help string for this command.
const HolmHelp = "\nholm parameters:\n" +
	"elfdr holm scores-file output-file\n" +
	"[--multiple-testing-count nr]\n" +
	"[--phred]\n" +
	"[--sequential]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// Holm implements the elfdr holm command.
func Holm() error {
	var (
		common               commonFlags
		multipleTestingCount int
	)

	var flags flag.FlagSet

	common.register(&flags)
	flags.IntVar(&multipleTestingCount, "multiple-testing-count", 0, "total number of hypotheses tested, if larger than the number of scores")

	parseFlags(&flags, 4, HolmHelp)

	input := getFilename(os.Args[2], HolmHelp)
	output := getFilename(os.Args[3], HolmHelp)

	setLogOutput(common.logPath)

	// sanity checks

	sanityChecksFailed := common.check()

	if !checkExist("", input) {
		sanityChecksFailed = true
	}

	if !checkCreate("", output) {
		sanityChecksFailed = true
	}

	if multipleTestingCount < 0 {
		sanityChecksFailed = true
		log.Println("Error: Invalid multiple-testing-count: ", multipleTestingCount)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, HolmHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " holm ", input, " ", output)
	if multipleTestingCount > 0 {
		fmt.Fprint(&command, " --multiple-testing-count ", multipleTestingCount)
	}
	common.fprint(&command)

	// executing command

	log.Println("Executing command:\n", command.String())

	fullInput, err := internal.FullPathname(input)
	if err != nil {
		return err
	}

	fullOutput, err := internal.FullPathname(output)
	if err != nil {
		return err
	}

	ctx := common.newContext()
	defer ctx.Close()

	var quals []correction.Quals
	if err := timedRun(common.timed, common.profile, "Reading scores.", 1, func() (err error) {
		quals, err = scores.ParseFile(fullInput, common.phred)
		return
	}); err != nil {
		return err
	}

	flat := scores.Flatten(quals)
	if multipleTestingCount == 0 {
		multipleTestingCount = len(flat)
	}

	var adjusted []float64
	if err := timedRun(common.timed, common.profile, "Applying Bonferroni-Holm correction.", 2, func() (err error) {
		adjusted, err = correction.NewHolmAdjuster(ctx).Adjust(flat, multipleTestingCount)
		return
	}); err != nil {
		return err
	}

	return timedRun(common.timed, common.profile, "Writing adjusted scores.", 3, func() error {
		return scores.WriteFile(fullOutput, scores.Unflatten(adjusted, quals), common.phred)
	})
}
