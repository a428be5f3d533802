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

// FdrHelp is the help string for this command.
const FdrHelp = "\nfdr parameters:\n" +
	"elfdr fdr scores-file\n" +
	"[--target-fdr rate]\n" +
	"[--phred]\n" +
	"[--sequential]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// Fdr implements the elfdr fdr command.
func Fdr() error {
	var (
		common    commonFlags
		targetFDR float64
	)

	var flags flag.FlagSet

	common.register(&flags)
	flags.Float64Var(&targetFDR, "target-fdr", 0.05, "target false discovery rate")

	parseFlags(&flags, 3, FdrHelp)

	input := getFilename(os.Args[2], FdrHelp)

	setLogOutput(common.logPath)

	// sanity checks

	sanityChecksFailed := common.check()

	if !checkExist("", input) {
		sanityChecksFailed = true
	}

	if !(targetFDR > 0 && targetFDR <= 1) {
		sanityChecksFailed = true
		log.Println("Error: Invalid target-fdr: ", targetFDR)
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, FdrHelp)
		os.Exit(1)
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " fdr ", input)
	fmt.Fprint(&command, " --target-fdr ", targetFDR)
	common.fprint(&command)

	// executing command

	log.Println("Executing command:\n", command.String())

	fullInput, err := internal.FullPathname(input)
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

	var threshold correction.Threshold
	if err := timedRun(common.timed, common.profile, "Computing false discovery rate threshold.", 2, func() (err error) {
		threshold, err = correction.NewThresholdFinder(ctx).CalcMaxProb(scores.Calls(quals), targetFDR)
		return
	}); err != nil {
		return err
	}

	if common.phred {
		fmt.Printf("%v\t%v\n", correction.LogToPhred(threshold.Quality), threshold.ExpectedFDR)
	} else {
		fmt.Printf("%v\t%v\n", threshold.Quality, threshold.ExpectedFDR)
	}
	log.Printf("%v of %v calls pass the threshold.\n", len(correction.FilterCalls(scores.Calls(quals), threshold)), len(quals))
	return nil
}
