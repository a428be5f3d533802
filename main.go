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

// elfdr corrects the quality scores of variant calls for multiple
// hypothesis testing, either by finding the quality threshold for a
// target false discovery rate, or by Bonferroni-Holm adjustment.
//
// Please see https://github.com/exascience/elfdr for a documentation
// of the tool, and the correction and compute packages for the API
// documentation.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/elfdr/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: fdr, holm")
	fmt.Fprint(os.Stderr, "\n", cmd.FdrHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.HolmHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprintln(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "fdr":
		err = cmd.Fdr()
	case "holm":
		err = cmd.Holm()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command:", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
