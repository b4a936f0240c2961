// scalexybed multiplies the weight column of chrX and chrY lines in a BED
// file so that sex chromosome extract shards run in times comparable to the
// autosomal ones.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/broadinstitute/gvstools/intervals"
)

func main() {
	var input, output string
	var xScale, yScale float64

	flag.StringVar(&input, "input", "", "Input BED file")
	flag.StringVar(&output, "output", "", "Output BED file")
	flag.Float64Var(&xScale, "xscale", 0, "X chromosome scaling factor (must be >= 1.0)")
	flag.Float64Var(&yScale, "yscale", 0, "Y chromosome scaling factor (must be >= 1.0)")
	flag.Parse()

	if input == "" || output == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(input, output, xScale, yScale); err != nil {
		log.Fatalln(err)
	}
}

func run(input, output string, xScale, yScale float64) error {
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := intervals.ScaleXYBedValues(out, in, xScale, yScale); err != nil {
		return err
	}

	return out.Close()
}
