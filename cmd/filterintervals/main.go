// filterintervals reduces a Picard-style interval list to the intervals on a
// chosen set of chromosomes, keeping the @HD and @PG header lines. Alternate
// contigs named after a kept chromosome (e.g. chr1_KI270706v1_random) are
// kept as well.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/broadinstitute/gvstools/intervals"
)

type chromosomeList []string

func (c *chromosomeList) String() string {
	return fmt.Sprint(*c)
}

func (c *chromosomeList) Set(value string) error {
	*c = append(*c, value)

	return nil
}

func main() {
	var input, output string
	var chromosomes chromosomeList

	flag.StringVar(&input, "input", "", "Full interval list to filter")
	flag.StringVar(&output, "output", "", "Where to write the filtered interval list")
	flag.Var(&chromosomes, "chromosome", "Chromosome to keep. May be repeated.")
	flag.Parse()

	if input == "" || output == "" || len(chromosomes) == 0 {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(input, output, chromosomes); err != nil {
		log.Fatalln(err)
	}
}

func run(input, output string, chromosomes []string) error {
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

	if err := intervals.FilterChromosomes(out, in, chromosomes...); err != nil {
		return err
	}

	return out.Close()
}
