// vatannotations converts a Nirvana annotated-positions .json.gz into the
// newline-delimited .json.gz the variant annotations table is loaded from.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/broadinstitute/gvstools/vat"
)

func main() {
	var input, output string

	flag.StringVar(&input, "annotated_json", "", "Nirvana annotated positions .json.gz")
	flag.StringVar(&output, "output_vt_json", "", "Where to write the BigQuery-loadable .json.gz")
	flag.Parse()

	if input == "" || output == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	log.Println("Started running at", time.Now())
	defer func() {
		log.Println("Completed at", time.Now())
	}()

	if err := run(input, output); err != nil {
		log.Fatalln(err)
	}
}

func run(input, output string) error {
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

	if err := vat.MakeAnnotationJSON(in, out); err != nil {
		return err
	}

	return out.Close()
}
