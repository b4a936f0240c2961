// vatancestry fetches a cohort ancestry file, maps each sample to its
// subpopulation, and writes the mapping as a two-column TSV for the Hail
// callset-statistics jobs to consume.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/broadinstitute/gvstools/vat"
)

func main() {
	var ancestryFile, output string

	flag.StringVar(&ancestryFile, "ancestry_file", "", "Input ancestry file, local or gs://")
	flag.StringVar(&output, "output", "", "Where to write the sample to subpopulation TSV")
	flag.Parse()

	if ancestryFile == "" || output == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(ancestryFile, output); err != nil {
		log.Fatalln(err)
	}
}

func run(ancestryFile, output string) error {
	ctx := context.Background()

	localPath := ancestryFile
	if strings.HasPrefix(ancestryFile, "gs://") {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return err
		}

		localPath, err = vat.DownloadAncestry(ctx, client, ancestryFile)
		if err != nil {
			return err
		}
		defer os.Remove(localPath)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	ancestry, err := vat.ParseAncestry(f)
	if err != nil {
		return err
	}

	log.Printf("Mapped %d samples to subpopulations", len(ancestry))

	samples := make([]string, 0, len(ancestry))
	for sample := range ancestry {
		samples = append(samples, sample)
	}
	sort.Strings(samples)

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	for _, sample := range samples {
		fmt.Fprintf(w, "%s\t%s\n", sample, ancestry[sample])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	return out.Close()
}
