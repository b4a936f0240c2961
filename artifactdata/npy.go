package artifactdata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"
	"github.com/kshedden/gonpy"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// WriteDataset writes a dataset to dir as a set of .npy files: ref_reads.npy
// and alt_reads.npy hold the row-stacked read matrices of every datum,
// info.npy the per-datum info vectors, labels.npy and types.npy the label and
// variant-type codes, and alt_read_counts.npy the per-datum alt read count
// needed to slice alt_reads back apart.
func WriteDataset(dir string, data []Datum) error {
	if len(data) == 0 {
		return fmt.Errorf("refusing to write an empty dataset to %s", dir)
	}

	var refReads, altReads, info []float64
	labels := make([]float64, 0, len(data))
	types := make([]float64, 0, len(data))
	altCounts := make([]float64, 0, len(data))

	for _, d := range data {
		for _, read := range d.RefReads {
			refReads = append(refReads, read...)
		}
		for _, read := range d.AltReads {
			altReads = append(altReads, read...)
		}
		info = append(info, d.Info...)
		labels = append(labels, float64(d.Label))
		types = append(types, float64(d.Type))
		altCounts = append(altCounts, float64(d.AltCount()))
	}

	readWidth := len(data[0].RefReads[0])
	infoWidth := len(data[0].Info)

	matrices := []struct {
		name   string
		values []float64
		shape  []int
	}{
		{"ref_reads.npy", refReads, []int{len(refReads) / readWidth, readWidth}},
		{"alt_reads.npy", altReads, []int{len(altReads) / readWidth, readWidth}},
		{"info.npy", info, []int{len(data), infoWidth}},
		{"labels.npy", labels, []int{len(data)}},
		{"types.npy", types, []int{len(data)}},
		{"alt_read_counts.npy", altCounts, []int{len(data)}},
	}

	for _, m := range matrices {
		if err := writeNpy(filepath.Join(dir, m.name), m.values, m.shape); err != nil {
			return err
		}
	}

	return nil
}

func writeNpy(path string, values []float64, shape []int) error {
	output, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer output.Close()

	bufw := bufio.NewWriter(output)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return pfx.Err(err)
	}
	npw.Shape = shape

	if err := npw.WriteFloat64(values); err != nil {
		return pfx.Err(err)
	}

	if err := bufw.Flush(); err != nil {
		return pfx.Err(err)
	}

	if err := output.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}
