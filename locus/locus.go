// Package locus maps chromosome names and positions to the single-integer
// "location" encoding used by the variant store's BigQuery tables.
package locus

import (
	"fmt"
)

// ChromosomeSpan is the location-space width reserved for each chromosome. A
// position on chromosome N is encoded as N*ChromosomeSpan + position.
const ChromosomeSpan = 1_000_000_000_000

// MaxLocation is one past the largest encodable location (chrM ends below
// index 26).
const MaxLocation = 26 * ChromosomeSpan

var chromosomeIndex = map[string]int64{
	"chr1": 1, "chr2": 2, "chr3": 3, "chr4": 4, "chr5": 5,
	"chr6": 6, "chr7": 7, "chr8": 8, "chr9": 9, "chr10": 10,
	"chr11": 11, "chr12": 12, "chr13": 13, "chr14": 14, "chr15": 15,
	"chr16": 16, "chr17": 17, "chr18": 18, "chr19": 19, "chr20": 20,
	"chr21": 21, "chr22": 22, "chrX": 23, "chrY": 24, "chrM": 25,
}

var chromosomeName = func() map[int64]string {
	out := make(map[int64]string, len(chromosomeIndex))
	for name, idx := range chromosomeIndex {
		out[idx] = name
	}
	return out
}()

// ChromosomeIndex returns the numeric index for a GRCh38 primary contig name.
func ChromosomeIndex(chrom string) (int64, error) {
	idx, exists := chromosomeIndex[chrom]
	if !exists {
		return 0, fmt.Errorf("unknown chromosome %q", chrom)
	}

	return idx, nil
}

// EncodeLocation packs a chromosome name and a position into a location.
func EncodeLocation(chrom string, pos int64) (int64, error) {
	idx, err := ChromosomeIndex(chrom)
	if err != nil {
		return 0, err
	}

	if pos < 0 || pos >= ChromosomeSpan {
		return 0, fmt.Errorf("position %d out of range for %s", pos, chrom)
	}

	return idx*ChromosomeSpan + pos, nil
}

// DecodeLocation splits a location back into a chromosome name and position.
func DecodeLocation(location int64) (chrom string, pos int64, err error) {
	idx := location / ChromosomeSpan
	name, exists := chromosomeName[idx]
	if !exists {
		return "", 0, fmt.Errorf("location %d does not map to a known chromosome", location)
	}

	return name, location % ChromosomeSpan, nil
}

// Interval is a genomic range on a single chromosome. Start and End carry
// whatever coordinate convention the source file uses; this package only
// encodes them.
type Interval struct {
	Chrom string
	Start int64
	End   int64
}
